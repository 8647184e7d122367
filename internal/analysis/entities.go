package analysis

import "regexp"

// maxEntities caps every entity list.
const maxEntities = 5

var (
	reNames = regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`)

	reDates = regexp.MustCompile(`(?i)\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b|\b\d{1,2}(?:st|nd|rd|th)?\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec|January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{2,4}\b`)

	reAmounts = regexp.MustCompile(`(?i)(?:Rs\.?\s*|₹\s*|INR\s*|USD\s*|\$\s*)\d{1,3}(?:,\d{3})*(?:\.\d{2})?|\b\d{1,3}(?:,\d{3})*(?:\.\d{2})?\s*(?:rupees?|dollars?|USD|INR)\b`)

	reLocations = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*(?:\s+(?:City|Town|Village|District|State|Colony|Sector|Area|Road|Street|Nagar|Pur|Bad|Ganj|Abad))\b`)
)

// ExtractNames returns up to five distinct "Firstname Lastname" pairs.
func ExtractNames(text string) []string { return uniqueMatches(reNames, text) }

// ExtractDates returns up to five distinct numeric or month-name dates.
func ExtractDates(text string) []string { return uniqueMatches(reDates, text) }

// ExtractAmounts returns up to five distinct currency amounts.
func ExtractAmounts(text string) []string { return uniqueMatches(reAmounts, text) }

// ExtractLocations returns up to five distinct place names ending in a known suffix.
func ExtractLocations(text string) []string { return uniqueMatches(reLocations, text) }

// ExtractEntities runs every extractor.
func ExtractEntities(text string) Entities {
	return Entities{
		Names:     ExtractNames(text),
		Dates:     ExtractDates(text),
		Amounts:   ExtractAmounts(text),
		Locations: ExtractLocations(text),
	}
}

// uniqueMatches keeps first occurrences in order, case-sensitively.
func uniqueMatches(re *regexp.Regexp, text string) []string {
	out := make([]string, 0, maxEntities)
	seen := make(map[string]struct{})
	for _, m := range re.FindAllString(text, -1) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
		if len(out) == maxEntities {
			break
		}
	}
	return out
}
