package analysis

import (
	"strings"

	"github.com/joseph-ayodele/legaldocs/constants"
)

type classifyRule struct {
	docType constants.DocumentType
	anyOf   []string
	allOf   []string
}

// Order matters: the first matching rule wins.
var classifyRules = []classifyRule{
	{docType: constants.PropertyDocument, anyOf: []string{"property", "deed", "plot", "land"}},
	{docType: constants.MarriageCertificate, anyOf: []string{"marriage", "wedding", "spouse"}},
	{docType: constants.PoliceReport, anyOf: []string{"fir", "police", "complaint"}},
	{docType: constants.AadharCard, anyOf: []string{"aadhar", "aadhaar", "uid"}},
	{docType: constants.BirthCertificate, allOf: []string{"birth", "certificate"}},
	{docType: constants.DeathCertificate, allOf: []string{"death", "certificate"}},
	{docType: constants.Passport, anyOf: []string{"passport"}},
	{docType: constants.DrivingLicense, anyOf: []string{"license", "driving"}},
	{docType: constants.IncomeTaxDocument, anyOf: []string{"income", "tax", "itr"}},
	{docType: constants.BankStatement, anyOf: []string{"bank", "statement", "account"}},
}

// Classify labels text by plain substring tests on its lowercase form.
func Classify(text, filename string) string {
	lower := strings.ToLower(text)
	for _, r := range classifyRules {
		if r.matches(lower) {
			return string(r.docType)
		}
	}
	return string(constants.TextDocumentLabel(filename))
}

func (r classifyRule) matches(lower string) bool {
	if len(r.allOf) > 0 {
		for _, kw := range r.allOf {
			if !strings.Contains(lower, kw) {
				return false
			}
		}
		return true
	}
	for _, kw := range r.anyOf {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
