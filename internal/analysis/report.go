package analysis

// Entities holds the pattern matches found in the analyzed text.
type Entities struct {
	Names     []string `json:"names"`
	Dates     []string `json:"dates"`
	Amounts   []string `json:"amounts"`
	Locations []string `json:"locations"`
}

// Report is the analyzer output shown to the user.
type Report struct {
	DocumentType    string   `json:"documentType"`
	Authenticity    string   `json:"authenticity"`
	Summary         string   `json:"summary"`
	KeyPoints       []string `json:"keyPoints"`
	Entities        Entities `json:"entities"`
	Corrections     []string `json:"corrections"`
	ConfidenceScore float64  `json:"confidenceScore"`
}

func emptyReport() Report {
	return Report{
		DocumentType: "Unknown Document",
		KeyPoints:    []string{},
		Entities: Entities{
			Names:     []string{},
			Dates:     []string{},
			Amounts:   []string{},
			Locations: []string{},
		},
		Corrections: []string{},
	}
}
