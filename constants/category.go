package constants

import (
	"strings"
)

// DocumentType is the label the analyzer assigns from keyword matches.
type DocumentType string

const (
	PropertyDocument    DocumentType = "Property Document"
	MarriageCertificate DocumentType = "Marriage Certificate"
	PoliceReport        DocumentType = "FIR/Police Report"
	AadharCard          DocumentType = "Aadhar Card"
	BirthCertificate    DocumentType = "Birth Certificate"
	DeathCertificate    DocumentType = "Death Certificate"
	Passport            DocumentType = "Passport"
	DrivingLicense      DocumentType = "Driving License"
	IncomeTaxDocument   DocumentType = "Income Tax Document"
	BankStatement       DocumentType = "Bank Statement"
	UnknownDocument     DocumentType = "Unknown Document"
)

// TextDocumentPrefix starts the fallback label "Text Document (<filename>)".
const TextDocumentPrefix = "Text Document"

var allDocumentTypes = []DocumentType{
	PropertyDocument,
	MarriageCertificate,
	PoliceReport,
	AadharCard,
	BirthCertificate,
	DeathCertificate,
	Passport,
	DrivingLicense,
	IncomeTaxDocument,
	BankStatement,
	UnknownDocument,
}

func AsStringSlice() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// TextDocumentLabel builds the fallback label for an unclassified file.
func TextDocumentLabel(filename string) DocumentType {
	return DocumentType(TextDocumentPrefix + " (" + filename + ")")
}

// Canonicalize maps a user supplied filter value onto a known document type.
// "text document" matches the fallback family and is returned as TextDocumentPrefix.
func Canonicalize(input string) (DocumentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]DocumentType{
		"fir":             PoliceReport,
		"police report":   PoliceReport,
		"aadhaar":         AadharCard,
		"aadhaar card":    AadharCard,
		"aadhar":          AadharCard,
		"deed":            PropertyDocument,
		"driving licence": DrivingLicense,
		"licence":         DrivingLicense,
		"itr":             IncomeTaxDocument,
		"tax":             IncomeTaxDocument,
		"bank":            BankStatement,
		"text document":   TextDocumentPrefix,
		"marriage":        MarriageCertificate,
	}
	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}

	for _, dt := range allDocumentTypes {
		if normalized == strings.ToLower(string(dt)) {
			return dt, true
		}
	}
	return "", false
}

// Authenticity is the verdict label attached to a report.
type Authenticity string

const (
	AuthenticityComplete     Authenticity = "Text Analysis Complete"
	AuthenticityNeedsOCR     Authenticity = "Requires OCR Processing"
	AuthenticityError        Authenticity = "Processing Error"
	AuthenticityInsufficient Authenticity = "Insufficient Data"
	AuthenticityUnreadable   Authenticity = "Unreadable"
)

var allAuthenticity = []Authenticity{
	AuthenticityComplete,
	AuthenticityNeedsOCR,
	AuthenticityError,
	AuthenticityInsufficient,
	AuthenticityUnreadable,
}

// AuthenticityLabels returns every verdict label.
func AuthenticityLabels() []string {
	out := make([]string, len(allAuthenticity))
	for i, a := range allAuthenticity {
		out[i] = string(a)
	}
	return out
}
