package analysis

import (
	"reflect"
	"strings"
	"testing"

	"github.com/joseph-ayodele/legaldocs/constants"
	"github.com/joseph-ayodele/legaldocs/internal/extract"
)

func TestAnalyzeText_Empty(t *testing.T) {
	r := AnalyzeText("", "scan.png")
	if r.Summary != "No readable text content found in the document." {
		t.Errorf("summary = %q", r.Summary)
	}
	if r.Authenticity != "Unreadable" || r.ConfidenceScore != 0.1 {
		t.Errorf("verdict = %q/%v", r.Authenticity, r.ConfidenceScore)
	}
	want := []string{
		"Document could not be read properly",
		"Try uploading a clearer image or different file format",
		"Ensure document is not corrupted",
	}
	if !reflect.DeepEqual(r.Corrections, want) {
		t.Errorf("corrections = %v", r.Corrections)
	}
	if r.DocumentType != "Unknown Document" {
		t.Errorf("document type = %q", r.DocumentType)
	}
	if r.KeyPoints == nil || r.Entities.Names == nil {
		t.Error("lists should be empty, not nil")
	}
}

func TestAnalyzeText_Verdicts(t *testing.T) {
	long := strings.Repeat("The tenant shall keep the premises clean. ", 3)

	testCases := []struct {
		name       string
		text       string
		wantAuth   string
		wantConf   float64
		wantCorrNo int
	}{
		{name: "short", text: "Hello world", wantAuth: "Insufficient Data", wantConf: 0.3, wantCorrNo: 1},
		{name: "49 multibyte runes", text: strings.Repeat("₹", 49), wantAuth: "Insufficient Data", wantConf: 0.3, wantCorrNo: 1},
		{name: "placeholder pdf", text: "[PDF Content] " + long, wantAuth: "Requires OCR Processing", wantConf: 0.6, wantCorrNo: 3},
		{name: "placeholder beats error", text: "[Image OCR] OCR Error: " + long, wantAuth: "Requires OCR Processing", wantConf: 0.6, wantCorrNo: 3},
		{name: "error marker", text: "Error processing PDF: malformed cross-reference table at offset 1234", wantAuth: "Processing Error", wantConf: 0.2, wantCorrNo: 3},
		{name: "clean", text: long, wantAuth: "Text Analysis Complete", wantConf: 0.85, wantCorrNo: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := AnalyzeText(tc.text, "f.txt")
			if r.Authenticity != tc.wantAuth || r.ConfidenceScore != tc.wantConf {
				t.Fatalf("verdict = %q/%v, want %q/%v", r.Authenticity, r.ConfidenceScore, tc.wantAuth, tc.wantConf)
			}
			if len(r.Corrections) != tc.wantCorrNo {
				t.Errorf("corrections = %v", r.Corrections)
			}
			if r.Corrections == nil {
				t.Error("corrections should never be nil")
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "more than three sentences",
			text: "Sale deed executed. Property at Plot 12! Registered today? More details follow.",
			want: "This document contains: Sale deed executed.  Property at Plot 12.  Registered today. Additional content includes more details about the document subject matter.",
		},
		{
			name: "single sentence keeps trailing space",
			text: "This agreement is made between the parties",
			want: "This document contains: This agreement is made between the parties. ",
		},
		{
			name: "too short",
			text: "ID. No. 42",
			want: "This document appears to contain structured information that requires further analysis.",
		},
		{
			name: "only punctuation",
			text: "...!!!",
			want: "This document appears to contain structured information that requires further analysis.",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Summarize(tc.text); got != tc.want {
				t.Errorf("Summarize() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKeyPoints(t *testing.T) {
	text := "\n  first line  \n\n second\nthird\n\t\nfourth\nfifth\nsixth\nseventh"
	got := KeyPoints(text)
	want := []string{"first line", "second", "third", "fourth", "fifth"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("KeyPoints() = %q, want %q", got, want)
	}
}

func TestJudge(t *testing.T) {
	long := strings.Repeat("The parties agree to the terms. ", 3)
	testCases := []struct {
		name string
		text string
		want constants.Authenticity
		conf float64
	}{
		{"short text", "Too short to judge", constants.AuthenticityInsufficient, 0.3},
		{"49 two-byte runes", strings.Repeat("é", 49), constants.AuthenticityInsufficient, 0.3},
		{"50 two-byte runes", strings.Repeat("é", 50), constants.AuthenticityComplete, 0.85},
		{"emoji count once", strings.Repeat("📄", 49), constants.AuthenticityInsufficient, 0.3},
		{"pdf marker", "[PDF Content] " + long, constants.AuthenticityNeedsOCR, 0.6},
		{"ocr error", "OCR Error: " + long, constants.AuthenticityError, 0.2},
		{"complete", long, constants.AuthenticityComplete, 0.85},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := Judge(tc.text)
			if v.Authenticity != tc.want || float64(v.Confidence) != tc.conf {
				t.Errorf("Judge() = %s/%v, want %s/%v", v.Authenticity, v.Confidence, tc.want, tc.conf)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		text string
		want string
	}{
		{"Land deed and marriage details", "Property Document"},
		{"Marriage registered between the parties", "Marriage Certificate"},
		{"Wedding of the spouse", "Marriage Certificate"},
		{"Police complaint lodged", "FIR/Police Report"},
		{"This is the first page", "FIR/Police Report"},
		{"Aadhaar enrolment", "Aadhar Card"},
		{"UID number", "Aadhar Card"},
		{"Certificate of birth", "Birth Certificate"},
		{"certificate of birth and death", "Birth Certificate"},
		{"Death Certificate", "Death Certificate"},
		{"birth record", "Text Document (x.txt)"},
		{"PASSPORT", "Passport"},
		{"Driving permit", "Driving License"},
		{"Income details", "Income Tax Document"},
		{"Bank of India", "Bank Statement"},
		{"hello there", "Text Document (x.txt)"},
	}
	for _, tc := range testCases {
		if got := Classify(tc.text, "x.txt"); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestAnalyzer_FailureText(t *testing.T) {
	res := extract.FailureResult(extract.ParseError, "Error processing PDF: malformed cross-reference table at offset 1234")

	t.Run("analyzed as text by default", func(t *testing.T) {
		r := New(DefaultOptions(), nil).Analyze(res, "deed.pdf")
		if r.Authenticity != "Processing Error" || r.ConfidenceScore != 0.2 {
			t.Fatalf("verdict = %q/%v", r.Authenticity, r.ConfidenceScore)
		}
		if r.DocumentType != "Text Document (deed.pdf)" {
			t.Errorf("document type = %q", r.DocumentType)
		}
		if !strings.HasPrefix(r.Summary, "This document contains: Error processing PDF: malformed cross-reference table at offset 1234") {
			t.Errorf("summary = %q", r.Summary)
		}
	})

	t.Run("short failure message is insufficient", func(t *testing.T) {
		r := New(DefaultOptions(), nil).Analyze(extract.FailureResult(extract.RecognitionError, "OCR Error: boom"), "a.png")
		if r.Authenticity != "Insufficient Data" {
			t.Fatalf("authenticity = %q", r.Authenticity)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		r := New(Options{AnalyzeFailureText: false}, nil).Analyze(res, "deed.pdf")
		if r.Authenticity != "Processing Error" || r.ConfidenceScore != 0.2 {
			t.Fatalf("verdict = %q/%v", r.Authenticity, r.ConfidenceScore)
		}
		if r.Summary != res.Failure.Message {
			t.Errorf("summary = %q", r.Summary)
		}
		if r.DocumentType != "Unknown Document" {
			t.Errorf("document type = %q", r.DocumentType)
		}
	})
}

func TestAnalyzer_PDFBanners(t *testing.T) {
	text := "--- Page 1 ---\nAadhar number issued to Ravi Kumar\n\n--- Page 2 ---\nAadhar enrolment record for resident"
	r := New(DefaultOptions(), nil).Analyze(extract.TextResult(text), "id.pdf")
	if r.DocumentType != "Aadhar Card" {
		t.Errorf("document type = %q", r.DocumentType)
	}
	if r.Authenticity != "Text Analysis Complete" || r.ConfidenceScore != 0.85 {
		t.Errorf("verdict = %q/%v", r.Authenticity, r.ConfidenceScore)
	}
	wantPoints := []string{"--- Page 1 ---", "Aadhar number issued to Ravi Kumar", "--- Page 2 ---", "Aadhar enrolment record for resident"}
	if !reflect.DeepEqual(r.KeyPoints, wantPoints) {
		t.Errorf("key points = %q", r.KeyPoints)
	}
	if !reflect.DeepEqual(r.Entities.Names, []string{"Ravi Kumar"}) {
		t.Errorf("names = %q", r.Entities.Names)
	}
}
