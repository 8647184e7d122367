package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/legaldocs/constants"
	"github.com/joseph-ayodele/legaldocs/internal/analysis"
	"github.com/joseph-ayodele/legaldocs/internal/common"
	"github.com/joseph-ayodele/legaldocs/internal/entity"
	"github.com/joseph-ayodele/legaldocs/internal/extract"
	"github.com/joseph-ayodele/legaldocs/internal/repository"
)

const deedText = "SALE DEED. This deed of sale is executed on 12/05/2021 between Mr. Rao and Mrs. Iyer " +
	"for the plot situated at Model Town, for a consideration of Rs. 25,00,000."

func newTestProcessor(t *testing.T, withRepo bool) (*Processor, repository.AnalysisRepository) {
	t.Helper()
	var repo repository.AnalysisRepository
	if withRepo {
		ctx := context.Background()
		db, err := repository.Open(ctx, repository.Config{DSN: repository.InMemoryDSN}, nil)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		t.Cleanup(db.Close)
		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		repo = repository.NewAnalysisRepository(db, nil)
	}
	p := NewProcessor(nil, extract.NewDispatcher(nil, "eng", nil), analysis.New(analysis.DefaultOptions(), nil), repo)
	return p, repo
}

func textFile(name, body string) entity.UploadedFile {
	return entity.UploadedFile{Filename: name, MediaType: constants.MediaTypePlainText, Content: []byte(body)}
}

func TestProcess_StoresAnalysis(t *testing.T) {
	p, repo := newTestProcessor(t, true)
	ctx := context.Background()

	out, err := p.Process(ctx, Request{File: textFile("deed.txt", deedText)}, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Deduplicated {
		t.Error("first run should not be deduplicated")
	}
	if out.Report.DocumentType != string(constants.PropertyDocument) {
		t.Errorf("document type = %q", out.Report.DocumentType)
	}
	if out.Record.Status != string(constants.JobStatusAnalyzed) || out.Record.Method != extract.MethodPlainText {
		t.Errorf("record = %+v", out.Record)
	}
	if out.Record.ContentHash == "" || out.Record.DocumentID == uuid.Nil {
		t.Error("expected hash and document id to be filled")
	}

	stored, err := repo.GetByID(ctx, out.Record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ExtractedText != deedText || stored.Authenticity != out.Report.Authenticity {
		t.Errorf("stored = %+v", stored)
	}
}

func TestProcess_Deduplicates(t *testing.T) {
	p, repo := newTestProcessor(t, true)
	ctx := context.Background()

	first, err := p.Process(ctx, Request{File: textFile("a.txt", deedText)}, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	second, err := p.Process(ctx, Request{File: textFile("a.txt", deedText)}, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !second.Deduplicated || second.Record.ID != first.Record.ID {
		t.Errorf("expected stored record %s, got %+v", first.Record.ID, second.Record)
	}
	if second.Report.DocumentType != first.Report.DocumentType || second.Result.Text != deedText {
		t.Errorf("dedup outcome = %+v", second)
	}

	forced, err := p.Process(ctx, Request{File: textFile("a.txt", deedText), Force: true}, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if forced.Deduplicated || forced.Record.ID == first.Record.ID {
		t.Error("forced run should store a new record")
	}

	all, err := repo.List(ctx, repository.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("stored %d records, want 2", len(all))
	}
}

func TestProcess_DedupRespectsRouteAndFilename(t *testing.T) {
	p, repo := newTestProcessor(t, true)
	ctx := context.Background()

	first, err := p.Process(ctx, Request{File: textFile("note.txt", deedText)}, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	asDoc := entity.UploadedFile{Filename: "note.doc", MediaType: constants.MediaTypeMSWord, Content: []byte(deedText)}
	doc, err := p.Process(ctx, Request{File: asDoc}, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if doc.Deduplicated || doc.Record.ID == first.Record.ID {
		t.Errorf("same bytes as .doc reused %s", first.Record.ID)
	}
	if doc.Result.Method != extract.MethodDOCLegacy || doc.Record.Filename != "note.doc" {
		t.Errorf("doc outcome: method=%s filename=%s", doc.Result.Method, doc.Record.Filename)
	}

	const plain = "nothing to classify here"
	a, err := p.Process(ctx, Request{File: textFile("a.txt", plain)}, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	b, err := p.Process(ctx, Request{File: textFile("b.txt", plain)}, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if b.Deduplicated || b.Report.DocumentType != string(constants.TextDocumentLabel("b.txt")) {
		t.Errorf("b.txt outcome: dedup=%v type=%q", b.Deduplicated, b.Report.DocumentType)
	}
	if a.Report.DocumentType != string(constants.TextDocumentLabel("a.txt")) {
		t.Errorf("a.txt type = %q", a.Report.DocumentType)
	}

	all, err := repo.List(ctx, repository.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("stored %d records, want 4", len(all))
	}
}

func TestProcess_FailedExtraction(t *testing.T) {
	p, repo := newTestProcessor(t, true)
	ctx := context.Background()
	file := entity.UploadedFile{Filename: "scan.png", MediaType: "image/png", Content: []byte{0x89, 'P', 'N', 'G'}}

	out, err := p.Process(ctx, Request{File: file}, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Result.OK() || out.Record.Status != string(constants.JobStatusFailed) {
		t.Fatalf("expected failed extraction, got %+v", out.Record)
	}
	if out.Record.FailureKind != string(extract.UnsupportedType) {
		t.Errorf("failure kind = %q", out.Record.FailureKind)
	}

	again, err := p.Process(ctx, Request{File: file}, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !again.Deduplicated || again.Result.OK() || again.Result.Failure.Message != out.Result.Failure.Message {
		t.Errorf("dedup of failure = %+v", again.Result)
	}
	_ = repo
}

func TestProcess_LogsCarryContextIDs(t *testing.T) {
	p, _ := newTestProcessor(t, false)
	var buf bytes.Buffer
	p.Logger = slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := common.WithRequestID(context.Background(), "req-42")
	out, err := p.Process(ctx, Request{File: textFile("deed.txt", deedText)}, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	var found bool
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var line map[string]any
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
		if line["msg"] != "processor.ok" {
			continue
		}
		found = true
		if line["request_id"] != "req-42" || line["document_id"] != out.Record.DocumentID.String() {
			t.Errorf("log line = %v", line)
		}
	}
	if !found {
		t.Errorf("no processor.ok line in %q", buf.String())
	}
}

func TestProcess_WithoutRepository(t *testing.T) {
	p, _ := newTestProcessor(t, false)
	out, err := p.Process(context.Background(), Request{File: textFile("x.txt", deedText)}, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Record == nil || out.Record.ID == uuid.Nil {
		t.Fatal("expected an unsaved record with an id")
	}
}

type failingRepo struct{ repository.AnalysisRepository }

func (failingRepo) GetLatestBySource(context.Context, repository.SourceKey) (*entity.AnalysisRecord, error) {
	return nil, errors.New("db down")
}

func TestProcessBatch_KeepsOrderAndIsolatesFailures(t *testing.T) {
	p, _ := newTestProcessor(t, true)
	reqs := []Request{
		{File: textFile("1.txt", "Bank statement for account 1")},
		{File: textFile("2.txt", "Passport number Z123")},
		{File: textFile("3.txt", "")},
		{File: entity.UploadedFile{Filename: "4.png", MediaType: "image/png", Content: []byte("png")}},
		{File: textFile("5.txt", "Income tax return")},
	}

	items := p.ProcessBatch(context.Background(), reqs, 2)
	if len(items) != len(reqs) {
		t.Fatalf("got %d items", len(items))
	}
	want := []string{
		string(constants.BankStatement),
		string(constants.Passport),
		"Unknown Document",
		"",
		string(constants.IncomeTaxDocument),
	}
	for i, it := range items {
		if it.Err != nil {
			t.Fatalf("[%d] err: %v", i, it.Err)
		}
		if it.Request.File.Filename != reqs[i].File.Filename {
			t.Errorf("[%d] order broken: %s", i, it.Request.File.Filename)
		}
		if want[i] != "" && it.Outcome.Report.DocumentType != want[i] {
			t.Errorf("[%d] document type = %q, want %q", i, it.Outcome.Report.DocumentType, want[i])
		}
	}

	p.Repo = failingRepo{}
	items = p.ProcessBatch(context.Background(), reqs[:2], 4)
	for i, it := range items {
		if it.Err == nil {
			t.Errorf("[%d] expected lookup error", i)
		}
	}
}
