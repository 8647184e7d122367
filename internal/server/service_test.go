package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/joseph-ayodele/legaldocs/internal/analysis"
	"github.com/joseph-ayodele/legaldocs/internal/async"
	"github.com/joseph-ayodele/legaldocs/internal/common"
	"github.com/joseph-ayodele/legaldocs/internal/export"
	"github.com/joseph-ayodele/legaldocs/internal/extract"
	"github.com/joseph-ayodele/legaldocs/internal/ingest"
	"github.com/joseph-ayodele/legaldocs/internal/ocr"
	"github.com/joseph-ayodele/legaldocs/internal/pipeline"
	"github.com/joseph-ayodele/legaldocs/internal/repository"
)

type fakeEngine struct{}

func (fakeEngine) Recognize(_ context.Context, _ []byte, _, _ string, onProgress func(ocr.RecognitionProgressEvent)) (ocr.Recognition, error) {
	onProgress(ocr.RecognitionProgressEvent{Status: ocr.StatusLoadingCore, Progress: 0})
	for _, p := range []float64{0, 0.25, 0.5, 1} {
		onProgress(ocr.RecognitionProgressEvent{Status: ocr.StatusRecognizingText, Progress: p})
	}
	return ocr.Recognition{Text: "Republic of India Passport No. Z1234567", Confidence: 0.9}, nil
}

type harness struct {
	client *IntakeServiceClient
	repo   repository.AnalysisRepository
}

func newHarness(t *testing.T, maxBytes int64) *harness {
	t.Helper()
	ctx := context.Background()

	db, err := repository.Open(ctx, repository.Config{DSN: repository.InMemoryDSN}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := repository.NewAnalysisRepository(db, nil)

	proc := pipeline.NewProcessor(nil, extract.NewDispatcher(fakeEngine{}, "eng", nil), analysis.New(analysis.DefaultOptions(), nil), repo)
	queue := async.NewProcessorQueue(proc, nil, async.WithWorkers(2))
	t.Cleanup(func() { queue.Shutdown(context.Background()) })

	srv := NewIntakeServer(Deps{
		Processor:   proc,
		Repo:        repo,
		Exporter:    export.NewService(repo, nil),
		Ingestor:    ingest.NewFSIngestor(0, nil),
		Queue:       queue,
		MaxFileSize: maxBytes,
	}, nil)

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterIntakeServiceServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &harness{client: NewIntakeServiceClient(conn), repo: repo}
}

func reportOf(t *testing.T, resp *AnalyzeResponse) analysis.Report {
	t.Helper()
	var r analysis.Report
	if err := json.Unmarshal(resp.Report, &r); err != nil {
		t.Fatalf("report json: %v", err)
	}
	return r
}

func TestAnalyze_PlainText(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	resp, err := h.client.Analyze(ctx, &AnalyzeRequest{
		Filename:  "statement.txt",
		MediaType: "text/plain",
		Content:   []byte("Bank statement for account 0042 dated 01/02/2024"),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if resp.Method != extract.MethodPlainText || resp.FailureKind != "" {
		t.Errorf("resp = %+v", resp)
	}
	if got := reportOf(t, resp).DocumentType; got != "Bank Statement" {
		t.Errorf("document type = %q", got)
	}

	again, err := h.client.Analyze(ctx, &AnalyzeRequest{
		Filename: "statement.txt", MediaType: "text/plain",
		Content: []byte("Bank statement for account 0042 dated 01/02/2024"),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !again.Deduplicated || again.RecordID != resp.RecordID {
		t.Errorf("expected dedup of %s, got %+v", resp.RecordID, again)
	}

	renamed, err := h.client.Analyze(ctx, &AnalyzeRequest{
		Filename: "copy.txt", MediaType: "text/plain",
		Content: []byte("Bank statement for account 0042 dated 01/02/2024"),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if renamed.Deduplicated || renamed.Filename != "copy.txt" {
		t.Errorf("renamed upload reused a record: %+v", renamed)
	}

	got, err := h.client.GetAnalysis(ctx, &GetAnalysisRequest{ID: resp.RecordID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Filename != "statement.txt" {
		t.Errorf("get = %+v", got)
	}
}

func TestAnalyze_InvalidRequests(t *testing.T) {
	h := newHarness(t, 8)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *AnalyzeRequest
		code codes.Code
	}{
		{"missing filename", &AnalyzeRequest{MediaType: "text/plain", Content: []byte("x")}, codes.InvalidArgument},
		{"bad media type", &AnalyzeRequest{Filename: "a.txt", MediaType: "not a type", Content: []byte("x")}, codes.InvalidArgument},
		{"too large", &AnalyzeRequest{Filename: "a.txt", MediaType: "text/plain", Content: []byte("0123456789")}, codes.InvalidArgument},
		{"bad document id", &AnalyzeRequest{DocumentID: "nope", Filename: "a.txt", Content: []byte("x")}, codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.client.Analyze(ctx, tt.req)
			if status.Code(err) != tt.code {
				t.Errorf("code = %v, want %v (%v)", status.Code(err), tt.code, err)
			}
		})
	}

	if _, err := h.client.GetAnalysis(ctx, &GetAnalysisRequest{ID: "00000000-0000-0000-0000-000000000001"}); status.Code(err) != codes.NotFound {
		t.Errorf("get missing = %v", err)
	}
}

func TestAnalyzeStream_ImageProgress(t *testing.T) {
	h := newHarness(t, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := h.client.AnalyzeStream(ctx, &AnalyzeRequest{
		DocumentID: "6f1c2c2e-4a4b-4f7e-9d1a-0c9b8f0e5a11",
		Filename:   "passport.png",
		MediaType:  "image/png",
		Content:    []byte{0x89, 'P', 'N', 'G'},
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	var percents []int
	var result *AnalyzeResponse
	for {
		ev, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		if result != nil {
			t.Fatal("event after result")
		}
		switch {
		case ev.Progress != nil:
			if ev.Progress.DocumentID != "6f1c2c2e-4a4b-4f7e-9d1a-0c9b8f0e5a11" {
				t.Errorf("progress for %s", ev.Progress.DocumentID)
			}
			percents = append(percents, ev.Progress.Percent)
		case ev.Result != nil:
			result = ev.Result
		}
	}

	if result == nil {
		t.Fatal("no result event")
	}
	if result.Method != extract.MethodImageOCR || reportOf(t, result).DocumentType != "Passport" {
		t.Errorf("result = %+v", result)
	}
	if len(percents) == 0 || percents[len(percents)-1] != 100 {
		t.Fatalf("percents = %v", percents)
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Errorf("progress went backwards: %v", percents)
		}
	}
}

func TestListAndExport(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	for _, body := range []string{"Income tax return 2023", "Passport renewal form", "Sale deed of land"} {
		if _, err := h.client.Analyze(ctx, &AnalyzeRequest{Filename: "f.txt", MediaType: "text/plain", Content: []byte(body)}); err != nil {
			t.Fatalf("analyze: %v", err)
		}
	}

	all, err := h.client.ListAnalyses(ctx, &ListAnalysesRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all.Analyses) != 3 {
		t.Errorf("listed %d, want 3", len(all.Analyses))
	}

	tax, err := h.client.ListAnalyses(ctx, &ListAnalysesRequest{DocumentType: "itr"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tax.Analyses) != 1 {
		t.Errorf("listed %d tax documents, want 1", len(tax.Analyses))
	}

	today := time.Now().UTC().Format("2006-01-02")
	exp, err := h.client.ExportAnalyses(ctx, &ListAnalysesRequest{FromDate: today})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(exp.XLSX))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Analyses")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("xlsx rows = %d, want 4", len(rows))
	}

	bad := []*ListAnalysesRequest{
		{FromDate: "05/01/2024"},
		{FromDate: "2024-05-02", ToDate: "2024-05-01"},
		{DocumentType: "Recipe"},
		{Limit: -1},
	}
	for _, req := range bad {
		if _, err := h.client.ListAnalyses(ctx, req); status.Code(err) != codes.InvalidArgument {
			t.Errorf("ListAnalyses(%+v) = %v", req, err)
		}
	}
}

func TestIngestFileAndDirectory(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	root := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(root, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	single := write("fir.txt", "FIR lodged at the police station")
	if err := os.Mkdir(filepath.Join(root, "copy"), 0o755); err != nil {
		t.Fatal(err)
	}
	write(filepath.Join("copy", "fir.txt"), "FIR lodged at the police station")
	write("other.txt", "Marriage certificate issued")
	write("skip.exe", "MZ")

	resp, err := h.client.IngestFile(ctx, &IngestFileRequest{Path: single})
	if err != nil {
		t.Fatalf("ingest file: %v", err)
	}
	if got := reportOf(t, resp).DocumentType; got != "FIR/Police Report" {
		t.Errorf("document type = %q", got)
	}

	if _, err := h.client.IngestFile(ctx, &IngestFileRequest{Path: filepath.Join(root, "skip.exe")}); status.Code(err) != codes.InvalidArgument {
		t.Errorf("ingest exe = %v", err)
	}
	if _, err := h.client.IngestFile(ctx, &IngestFileRequest{}); status.Code(err) != codes.InvalidArgument {
		t.Errorf("ingest empty = %v", err)
	}

	dir, err := h.client.IngestDirectory(ctx, &IngestDirectoryRequest{RootPath: root, SkipHidden: true})
	if err != nil {
		t.Fatalf("ingest dir: %v", err)
	}
	if dir.Stats.Matched != 3 || dir.Stats.Deduplicated != 1 {
		t.Errorf("stats = %+v", dir.Stats)
	}
	queued := 0
	for _, r := range dir.Results {
		if r.Queued {
			queued++
		}
	}
	if queued != 2 {
		t.Errorf("queued %d, want 2", queued)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		recs, err := h.repo.List(ctx, repository.ListFilter{})
		if err != nil {
			t.Fatal(err)
		}
		// fir.txt was stored by IngestFile; the queued copy deduplicates onto it
		if len(recs) >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("queued files not processed, have %d records", len(recs))
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWithRequestID(t *testing.T) {
	in := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, " req-7 "))
	ctx, id := withRequestID(in)
	if id != "req-7" || common.RequestIDFromContext(ctx) != "req-7" {
		t.Errorf("id = %q, ctx id = %q", id, common.RequestIDFromContext(ctx))
	}

	ctx, id = withRequestID(context.Background())
	if id == "" || common.RequestIDFromContext(ctx) != id {
		t.Errorf("expected a generated id, got %q", id)
	}
}
