package common

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEGALDOCS_CONFIG", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.GRPCAddr != ":8080" {
		t.Errorf("GRPCAddr = %q", cfg.Server.GRPCAddr)
	}
	if cfg.OCR.TesseractLang != "eng" {
		t.Errorf("TesseractLang = %q", cfg.OCR.TesseractLang)
	}
	if !cfg.Analysis.AnalyzeFailureText {
		t.Error("AnalyzeFailureText should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yml := []byte(`
server:
  grpc_addr: ":9999"
queue:
  workers: 2
  timeout: 45s
ocr:
  tesseract_lang: hin
`)
	path := filepath.Join(dir, "legaldocs.yaml")
	if err := os.WriteFile(path, yml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUEUE_WORKERS", "7")
	t.Setenv("ANALYZE_FAILURE_TEXT", "false")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.GRPCAddr != ":9999" {
		t.Errorf("GRPCAddr = %q, want :9999", cfg.Server.GRPCAddr)
	}
	if cfg.Queue.Timeout != 45*time.Second {
		t.Errorf("Queue.Timeout = %v", cfg.Queue.Timeout)
	}
	if cfg.Queue.Workers != 7 {
		t.Errorf("env should win over file, Workers = %d", cfg.Queue.Workers)
	}
	if cfg.OCR.TesseractLang != "hin" {
		t.Errorf("TesseractLang = %q", cfg.OCR.TesseractLang)
	}
	if cfg.Analysis.AnalyzeFailureText {
		t.Error("AnalyzeFailureText should be disabled by env")
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("LEGALDOCS_CONFIG", "")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("WATCH_DIR=/srv/inbox\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("WATCH_DIR") })

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Ingest.WatchDir != "/srv/inbox" {
		t.Errorf("WatchDir = %q", cfg.Ingest.WatchDir)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != "CONFIG_ERROR" {
		t.Fatalf("want CONFIG_ERROR, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(*Config) {}, ok: true},
		{name: "no dsn", mutate: func(c *Config) { c.Database.DSN = "" }},
		{name: "no addr", mutate: func(c *Config) { c.Server.GRPCAddr = "" }},
		{name: "no workers", mutate: func(c *Config) { c.Queue.Workers = 0 }},
		{name: "negative max size", mutate: func(c *Config) { c.Ingest.MaxFileSize = -1 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("want ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestLogConfig_SlogLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range testCases {
		if got := (LogConfig{Level: in}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
