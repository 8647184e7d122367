package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/joseph-ayodele/legaldocs/internal/common"
)

var recognitionBucket = []byte("recognitions")

type cachedRecognition struct {
	Text       string   `json:"text"`
	Confidence float32  `json:"confidence"`
	Warnings   []string `json:"warnings,omitempty"`
}

// CachedEngine remembers successful recognitions keyed by image hash and language.
type CachedEngine struct {
	next   Engine
	db     *bolt.DB
	logger *slog.Logger
}

// OpenCache opens (or creates) the bolt file at path in front of next.
func OpenCache(path string, next Engine, logger *slog.Logger) (*CachedEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open ocr cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recognitionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache bucket: %w", err)
	}
	logger.Info("ocr cache opened", "path", path)
	return &CachedEngine{next: next, db: db, logger: logger}, nil
}

func cacheKey(image []byte, lang string) []byte {
	h := sha256.New()
	h.Write([]byte(lang))
	h.Write([]byte{0})
	h.Write(image)
	return []byte(hex.EncodeToString(h.Sum(nil)))
}

func (c *CachedEngine) Recognize(ctx context.Context, image []byte, mediaType, lang string, onProgress func(RecognitionProgressEvent)) (Recognition, error) {
	start := time.Now()
	if onProgress == nil {
		onProgress = func(RecognitionProgressEvent) {}
	}
	key := cacheKey(image, lang)

	if hit, ok := c.get(key); ok {
		onProgress(RecognitionProgressEvent{Status: StatusRecognizingText, Progress: 0})
		onProgress(RecognitionProgressEvent{Status: StatusRecognizingText, Progress: 1})
		c.logger.Debug("ocr cache hit", "media_type", mediaType, "lang", lang)
		return Recognition{
			Text:       hit.Text,
			Confidence: hit.Confidence,
			Warnings:   hit.Warnings,
			Duration:   time.Since(start),
		}, nil
	}

	rec, err := c.next.Recognize(ctx, image, mediaType, lang, onProgress)
	if err != nil {
		return rec, err
	}
	c.put(key, cachedRecognition{Text: rec.Text, Confidence: rec.Confidence, Warnings: rec.Warnings})
	return rec, nil
}

func (c *CachedEngine) get(key []byte) (cachedRecognition, bool) {
	var out cachedRecognition
	var found bool
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(recognitionBucket).Get(key)
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &out)
	})
	if err != nil {
		c.logger.Warn("ocr cache read failed", "error", err)
		return cachedRecognition{}, false
	}
	return out, found
}

func (c *CachedEngine) put(key []byte, rec cachedRecognition) {
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recognitionBucket).Put(key, b)
	})
	if err != nil {
		c.logger.Warn("ocr cache write failed", "error", err)
	}
}

// Len returns the number of cached recognitions.
func (c *CachedEngine) Len() int {
	n := 0
	_ = c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(recognitionBucket).Stats().KeyN
		return nil
	})
	return n
}

func (c *CachedEngine) Close() error {
	return c.db.Close()
}

// NewEngine builds the tesseract engine, fronted by the bolt cache when
// CachePath is set. The returned close func is never nil.
func NewEngine(cfg common.OCRConfig, logger *slog.Logger, opts ...Option) (Engine, func() error, error) {
	tess := NewTesseract(ConfigFrom(cfg), logger, opts...)
	if cfg.CachePath == "" {
		return tess, func() error { return nil }, nil
	}
	cached, err := OpenCache(cfg.CachePath, tess, logger)
	if err != nil {
		return nil, nil, err
	}
	return cached, cached.Close, nil
}
