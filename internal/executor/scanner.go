package executor

import (
	"context"
	"crypto/sha256"
	"errors"
	"os"
	"time"

	"github.com/h2non/filetype"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/harrison/typescan/internal/models"
	"github.com/harrison/typescan/internal/pattern"
)

// kindHeadSize is how many leading bytes the kind detector inspects.
const kindHeadSize = 261

// Content kinds reported in ClassificationResult.Kind.
const (
	KindImage       = "image"
	KindVideo       = "video"
	KindAudio       = "audio"
	KindArchive     = "archive"
	KindDocument    = "document"
	KindFont        = "font"
	KindApplication = "application"
)

// cachedMatch is the outcome of evaluating one distinct content.
type cachedMatch struct {
	rule    pattern.Rule
	matched bool
}

// FileScanner classifies one file at a time against a shared catalog.
// It is safe for concurrent use: the catalog is read-only and the digest
// cache synchronizes internally.
type FileScanner struct {
	catalog    *pattern.Catalog
	cache      *lru.Cache[[sha256.Size]byte, cachedMatch]
	detectKind bool
}

// ScannerOption configures a FileScanner.
type ScannerOption func(*FileScanner)

// WithDigestCache remembers the outcome for up to size distinct contents,
// keyed by SHA256, so duplicate files are evaluated once. size <= 0
// disables the cache.
func WithDigestCache(size int) ScannerOption {
	return func(s *FileScanner) {
		if size <= 0 {
			s.cache = nil
			return
		}
		cache, err := lru.New[[sha256.Size]byte, cachedMatch](size)
		if err == nil {
			s.cache = cache
		}
	}
}

// WithKindDetection records a coarse content kind (image, archive, ...)
// alongside the label. The kind never changes the label.
func WithKindDetection(enabled bool) ScannerOption {
	return func(s *FileScanner) {
		s.detectKind = enabled
	}
}

// NewFileScanner creates a FileScanner for catalog.
func NewFileScanner(catalog *pattern.Catalog, opts ...ScannerOption) *FileScanner {
	s := &FileScanner{catalog: catalog}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the scanner evaluates against.
func (s *FileScanner) Catalog() *pattern.Catalog {
	return s.catalog
}

// Classify reads the whole file and labels it with the catalog.
// A file that cannot be read yields a failed result carrying a *ScanError,
// which is also returned; the file is never modified.
func (s *FileScanner) Classify(ctx context.Context, file models.FileEntry) (models.ClassificationResult, error) {
	start := time.Now()
	result := models.ClassificationResult{File: file}

	if err := ctx.Err(); err != nil {
		return failResult(result, contextError(file, err), start)
	}

	content, err := os.ReadFile(file.Path)
	if err != nil {
		return failResult(result, NewScanError(file, "read", err), start)
	}

	match := s.evaluate(content)
	if match.matched {
		result.Label = match.rule.Label
		result.Status = models.StatusMatched
		result.RulePriority = match.rule.Priority
		result.RuleLine = match.rule.Line
	} else {
		result.Label = s.catalog.Fallback()
		result.Status = models.StatusUnknown
	}

	if s.detectKind {
		result.Kind = detectKind(content)
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (s *FileScanner) evaluate(content []byte) cachedMatch {
	if s.cache == nil {
		rule, ok := s.catalog.Match(content)
		return cachedMatch{rule: rule, matched: ok}
	}

	digest := sha256.Sum256(content)
	if m, ok := s.cache.Get(digest); ok {
		return m
	}

	rule, ok := s.catalog.Match(content)
	m := cachedMatch{rule: rule, matched: ok}
	s.cache.Add(digest, m)
	return m
}

// detectKind maps the file head to a coarse kind, or "" when unrecognised.
func detectKind(content []byte) string {
	head := content
	if len(head) > kindHeadSize {
		head = head[:kindHeadSize]
	}

	switch {
	case filetype.IsImage(head):
		return KindImage
	case filetype.IsVideo(head):
		return KindVideo
	case filetype.IsAudio(head):
		return KindAudio
	case filetype.IsArchive(head):
		return KindArchive
	case filetype.IsDocument(head):
		return KindDocument
	case filetype.IsFont(head):
		return KindFont
	case filetype.IsApplication(head):
		return KindApplication
	default:
		return ""
	}
}

// contextError converts a context error into the error recorded for file.
func contextError(file models.FileEntry, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(file, 0)
	}
	return NewScanError(file, "classify", err)
}

func failResult(result models.ClassificationResult, err error, start time.Time) (models.ClassificationResult, error) {
	result.Status = models.StatusFailed
	result.Err = err
	result.Duration = time.Since(start)
	return result, err
}
