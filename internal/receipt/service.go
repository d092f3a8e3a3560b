package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/zombor/receipt-scan/internal/extract"
	"github.com/zombor/receipt-scan/internal/recognition"
)

// IDGenerator generates unique IDs for staged uploads
type IDGenerator interface {
	Generate() string
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// Preprocessor prepares an uploaded image for recognition
type Preprocessor interface {
	Preprocess(data []byte, contentType string) ([]byte, error)
}

// Extractor derives an expense from recognised text
type Extractor interface {
	Extract(text string) extract.Expense
}

// Service runs the scan pipeline: stage, preprocess, recognize, extract
type Service struct {
	storage      Storage
	preprocessor Preprocessor
	recognizer   recognition.Recognizer
	extractor    Extractor
	idGenerator  IDGenerator
}

// NewService creates a new Service with the default ID generator
func NewService(storage Storage, preprocessor Preprocessor, recognizer recognition.Recognizer, extractor Extractor) *Service {
	return NewServiceWithDeps(storage, preprocessor, recognizer, extractor, &defaultIDGenerator{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(storage Storage, preprocessor Preprocessor, recognizer recognition.Recognizer, extractor Extractor, idGen IDGenerator) *Service {
	return &Service{
		storage:      storage,
		preprocessor: preprocessor,
		recognizer:   recognizer,
		extractor:    extractor,
		idGenerator:  idGen,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	// Phones generate long names
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}

	return base + unsafeFilenameChars.ReplaceAllString(ext, "")
}

// ScanReceipt turns an uploaded receipt image into a suggested expense. The
// upload is staged in storage for the duration of the scan and removed on
// every exit path. Failures are never replaced with a default expense.
func (s *Service) ScanReceipt(ctx context.Context, filename string, data []byte, contentType string) (*ScanResult, error) {
	if len(data) == 0 {
		return nil, ErrNoInput
	}

	stagedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", s.idGenerator.Generate(), sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("staging upload: %w", err)
	}
	defer func() {
		if err := s.storage.Delete(stagedPath); err != nil {
			slog.Warn("Failed to remove staged upload", "path", stagedPath, "error", err)
		}
	}()

	staged, err := s.storage.Get(stagedPath)
	if err != nil {
		return nil, fmt.Errorf("reading staged upload: %w", err)
	}

	img, err := s.preprocessor.Preprocess(staged, contentType)
	if err != nil {
		slog.Error("Failed to preprocess receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(staged),
			"error", err,
		)
		return nil, fmt.Errorf("preprocessing receipt: %w", err)
	}

	text, err := s.recognizer.Recognize(ctx, img)
	if err != nil {
		slog.Error("Failed to recognize receipt text", "filename", filename, "error", err)
		var recErr *recognition.Error
		if !errors.As(err, &recErr) {
			err = &recognition.Error{Engine: "unknown", Err: err}
		}
		return nil, fmt.Errorf("recognizing receipt: %w", err)
	}

	expense := s.extractor.Extract(text)
	slog.Info("Scanned receipt",
		"filename", filename,
		"category", expense.Category,
		"has_amount", expense.Amount != nil,
		"text_length", len(text),
	)

	return &ScanResult{
		Expense: expense,
		RawText: text,
	}, nil
}
