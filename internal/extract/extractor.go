package extract

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultDescription is used when the text has no non-blank line
	DefaultDescription = "Receipt"

	// NoteLength is the number of characters of raw text kept as the note
	NoteLength = 240
)

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Extractor turns raw OCR text into an Expense. It holds no state besides its
// time source and is safe for concurrent use.
type Extractor struct {
	timeSource TimeSource
}

// New creates an Extractor that falls back to the wall clock for undated receipts
func New() *Extractor {
	return &Extractor{timeSource: &defaultTimeSource{}}
}

// NewWithTimeSource creates an Extractor with a custom time source for testing
func NewWithTimeSource(timeSource TimeSource) *Extractor {
	return &Extractor{timeSource: timeSource}
}

// Extract derives an Expense from OCR text. It never fails: every field has a
// fallback, and only Amount may be nil.
func (e *Extractor) Extract(text string) Expense {
	lines := nonBlankLines(text)

	description := DefaultDescription
	if len(lines) > 0 {
		description = lines[0]
	}

	date, ok := parseDate(text)
	if !ok {
		date = e.timeSource.Now().Format(dateLayout)
	}

	return Expense{
		Description: description,
		Amount:      findAmount(lines),
		Date:        date,
		Category:    inferCategory(text),
		Note:        truncate(text, NoteLength),
	}
}

func nonBlankLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// truncate keeps the first n characters of s. Invalid UTF-8 bytes count as one
// character each and are returned untouched.
func truncate(s string, n int) string {
	offset := 0
	for i := 0; i < n && offset < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[offset:])
		offset += size
	}
	return s[:offset]
}
