// Package recognition converts preprocessed receipt images into text.
package recognition

import (
	"context"
	"fmt"
)

// CharWhitelist restricts recognised characters to what appears on receipts
const CharWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz.,-/₹: "

// Recognizer defines the interface for text recognition engines
type Recognizer interface {
	// Recognize returns the text found in a PNG image
	Recognize(ctx context.Context, image []byte) (string, error)
	// Close releases engine resources
	Close() error
}

// Error reports a failure of the recognition engine
type Error struct {
	Engine string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s recognition failed: %v", e.Engine, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(engine string, format string, args ...any) *Error {
	return &Error{Engine: engine, Err: fmt.Errorf(format, args...)}
}
