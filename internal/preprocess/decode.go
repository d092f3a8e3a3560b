package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// DecodeError is returned when the input bytes cannot be read as an image
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("decoding %s image: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("decoding image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var errEmptyImage = errors.New("no image data")

// decode reads PDF, HEIC/HEIF, or any format registered with the image package.
// EXIF orientation is applied for formats that carry it.
func decode(data []byte, contentType string) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errEmptyImage}
	}

	mimeType := strings.ToLower(strings.TrimSpace(contentType))

	switch {
	case isPDF(data, mimeType):
		img, err := pdfFirstPage(data)
		if err != nil {
			return nil, &DecodeError{Format: "pdf", Err: err}
		}
		return img, nil
	case isHEICFormat(data) || isHEICMimeType(mimeType):
		// EXIF orientation is not read for HEIC; the decoder output is used as is.
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, &DecodeError{Format: "heic", Err: err}
		}
		return img, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}

// pdfFirstPage renders the first page of a PDF; receipts are single page
func pdfFirstPage(data []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

func isPDF(data []byte, mimeType string) bool {
	return mimeType == "application/pdf" || bytes.HasPrefix(data, []byte("%PDF-"))
}

// isHEICFormat checks for an ftyp box with a HEIC-family brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
