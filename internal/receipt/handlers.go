package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/receipt-scan/internal/preprocess"
	"github.com/zombor/receipt-scan/internal/recognition"
)

const (
	msgNoFile       = "No file uploaded"
	msgTooLarge     = "File is too large. Please compress or resize your image."
	msgUnreadable   = "Could not read image"
	msgRecognition  = "Failed to read receipt"
	msgInternal     = "Internal server error"
	multipartMemory = 10 << 20
)

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeFailure(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, ScanResponse{Success: false, Message: message})
}

// handleHealth reports that the server is up
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// scanFailure maps a pipeline error to a status code and user-facing message
func scanFailure(err error) (int, string) {
	var (
		decodeErr *preprocess.DecodeError
		recErr    *recognition.Error
	)
	switch {
	case errors.Is(err, ErrNoInput):
		return http.StatusBadRequest, msgNoFile
	case errors.As(err, &decodeErr):
		return http.StatusUnprocessableEntity, msgUnreadable
	case errors.As(err, &recErr):
		return http.StatusBadGateway, msgRecognition
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// contentTypeFor prefers the part header and falls back to the file extension
func contentTypeFor(header string, filename string) string {
	contentType := strings.ToLower(strings.TrimSpace(header))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleScanReceipt reads a receipt upload and returns a suggested expense
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		slog.Warn("Error parsing multipart form", "error", err)
		writeFailure(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, header, err := r.FormFile("file")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeFailure(w, http.StatusInternalServerError, msgInternal)
		return
	}

	release, err := s.acquireScanSlot(r.Context())
	if err != nil {
		// Only a cancelled request ends the wait; nobody is left to answer
		slog.Debug("Client left while waiting for a scan slot", "filename", header.Filename, "error", err)
		return
	}
	defer release()

	ctx := r.Context()
	if s.opts.RecognitionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RecognitionTimeout)
		defer cancel()
	}

	contentType := contentTypeFor(header.Header.Get("Content-Type"), header.Filename)
	result, err := s.service.ScanReceipt(ctx, header.Filename, data, contentType)
	if err != nil {
		code, message := scanFailure(err)
		slog.Error("Error scanning receipt", "filename", header.Filename, "status", code, "error", err)
		writeFailure(w, code, message)
		return
	}

	writeJSON(w, http.StatusOK, NewScanResponse(result))
}
