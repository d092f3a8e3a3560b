package receipt

import (
	"errors"

	"github.com/zombor/receipt-scan/internal/extract"
)

// ErrNoInput is returned when a scan is requested without any image data
var ErrNoInput = errors.New("no receipt image provided")

// ScanResult is the advisory outcome of scanning one receipt
type ScanResult struct {
	Expense extract.Expense
	// RawText is the unmodified recognition output, kept for auditing
	RawText string
}

// ExpenseData is the JSON form of an extracted expense
type ExpenseData struct {
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	Date        string   `json:"date"` // YYYY-MM-DD
	Category    string   `json:"category"`
	Note        string   `json:"note"`
}

// ScanResponse is the body returned for a scan request
type ScanResponse struct {
	Success bool         `json:"success"`
	Data    *ExpenseData `json:"data,omitempty"`
	Raw     *string      `json:"raw,omitempty"`
	Message string       `json:"message,omitempty"`
}

// NewScanResponse converts a scan result into its JSON form
func NewScanResponse(result *ScanResult) ScanResponse {
	e := result.Expense
	data := &ExpenseData{
		Description: e.Description,
		Date:        e.Date,
		Category:    string(e.Category),
		Note:        e.Note,
	}
	if e.Amount != nil {
		amount := e.Amount.InexactFloat64()
		data.Amount = &amount
	}

	raw := result.RawText
	return ScanResponse{
		Success: true,
		Data:    data,
		Raw:     &raw,
	}
}
