package extract

import "github.com/shopspring/decimal"

// Category is a spending category inferred from receipt text
type Category string

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategoryShopping       Category = "Shopping"
	CategoryBills          Category = "Bills"
	CategoryHealthcare     Category = "Healthcare"
	CategoryOther          Category = "Other"
)

// All returns every category, in rule order, with Other last
func All() []Category {
	return []Category{
		CategoryFood,
		CategoryTransportation,
		CategoryEntertainment,
		CategoryShopping,
		CategoryBills,
		CategoryHealthcare,
		CategoryOther,
	}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range All() {
		if c == known {
			return true
		}
	}
	return false
}

// Expense is a best-guess expense derived from OCR text.
// Amount is nil when no number was found on the receipt.
type Expense struct {
	Description string
	Amount      *decimal.Decimal
	Date        string // YYYY-MM-DD
	Category    Category
	Note        string
}
