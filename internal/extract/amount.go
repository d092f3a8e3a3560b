package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// tailLines is how many numeric lines from the bottom are considered when no
// keyword line carries a number
const tailLines = 5

var (
	numberPattern      = regexp.MustCompile(`\d[\d,]*\.?\d*`)
	amountKeywordRegex = regexp.MustCompile(`(?i)(total|amount|balance|grand)`)
)

// extractNumbers returns every numeric token on the line, grouping commas removed.
// Tokens that do not parse are dropped.
func extractNumbers(line string) []decimal.Decimal {
	matches := numberPattern.FindAllString(line, -1)
	numbers := make([]decimal.Decimal, 0, len(matches))
	for _, m := range matches {
		m = strings.ReplaceAll(m, ",", "")
		// "12." is a valid number on a receipt
		m = strings.TrimSuffix(m, ".")
		n, err := decimal.NewFromString(m)
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	return numbers
}

// findAmount picks the largest number on any total/amount/balance/grand line.
// If none of those lines has a number it falls back to the largest number on the
// last few lines that contain numbers. Returns nil when the text has no numbers.
func findAmount(lines []string) *decimal.Decimal {
	var best *decimal.Decimal

	for _, line := range lines {
		if !amountKeywordRegex.MatchString(line) {
			continue
		}
		best = maxOf(best, extractNumbers(line))
	}
	if best != nil {
		return best
	}

	var numeric [][]decimal.Decimal
	for _, line := range lines {
		if nums := extractNumbers(line); len(nums) > 0 {
			numeric = append(numeric, nums)
		}
	}
	if len(numeric) > tailLines {
		numeric = numeric[len(numeric)-tailLines:]
	}
	for _, nums := range numeric {
		best = maxOf(best, nums)
	}
	return best
}

func maxOf(current *decimal.Decimal, nums []decimal.Decimal) *decimal.Decimal {
	for i := range nums {
		if current == nil || nums[i].GreaterThan(*current) {
			n := nums[i]
			current = &n
		}
	}
	return current
}
