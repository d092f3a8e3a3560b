package extract

import (
	"fmt"
	"regexp"
	"time"
)

const dateLayout = "2006-01-02"

var (
	isoDatePattern = regexp.MustCompile(`(\d{4})[-/](\d{2})[-/](\d{2})`)
	dmyDatePattern = regexp.MustCompile(`(\d{2})[./-](\d{2})[./-](\d{4}|\d{2})`)
)

// parseDate looks for a YYYY-MM-DD style date first, then DD.MM.YY(YY).
// Two-digit years always land in the 2000s. Matches that are not real calendar
// dates are skipped. Returns false when nothing usable is found.
func parseDate(text string) (string, bool) {
	for _, m := range isoDatePattern.FindAllStringSubmatch(text, -1) {
		if date, ok := calendarDate(m[1], m[2], m[3]); ok {
			return date, true
		}
	}

	for _, m := range dmyDatePattern.FindAllStringSubmatch(text, -1) {
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		if date, ok := calendarDate(year, m[2], m[1]); ok {
			return date, true
		}
	}

	return "", false
}

func calendarDate(year, month, day string) (string, bool) {
	date := fmt.Sprintf("%s-%s-%s", year, month, day)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", false
	}
	return date, true
}
