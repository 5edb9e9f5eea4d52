package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalDateLayout is the wire format every record date is normalized to.
const CanonicalDateLayout = "02-01-2006"

// monthNumber maps Dutch month names (and the abbreviations the source page
// occasionally uses) to their two-digit number.
var monthNumber = map[string]string{
	"jan":       "01",
	"feb":       "02",
	"mrt":       "03",
	"apr":       "04",
	"jun":       "06",
	"jul":       "07",
	"aug":       "08",
	"sep":       "09",
	"okt":       "10",
	"nov":       "11",
	"dec":       "12",
	"januari":   "01",
	"februari":  "02",
	"maart":     "03",
	"april":     "04",
	"mei":       "05",
	"juni":      "06",
	"juli":      "07",
	"augustus":  "08",
	"september": "09",
	"oktober":   "10",
	"november":  "11",
	"december":  "12",
}

var (
	datePhrasePattern = regexp.MustCompile(`(?i)^(\d{1,2})\s+(januari|februari|maart|april|mei|juni|juli|augustus|september|oktober|november|december)\s+(\d{4})\b`)
	dateFieldsPattern = regexp.MustCompile(`(?i)^(\d{1,2})\s+([a-z]+)\s+(\d{4})`)
)

// NormalizeDate converts a Dutch long-form date ("12 maart 2025") into the
// canonical DD-MM-YYYY form. Text that does not open with a recognized date
// phrase yields an empty string; text that matches the phrase but resists
// field extraction is returned unchanged.
func NormalizeDate(raw string) string {
	if !datePhrasePattern.MatchString(raw) {
		return ""
	}

	m := dateFieldsPattern.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}

	day, err := strconv.Atoi(m[1])
	if err != nil {
		return raw
	}

	month, ok := monthNumber[strings.ToLower(m[2])]
	if !ok {
		month = "01"
	}

	return fmt.Sprintf("%02d-%s-%s", day, month, m[3])
}

// ParseCanonicalDate parses a DD-MM-YYYY string into a date-only time.
func ParseCanonicalDate(value string) (time.Time, error) {
	return time.Parse(CanonicalDateLayout, value)
}
