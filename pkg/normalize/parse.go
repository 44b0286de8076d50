package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/finsight/pkg/models"
)

// Day-first: 5.11.25, 05/11/2025, 5-1-2025.
var dayFirstRegex = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{4}|\d{2})$`)

// Characters kept before numeric coercion.
var numericNoise = regexp.MustCompile(`[^0-9+\-.,]`)

// genericLayouts are tried when the day-first pattern does not apply. No
// month-first numeric layout is listed so ambiguous dates stay day-first.
var genericLayouts = []string{
	models.ISODateLayout,
	"2006/01/02",
	"2006.01.02",
	"20060102",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02/01/2006 15:04:05",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"02-Jan-06",
}

// ParseDate converts s to YYYY-MM-DD. It tries the strict day-first pattern,
// then the generic layouts followed by extra, and otherwise returns s
// unchanged; callers must check the result with models.IsISODate.
func ParseDate(s string, extra ...string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if m := dayFirstRegex.FindStringSubmatch(s); m != nil {
		day, month, year := pad(m[1]), pad(m[2]), m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		iso := fmt.Sprintf("%s-%s-%s", year, month, day)
		if models.IsISODate(iso) {
			return iso
		}
	}

	for _, layout := range append(genericLayouts, extra...) {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(models.ISODateLayout)
		}
	}

	return s
}

func pad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// ParseAmount coerces a loosely formatted number. Everything except digits,
// sign, comma and period is dropped, comma is read as the decimal separator,
// and anything still unparseable becomes zero.
func ParseAmount(s string) float64 {
	clean := numericNoise.ReplaceAllString(s, "")
	clean = strings.ReplaceAll(clean, ",", ".")
	clean = strings.TrimPrefix(clean, "+")
	if clean == "" {
		return 0
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// ParseBool reads the truthy spellings found in ledger exports.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "да", "x", "+":
		return true
	default:
		return false
	}
}
