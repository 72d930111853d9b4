package verification

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts seen across scheduling imports, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"1/2/2006",
	"01/02/2006",
	time.RFC3339,
}

// NormalizeDate parses a date string in any tolerated format and returns the
// canonical YYYY-MM-DD form.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("verification: empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("verification: unrecognized date %q", s)
}

// SameDay reports whether a stored appointment-date string refers to the
// given calendar day. Parseable values are compared by date; unparseable
// values fall back to the substring checks the kiosk has always tolerated
// (ISO, slash-separated, and day-first variants).
func SameDay(stored string, day time.Time) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}

	if norm, err := NormalizeDate(stored); err == nil {
		return norm == day.Format("2006-01-02")
	}

	iso := day.Format("2006-01-02")
	year := day.Format("2006")
	month := int(day.Month())
	dom := day.Day()

	candidates := []string{
		iso,
		strings.ReplaceAll(iso, "-", "/"),
		fmt.Sprintf("%d/%d/%s", month, dom, year),
		fmt.Sprintf("%02d/%02d/%s", month, dom, year),
		fmt.Sprintf("%d/%d/%s", dom, month, year),
	}
	for _, c := range candidates {
		if strings.Contains(stored, c) {
			return true
		}
	}
	return false
}

// capitalize returns s with its first rune upper-cased and the rest lowered,
// the single-capitalized retry variant for first-name lookups.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
