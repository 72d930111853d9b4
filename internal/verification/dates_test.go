package verification

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1985-06-15", "1985-06-15"},
		{"1985/06/15", "1985-06-15"},
		{"June 15, 1985", "1985-06-15"},
		{"Jun 15, 1985", "1985-06-15"},
		{"6/15/1985", "1985-06-15"},
		{"06/15/1985", "1985-06-15"},
		{" 1985-06-15 ", "1985-06-15"},
	}
	for _, tt := range tests {
		got, err := NormalizeDate(tt.in)
		if err != nil {
			t.Errorf("NormalizeDate(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "soon", "15th of June"} {
		if _, err := NormalizeDate(in); err == nil {
			t.Errorf("NormalizeDate(%q): expected error", in)
		}
	}
}

func TestSameDay(t *testing.T) {
	day := time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)

	matches := []string{
		"2025-06-15",
		"2025/06/15",
		"June 15, 2025",
		"6/15/2025",
		"06/15/2025",
		"15/6/2025",
		"scheduled 2025-06-15 morning",
	}
	for _, s := range matches {
		if !SameDay(s, day) {
			t.Errorf("SameDay(%q) = false, want true", s)
		}
	}

	misses := []string{"2025-06-16", "June 14, 2025", "", "tomorrow"}
	for _, s := range misses {
		if SameDay(s, day) {
			t.Errorf("SameDay(%q) = true, want false", s)
		}
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"john":       "John",
		"JOHN":       "John",
		"john smith": "John smith",
		"":           "",
	}
	for in, want := range tests {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}
