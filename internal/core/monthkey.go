// Package core holds the billing domain: month records, settings,
// override resolution, usage derivation and the aggregate calculations.
// Everything here is pure; persistence lives in internal/store and the
// stateful container in internal/tracker.
package core

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// Month keys are canonical YYYY-MM strings. Chronological order and
// lexicographic order coincide, which the ledger relies on.

var monthKeyRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// MonthKeyOf formats the key for the period containing t.
func MonthKeyOf(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ParseMonthKey splits a YYYY-MM key into year and month.
func ParseMonthKey(key string) (year int, month time.Month, err error) {
	if !monthKeyRe.MatchString(key) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonthKey, key)
	}
	var m int
	if _, err := fmt.Sscanf(key, "%4d-%2d", &year, &m); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonthKey, key)
	}
	return year, time.Month(m), nil
}

// ValidMonthKey reports whether key is a well-formed YYYY-MM string.
func ValidMonthKey(key string) bool { return monthKeyRe.MatchString(key) }

// MonthLabel returns the long display label for a key, e.g. "January 2026".
// Malformed keys are returned as-is rather than erroring; labels are a
// display concern only.
func MonthLabel(key string) string {
	y, m, err := ParseMonthKey(key)
	if err != nil {
		return key
	}
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// ShortMonthLabel returns the abbreviated month name, e.g. "Jan".
func ShortMonthLabel(key string) string {
	y, m, err := ParseMonthKey(key)
	if err != nil {
		return key
	}
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Format("Jan")
}

// SortedMonthKeys returns the ledger's keys in chronological order.
func SortedMonthKeys(months map[string]MonthData) []string {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
