package core

import (
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
}

func TestMonthKeyOf(t *testing.T) {
	if got := MonthKeyOf(fixedNow()); got != "2026-09" {
		t.Errorf("MonthKeyOf = %q, want 2026-09", got)
	}
	if got := MonthKeyOf(time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC)); got != "2025-12" {
		t.Errorf("MonthKeyOf = %q, want 2025-12", got)
	}
}

func TestParseMonthKey(t *testing.T) {
	tests := []struct {
		key     string
		year    int
		month   time.Month
		wantErr bool
	}{
		{"2026-09", 2026, time.September, false},
		{"1999-01", 1999, time.January, false},
		{"2026-13", 0, 0, true},
		{"2026-00", 0, 0, true},
		{"2026-9", 0, 0, true},
		{"garbage", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			y, m, err := ParseMonthKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (y != tt.year || m != tt.month) {
				t.Errorf("got %d-%d, want %d-%d", y, m, tt.year, tt.month)
			}
		})
	}
}

func TestMonthLabels(t *testing.T) {
	if got := MonthLabel("2026-01"); got != "January 2026" {
		t.Errorf("MonthLabel = %q", got)
	}
	if got := ShortMonthLabel("2026-01"); got != "Jan" {
		t.Errorf("ShortMonthLabel = %q", got)
	}
	// Malformed keys pass through instead of erroring.
	if got := MonthLabel("nope"); got != "nope" {
		t.Errorf("MonthLabel(malformed) = %q", got)
	}
}

func TestSortedMonthKeysChronological(t *testing.T) {
	months := map[string]MonthData{
		"2026-02": {}, "2025-12": {}, "2026-01": {}, "2024-06": {},
	}
	got := SortedMonthKeys(months)
	want := []string{"2024-06", "2025-12", "2026-01", "2026-02"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedMonthKeys = %v, want %v", got, want)
		}
	}
}
