package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestUsageFromReadings(t *testing.T) {
	tests := []struct {
		name     string
		cur      MeterReadings
		prev     MeterReadings
		want     Usage
		wantElec float64
	}{
		{
			name:     "normal delta",
			cur:      MeterReadings{ColdWater: 120.5, HotWater: 80, Heating: 12.5, Electricity: 1550},
			prev:     MeterReadings{ColdWater: 117.0, HotWater: 78, Heating: 12, Electricity: 1400},
			want:     Usage{ColdWater: 3.5, HotWater: 2, Heating: 0.5},
			wantElec: 150,
		},
		{
			name:     "equal readings give zero",
			cur:      MeterReadings{ColdWater: 50, HotWater: 50, Heating: 50, Electricity: 50},
			prev:     MeterReadings{ColdWater: 50, HotWater: 50, Heating: 50, Electricity: 50},
			want:     Usage{},
			wantElec: 0,
		},
		{
			name:     "decreasing reading clamps to zero",
			cur:      MeterReadings{ColdWater: 10, HotWater: 5, Heating: 1, Electricity: 100},
			prev:     MeterReadings{ColdWater: 15, HotWater: 4, Heating: 2, Electricity: 300},
			want:     Usage{HotWater: 1},
			wantElec: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, e := UsageFromReadings(tt.cur, tt.prev)
			if !almostEqual(u.ColdWater, tt.want.ColdWater) ||
				!almostEqual(u.HotWater, tt.want.HotWater) ||
				!almostEqual(u.Heating, tt.want.Heating) {
				t.Errorf("usage = %+v, want %+v", u, tt.want)
			}
			if !almostEqual(e.Kwh, tt.wantElec) {
				t.Errorf("electricity = %v, want %v", e.Kwh, tt.wantElec)
			}
		})
	}
}

func TestUsageFromReadingsNeverNegative(t *testing.T) {
	// Spot-check a grid of reading pairs: derived usage must never be
	// negative, and equals cur-prev whenever cur >= prev.
	vals := []float64{0, 0.5, 1, 10, 117.0, 120.5, 9999}
	for _, prev := range vals {
		for _, cur := range vals {
			u, _ := UsageFromReadings(MeterReadings{ColdWater: cur}, MeterReadings{ColdWater: prev})
			if u.ColdWater < 0 {
				t.Fatalf("negative usage %v for cur=%v prev=%v", u.ColdWater, cur, prev)
			}
			if cur >= prev && !almostEqual(u.ColdWater, cur-prev) {
				t.Fatalf("usage = %v, want %v for cur=%v prev=%v", u.ColdWater, cur-prev, cur, prev)
			}
			if cur < prev && u.ColdWater != 0 {
				t.Fatalf("usage = %v, want 0 for rolled-over meter cur=%v prev=%v", u.ColdWater, cur, prev)
			}
		}
	}
}

func TestPreviousReadings(t *testing.T) {
	s := DefaultSettings()
	s.StartingMeterReadings = MeterReadings{ColdWater: 100, HotWater: 50, Heating: 10, Electricity: 1000}

	months := map[string]MonthData{
		"2025-01": {MeterReadings: &MeterReadings{ColdWater: 104}},
		"2025-02": {}, // recorded no readings
		"2025-03": {MeterReadings: &MeterReadings{ColdWater: 110}},
	}

	tests := []struct {
		name string
		key  string
		want float64
	}{
		{"no earlier month uses starting readings", "2025-01", 100},
		{"immediate predecessor readings", "2025-02", 104},
		{"predecessor without readings falls back to starting", "2025-03", 100},
		{"walks to nearest earlier month", "2025-06", 110},
		{"key absent from ledger still resolves", "2025-02", 104},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PreviousReadings(months, tt.key, s)
			if !almostEqual(got.ColdWater, tt.want) {
				t.Errorf("PreviousReadings(%q).ColdWater = %v, want %v", tt.key, got.ColdWater, tt.want)
			}
		})
	}
}

func TestCostOf(t *testing.T) {
	if got := CostOf(3, 14.83); !almostEqual(got, 44.49) {
		t.Errorf("CostOf(3, 14.83) = %v, want 44.49", got)
	}
	if got := CostOf(0, 999); got != 0 {
		t.Errorf("CostOf(0, 999) = %v, want 0", got)
	}
}
