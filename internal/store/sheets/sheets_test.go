package sheets

import (
	"testing"

	"flux/internal/core"
)

func TestSettingsRowRoundTrip(t *testing.T) {
	s := core.DefaultSettings()
	s.StartingMeterReadings = core.MeterReadings{ColdWater: 117, Electricity: 1400}

	row, err := encodeSettingsRow("acct-1", s)
	if err != nil {
		t.Fatalf("encodeSettingsRow: %v", err)
	}
	if cell(row, 0) != "acct-1" {
		t.Errorf("account cell = %q", cell(row, 0))
	}

	got, err := decodeSettingsRow(row)
	if err != nil {
		t.Fatalf("decodeSettingsRow: %v", err)
	}
	if got != s {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}
}

func TestDecodeSettingsRowLegacyQuotas(t *testing.T) {
	row := []any{
		"acct-1", "zł", "pl-PL",
		`{"coldWater":14.83,"hotWaterHeating":35.15,"centralHeatingVariable":140.61,"garbageFixed":188.08,"parkingFixed":85.10,"adminFixed":332.90}`,
		`{"perKwh":0.85}`,
		`{"waterMonth":3.0}`,
		"841.16",
		`{"coldWater":0,"hotWater":0,"heating":0,"electricity":0}`,
	}
	got, err := decodeSettingsRow(row)
	if err != nil {
		t.Fatalf("decodeSettingsRow: %v", err)
	}
	want := core.Quotas{ColdWaterMonth: 3.0, HotWaterMonth: 3.0, HeatMonth: 1.0, ElectricityMonth: 150}
	if got.Quotas != want {
		t.Errorf("Quotas = %+v, want %+v", got.Quotas, want)
	}
}

func TestMonthRowRoundTrip(t *testing.T) {
	m := core.MonthData{
		Usage:          core.Usage{ColdWater: 3.5, HotWater: 2, Heating: 0.5},
		Electricity:    core.ElectricityUsage{Kwh: 150},
		AdvancePayment: 841.16,
		Notes:          "radiator bled",
		IsComplete:     true,
		Overrides:      &core.MonthOverrides{ElectricityRate: core.Float64(1.1)},
		MeterReadings:  &core.MeterReadings{ColdWater: 120.5},
	}

	row, err := encodeMonthRow("acct-1", "2026-09", m)
	if err != nil {
		t.Fatalf("encodeMonthRow: %v", err)
	}
	got, err := decodeMonthRow(row)
	if err != nil {
		t.Fatalf("decodeMonthRow: %v", err)
	}

	if got.Usage != m.Usage || got.Electricity != m.Electricity ||
		got.AdvancePayment != m.AdvancePayment || got.Notes != m.Notes || !got.IsComplete {
		t.Errorf("round trip = %+v, want %+v", got, m)
	}
	if got.Overrides == nil || *got.Overrides.ElectricityRate != 1.1 {
		t.Errorf("overrides = %+v", got.Overrides)
	}
	if got.MeterReadings == nil || got.MeterReadings.ColdWater != 120.5 {
		t.Errorf("meter readings = %+v", got.MeterReadings)
	}
}

func TestDecodeMonthRowOptionalFieldsAbsent(t *testing.T) {
	row := []any{"acct-1", "2026-09", "0", "0", "0", "0", "841.16", "", "false", "", ""}
	got, err := decodeMonthRow(row)
	if err != nil {
		t.Fatalf("decodeMonthRow: %v", err)
	}
	if got.Overrides != nil || got.MeterReadings != nil {
		t.Errorf("optional fields materialized: %+v", got)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"3.5", 3.5, false},
		{"3,5", 3.5, false},
		{"", 0, false},
		{" 841.16 ", 841.16, false},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseNumber(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
