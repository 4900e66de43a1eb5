package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"flux/internal/core"
	"flux/internal/store"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "flux.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSettingsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.LoadSettings(ctx, "acct-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("LoadSettings on fresh db = %v, want ErrNotFound", err)
	}

	want := core.DefaultSettings()
	want.Currency = "$"
	want.CurrencyLocale = "en-US"
	want.Rates.ColdWater = 16.4
	want.StartingMeterReadings = core.MeterReadings{ColdWater: 100, Electricity: 2500}

	if err := repo.UpsertSettings(ctx, "acct-1", want); err != nil {
		t.Fatalf("UpsertSettings: %v", err)
	}
	got, err := repo.LoadSettings(ctx, "acct-1")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got != want {
		t.Errorf("LoadSettings = %+v, want %+v", got, want)
	}

	// Upsert replaces the existing row rather than inserting a second one.
	want.DefaultAdvancePayment = 900
	if err := repo.UpsertSettings(ctx, "acct-1", want); err != nil {
		t.Fatalf("second UpsertSettings: %v", err)
	}
	got, err = repo.LoadSettings(ctx, "acct-1")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got.DefaultAdvancePayment != 900 {
		t.Errorf("DefaultAdvancePayment = %v, want 900", got.DefaultAdvancePayment)
	}
}

func TestLegacyQuotaShapeUpgradesOnRead(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Write a row whose quotas column carries the historical combined
	// water allowance, as an old client would have stored it.
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO settings (account, currency, currency_locale, rates, electricity_rates,
		                      quotas, default_advance_payment, starting_meter_readings)
		VALUES ('acct-legacy', 'zł', 'pl-PL',
		        '{"coldWater":14.83,"hotWaterHeating":35.15,"centralHeatingVariable":140.61,"garbageFixed":188.08,"parkingFixed":85.10,"adminFixed":332.90}',
		        '{"perKwh":0.85}',
		        '{"waterMonth":3.5,"heatMonth":0.9}',
		        841.16,
		        '{"coldWater":0,"hotWater":0,"heating":0,"electricity":0}')`)
	if err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	got, err := repo.LoadSettings(ctx, "acct-legacy")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	want := core.Quotas{ColdWaterMonth: 3.5, HotWaterMonth: 3.5, HeatMonth: 0.9, ElectricityMonth: 150}
	if got.Quotas != want {
		t.Errorf("Quotas = %+v, want upgraded %+v", got.Quotas, want)
	}
}

func TestMonthRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	m := core.MonthData{
		Usage:          core.Usage{ColdWater: 3, HotWater: 2, Heating: 0.5},
		Electricity:    core.ElectricityUsage{Kwh: 150},
		AdvancePayment: 841.16,
		Notes:          "boiler serviced",
		IsComplete:     true,
		Overrides: &core.MonthOverrides{
			Rates:           &core.RateOverrides{ColdWater: core.Float64(16)},
			ElectricityRate: core.Float64(1.1),
		},
		MeterReadings: &core.MeterReadings{ColdWater: 120.5, HotWater: 80, Heating: 12.5, Electricity: 1550},
	}

	if err := repo.UpsertMonth(ctx, "acct-1", "2026-09", m); err != nil {
		t.Fatalf("UpsertMonth: %v", err)
	}
	if err := repo.UpsertMonth(ctx, "acct-1", "2026-08", core.MonthData{AdvancePayment: 841.16}); err != nil {
		t.Fatalf("UpsertMonth: %v", err)
	}

	months, err := repo.LoadMonths(ctx, "acct-1")
	if err != nil {
		t.Fatalf("LoadMonths: %v", err)
	}
	if len(months) != 2 {
		t.Fatalf("len(months) = %d, want 2", len(months))
	}
	got := months["2026-09"]
	if got.Usage != m.Usage || got.Electricity != m.Electricity || got.Notes != m.Notes || !got.IsComplete {
		t.Errorf("month = %+v, want %+v", got, m)
	}
	if got.Overrides == nil || *got.Overrides.Rates.ColdWater != 16 || *got.Overrides.ElectricityRate != 1.1 {
		t.Errorf("overrides = %+v", got.Overrides)
	}
	if got.MeterReadings == nil || *got.MeterReadings != *m.MeterReadings {
		t.Errorf("meter readings = %+v", got.MeterReadings)
	}

	// Optional fields stay absent, not zero-valued objects.
	plain := months["2026-08"]
	if plain.Overrides != nil || plain.MeterReadings != nil || plain.Notes != "" {
		t.Errorf("plain month carries optional fields: %+v", plain)
	}

	// Upsert on the same (account, month) replaces.
	m.Usage.ColdWater = 4
	if err := repo.UpsertMonth(ctx, "acct-1", "2026-09", m); err != nil {
		t.Fatalf("UpsertMonth update: %v", err)
	}
	months, _ = repo.LoadMonths(ctx, "acct-1")
	if len(months) != 2 || months["2026-09"].Usage.ColdWater != 4 {
		t.Errorf("after update: %d months, cold water %v", len(months), months["2026-09"].Usage.ColdWater)
	}

	if err := repo.DeleteMonth(ctx, "acct-1", "2026-09"); err != nil {
		t.Fatalf("DeleteMonth: %v", err)
	}
	months, _ = repo.LoadMonths(ctx, "acct-1")
	if _, ok := months["2026-09"]; ok {
		t.Error("month still present after delete")
	}

	// Deleting an absent month is not an error.
	if err := repo.DeleteMonth(ctx, "acct-1", "2020-01"); err != nil {
		t.Errorf("DeleteMonth(absent) = %v", err)
	}
}

func TestAccountsAreIsolated(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertMonth(ctx, "acct-a", "2026-01", core.MonthData{AdvancePayment: 1}); err != nil {
		t.Fatalf("UpsertMonth: %v", err)
	}
	months, err := repo.LoadMonths(ctx, "acct-b")
	if err != nil {
		t.Fatalf("LoadMonths: %v", err)
	}
	if len(months) != 0 {
		t.Errorf("acct-b sees %d months, want 0", len(months))
	}
}
