package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"flux/internal/core"
)

// Month returns the record for key, or a materialized default (zero
// usage, settings default advance payment) for an unseen key. Never
// nil; the returned record is the caller's to keep.
func (t *Tracker) Month(key string) core.MonthData {
	t.mu.Lock()
	defer t.mu.Unlock()

	if m, ok := t.months[key]; ok {
		return m.Clone()
	}
	return core.DefaultMonthData(t.settings)
}

func (t *Tracker) MonthStatus(key string) core.MonthStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.months[key]
	if !ok {
		return core.StatusEmpty
	}
	return m.Status()
}

// AddMonth inserts a default record for key and persists it right
// away, skipping the debounce, so the row exists remotely before any
// subsequent edit. Idempotent: an existing key is left untouched.
func (t *Tracker) AddMonth(ctx context.Context, key string) error {
	if !core.ValidMonthKey(key) {
		return core.ErrInvalidMonthKey
	}

	t.mu.Lock()
	if _, ok := t.months[key]; ok {
		t.mu.Unlock()
		return nil
	}
	m := core.DefaultMonthData(t.settings)
	t.months[key] = m
	t.mu.Unlock()

	if t.Guest() {
		return nil
	}

	t.beginSync()
	err := t.backend.UpsertMonth(ctx, t.account, key, m)
	t.endSync(err)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to persist new month", "month", key, "error", err)
		return fmt.Errorf("persist month %s: %w", key, err)
	}
	return nil
}

// RemoveMonth deletes the record locally and from the remote store. If
// the removed month was selected, selection moves to the next-older
// remaining month, or the next-newer when nothing older exists.
func (t *Tracker) RemoveMonth(ctx context.Context, key string) error {
	t.mu.Lock()
	if _, ok := t.months[key]; !ok {
		t.mu.Unlock()
		return nil
	}
	delete(t.months, key)
	delete(t.dirtyMonths, key)
	if t.selected == key {
		if next := adjacentMonth(t.months, key); next != "" {
			t.selected = next
		}
	}
	t.mu.Unlock()

	if t.Guest() {
		return nil
	}

	t.beginSync()
	err := t.backend.DeleteMonth(ctx, t.account, key)
	t.endSync(err)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to delete month remotely", "month", key, "error", err)
		return fmt.Errorf("delete month %s: %w", key, err)
	}
	return nil
}

// adjacentMonth picks the neighbor of removed in chronological order,
// preferring the next-older key.
func adjacentMonth(months map[string]core.MonthData, removed string) string {
	var older, newer string
	for _, k := range core.SortedMonthKeys(months) {
		if k < removed {
			older = k
		} else if newer == "" && k > removed {
			newer = k
		}
	}
	if older != "" {
		return older
	}
	return newer
}

// PreviousReadings returns the meter baseline usage for key derives
// from: the stored readings of the nearest earlier month, or the
// global starting readings when no earlier month exists.
func (t *Tracker) PreviousReadings(key string) core.MeterReadings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.PreviousReadings(t.months, key, t.settings)
}

// UpdateUsage sets one metered quantity directly. Electricity goes
// through UpdateElectricityUsage. Clamped to non-negative.
func (t *Tracker) UpdateUsage(key string, ch Channel, value float64) error {
	value = core.ClampNonNegative(value)
	var set func(*core.Usage, float64)
	switch ch {
	case ChannelColdWater:
		set = func(u *core.Usage, v float64) { u.ColdWater = v }
	case ChannelHotWater:
		set = func(u *core.Usage, v float64) { u.HotWater = v }
	case ChannelHeating:
		set = func(u *core.Usage, v float64) { u.Heating = v }
	default:
		return fmt.Errorf("unknown usage channel %q", ch)
	}
	t.updateMonth(key, func(m *core.MonthData) {
		set(&m.Usage, value)
	})
	return nil
}

func (t *Tracker) UpdateElectricityUsage(key string, kwh float64) {
	kwh = core.ClampNonNegative(kwh)
	t.updateMonth(key, func(m *core.MonthData) {
		m.Electricity = core.ElectricityUsage{Kwh: kwh}
	})
}

func (t *Tracker) UpdateAdvancePayment(key string, value float64) {
	t.updateMonth(key, func(m *core.MonthData) {
		m.AdvancePayment = value
	})
}

func (t *Tracker) UpdateNotes(key, notes string) {
	t.updateMonth(key, func(m *core.MonthData) {
		m.Notes = notes
	})
}

func (t *Tracker) MarkComplete(key string, complete bool) {
	t.updateMonth(key, func(m *core.MonthData) {
		m.IsComplete = complete
	})
}

// UpdateMeterReading stores a new absolute reading and rederives the
// month's usage from the delta against the previous month's readings.
// Reading and derived usage land in one record update, so no reader
// ever sees them out of sync.
func (t *Tracker) UpdateMeterReading(key string, ch Channel, value float64) error {
	set, err := readingSetter(ch)
	if err != nil {
		return err
	}
	value = core.ClampNonNegative(value)

	t.mu.Lock()
	m, ok := t.months[key]
	if !ok {
		m = core.DefaultMonthData(t.settings)
	}
	m = m.Clone()

	var readings core.MeterReadings
	if m.MeterReadings != nil {
		readings = *m.MeterReadings
	}
	set(&readings, value)

	prev := core.PreviousReadings(t.months, key, t.settings)
	usage, electricity := core.UsageFromReadings(readings, prev)

	m.MeterReadings = &readings
	m.Usage = usage
	m.Electricity = electricity
	t.months[key] = m
	if !t.Guest() {
		t.dirtyMonths[key] = struct{}{}
	}
	t.mu.Unlock()

	t.scheduleMonthSave()
	return nil
}

// SetMonthRate overrides one rate for this month only.
func (t *Tracker) SetMonthRate(key string, field RateField, value float64) error {
	set, err := rateOverrideSetter(field)
	if err != nil {
		return err
	}
	t.updateMonth(key, func(m *core.MonthData) {
		if m.Overrides == nil {
			m.Overrides = &core.MonthOverrides{}
		}
		if m.Overrides.Rates == nil {
			m.Overrides.Rates = &core.RateOverrides{}
		}
		set(m.Overrides.Rates, value)
	})
	return nil
}

// SetMonthQuota overrides one allowance for this month only.
func (t *Tracker) SetMonthQuota(key string, field QuotaField, value float64) error {
	set, err := quotaOverrideSetter(field)
	if err != nil {
		return err
	}
	t.updateMonth(key, func(m *core.MonthData) {
		if m.Overrides == nil {
			m.Overrides = &core.MonthOverrides{}
		}
		if m.Overrides.Quotas == nil {
			m.Overrides.Quotas = &core.QuotaOverrides{}
		}
		set(m.Overrides.Quotas, value)
	})
	return nil
}

func (t *Tracker) SetMonthElectricityRate(key string, value float64) {
	t.updateMonth(key, func(m *core.MonthData) {
		if m.Overrides == nil {
			m.Overrides = &core.MonthOverrides{}
		}
		m.Overrides.ElectricityRate = core.Float64(value)
	})
}

// ClearMonthOverrides drops the whole override object; the month falls
// back to the global settings.
func (t *Tracker) ClearMonthOverrides(key string) {
	t.mu.Lock()
	m, ok := t.months[key]
	if !ok {
		t.mu.Unlock()
		return
	}
	m = m.Clone()
	m.Overrides = nil
	t.months[key] = m
	if !t.Guest() {
		t.dirtyMonths[key] = struct{}{}
	}
	t.mu.Unlock()

	t.scheduleMonthSave()
}
