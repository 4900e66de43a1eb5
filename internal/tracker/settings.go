package tracker

import (
	"fmt"

	"dario.cat/mergo"

	"flux/internal/core"
)

// RateField names one of the six billing rates.
type RateField string

const (
	RateColdWater              RateField = "coldWater"
	RateHotWaterHeating        RateField = "hotWaterHeating"
	RateCentralHeatingVariable RateField = "centralHeatingVariable"
	RateGarbageFixed           RateField = "garbageFixed"
	RateParkingFixed           RateField = "parkingFixed"
	RateAdminFixed             RateField = "adminFixed"
)

// QuotaField names one of the four monthly allowances.
type QuotaField string

const (
	QuotaColdWater   QuotaField = "coldWaterMonth"
	QuotaHotWater    QuotaField = "hotWaterMonth"
	QuotaHeat        QuotaField = "heatMonth"
	QuotaElectricity QuotaField = "electricityMonth"
)

// Channel names one physical meter.
type Channel string

const (
	ChannelColdWater   Channel = "coldWater"
	ChannelHotWater    Channel = "hotWater"
	ChannelHeating     Channel = "heating"
	ChannelElectricity Channel = "electricity"
)

// UpdateCurrency switches the display currency by code ("PLN", "EUR",
// "USD"). Unknown codes fall back to PLN.
func (t *Tracker) UpdateCurrency(code string) {
	opt, ok := core.CurrencyConfig[code]
	if !ok {
		opt = core.CurrencyConfig["PLN"]
	}
	t.updateSettings(func(s *core.Settings) {
		s.Currency = opt.Symbol
		s.CurrencyLocale = opt.Locale
	})
}

func (t *Tracker) UpdateRate(field RateField, value float64) error {
	set, err := rateSetter(field)
	if err != nil {
		return err
	}
	t.updateSettings(func(s *core.Settings) {
		set(&s.Rates, value)
	})
	return nil
}

// UpdateRates merges a bulk rate update. Zero-valued fields in partial
// leave the current rate unchanged; use UpdateRate to set a single rate
// to zero.
func (t *Tracker) UpdateRates(partial core.Rates) error {
	var mergeErr error
	t.updateSettings(func(s *core.Settings) {
		mergeErr = mergo.Merge(&s.Rates, partial, mergo.WithOverride)
	})
	return mergeErr
}

func (t *Tracker) UpdateElectricityRate(value float64) {
	t.updateSettings(func(s *core.Settings) {
		s.ElectricityRates = core.ElectricityRates{PerKwh: value}
	})
}

func (t *Tracker) UpdateQuota(field QuotaField, value float64) error {
	set, err := quotaSetter(field)
	if err != nil {
		return err
	}
	t.updateSettings(func(s *core.Settings) {
		set(&s.Quotas, value)
	})
	return nil
}

func (t *Tracker) UpdateDefaultAdvancePayment(value float64) {
	t.updateSettings(func(s *core.Settings) {
		s.DefaultAdvancePayment = value
	})
}

// UpdateStartingMeterReading sets the baseline reading the first
// tracked month derives its usage from. Clamped to non-negative.
func (t *Tracker) UpdateStartingMeterReading(ch Channel, value float64) error {
	set, err := readingSetter(ch)
	if err != nil {
		return err
	}
	value = core.ClampNonNegative(value)
	t.updateSettings(func(s *core.Settings) {
		set(&s.StartingMeterReadings, value)
	})
	return nil
}

// ResetToDefaults zeroes every price, quota and baseline while keeping
// the PLN display currency. It does not re-install the stock rates;
// the user starts from a blank sheet.
func (t *Tracker) ResetToDefaults() {
	t.updateSettings(func(s *core.Settings) {
		*s = core.Settings{
			Currency:       core.CurrencyConfig["PLN"].Symbol,
			CurrencyLocale: core.CurrencyConfig["PLN"].Locale,
		}
	})
}

func rateSetter(field RateField) (func(*core.Rates, float64), error) {
	switch field {
	case RateColdWater:
		return func(r *core.Rates, v float64) { r.ColdWater = v }, nil
	case RateHotWaterHeating:
		return func(r *core.Rates, v float64) { r.HotWaterHeating = v }, nil
	case RateCentralHeatingVariable:
		return func(r *core.Rates, v float64) { r.CentralHeatingVariable = v }, nil
	case RateGarbageFixed:
		return func(r *core.Rates, v float64) { r.GarbageFixed = v }, nil
	case RateParkingFixed:
		return func(r *core.Rates, v float64) { r.ParkingFixed = v }, nil
	case RateAdminFixed:
		return func(r *core.Rates, v float64) { r.AdminFixed = v }, nil
	default:
		return nil, fmt.Errorf("unknown rate field %q", field)
	}
}

func rateOverrideSetter(field RateField) (func(*core.RateOverrides, float64), error) {
	switch field {
	case RateColdWater:
		return func(o *core.RateOverrides, v float64) { o.ColdWater = core.Float64(v) }, nil
	case RateHotWaterHeating:
		return func(o *core.RateOverrides, v float64) { o.HotWaterHeating = core.Float64(v) }, nil
	case RateCentralHeatingVariable:
		return func(o *core.RateOverrides, v float64) { o.CentralHeatingVariable = core.Float64(v) }, nil
	case RateGarbageFixed:
		return func(o *core.RateOverrides, v float64) { o.GarbageFixed = core.Float64(v) }, nil
	case RateParkingFixed:
		return func(o *core.RateOverrides, v float64) { o.ParkingFixed = core.Float64(v) }, nil
	case RateAdminFixed:
		return func(o *core.RateOverrides, v float64) { o.AdminFixed = core.Float64(v) }, nil
	default:
		return nil, fmt.Errorf("unknown rate field %q", field)
	}
}

func quotaSetter(field QuotaField) (func(*core.Quotas, float64), error) {
	switch field {
	case QuotaColdWater:
		return func(q *core.Quotas, v float64) { q.ColdWaterMonth = v }, nil
	case QuotaHotWater:
		return func(q *core.Quotas, v float64) { q.HotWaterMonth = v }, nil
	case QuotaHeat:
		return func(q *core.Quotas, v float64) { q.HeatMonth = v }, nil
	case QuotaElectricity:
		return func(q *core.Quotas, v float64) { q.ElectricityMonth = v }, nil
	default:
		return nil, fmt.Errorf("unknown quota field %q", field)
	}
}

func quotaOverrideSetter(field QuotaField) (func(*core.QuotaOverrides, float64), error) {
	switch field {
	case QuotaColdWater:
		return func(o *core.QuotaOverrides, v float64) { o.ColdWaterMonth = core.Float64(v) }, nil
	case QuotaHotWater:
		return func(o *core.QuotaOverrides, v float64) { o.HotWaterMonth = core.Float64(v) }, nil
	case QuotaHeat:
		return func(o *core.QuotaOverrides, v float64) { o.HeatMonth = core.Float64(v) }, nil
	case QuotaElectricity:
		return func(o *core.QuotaOverrides, v float64) { o.ElectricityMonth = core.Float64(v) }, nil
	default:
		return nil, fmt.Errorf("unknown quota field %q", field)
	}
}

func readingSetter(ch Channel) (func(*core.MeterReadings, float64), error) {
	switch ch {
	case ChannelColdWater:
		return func(r *core.MeterReadings, v float64) { r.ColdWater = v }, nil
	case ChannelHotWater:
		return func(r *core.MeterReadings, v float64) { r.HotWater = v }, nil
	case ChannelHeating:
		return func(r *core.MeterReadings, v float64) { r.Heating = v }, nil
	case ChannelElectricity:
		return func(r *core.MeterReadings, v float64) { r.Electricity = v }, nil
	default:
		return nil, fmt.Errorf("unknown meter channel %q", ch)
	}
}
