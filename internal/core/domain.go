package core

import "errors"

type (
	// Rates holds the six per-unit prices a housing invoice is built from.
	// The *Fixed fields are flat monthly charges, the rest are per-unit.
	Rates struct {
		ColdWater              float64 `json:"coldWater"`
		HotWaterHeating        float64 `json:"hotWaterHeating"`
		CentralHeatingVariable float64 `json:"centralHeatingVariable"`
		GarbageFixed           float64 `json:"garbageFixed"`
		ParkingFixed           float64 `json:"parkingFixed"`
		AdminFixed             float64 `json:"adminFixed"`
	}

	ElectricityRates struct {
		PerKwh float64 `json:"perKwh"`
	}

	// Usage holds metered consumption for one month.
	Usage struct {
		ColdWater float64 `json:"coldWater"`
		HotWater  float64 `json:"hotWater"`
		Heating   float64 `json:"heating"`
	}

	ElectricityUsage struct {
		Kwh float64 `json:"kwh"`
	}

	// MeterReadings are absolute cumulative values read off the physical meters.
	MeterReadings struct {
		ColdWater   float64 `json:"coldWater"`
		HotWater    float64 `json:"hotWater"`
		Heating     float64 `json:"heating"`
		Electricity float64 `json:"electricity"`
	}

	// Quotas are monthly allowances, used for display-side budget hints.
	Quotas struct {
		ColdWaterMonth   float64 `json:"coldWaterMonth"`
		HotWaterMonth    float64 `json:"hotWaterMonth"`
		HeatMonth        float64 `json:"heatMonth"`
		ElectricityMonth float64 `json:"electricityMonth"`
	}

	// RateOverrides is a sparse partial of Rates. A nil field inherits
	// the global setting for that month.
	RateOverrides struct {
		ColdWater              *float64 `json:"coldWater,omitempty"`
		HotWaterHeating        *float64 `json:"hotWaterHeating,omitempty"`
		CentralHeatingVariable *float64 `json:"centralHeatingVariable,omitempty"`
		GarbageFixed           *float64 `json:"garbageFixed,omitempty"`
		ParkingFixed           *float64 `json:"parkingFixed,omitempty"`
		AdminFixed             *float64 `json:"adminFixed,omitempty"`
	}

	// QuotaOverrides is a sparse partial of Quotas. WaterMonth is the
	// legacy combined water allowance still found in old stored rows.
	QuotaOverrides struct {
		ColdWaterMonth   *float64 `json:"coldWaterMonth,omitempty"`
		HotWaterMonth    *float64 `json:"hotWaterMonth,omitempty"`
		HeatMonth        *float64 `json:"heatMonth,omitempty"`
		ElectricityMonth *float64 `json:"electricityMonth,omitempty"`
		WaterMonth       *float64 `json:"waterMonth,omitempty"`
	}

	// MonthOverrides shadows the corresponding Settings fields for one
	// month only. Absent fields inherit.
	MonthOverrides struct {
		Rates           *RateOverrides  `json:"rates,omitempty"`
		Quotas          *QuotaOverrides `json:"quotas,omitempty"`
		ElectricityRate *float64        `json:"electricityRate,omitempty"`
	}

	// MonthData is one billing period, keyed by a YYYY-MM month key.
	MonthData struct {
		Usage          Usage            `json:"usage"`
		Electricity    ElectricityUsage `json:"electricity"`
		AdvancePayment float64          `json:"advancePayment"`
		Notes          string           `json:"notes,omitempty"`
		IsComplete     bool             `json:"isComplete,omitempty"`
		Overrides      *MonthOverrides  `json:"overrides,omitempty"`
		MeterReadings  *MeterReadings   `json:"meterReadings,omitempty"`
	}

	// Settings is the global per-account configuration every month
	// inherits from.
	Settings struct {
		Currency              string           `json:"currency"`
		CurrencyLocale        string           `json:"currencyLocale"`
		Rates                 Rates            `json:"rates"`
		ElectricityRates      ElectricityRates `json:"electricityRates"`
		Quotas                Quotas           `json:"quotas"`
		DefaultAdvancePayment float64          `json:"defaultAdvancePayment"`
		StartingMeterReadings MeterReadings    `json:"startingMeterReadings"`
	}
)

// MonthStatus classifies how filled-in a month is.
type MonthStatus string

const (
	StatusEmpty    MonthStatus = "empty"
	StatusPartial  MonthStatus = "partial"
	StatusComplete MonthStatus = "complete"
)

var ErrInvalidMonthKey = errors.New("invalid month key, want YYYY-MM")

// CurrencyOption maps a currency code to its display symbol and locale.
type CurrencyOption struct {
	Symbol string
	Locale string
}

// CurrencyConfig lists the currencies the tracker knows how to label.
var CurrencyConfig = map[string]CurrencyOption{
	"PLN": {Symbol: "zł", Locale: "pl-PL"},
	"EUR": {Symbol: "€", Locale: "de-DE"},
	"USD": {Symbol: "$", Locale: "en-US"},
}

func DefaultRates() Rates {
	return Rates{
		ColdWater:              14.83,
		HotWaterHeating:        35.15,
		CentralHeatingVariable: 140.61,
		GarbageFixed:           188.08,
		ParkingFixed:           85.10,
		AdminFixed:             332.90,
	}
}

func DefaultQuotas() Quotas {
	return Quotas{
		ColdWaterMonth:   4.0,
		HotWaterMonth:    4.0,
		HeatMonth:        1.0,
		ElectricityMonth: 150,
	}
}

// DefaultSettings returns the configuration installed for a brand new
// account and for guest sessions.
func DefaultSettings() Settings {
	return Settings{
		Currency:              "zł",
		CurrencyLocale:        "pl-PL",
		Rates:                 DefaultRates(),
		ElectricityRates:      ElectricityRates{PerKwh: 0.85},
		Quotas:                DefaultQuotas(),
		DefaultAdvancePayment: 841.16,
	}
}

// DefaultMonthData materializes the empty record returned for a month
// key that has never been written.
func DefaultMonthData(s Settings) MonthData {
	return MonthData{AdvancePayment: s.DefaultAdvancePayment}
}

// Status classifies a month: complete if explicitly flagged, partial if
// any quantity is positive, empty otherwise.
func (m MonthData) Status() MonthStatus {
	if m.IsComplete {
		return StatusComplete
	}
	if m.Usage.ColdWater > 0 || m.Usage.HotWater > 0 || m.Usage.Heating > 0 || m.Electricity.Kwh > 0 {
		return StatusPartial
	}
	return StatusEmpty
}

// Clone returns a deep copy so callers can mutate the result without
// aliasing the stored record.
func (m MonthData) Clone() MonthData {
	out := m
	if m.Overrides != nil {
		ov := MonthOverrides{}
		if m.Overrides.Rates != nil {
			r := *m.Overrides.Rates
			ov.Rates = &r
		}
		if m.Overrides.Quotas != nil {
			q := *m.Overrides.Quotas
			ov.Quotas = &q
		}
		if m.Overrides.ElectricityRate != nil {
			e := *m.Overrides.ElectricityRate
			ov.ElectricityRate = &e
		}
		out.Overrides = &ov
	}
	if m.MeterReadings != nil {
		r := *m.MeterReadings
		out.MeterReadings = &r
	}
	return out
}

// Float64 returns a pointer to v, for building sparse overrides.
func Float64(v float64) *float64 { return &v }
