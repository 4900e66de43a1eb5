package tracker

import "flux/internal/core"

// Derived queries. Everything here recomputes from current state on
// every call; nothing is cached across calls.

func (t *Tracker) FixedCosts(key string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.FixedCosts(t.monthRef(key), t.settings)
}

func (t *Tracker) VariableCosts(key string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.VariableCosts(t.monthRef(key), t.settings)
}

func (t *Tracker) ProjectedBill(key string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.ProjectedBill(t.monthRef(key), t.settings)
}

// LiveBalance is advance payment minus projected bill for one month.
// Positive means a refund is owed to the user.
func (t *Tracker) LiveBalance(key string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.LiveBalance(t.monthRef(key), t.settings)
}

func (t *Tracker) ElectricityCost(key string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.ElectricityCost(t.monthRef(key), t.settings)
}

// CumulativeLiveBalance is the lifetime reconciliation across every
// tracked month.
func (t *Tracker) CumulativeLiveBalance() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.CumulativeLiveBalance(t.months, t.settings)
}

// TrendData returns the aggregate series for the window of up to
// monthsBack months ending at the selected month.
func (t *Tracker) TrendData(monthsBack int) []core.TrendPoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.TrendData(t.months, t.selected, monthsBack, t.settings)
}

func (t *Tracker) EffectiveRates(key string) core.Rates {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.EffectiveRates(t.monthRef(key), t.settings)
}

func (t *Tracker) EffectiveQuotas(key string) core.Quotas {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.EffectiveQuotas(t.monthRef(key), t.settings)
}

func (t *Tracker) EffectiveElectricityRate(key string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.EffectiveElectricityRate(t.monthRef(key), t.settings)
}

// CalculatedUsage derives consumption for key from its stored meter
// readings against the previous month's baseline. A month with no
// readings reads as all-zero current values.
func (t *Tracker) CalculatedUsage(key string) (core.Usage, core.ElectricityUsage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var cur core.MeterReadings
	if m, ok := t.months[key]; ok && m.MeterReadings != nil {
		cur = *m.MeterReadings
	}
	prev := core.PreviousReadings(t.months, key, t.settings)
	return core.UsageFromReadings(cur, prev)
}

// monthRef returns a pointer to a copy of the stored record, or nil
// for an unseen key. Callers hold t.mu.
func (t *Tracker) monthRef(key string) *core.MonthData {
	if m, ok := t.months[key]; ok {
		return &m
	}
	return nil
}
