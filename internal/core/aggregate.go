package core

// Aggregate calculations. Each figure is recomputed from current state
// on every call; nothing here is cached or stored.

// TrendPoint is one month in a queried trend window, carrying that
// month's fully recomputed aggregates. Derived, never persisted.
type TrendPoint struct {
	Month           string  `json:"month"`
	MonthLabel      string  `json:"monthLabel"`
	ShortLabel      string  `json:"shortLabel"`
	ProjectedBill   float64 `json:"projectedBill"`
	AdvancePayment  float64 `json:"advancePayment"`
	Balance         float64 `json:"balance"`
	ColdWater       float64 `json:"coldWater"`
	HotWater        float64 `json:"hotWater"`
	Heating         float64 `json:"heating"`
	TotalWater      float64 `json:"totalWater"`
	VariableCosts   float64 `json:"variableCosts"`
	FixedCosts      float64 `json:"fixedCosts"`
	Electricity     float64 `json:"electricity"`
	ElectricityCost float64 `json:"electricityCost"`
}

// FixedCosts sums the three flat monthly charges. Fixed components are
// rate fields like any other and follow override resolution.
func FixedCosts(m *MonthData, s Settings) float64 {
	r := EffectiveRates(m, s)
	return r.GarbageFixed + r.ParkingFixed + r.AdminFixed
}

// VariableCosts prices the month's metered usage at its effective rates.
func VariableCosts(m *MonthData, s Settings) float64 {
	if m == nil {
		return 0
	}
	r := EffectiveRates(m, s)
	return CostOf(m.Usage.ColdWater, r.ColdWater) +
		CostOf(m.Usage.HotWater, r.HotWaterHeating) +
		CostOf(m.Usage.Heating, r.CentralHeatingVariable)
}

// ProjectedBill is what the month is expected to cost.
func ProjectedBill(m *MonthData, s Settings) float64 {
	return FixedCosts(m, s) + VariableCosts(m, s)
}

// LiveBalance reconciles the advance payment against the projected
// bill. Positive means a refund is due, negative means the user owes.
func LiveBalance(m *MonthData, s Settings) float64 {
	adv := s.DefaultAdvancePayment
	if m != nil {
		adv = m.AdvancePayment
	}
	return adv - ProjectedBill(m, s)
}

// ElectricityCost prices the month's kWh at its effective rate.
// Electricity is billed separately and is not part of the projected bill.
func ElectricityCost(m *MonthData, s Settings) float64 {
	if m == nil {
		return 0
	}
	return CostOf(m.Electricity.Kwh, EffectiveElectricityRate(m, s))
}

// CumulativeLiveBalance is the lifetime reconciliation: the sum of
// every tracked month's live balance, each month priced at its own
// effective rates. Order-independent by construction.
func CumulativeLiveBalance(months map[string]MonthData, s Settings) float64 {
	var total float64
	for _, m := range months {
		m := m
		total += LiveBalance(&m, s)
	}
	return total
}

// TrendData returns the contiguous chronological window of up to
// monthsBack points ending at the selected month. A window larger than
// the available history truncates; it never errors and never pads.
// The selected month must exist in the ledger for a non-empty result.
func TrendData(months map[string]MonthData, selected string, monthsBack int, s Settings) []TrendPoint {
	if monthsBack <= 0 {
		return nil
	}
	keys := SortedMonthKeys(months)
	end := -1
	for i, k := range keys {
		if k == selected {
			end = i
			break
		}
	}
	if end < 0 {
		return nil
	}
	start := end - monthsBack + 1
	if start < 0 {
		start = 0
	}
	points := make([]TrendPoint, 0, end-start+1)
	for _, key := range keys[start : end+1] {
		m := months[key]
		fixed := FixedCosts(&m, s)
		variable := VariableCosts(&m, s)
		projected := fixed + variable
		points = append(points, TrendPoint{
			Month:           key,
			MonthLabel:      MonthLabel(key),
			ShortLabel:      ShortMonthLabel(key),
			ProjectedBill:   projected,
			AdvancePayment:  m.AdvancePayment,
			Balance:         m.AdvancePayment - projected,
			ColdWater:       m.Usage.ColdWater,
			HotWater:        m.Usage.HotWater,
			Heating:         m.Usage.Heating,
			TotalWater:      m.Usage.ColdWater + m.Usage.HotWater,
			VariableCosts:   variable,
			FixedCosts:      fixed,
			Electricity:     m.Electricity.Kwh,
			ElectricityCost: ElectricityCost(&m, s),
		})
	}
	return points
}
