package core

// UsageFromReadings derives per-channel usage from two consecutive
// absolute meter readings. A channel whose reading decreased (meter
// replaced or rolled over) yields zero usage, never a negative value;
// clamping is the policy, not an error.
func UsageFromReadings(cur, prev MeterReadings) (Usage, ElectricityUsage) {
	u := Usage{
		ColdWater: clampDelta(cur.ColdWater, prev.ColdWater),
		HotWater:  clampDelta(cur.HotWater, prev.HotWater),
		Heating:   clampDelta(cur.Heating, prev.Heating),
	}
	e := ElectricityUsage{Kwh: clampDelta(cur.Electricity, prev.Electricity)}
	return u, e
}

// CostOf is the plain usage-times-rate product. No rounding is applied
// here; rounding is a display concern.
func CostOf(usage, rate float64) float64 { return usage * rate }

// PreviousReadings resolves the meter baseline for a month: the stored
// readings of the chronologically nearest earlier month, or the global
// starting readings when that month recorded none or no earlier month
// exists.
func PreviousReadings(months map[string]MonthData, monthKey string, s Settings) MeterReadings {
	var prevKey string
	for k := range months {
		if k < monthKey && k > prevKey {
			prevKey = k
		}
	}
	if prevKey == "" {
		return s.StartingMeterReadings
	}
	prev := months[prevKey]
	if prev.MeterReadings == nil {
		return s.StartingMeterReadings
	}
	return *prev.MeterReadings
}

func clampDelta(cur, prev float64) float64 {
	if d := cur - prev; d > 0 {
		return d
	}
	return 0
}

// ClampNonNegative enforces the write-time invariant that usage and
// meter-reading fields are never negative.
func ClampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
