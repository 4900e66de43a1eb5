package core

// Effective-value resolution layers a month's sparse overrides on top
// of the global settings. Resolution is pure and total: it never fails,
// and a month without overrides resolves to the settings values.

// EffectiveRates resolves the six rate fields for one month.
func EffectiveRates(m *MonthData, s Settings) Rates {
	out := s.Rates
	if m == nil || m.Overrides == nil || m.Overrides.Rates == nil {
		return out
	}
	ov := m.Overrides.Rates
	assign(&out.ColdWater, ov.ColdWater)
	assign(&out.HotWaterHeating, ov.HotWaterHeating)
	assign(&out.CentralHeatingVariable, ov.CentralHeatingVariable)
	assign(&out.GarbageFixed, ov.GarbageFixed)
	assign(&out.ParkingFixed, ov.ParkingFixed)
	assign(&out.AdminFixed, ov.AdminFixed)
	return out
}

// EffectiveQuotas resolves the four allowance fields. The legacy
// combined WaterMonth override still shadows both water channels when
// the per-channel field is absent.
func EffectiveQuotas(m *MonthData, s Settings) Quotas {
	out := s.Quotas
	if m == nil || m.Overrides == nil || m.Overrides.Quotas == nil {
		return out
	}
	ov := m.Overrides.Quotas
	assign(&out.ColdWaterMonth, coalesce(ov.ColdWaterMonth, ov.WaterMonth))
	assign(&out.HotWaterMonth, coalesce(ov.HotWaterMonth, ov.WaterMonth))
	assign(&out.HeatMonth, ov.HeatMonth)
	assign(&out.ElectricityMonth, ov.ElectricityMonth)
	return out
}

// EffectiveElectricityRate resolves the per-kWh price for one month.
func EffectiveElectricityRate(m *MonthData, s Settings) float64 {
	if m != nil && m.Overrides != nil && m.Overrides.ElectricityRate != nil {
		return *m.Overrides.ElectricityRate
	}
	return s.ElectricityRates.PerKwh
}

// StoredQuotas is the quota object as persisted. Older rows stored a
// single combined WaterMonth allowance and may lack any of the modern
// fields; UpgradeQuotas runs the fallback chain once at load time so
// the resolver above never sees schema history.
type StoredQuotas struct {
	ColdWaterMonth   *float64 `json:"coldWaterMonth,omitempty"`
	HotWaterMonth    *float64 `json:"hotWaterMonth,omitempty"`
	HeatMonth        *float64 `json:"heatMonth,omitempty"`
	ElectricityMonth *float64 `json:"electricityMonth,omitempty"`
	WaterMonth       *float64 `json:"waterMonth,omitempty"`
}

// UpgradeQuotas migrates a stored quota object to the modern shape:
// per-channel field, else legacy combined field, else the hard default.
func UpgradeQuotas(q StoredQuotas) Quotas {
	def := DefaultQuotas()
	out := Quotas{
		ColdWaterMonth:   def.ColdWaterMonth,
		HotWaterMonth:    def.HotWaterMonth,
		HeatMonth:        def.HeatMonth,
		ElectricityMonth: def.ElectricityMonth,
	}
	assign(&out.ColdWaterMonth, coalesce(q.ColdWaterMonth, q.WaterMonth))
	assign(&out.HotWaterMonth, coalesce(q.HotWaterMonth, q.WaterMonth))
	assign(&out.HeatMonth, q.HeatMonth)
	assign(&out.ElectricityMonth, q.ElectricityMonth)
	return out
}

func assign(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func coalesce(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
