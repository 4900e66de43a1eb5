package core

import "testing"

func TestEffectiveRates(t *testing.T) {
	s := DefaultSettings()

	t.Run("no overrides inherits settings", func(t *testing.T) {
		m := &MonthData{}
		if got := EffectiveRates(m, s); got != s.Rates {
			t.Errorf("EffectiveRates = %+v, want %+v", got, s.Rates)
		}
	})

	t.Run("nil month inherits settings", func(t *testing.T) {
		if got := EffectiveRates(nil, s); got != s.Rates {
			t.Errorf("EffectiveRates(nil) = %+v, want %+v", got, s.Rates)
		}
	})

	t.Run("present override shadows the field", func(t *testing.T) {
		m := &MonthData{Overrides: &MonthOverrides{Rates: &RateOverrides{
			ColdWater:  Float64(20.0),
			AdminFixed: Float64(0), // an explicit zero override is honored
		}}}
		got := EffectiveRates(m, s)
		if got.ColdWater != 20.0 {
			t.Errorf("ColdWater = %v, want 20.0", got.ColdWater)
		}
		if got.AdminFixed != 0 {
			t.Errorf("AdminFixed = %v, want 0", got.AdminFixed)
		}
		if got.HotWaterHeating != s.Rates.HotWaterHeating {
			t.Errorf("HotWaterHeating = %v, want inherited %v", got.HotWaterHeating, s.Rates.HotWaterHeating)
		}
	})
}

func TestEffectiveQuotas(t *testing.T) {
	s := DefaultSettings()

	tests := []struct {
		name string
		ov   *QuotaOverrides
		want Quotas
	}{
		{
			name: "per-channel override wins",
			ov:   &QuotaOverrides{ColdWaterMonth: Float64(6)},
			want: Quotas{ColdWaterMonth: 6, HotWaterMonth: 4, HeatMonth: 1, ElectricityMonth: 150},
		},
		{
			name: "legacy combined water field shadows both channels",
			ov:   &QuotaOverrides{WaterMonth: Float64(5)},
			want: Quotas{ColdWaterMonth: 5, HotWaterMonth: 5, HeatMonth: 1, ElectricityMonth: 150},
		},
		{
			name: "per-channel beats legacy",
			ov:   &QuotaOverrides{ColdWaterMonth: Float64(6), WaterMonth: Float64(5)},
			want: Quotas{ColdWaterMonth: 6, HotWaterMonth: 5, HeatMonth: 1, ElectricityMonth: 150},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MonthData{Overrides: &MonthOverrides{Quotas: tt.ov}}
			if got := EffectiveQuotas(m, s); got != tt.want {
				t.Errorf("EffectiveQuotas = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEffectiveElectricityRate(t *testing.T) {
	s := DefaultSettings()
	if got := EffectiveElectricityRate(&MonthData{}, s); got != 0.85 {
		t.Errorf("inherited rate = %v, want 0.85", got)
	}
	m := &MonthData{Overrides: &MonthOverrides{ElectricityRate: Float64(1.20)}}
	if got := EffectiveElectricityRate(m, s); got != 1.20 {
		t.Errorf("overridden rate = %v, want 1.20", got)
	}
}

func TestUpgradeQuotas(t *testing.T) {
	tests := []struct {
		name   string
		stored StoredQuotas
		want   Quotas
	}{
		{
			name:   "empty object falls back to hard defaults",
			stored: StoredQuotas{},
			want:   DefaultQuotas(),
		},
		{
			name:   "legacy combined water allowance splits into both channels",
			stored: StoredQuotas{WaterMonth: Float64(3.5), HeatMonth: Float64(0.8)},
			want:   Quotas{ColdWaterMonth: 3.5, HotWaterMonth: 3.5, HeatMonth: 0.8, ElectricityMonth: 150},
		},
		{
			name: "modern fields pass through",
			stored: StoredQuotas{
				ColdWaterMonth:   Float64(4.5),
				HotWaterMonth:    Float64(3.0),
				HeatMonth:        Float64(1.2),
				ElectricityMonth: Float64(200),
			},
			want: Quotas{ColdWaterMonth: 4.5, HotWaterMonth: 3.0, HeatMonth: 1.2, ElectricityMonth: 200},
		},
		{
			name:   "modern field beats legacy field",
			stored: StoredQuotas{ColdWaterMonth: Float64(4.5), WaterMonth: Float64(3.5)},
			want:   Quotas{ColdWaterMonth: 4.5, HotWaterMonth: 3.5, HeatMonth: 1, ElectricityMonth: 150},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UpgradeQuotas(tt.stored); got != tt.want {
				t.Errorf("UpgradeQuotas = %+v, want %+v", got, tt.want)
			}
		})
	}
}
