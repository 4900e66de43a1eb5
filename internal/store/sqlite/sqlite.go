// Package sqlite persists settings and month rows in a local SQLite
// database, the self-hosted alternative to the sheets backend.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"flux/internal/core"
	"flux/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

var _ store.Backend = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) LoadSettings(ctx context.Context, account string) (core.Settings, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT currency, currency_locale, rates, electricity_rates, quotas,
		       default_advance_payment, starting_meter_readings
		FROM settings WHERE account = ?`, account)

	var (
		s                                        core.Settings
		ratesJSON, elecJSON, quotasJSON, smrJSON string
	)
	err := row.Scan(&s.Currency, &s.CurrencyLocale, &ratesJSON, &elecJSON, &quotasJSON,
		&s.DefaultAdvancePayment, &smrJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{}, store.ErrNotFound
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	if err := json.Unmarshal([]byte(ratesJSON), &s.Rates); err != nil {
		return core.Settings{}, fmt.Errorf("decode rates: %w", err)
	}
	if err := json.Unmarshal([]byte(elecJSON), &s.ElectricityRates); err != nil {
		return core.Settings{}, fmt.Errorf("decode electricity rates: %w", err)
	}
	// Quotas decode through the legacy-tolerant shape so old rows with a
	// combined water allowance upgrade on read.
	var stored core.StoredQuotas
	if err := json.Unmarshal([]byte(quotasJSON), &stored); err != nil {
		return core.Settings{}, fmt.Errorf("decode quotas: %w", err)
	}
	s.Quotas = core.UpgradeQuotas(stored)
	if err := json.Unmarshal([]byte(smrJSON), &s.StartingMeterReadings); err != nil {
		return core.Settings{}, fmt.Errorf("decode starting meter readings: %w", err)
	}
	return s, nil
}

func (r *Repository) UpsertSettings(ctx context.Context, account string, s core.Settings) error {
	ratesJSON, err := json.Marshal(s.Rates)
	if err != nil {
		return fmt.Errorf("encode rates: %w", err)
	}
	elecJSON, err := json.Marshal(s.ElectricityRates)
	if err != nil {
		return fmt.Errorf("encode electricity rates: %w", err)
	}
	quotasJSON, err := json.Marshal(s.Quotas)
	if err != nil {
		return fmt.Errorf("encode quotas: %w", err)
	}
	smrJSON, err := json.Marshal(s.StartingMeterReadings)
	if err != nil {
		return fmt.Errorf("encode starting meter readings: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (account, currency, currency_locale, rates, electricity_rates,
		                      quotas, default_advance_payment, starting_meter_readings, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account) DO UPDATE SET
			currency = excluded.currency,
			currency_locale = excluded.currency_locale,
			rates = excluded.rates,
			electricity_rates = excluded.electricity_rates,
			quotas = excluded.quotas,
			default_advance_payment = excluded.default_advance_payment,
			starting_meter_readings = excluded.starting_meter_readings,
			updated_at = CURRENT_TIMESTAMP`,
		account, s.Currency, s.CurrencyLocale, string(ratesJSON), string(elecJSON),
		string(quotasJSON), s.DefaultAdvancePayment, string(smrJSON))
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (r *Repository) LoadMonths(ctx context.Context, account string) (map[string]core.MonthData, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT month, cold_water, hot_water, heating, electricity_kwh,
		       advance_payment, notes, is_complete, overrides, meter_readings
		FROM month_data WHERE account = ?`, account)
	if err != nil {
		return nil, fmt.Errorf("load months: %w", err)
	}
	defer rows.Close()

	months := make(map[string]core.MonthData)
	for rows.Next() {
		var (
			month                    string
			m                        core.MonthData
			notes, overrides, meters sql.NullString
		)
		if err := rows.Scan(&month, &m.Usage.ColdWater, &m.Usage.HotWater, &m.Usage.Heating,
			&m.Electricity.Kwh, &m.AdvancePayment, &notes, &m.IsComplete, &overrides, &meters); err != nil {
			return nil, fmt.Errorf("scan month row: %w", err)
		}
		m.Notes = notes.String
		if overrides.Valid && overrides.String != "" {
			var ov core.MonthOverrides
			if err := json.Unmarshal([]byte(overrides.String), &ov); err != nil {
				return nil, fmt.Errorf("decode overrides for %s: %w", month, err)
			}
			m.Overrides = &ov
		}
		if meters.Valid && meters.String != "" {
			var mr core.MeterReadings
			if err := json.Unmarshal([]byte(meters.String), &mr); err != nil {
				return nil, fmt.Errorf("decode meter readings for %s: %w", month, err)
			}
			m.MeterReadings = &mr
		}
		months[month] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate month rows: %w", err)
	}
	return months, nil
}

func (r *Repository) UpsertMonth(ctx context.Context, account, month string, m core.MonthData) error {
	overrides, err := nullableJSON(m.Overrides)
	if err != nil {
		return fmt.Errorf("encode overrides: %w", err)
	}
	meters, err := nullableJSON(m.MeterReadings)
	if err != nil {
		return fmt.Errorf("encode meter readings: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO month_data (account, month, cold_water, hot_water, heating, electricity_kwh,
		                        advance_payment, notes, is_complete, overrides, meter_readings, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account, month) DO UPDATE SET
			cold_water = excluded.cold_water,
			hot_water = excluded.hot_water,
			heating = excluded.heating,
			electricity_kwh = excluded.electricity_kwh,
			advance_payment = excluded.advance_payment,
			notes = excluded.notes,
			is_complete = excluded.is_complete,
			overrides = excluded.overrides,
			meter_readings = excluded.meter_readings,
			updated_at = CURRENT_TIMESTAMP`,
		account, month, m.Usage.ColdWater, m.Usage.HotWater, m.Usage.Heating, m.Electricity.Kwh,
		m.AdvancePayment, nullableString(m.Notes), m.IsComplete, overrides, meters)
	if err != nil {
		return fmt.Errorf("upsert month %s: %w", month, err)
	}
	return nil
}

func (r *Repository) DeleteMonth(ctx context.Context, account, month string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM month_data WHERE account = ? AND month = ?`, account, month); err != nil {
		return fmt.Errorf("delete month %s: %w", month, err)
	}
	return nil
}

func nullableJSON(v any) (sql.NullString, error) {
	switch t := v.(type) {
	case *core.MonthOverrides:
		if t == nil {
			return sql.NullString{}, nil
		}
	case *core.MeterReadings:
		if t == nil {
			return sql.NullString{}, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
