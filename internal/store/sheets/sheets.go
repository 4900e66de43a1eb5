// Package sheets stores settings and month rows in a Google
// Spreadsheet: a "Settings" sheet with one row per account and a
// "Months" sheet with one row per (account, month). Object-shaped
// fields are kept as JSON cells so the row layout stays flat.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"flux/internal/core"
	"flux/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	settingsSheet string
	monthsSheet   string
}

var _ store.Backend = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional sheet names: GOOGLE_SETTINGS_SHEET_NAME (default "Settings"),
// GOOGLE_MONTHS_SHEET_NAME (default "Months").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	settingsSheet := strings.TrimSpace(os.Getenv("GOOGLE_SETTINGS_SHEET_NAME"))
	if settingsSheet == "" {
		settingsSheet = "Settings"
	}
	monthsSheet := strings.TrimSpace(os.Getenv("GOOGLE_MONTHS_SHEET_NAME"))
	if monthsSheet == "" {
		monthsSheet = "Months"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		settingsSheet: settingsSheet,
		monthsSheet:   monthsSheet,
	}, nil
}

// newSheetsService initializes a Sheets service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Settings sheet columns:
// A account, B currency, C locale, D rates JSON, E electricity rates JSON,
// F quotas JSON, G default advance payment, H starting readings JSON, I updated_at.

func (c *Client) LoadSettings(ctx context.Context, account string) (core.Settings, error) {
	if c.svc == nil {
		return core.Settings{}, errors.New("sheets service not initialized")
	}
	_, row, err := c.findSettingsRow(ctx, account)
	if err != nil {
		return core.Settings{}, err
	}
	if row == nil {
		return core.Settings{}, store.ErrNotFound
	}
	return decodeSettingsRow(row)
}

func (c *Client) UpsertSettings(ctx context.Context, account string, s core.Settings) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rowIdx, _, err := c.findSettingsRow(ctx, account)
	if err != nil {
		return err
	}

	values, err := encodeSettingsRow(account, s)
	if err != nil {
		return err
	}
	return c.writeRow(ctx, c.settingsSheet, rowIdx, "I", values)
}

// Months sheet columns:
// A account, B month key, C cold water, D hot water, E heating, F kWh,
// G advance payment, H notes, I is_complete, J overrides JSON,
// K meter readings JSON, L updated_at.

func (c *Client) LoadMonths(ctx context.Context, account string) (map[string]core.MonthData, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.monthsSheet+"!A:L").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.monthsSheet, err)
	}

	months := make(map[string]core.MonthData)
	for _, row := range resp.Values {
		if len(row) < 2 || cell(row, 0) != account {
			continue
		}
		key := cell(row, 1)
		if !core.ValidMonthKey(key) {
			continue
		}
		m, err := decodeMonthRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode month row %s: %w", key, err)
		}
		months[key] = m
	}
	return months, nil
}

func (c *Client) UpsertMonth(ctx context.Context, account, month string, m core.MonthData) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rowIdx, err := c.findMonthRow(ctx, account, month)
	if err != nil {
		return err
	}

	values, err := encodeMonthRow(account, month, m)
	if err != nil {
		return err
	}
	return c.writeRow(ctx, c.monthsSheet, rowIdx, "L", values)
}

func (c *Client) DeleteMonth(ctx context.Context, account, month string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rowIdx, err := c.findMonthRow(ctx, account, month)
	if err != nil {
		return err
	}
	if rowIdx == 0 {
		return nil // already gone
	}
	rng := fmt.Sprintf("%s!A%d:L%d", c.monthsSheet, rowIdx, rowIdx)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

// findSettingsRow returns the 1-based row index and raw row for an
// account, or (0, nil) when absent.
func (c *Client) findSettingsRow(ctx context.Context, account string) (int, []any, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.settingsSheet+"!A:I").
		Context(ctx).Do()
	if err != nil {
		return 0, nil, fmt.Errorf("read %s: %w", c.settingsSheet, err)
	}
	for i, row := range resp.Values {
		if cell(row, 0) == account {
			return i + 1, row, nil
		}
	}
	return 0, nil, nil
}

func (c *Client) findMonthRow(ctx context.Context, account, month string) (int, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.monthsSheet+"!A:B").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", c.monthsSheet, err)
	}
	for i, row := range resp.Values {
		if cell(row, 0) == account && cell(row, 1) == month {
			return i + 1, nil
		}
	}
	return 0, nil
}

// writeRow updates row rowIdx in place, or appends below the existing
// rows when rowIdx is zero.
func (c *Client) writeRow(ctx context.Context, sheet string, rowIdx int, lastCol string, values []any) error {
	if rowIdx == 0 {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A:A").
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("get sheet dimensions for %s: %w", sheet, err)
		}
		rowIdx = len(resp.Values) + 1
	}
	rng := fmt.Sprintf("%s!A%d:%s%d", sheet, rowIdx, lastCol, rowIdx)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func encodeSettingsRow(account string, s core.Settings) ([]any, error) {
	rates, err := json.Marshal(s.Rates)
	if err != nil {
		return nil, fmt.Errorf("encode rates: %w", err)
	}
	elec, err := json.Marshal(s.ElectricityRates)
	if err != nil {
		return nil, fmt.Errorf("encode electricity rates: %w", err)
	}
	quotas, err := json.Marshal(s.Quotas)
	if err != nil {
		return nil, fmt.Errorf("encode quotas: %w", err)
	}
	smr, err := json.Marshal(s.StartingMeterReadings)
	if err != nil {
		return nil, fmt.Errorf("encode starting meter readings: %w", err)
	}
	return []any{
		account, s.Currency, s.CurrencyLocale, string(rates), string(elec),
		string(quotas), s.DefaultAdvancePayment, string(smr),
		time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func decodeSettingsRow(row []any) (core.Settings, error) {
	var s core.Settings
	s.Currency = cell(row, 1)
	s.CurrencyLocale = cell(row, 2)
	if err := json.Unmarshal([]byte(cell(row, 3)), &s.Rates); err != nil {
		return core.Settings{}, fmt.Errorf("decode rates: %w", err)
	}
	if err := json.Unmarshal([]byte(cell(row, 4)), &s.ElectricityRates); err != nil {
		return core.Settings{}, fmt.Errorf("decode electricity rates: %w", err)
	}
	var stored core.StoredQuotas
	if err := json.Unmarshal([]byte(cell(row, 5)), &stored); err != nil {
		return core.Settings{}, fmt.Errorf("decode quotas: %w", err)
	}
	s.Quotas = core.UpgradeQuotas(stored)
	adv, err := parseNumber(cell(row, 6))
	if err != nil {
		return core.Settings{}, fmt.Errorf("decode advance payment: %w", err)
	}
	s.DefaultAdvancePayment = adv
	if err := json.Unmarshal([]byte(cell(row, 7)), &s.StartingMeterReadings); err != nil {
		return core.Settings{}, fmt.Errorf("decode starting meter readings: %w", err)
	}
	return s, nil
}

func encodeMonthRow(account, month string, m core.MonthData) ([]any, error) {
	overrides := ""
	if m.Overrides != nil {
		b, err := json.Marshal(m.Overrides)
		if err != nil {
			return nil, fmt.Errorf("encode overrides: %w", err)
		}
		overrides = string(b)
	}
	meters := ""
	if m.MeterReadings != nil {
		b, err := json.Marshal(m.MeterReadings)
		if err != nil {
			return nil, fmt.Errorf("encode meter readings: %w", err)
		}
		meters = string(b)
	}
	return []any{
		account, month,
		m.Usage.ColdWater, m.Usage.HotWater, m.Usage.Heating, m.Electricity.Kwh,
		m.AdvancePayment, m.Notes, m.IsComplete, overrides, meters,
		time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func decodeMonthRow(row []any) (core.MonthData, error) {
	var m core.MonthData
	var err error
	if m.Usage.ColdWater, err = parseNumber(cell(row, 2)); err != nil {
		return core.MonthData{}, fmt.Errorf("cold water: %w", err)
	}
	if m.Usage.HotWater, err = parseNumber(cell(row, 3)); err != nil {
		return core.MonthData{}, fmt.Errorf("hot water: %w", err)
	}
	if m.Usage.Heating, err = parseNumber(cell(row, 4)); err != nil {
		return core.MonthData{}, fmt.Errorf("heating: %w", err)
	}
	if m.Electricity.Kwh, err = parseNumber(cell(row, 5)); err != nil {
		return core.MonthData{}, fmt.Errorf("electricity: %w", err)
	}
	if m.AdvancePayment, err = parseNumber(cell(row, 6)); err != nil {
		return core.MonthData{}, fmt.Errorf("advance payment: %w", err)
	}
	m.Notes = cell(row, 7)
	m.IsComplete = parseBool(cell(row, 8))
	if ov := cell(row, 9); ov != "" {
		var overrides core.MonthOverrides
		if err := json.Unmarshal([]byte(ov), &overrides); err != nil {
			return core.MonthData{}, fmt.Errorf("overrides: %w", err)
		}
		m.Overrides = &overrides
	}
	if mr := cell(row, 10); mr != "" {
		var readings core.MeterReadings
		if err := json.Unmarshal([]byte(mr), &readings); err != nil {
			return core.MonthData{}, fmt.Errorf("meter readings: %w", err)
		}
		m.MeterReadings = &readings
	}
	return m, nil
}

func cell(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

// parseNumber tolerates both dot and comma decimal separators, since
// spreadsheet locales vary.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
