package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"flux/internal/core"
	"flux/internal/store"
)

// Load fetches the account's settings and months in parallel and
// installs them. Guests get deterministic sample months instead; a new
// account with no rows gets defaults and an empty ledger. A failed
// load degrades to defaults so the session stays editable, with the
// error recorded for the sync indicator.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	t.loading = true
	t.inFlight++
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.loading = false
		t.inFlight--
		t.mu.Unlock()
	}()

	if t.Guest() {
		now := time.Now()
		t.mu.Lock()
		t.settings = core.DefaultSettings()
		t.months = core.SampleMonths(now, t.settings)
		t.selected = core.MonthKeyOf(now)
		t.mu.Unlock()
		slog.InfoContext(ctx, "Guest session, loaded sample months")
		return nil
	}

	var (
		settings core.Settings
		months   map[string]core.MonthData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := t.backend.LoadSettings(gctx, t.account)
		if errors.Is(err, store.ErrNotFound) {
			settings = core.DefaultSettings()
			return nil
		}
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		settings = s
		return nil
	})
	g.Go(func() error {
		m, err := t.backend.LoadMonths(gctx, t.account)
		if err != nil {
			return fmt.Errorf("load months: %w", err)
		}
		months = m
		return nil
	})
	if err := g.Wait(); err != nil {
		t.mu.Lock()
		t.settings = core.DefaultSettings()
		t.months = make(map[string]core.MonthData)
		t.lastSyncErr = err
		t.mu.Unlock()
		slog.ErrorContext(ctx, "Initial load failed, starting from defaults", "error", err)
		return nil
	}

	if months == nil {
		months = make(map[string]core.MonthData)
	}
	t.mu.Lock()
	t.settings = settings
	t.months = months
	t.mu.Unlock()

	slog.InfoContext(ctx, "Loaded account data", "months", len(months))
	return nil
}

// ApplyRemote merges one inbound change event through the same locked
// state as local commands. Settings events replace the settings
// snapshot; month events upsert or delete by key. Events for other
// accounts are ignored, and re-applying an event the client already
// observed is a no-op in effect since payloads are full snapshots.
func (t *Tracker) ApplyRemote(ev store.ChangeEvent) error {
	if t.Guest() || ev.Account != t.account {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Table {
	case store.TableSettings:
		if ev.Settings == nil {
			return fmt.Errorf("settings event without payload")
		}
		t.settings = *ev.Settings
	case store.TableMonthData:
		if ev.Month == "" {
			return fmt.Errorf("month event without month key")
		}
		switch ev.Kind {
		case store.EventDelete:
			delete(t.months, ev.Month)
			if t.selected == ev.Month {
				if next := adjacentMonth(t.months, ev.Month); next != "" {
					t.selected = next
				}
			}
		case store.EventUpsert:
			if ev.MonthData == nil {
				return fmt.Errorf("month upsert event without payload")
			}
			t.months[ev.Month] = ev.MonthData.Clone()
		}
	}
	return nil
}

func (t *Tracker) scheduleSettingsSave() {
	if t.Guest() {
		return
	}
	t.settingsDebounce.Schedule(t.flushSettings)
}

func (t *Tracker) flushSettings() {
	t.mu.Lock()
	s := t.settings
	t.mu.Unlock()

	ctx := context.Background()
	t.beginSync()
	err := t.backend.UpsertSettings(ctx, t.account, s)
	t.endSync(err)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to save settings", "error", err)
	}
}

func (t *Tracker) scheduleMonthSave() {
	if t.Guest() {
		return
	}
	t.monthDebounce.Schedule(t.flushMonths)
}

// flushMonths writes out every month touched since the last flush.
// Only the final state of each dirty month goes over the wire;
// intermediate edits within the quiet window are never persisted.
func (t *Tracker) flushMonths() {
	t.mu.Lock()
	pending := make(map[string]core.MonthData, len(t.dirtyMonths))
	for key := range t.dirtyMonths {
		if m, ok := t.months[key]; ok {
			pending[key] = m.Clone()
		}
	}
	t.dirtyMonths = make(map[string]struct{})
	t.mu.Unlock()

	ctx := context.Background()
	for key, m := range pending {
		t.beginSync()
		err := t.backend.UpsertMonth(ctx, t.account, key, m)
		t.endSync(err)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to save month", "month", key, "error", err)
		}
	}
}
