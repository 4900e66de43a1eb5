// Package tracker owns the in-memory billing state for one session:
// global settings, the month ledger and the selected-month cursor. All
// mutation goes through its command methods, which update state under a
// mutex with copy-on-write records and schedule debounced writes to the
// remote store. Inbound realtime events reuse the same update path, so
// a remote echo of a local write applies as a harmless no-op.
package tracker

import (
	"sync"
	"time"

	"flux/internal/core"
	"flux/internal/store"
)

const (
	DefaultSettingsDebounce = 1000 * time.Millisecond
	DefaultMonthDebounce    = 500 * time.Millisecond
)

type Options struct {
	// Account is the stable identifier rows are keyed by. Empty means a
	// guest session: demo data, nothing ever persisted.
	Account string

	SettingsDebounce time.Duration
	MonthDebounce    time.Duration
}

type Tracker struct {
	backend store.Backend
	account string

	mu       sync.Mutex
	settings core.Settings
	months   map[string]core.MonthData
	selected string

	loading     bool
	inFlight    int
	lastSyncErr error

	settingsDebounce *debouncer
	monthDebounce    *debouncer
	dirtyMonths      map[string]struct{}
}

func New(backend store.Backend, opts Options) *Tracker {
	settingsDelay := opts.SettingsDebounce
	if settingsDelay <= 0 {
		settingsDelay = DefaultSettingsDebounce
	}
	monthDelay := opts.MonthDebounce
	if monthDelay <= 0 {
		monthDelay = DefaultMonthDebounce
	}

	return &Tracker{
		backend:          backend,
		account:          opts.Account,
		settings:         core.DefaultSettings(),
		months:           make(map[string]core.MonthData),
		selected:         core.MonthKeyOf(time.Now()),
		settingsDebounce: newDebouncer(settingsDelay),
		monthDebounce:    newDebouncer(monthDelay),
		dirtyMonths:      make(map[string]struct{}),
	}
}

// Guest reports whether this session runs without an account. Guest
// sessions hold demo data in memory and never touch the backend.
func (t *Tracker) Guest() bool { return t.account == "" }

func (t *Tracker) Settings() core.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// Months returns a snapshot of the ledger. Records are cloned, so the
// caller can hold them across later mutations.
func (t *Tracker) Months() map[string]core.MonthData {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]core.MonthData, len(t.months))
	for key, m := range t.months {
		out[key] = m.Clone()
	}
	return out
}

func (t *Tracker) SelectedMonth() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected
}

func (t *Tracker) SelectMonth(key string) error {
	if !core.ValidMonthKey(key) {
		return core.ErrInvalidMonthKey
	}
	t.mu.Lock()
	t.selected = key
	t.mu.Unlock()
	return nil
}

func (t *Tracker) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// Syncing is true while any remote read or write is in flight,
// including the initial load.
func (t *Tracker) Syncing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight > 0
}

// LastSyncError returns the most recent load or write failure. Failed
// writes are not retried; the local edit stands and the next write
// carries it forward.
func (t *Tracker) LastSyncError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSyncErr
}

// Close cancels pending debounce timers without flushing them.
// Teardown never writes.
func (t *Tracker) Close() {
	t.settingsDebounce.Cancel()
	t.monthDebounce.Cancel()
}

// updateSettings applies fn to a copy of the settings under the lock,
// installs the result and schedules a debounced save.
func (t *Tracker) updateSettings(fn func(s *core.Settings)) {
	t.mu.Lock()
	s := t.settings
	fn(&s)
	t.settings = s
	t.mu.Unlock()

	t.scheduleSettingsSave()
}

// updateMonth applies fn to a cloned record for key, materializing a
// default record if the key is unseen, installs the result and
// schedules a debounced save. Readers holding older snapshots are
// unaffected.
func (t *Tracker) updateMonth(key string, fn func(m *core.MonthData)) {
	t.mu.Lock()
	m, ok := t.months[key]
	if !ok {
		m = core.DefaultMonthData(t.settings)
	}
	m = m.Clone()
	fn(&m)
	t.months[key] = m
	if !t.Guest() {
		t.dirtyMonths[key] = struct{}{}
	}
	t.mu.Unlock()

	t.scheduleMonthSave()
}

func (t *Tracker) beginSync() {
	t.mu.Lock()
	t.inFlight++
	t.mu.Unlock()
}

func (t *Tracker) endSync(err error) {
	t.mu.Lock()
	t.inFlight--
	if err != nil {
		t.lastSyncErr = err
	}
	t.mu.Unlock()
}
