// Package memory is the in-process backend: the default for demo and
// guest sessions and the fixture for tests. It also fans change events
// out to in-process subscribers, standing in for the realtime channel
// a remote deployment gets from the AMQP bus.
package memory

import (
	"context"
	"sync"

	"flux/internal/core"
	"flux/internal/store"
)

type accountData struct {
	settings *core.Settings
	months   map[string]core.MonthData
}

type Store struct {
	mu       sync.Mutex
	accounts map[string]*accountData
	subs     map[int]chan store.ChangeEvent
	nextSub  int
}

func New() *Store {
	return &Store{
		accounts: make(map[string]*accountData),
		subs:     make(map[int]chan store.ChangeEvent),
	}
}

var _ store.Backend = (*Store)(nil)

func (s *Store) LoadSettings(_ context.Context, account string) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[account]
	if !ok || acc.settings == nil {
		return core.Settings{}, store.ErrNotFound
	}
	return *acc.settings, nil
}

func (s *Store) UpsertSettings(_ context.Context, account string, settings core.Settings) error {
	s.mu.Lock()
	acc := s.account(account)
	cp := settings
	acc.settings = &cp
	s.mu.Unlock()

	s.emit(store.ChangeEvent{
		Table:    store.TableSettings,
		Kind:     store.EventUpsert,
		Account:  account,
		Settings: &cp,
	})
	return nil
}

func (s *Store) LoadMonths(_ context.Context, account string) (map[string]core.MonthData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]core.MonthData)
	if acc, ok := s.accounts[account]; ok {
		for k, m := range acc.months {
			out[k] = m.Clone()
		}
	}
	return out, nil
}

func (s *Store) UpsertMonth(_ context.Context, account, month string, m core.MonthData) error {
	cp := m.Clone()
	s.mu.Lock()
	s.account(account).months[month] = cp
	s.mu.Unlock()

	ev := cp.Clone()
	s.emit(store.ChangeEvent{
		Table:     store.TableMonthData,
		Kind:      store.EventUpsert,
		Account:   account,
		Month:     month,
		MonthData: &ev,
	})
	return nil
}

func (s *Store) DeleteMonth(_ context.Context, account, month string) error {
	s.mu.Lock()
	if acc, ok := s.accounts[account]; ok {
		delete(acc.months, month)
	}
	s.mu.Unlock()

	s.emit(store.ChangeEvent{
		Table:   store.TableMonthData,
		Kind:    store.EventDelete,
		Account: account,
		Month:   month,
	})
	return nil
}

// Subscribe returns a buffered channel of change events for all
// accounts plus a cancel func. Slow subscribers drop events rather
// than block writers; a dropped echo is benign because every event is
// a full snapshot.
func (s *Store) Subscribe() (<-chan store.ChangeEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan store.ChangeEvent, 64)
	s.subs[id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *Store) emit(ev store.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Store) account(account string) *accountData {
	acc, ok := s.accounts[account]
	if !ok {
		acc = &accountData{months: make(map[string]core.MonthData)}
		s.accounts[account] = acc
	}
	return acc
}
