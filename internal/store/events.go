package store

import (
	"encoding/json"
	"time"

	"flux/internal/core"
)

// Change events mirror the two persisted tables. They are produced
// after every successful write and merged into other clients' state;
// re-applying the same event is a no-op because the payload is a full
// snapshot of the row.

type Table string

const (
	TableSettings  Table = "settings"
	TableMonthData Table = "month_data"
)

type EventKind string

const (
	EventUpsert EventKind = "upsert"
	EventDelete EventKind = "delete"
)

// ChangeEvent is one insert/update/delete notification. Settings
// events carry the full settings snapshot; month events carry the full
// month record (upsert) or just the key (delete).
type ChangeEvent struct {
	Table     Table           `json:"table"`
	Kind      EventKind       `json:"kind"`
	Account   string          `json:"account"`
	Month     string          `json:"month,omitempty"`
	Settings  *core.Settings  `json:"settings,omitempty"`
	MonthData *core.MonthData `json:"monthData,omitempty"`
	At        time.Time       `json:"at"`
}

func (ev ChangeEvent) ToJSON() ([]byte, error) { return json.Marshal(ev) }

func ChangeEventFromJSON(data []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ChangeEvent{}, err
	}
	return ev, nil
}

func settingsEvent(account string, s core.Settings) ChangeEvent {
	return ChangeEvent{
		Table:    TableSettings,
		Kind:     EventUpsert,
		Account:  account,
		Settings: &s,
		At:       time.Now().UTC(),
	}
}

func monthUpsertEvent(account, month string, m core.MonthData) ChangeEvent {
	return ChangeEvent{
		Table:     TableMonthData,
		Kind:      EventUpsert,
		Account:   account,
		Month:     month,
		MonthData: &m,
		At:        time.Now().UTC(),
	}
}

func monthDeleteEvent(account, month string) ChangeEvent {
	return ChangeEvent{
		Table:   TableMonthData,
		Kind:    EventDelete,
		Account: account,
		Month:   month,
		At:      time.Now().UTC(),
	}
}
