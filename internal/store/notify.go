package store

import (
	"context"
	"log/slog"

	"flux/internal/core"
)

// Notifying decorates a Backend so every successful write publishes a
// ChangeEvent. Backends stay ignorant of messaging; any of them gains
// realtime push by being wrapped here.
type Notifying struct {
	Backend
	publisher EventPublisher
}

func WithNotifications(b Backend, p EventPublisher) *Notifying {
	return &Notifying{Backend: b, publisher: p}
}

func (n *Notifying) UpsertSettings(ctx context.Context, account string, s core.Settings) error {
	if err := n.Backend.UpsertSettings(ctx, account, s); err != nil {
		return err
	}
	n.publish(ctx, settingsEvent(account, s))
	return nil
}

func (n *Notifying) UpsertMonth(ctx context.Context, account, month string, m core.MonthData) error {
	if err := n.Backend.UpsertMonth(ctx, account, month, m); err != nil {
		return err
	}
	n.publish(ctx, monthUpsertEvent(account, month, m))
	return nil
}

func (n *Notifying) DeleteMonth(ctx context.Context, account, month string) error {
	if err := n.Backend.DeleteMonth(ctx, account, month); err != nil {
		return err
	}
	n.publish(ctx, monthDeleteEvent(account, month))
	return nil
}

// publish failures never fail the write; the row is already persisted
// and other clients will converge on their next load.
func (n *Notifying) publish(ctx context.Context, ev ChangeEvent) {
	if n.publisher == nil {
		return
	}
	if err := n.publisher.PublishChange(ctx, ev); err != nil {
		slog.WarnContext(ctx, "Failed to publish change event",
			"table", ev.Table, "kind", ev.Kind, "month", ev.Month, "error", err)
	}
}
