package ledger

import (
	"context"

	"github.com/dukerupert/choreledger/internal/model"
)

// Counters returns a snapshot of the lifetime tallies.
func (l *Ledger) Counters(ctx context.Context) (model.Counters, error) {
	var c model.Counters
	err := l.view(ctx, "get_counters", "", func(tx *txn) error {
		var err error
		c, err = tx.counters.Snapshot(tx.ctx)
		return err
	})
	return c, err
}

const maxEventPage = 500

// Events returns committed events with seq greater than after, oldest first.
func (l *Ledger) Events(ctx context.Context, after int64, limit int) ([]model.Event, error) {
	if limit <= 0 || limit > maxEventPage {
		limit = maxEventPage
	}
	events := []model.Event{}
	err := l.view(ctx, "list_events", "", func(tx *txn) error {
		page, err := tx.log.List(tx.ctx, after, limit)
		if err != nil {
			return err
		}
		events = append(events, page...)
		return nil
	})
	return events, err
}

// VerifyEvents checks the audit log hash chain and returns the seq of the
// first tampered entry, or 0 when the chain is intact.
func (l *Ledger) VerifyEvents(ctx context.Context) (int64, error) {
	var broken int64
	err := l.view(ctx, "verify_events", "", func(tx *txn) error {
		var err error
		broken, err = tx.log.Verify(tx.ctx)
		return err
	})
	return broken, err
}
