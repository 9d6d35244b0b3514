// Package ledger is the permissioned state machine behind the family chore
// economy: account registry, family groups, task and reward lifecycles and
// the token balances they move.
//
// Every mutating operation runs under a single writer lock inside one SQL
// transaction. Guards read current state first; mutations, counter updates and
// the audit log entry are written only after every guard passed, and events
// are published to subscribers only after the commit.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukerupert/choreledger/internal/address"
	"github.com/dukerupert/choreledger/internal/model"
	"github.com/dukerupert/choreledger/internal/store"
)

// Publisher receives committed events in commit order.
type Publisher interface {
	Publish(model.Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(model.Event)

func (f PublisherFunc) Publish(e model.Event) { f(e) }

type Options struct {
	Logger      *slog.Logger
	Publisher   Publisher
	Treasury    Treasury
	TokenName   string
	TokenSymbol string
	// Clock returns the current time; defaults to time.Now.
	Clock func() time.Time
}

type Ledger struct {
	mu        sync.Mutex
	db        *sql.DB
	logger    *slog.Logger
	publisher Publisher
	treasury  Treasury
	name      string
	symbol    string
	clock     func() time.Time
	tracer    trace.Tracer
}

// New builds a ledger over an opened and migrated database. A bounded
// treasury is funded with its supply the first time it is seen.
func New(ctx context.Context, db *sql.DB, opts Options) (*Ledger, error) {
	l := &Ledger{
		db:        db,
		logger:    opts.Logger,
		publisher: opts.Publisher,
		treasury:  opts.Treasury,
		name:      opts.TokenName,
		symbol:    opts.TokenSymbol,
		clock:     opts.Clock,
		tracer:    otel.Tracer("github.com/dukerupert/choreledger/internal/ledger"),
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.clock == nil {
		l.clock = time.Now
	}
	if l.name == "" {
		l.name = "Family Token"
	}
	if l.symbol == "" {
		l.symbol = "FAM"
	}
	if l.treasury.Supply < 0 {
		return nil, fmt.Errorf("treasury supply must be >= 0, got %d", l.treasury.Supply)
	}

	if l.treasury.Bounded() {
		if err := store.NewBalanceStore(db).Seed(ctx, address.Treasury, l.treasury.Supply); err != nil {
			return nil, fmt.Errorf("fund treasury: %w", err)
		}
	}
	return l, nil
}

// txn carries the stores bound to one SQL transaction plus the side effects
// an operation has queued for commit.
type txn struct {
	ctx      context.Context
	now      int64
	caller   string
	treasury Treasury

	accounts *store.AccountStore
	tasks    *store.TaskStore
	rewards  *store.RewardStore
	balances *store.BalanceStore
	counters *store.CounterStore
	log      *store.EventStore

	bumps  []counterBump
	events []model.Event
}

type counterBump struct {
	name  string
	delta int64
}

func (l *Ledger) newTxn(ctx context.Context, q store.Querier, caller string) *txn {
	return &txn{
		ctx:      ctx,
		now:      l.clock().Unix(),
		caller:   caller,
		treasury: l.treasury,
		accounts: store.NewAccountStore(q),
		tasks:    store.NewTaskStore(q),
		rewards:  store.NewRewardStore(q),
		balances: store.NewBalanceStore(q),
		counters: store.NewCounterStore(q),
		log:      store.NewEventStore(q),
	}
}

// bump queues a counter change. Counters are written after the operation's
// own mutations.
func (tx *txn) bump(name string, delta int64) {
	tx.bumps = append(tx.bumps, counterBump{name: name, delta: delta})
}

// emit queues a domain event for the audit log.
func (tx *txn) emit(name model.EventName, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", name, err)
	}
	tx.events = append(tx.events, model.Event{
		ID:      uuid.NewString(),
		Name:    name,
		Caller:  tx.caller,
		Payload: payload,
		At:      tx.now,
	})
	return nil
}

func (tx *txn) flush() error {
	for _, b := range tx.bumps {
		if err := tx.counters.Add(tx.ctx, b.name, b.delta); err != nil {
			if errors.Is(err, store.ErrCounterOverflow) {
				return withMetadata(CodeAmountOverflow, "counter would overflow", map[string]string{"counter": b.name})
			}
			return err
		}
	}
	for i := range tx.events {
		if err := tx.log.Append(tx.ctx, &tx.events[i]); err != nil {
			return err
		}
	}
	return nil
}

// update runs fn as one atomic, serialized operation on behalf of caller.
func (l *Ledger) update(ctx context.Context, op, caller string, fn func(tx *txn) error) (err error) {
	ctx, span := l.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attribute.String("ledger.caller", caller)))
	defer func() {
		l.finish(span, op, caller, err)
		span.End()
	}()

	who, perr := address.Parse(caller)
	if perr != nil {
		return &Error{Code: CodeInvalidAddress, Message: "invalid caller address", Cause: perr}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sqlTx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	tx := l.newTxn(ctx, sqlTx, who)
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.flush(); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if l.publisher != nil {
		for _, e := range tx.events {
			l.publisher.Publish(e)
		}
	}
	return nil
}

// view runs fn against a consistent snapshot of committed state. caller may
// be empty for public queries.
func (l *Ledger) view(ctx context.Context, op, caller string, fn func(tx *txn) error) (err error) {
	ctx, span := l.tracer.Start(ctx, "ledger."+op)
	defer func() {
		l.finish(span, op, caller, err)
		span.End()
	}()

	who := ""
	if caller != "" {
		parsed, perr := address.Parse(caller)
		if perr != nil {
			return &Error{Code: CodeInvalidAddress, Message: "invalid caller address", Cause: perr}
		}
		who = parsed
	}

	sqlTx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	return fn(l.newTxn(ctx, sqlTx, who))
}

func (l *Ledger) finish(span trace.Span, op, caller string, err error) {
	if err == nil {
		l.logger.Debug("ledger op", "op", op, "caller", caller)
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if code := CodeOf(err); code != "" {
		span.SetAttributes(attribute.String("ledger.code", string(code)))
		l.logger.Info("ledger op rejected", "op", op, "caller", caller, "code", code)
		return
	}
	l.logger.Error("ledger op failed", "op", op, "caller", caller, "error", err)
}

// parseTarget validates an address supplied as an argument rather than as
// the caller.
func parseTarget(s string) (string, error) {
	a, err := address.Parse(s)
	if err != nil {
		return "", &Error{Code: CodeInvalidAddress, Message: "invalid address " + s, Cause: err}
	}
	return a, nil
}
