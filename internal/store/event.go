package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"

	"golang.org/x/crypto/blake2b"

	"github.com/dukerupert/choreledger/internal/model"
)

type EventStore struct {
	db Querier
}

func NewEventStore(db Querier) *EventStore {
	return &EventStore{db: db}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var payload string

	err := scanner.Scan(&e.Seq, &e.ID, &e.Name, &e.Caller, &payload, &e.At, &e.PrevHash, &e.Hash)
	if err != nil {
		return nil, err
	}
	e.Payload = []byte(payload)
	return &e, nil
}

const eventCols = `seq, id, name, caller, payload, at, prev_hash, hash`

// HashEvent computes the chained digest of an event from its predecessor's
// hash and its own content.
func HashEvent(prevHash string, e model.Event) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(prevHash))
	h.Write([]byte{0})
	h.Write([]byte(e.ID))
	h.Write([]byte{0})
	h.Write([]byte(e.Name))
	h.Write([]byte{0})
	h.Write([]byte(e.Caller))
	h.Write([]byte{0})
	h.Write(e.Payload)
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(e.At, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// Append links e to the current head of the log and inserts it. Seq, PrevHash
// and Hash are filled in on success.
func (s *EventStore) Append(ctx context.Context, e *model.Event) error {
	var prev string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM events ORDER BY seq DESC LIMIT 1`).Scan(&prev)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("read log head: %w", err)
	}

	e.PrevHash = prev
	e.Hash = HashEvent(prev, *e)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, name, caller, payload, at, prev_hash, hash) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Caller, string(e.Payload), e.At, e.PrevHash, e.Hash,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	e.Seq = seq
	return nil
}

// List returns up to limit events with seq greater than after, oldest first.
func (s *EventStore) List(ctx context.Context, after int64, limit int) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventCols+` FROM events WHERE seq > ? ORDER BY seq ASC LIMIT ?`,
		after, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Verify walks the whole log and returns the seq of the first event whose
// hash does not match its content or predecessor, or 0 if the chain is intact.
func (s *EventStore) Verify(ctx context.Context) (int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+eventCols+` FROM events ORDER BY seq ASC`)
	if err != nil {
		return 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var prev string
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return 0, fmt.Errorf("scan event: %w", err)
		}
		if e.PrevHash != prev || HashEvent(prev, *e) != e.Hash {
			return e.Seq, nil
		}
		prev = e.Hash
	}
	return 0, rows.Err()
}
