// Package ticketindex keeps a relational history of request tickets beside
// the KV state store, so operators and feeders can query tickets by id or
// status without walking the whole storage document.
package ticketindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/tzoracle/oracled/internal/core/state"
)

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
	id                INTEGER PRIMARY KEY,
	pair              TEXT    NOT NULL,
	target_address    TEXT    NOT NULL,
	target_entrypoint TEXT    NOT NULL,
	status            TEXT    NOT NULL,
	created_at        INTEGER NOT NULL,
	fulfilled_at      INTEGER
);
CREATE INDEX IF NOT EXISTS tickets_status ON tickets(status);
`

// Row is one indexed ticket.
type Row struct {
	ID               uint64 `json:"id"`
	Pair             string `json:"pair"`
	TargetAddress    string `json:"target_address"`
	TargetEntrypoint string `json:"target_entrypoint"`
	Status           string `json:"status"`
	CreatedAt        int64  `json:"created_at"`
	FulfilledAt      int64  `json:"fulfilled_at,omitempty"`
}

// Index is the sqlite-backed ticket history.
type Index struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (or creates) the index database at path and applies the schema.
func Open(path string, logger zerolog.Logger) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ticket index at %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply ticket index schema: %w", err)
	}
	return &Index{
		db:  db,
		log: logger.With().Str("component", "ticketindex").Logger(),
	}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Upsert records the current state of ticket id.
func (ix *Index) Upsert(ctx context.Context, id uint64, tk *state.RequestTicket) error {
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO tickets (id, pair, target_address, target_entrypoint, status, created_at, fulfilled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			fulfilled_at = excluded.fulfilled_at`,
		id, tk.Pair, tk.TargetAddress, tk.TargetEntrypoint,
		tk.Status.String(), tk.CreatedAt, tk.FulfilledAt)
	if err != nil {
		return fmt.Errorf("upsert ticket %d: %w", id, err)
	}
	return nil
}

// Get returns the ticket row for id, or (nil, nil) when absent.
func (ix *Index) Get(ctx context.Context, id uint64) (*Row, error) {
	row := ix.db.QueryRowContext(ctx, `
		SELECT id, pair, target_address, target_entrypoint, status, created_at, COALESCE(fulfilled_at, 0)
		FROM tickets WHERE id = ?`, id)

	r := new(Row)
	err := row.Scan(&r.ID, &r.Pair, &r.TargetAddress, &r.TargetEntrypoint,
		&r.Status, &r.CreatedAt, &r.FulfilledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query ticket %d: %w", id, err)
	}
	return r, nil
}

// ListByStatus returns up to limit tickets with the given status, newest
// first.
func (ix *Index) ListByStatus(ctx context.Context, status string, limit int) ([]*Row, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT id, pair, target_address, target_entrypoint, status, created_at, COALESCE(fulfilled_at, 0)
		FROM tickets WHERE status = ? ORDER BY id DESC LIMIT ?`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("query tickets by status: %w", err)
	}
	defer rows.Close()

	var out []*Row
	for rows.Next() {
		r := new(Row)
		if err := rows.Scan(&r.ID, &r.Pair, &r.TargetAddress, &r.TargetEntrypoint,
			&r.Status, &r.CreatedAt, &r.FulfilledAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
