package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/earnalert/internal/contracts"
)

// Store is the PostgreSQL position/alert ledger. Uniqueness lives in the
// schema: (symbol, entry_date) on positions and event_key on alerts. Inserts
// go through ON CONFLICT DO NOTHING so a duplicate attempt is an atomic
// no-op rather than a check-then-act race.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a new ledger store
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// RecordEntry inserts an OPEN position and its ENTRY alert in one
// transaction. Either row colliding with an existing identity is a no-op.
// Returns true when the alert row was newly inserted.
func (s *Store) RecordEntry(ctx context.Context, pos contracts.Position, alert contracts.Alert) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin entry tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.insertPosition(ctx, tx, pos); err != nil {
		return false, err
	}

	inserted, err := s.insertAlert(ctx, tx, alert)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit entry tx: %w", err)
	}
	return inserted, nil
}

// RecordExit closes a position and inserts its EXIT alert in one
// transaction. Closing an already-closed position (a concurrent scan got
// there first) is a no-op; a position that does not exist at all is an
// invariant violation.
func (s *Store) RecordExit(ctx context.Context, pos contracts.Position, alert contracts.Alert) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin exit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.closePosition(ctx, tx, pos); err != nil {
		return false, err
	}

	inserted, err := s.insertAlert(ctx, tx, alert)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit exit tx: %w", err)
	}
	return inserted, nil
}
