package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/wonny/earnalert/internal/contracts"
)

const positionColumns = `
	id,
	symbol,
	entry_date,
	entry_price::text,
	status,
	exit_date,
	exit_price::text,
	exit_reason,
	created_at,
	updated_at
`

// OpenPositions returns every currently OPEN position
func (s *Store) OpenPositions(ctx context.Context) ([]contracts.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE status = $1
		ORDER BY symbol, entry_date
	`

	rows, err := s.db.Query(ctx, query, contracts.PositionStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("query open positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// Positions returns positions, optionally filtered by status
// (empty status = all).
func (s *Store) Positions(ctx context.Context, status contracts.PositionStatus) ([]contracts.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE ($1 = '' OR status = $1)
		ORDER BY entry_date DESC, symbol
	`

	rows, err := s.db.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// insertPosition inserts an OPEN position, reporting whether a new row was
// created. A (symbol, entry_date) collision leaves the existing row intact.
func (s *Store) insertPosition(ctx context.Context, tx pgx.Tx, pos contracts.Position) (bool, error) {
	query := `
		INSERT INTO positions (id, symbol, entry_date, entry_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, NOW(), NOW())
		ON CONFLICT (symbol, entry_date) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query,
		pos.ID,
		pos.Symbol,
		pos.EntryDate,
		pos.EntryPrice.String(),
		pos.Status,
	)
	if err != nil {
		return false, fmt.Errorf("insert position %s: %w", pos.Symbol, err)
	}

	return tag.RowsAffected() > 0, nil
}

// closePosition mutates the row to CLOSED. Zero rows affected means either
// a concurrent writer already closed it (no-op) or the row is missing
// entirely (invariant violation); the follow-up read distinguishes the two.
func (s *Store) closePosition(ctx context.Context, tx pgx.Tx, pos contracts.Position) error {
	query := `
		UPDATE positions
		SET status = $1,
		    exit_date = $2,
		    exit_price = $3::numeric,
		    exit_reason = $4,
		    updated_at = NOW()
		WHERE symbol = $5 AND entry_date = $6 AND status = $7
	`

	var exitPrice *string
	if pos.ExitPrice != nil {
		v := pos.ExitPrice.String()
		exitPrice = &v
	}

	tag, err := tx.Exec(ctx, query,
		contracts.PositionStatusClosed,
		pos.ExitDate,
		exitPrice,
		pos.ExitReason,
		pos.Symbol,
		pos.EntryDate,
		contracts.PositionStatusOpen,
	)
	if err != nil {
		return fmt.Errorf("close position %s: %w", pos.Symbol, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var status contracts.PositionStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM positions WHERE symbol = $1 AND entry_date = $2`,
		pos.Symbol, pos.EntryDate,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("exit fired for missing position %s/%s: %w",
			pos.Symbol, pos.EntryDate.Format("2006-01-02"), contracts.ErrInvariantViolation)
	}
	if err != nil {
		return fmt.Errorf("recheck position %s: %w", pos.Symbol, err)
	}

	// Already closed by a concurrent scan; the alert insert dedupes below.
	return nil
}

func scanPositions(rows pgx.Rows) ([]contracts.Position, error) {
	var positions []contracts.Position
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

func scanPosition(row pgx.Row) (contracts.Position, error) {
	var (
		pos       contracts.Position
		entry     string
		exitPrice *string
	)

	err := row.Scan(
		&pos.ID,
		&pos.Symbol,
		&pos.EntryDate,
		&entry,
		&pos.Status,
		&pos.ExitDate,
		&exitPrice,
		&pos.ExitReason,
		&pos.CreatedAt,
		&pos.UpdatedAt,
	)
	if err != nil {
		return contracts.Position{}, fmt.Errorf("scan position: %w", err)
	}

	pos.EntryPrice, err = decimal.NewFromString(entry)
	if err != nil {
		return contracts.Position{}, fmt.Errorf("parse entry price: %w", err)
	}
	if exitPrice != nil {
		px, err := decimal.NewFromString(*exitPrice)
		if err != nil {
			return contracts.Position{}, fmt.Errorf("parse exit price: %w", err)
		}
		pos.ExitPrice = &px
	}

	return pos, nil
}
