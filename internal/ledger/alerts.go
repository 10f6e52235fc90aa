package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wonny/earnalert/internal/contracts"
)

// insertAlert inserts an alert row, reporting whether it was newly created.
// An event_key collision is the dedup signal, not an error.
func (s *Store) insertAlert(ctx context.Context, tx pgx.Tx, alert contracts.Alert) (bool, error) {
	query := `
		INSERT INTO alerts (id, event_key, alert_type, symbol, as_of, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (event_key) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query,
		alert.ID,
		alert.EventKey,
		alert.Type,
		alert.Symbol,
		alert.AsOf,
		alert.Message,
	)
	if err != nil {
		return false, fmt.Errorf("insert alert %s: %w", alert.EventKey, err)
	}

	return tag.RowsAffected() > 0, nil
}

// Pending returns undelivered alerts ordered by created_at ascending
func (s *Store) Pending(ctx context.Context, limit int) ([]contracts.Alert, error) {
	query := `
		SELECT id, event_key, alert_type, symbol, as_of, message, created_at, sent_at
		FROM alerts
		WHERE sent_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending alerts: %w", err)
	}
	defer rows.Close()

	var alerts []contracts.Alert
	for rows.Next() {
		var a contracts.Alert
		err := rows.Scan(
			&a.ID,
			&a.EventKey,
			&a.Type,
			&a.Symbol,
			&a.AsOf,
			&a.Message,
			&a.CreatedAt,
			&a.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// MarkSent stamps sent_at on an alert if unset. Idempotent: marking an
// already-delivered alert succeeds and returns the original timestamp.
func (s *Store) MarkSent(ctx context.Context, id uuid.UUID) (time.Time, error) {
	_, err := s.db.Exec(ctx,
		`UPDATE alerts SET sent_at = NOW() WHERE id = $1 AND sent_at IS NULL`,
		id,
	)
	if err != nil {
		return time.Time{}, fmt.Errorf("mark alert sent: %w", err)
	}

	var sentAt time.Time
	err = s.db.QueryRow(ctx, `SELECT sent_at FROM alerts WHERE id = $1`, id).Scan(&sentAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, fmt.Errorf("alert %s: %w", id, contracts.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read sent_at: %w", err)
	}

	return sentAt, nil
}
