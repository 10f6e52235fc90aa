package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the universe snapshot in the symbols_cache table so
// it survives restarts between refreshes.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Get returns the cached symbols and the oldest updated_at among them.
// An empty cache returns a zero time.
func (r *Repository) Get(ctx context.Context) ([]string, time.Time, error) {
	query := `SELECT symbol, updated_at FROM symbols_cache ORDER BY symbol`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query symbols cache: %w", err)
	}
	defer rows.Close()

	var (
		symbols []string
		oldest  time.Time
	)
	for rows.Next() {
		var (
			symbol    string
			updatedAt time.Time
		)
		if err := rows.Scan(&symbol, &updatedAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan symbols cache: %w", err)
		}
		symbols = append(symbols, symbol)
		if oldest.IsZero() || updatedAt.Before(oldest) {
			oldest = updatedAt
		}
	}

	return symbols, oldest, rows.Err()
}

// Replace swaps the cached symbol set in one transaction
func (r *Repository) Replace(ctx context.Context, symbols []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin symbols cache tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM symbols_cache`); err != nil {
		return fmt.Errorf("clear symbols cache: %w", err)
	}

	for _, symbol := range symbols {
		_, err := tx.Exec(ctx,
			`INSERT INTO symbols_cache (symbol, updated_at) VALUES ($1, NOW())
			 ON CONFLICT (symbol) DO UPDATE SET updated_at = NOW()`,
			symbol,
		)
		if err != nil {
			return fmt.Errorf("insert symbol %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit symbols cache tx: %w", err)
	}
	return nil
}
