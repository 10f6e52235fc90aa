package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/earnalert/internal/contracts"
)

// MemoryStore is an in-memory ledger with the same uniqueness and no-op
// conflict semantics as the PostgreSQL store. Used by engine and handler
// tests; not for production.
type MemoryStore struct {
	mu        sync.Mutex
	positions map[string]*contracts.Position // keyed by symbol|entry_date
	alerts    map[string]*contracts.Alert    // keyed by event_key
	alertSeq  []string                       // insertion order for Pending
}

// NewMemoryStore creates an empty in-memory ledger
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		positions: make(map[string]*contracts.Position),
		alerts:    make(map[string]*contracts.Alert),
	}
}

func positionKey(symbol string, entryDate time.Time) string {
	return symbol + "|" + entryDate.Format("2006-01-02")
}

// OpenPositions returns every OPEN position, ordered by symbol
func (m *MemoryStore) OpenPositions(ctx context.Context) ([]contracts.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var open []contracts.Position
	for _, pos := range m.positions {
		if pos.IsOpen() {
			open = append(open, *pos)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Symbol < open[j].Symbol })
	return open, nil
}

// Positions returns positions filtered by status (empty = all)
func (m *MemoryStore) Positions(ctx context.Context, status contracts.PositionStatus) ([]contracts.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []contracts.Position
	for _, pos := range m.positions {
		if status == "" || pos.Status == status {
			out = append(out, *pos)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// RecordEntry inserts the position/alert pair, each a no-op on collision
func (m *MemoryStore) RecordEntry(ctx context.Context, pos contracts.Position, alert contracts.Alert) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := positionKey(pos.Symbol, pos.EntryDate)
	if _, exists := m.positions[key]; !exists {
		p := pos
		m.positions[key] = &p
	}

	return m.insertAlertLocked(alert), nil
}

// RecordExit closes the position and inserts the alert
func (m *MemoryStore) RecordExit(ctx context.Context, pos contracts.Position, alert contracts.Alert) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := positionKey(pos.Symbol, pos.EntryDate)
	existing, ok := m.positions[key]
	if !ok {
		return false, fmt.Errorf("exit fired for missing position %s: %w", key, contracts.ErrInvariantViolation)
	}

	if existing.IsOpen() {
		p := pos
		m.positions[key] = &p
	}

	return m.insertAlertLocked(alert), nil
}

func (m *MemoryStore) insertAlertLocked(alert contracts.Alert) bool {
	if _, exists := m.alerts[alert.EventKey]; exists {
		return false
	}
	a := alert
	m.alerts[alert.EventKey] = &a
	m.alertSeq = append(m.alertSeq, alert.EventKey)
	return true
}

// Pending returns undelivered alerts in creation order
func (m *MemoryStore) Pending(ctx context.Context, limit int) ([]contracts.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pending []contracts.Alert
	for _, key := range m.alertSeq {
		a := m.alerts[key]
		if a.SentAt == nil {
			pending = append(pending, *a)
		}
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

// MarkSent stamps sent_at, returning the original timestamp when already set
func (m *MemoryStore) MarkSent(ctx context.Context, id uuid.UUID) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.alerts {
		if a.ID == id {
			if a.SentAt == nil {
				now := time.Now().UTC()
				a.SentAt = &now
			}
			return *a.SentAt, nil
		}
	}
	return time.Time{}, fmt.Errorf("alert %s: %w", id, contracts.ErrNotFound)
}

// Alerts returns every alert in insertion order. Test helper.
func (m *MemoryStore) Alerts() []contracts.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]contracts.Alert, 0, len(m.alertSeq))
	for _, key := range m.alertSeq {
		out = append(out, *m.alerts[key])
	}
	return out
}
