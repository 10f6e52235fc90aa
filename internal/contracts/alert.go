package contracts

import (
	"time"

	"github.com/google/uuid"
)

// AlertType distinguishes entry and exit notifications
type AlertType string

const (
	AlertTypeEntry AlertType = "ENTRY"
	AlertTypeExit  AlertType = "EXIT"
)

// Alert is one notification-worthy event. EventKey is derived
// deterministically from the firing rule's identity fields and is the sole
// deduplication mechanism; its format is a stable on-disk contract.
type Alert struct {
	ID        uuid.UUID  `json:"id"`
	EventKey  string     `json:"event_key"`
	Type      AlertType  `json:"alert_type"`
	Symbol    string     `json:"symbol"`
	AsOf      time.Time  `json:"as_of"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// Delivered reports whether the alert has been handed to the dispatcher
func (a *Alert) Delivered() bool {
	return a.SentAt != nil
}
