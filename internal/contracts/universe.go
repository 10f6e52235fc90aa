package contracts

import "time"

// UniverseSnapshot is a timestamped snapshot of the eligible symbol set.
// It is passed to the scan as an explicit value; nothing in the engine
// reaches into shared mutable state for universe membership.
type UniverseSnapshot struct {
	Symbols   []string  `json:"symbols"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports membership in the snapshot
func (u *UniverseSnapshot) Contains(symbol string) bool {
	for _, s := range u.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// Set returns the snapshot as a lookup set
func (u *UniverseSnapshot) Set() map[string]struct{} {
	set := make(map[string]struct{}, len(u.Symbols))
	for _, s := range u.Symbols {
		set[s] = struct{}{}
	}
	return set
}
