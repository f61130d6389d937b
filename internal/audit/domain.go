// internal/audit/domain.go
package audit

import (
	"encoding/json"
	"time"
)

// TrailFilter narrows the audit trail. Kind matches case-insensitively
// anywhere in the event kind; zero values match everything.
type TrailFilter struct {
	EntityID string
	Kind     string
	Limit    int
}

// Entry is a raw ledger entry submitted by an integration. Type accepts the
// kind's display name ("Goods Receipt") or its code ("GOODS_RECEIPT").
type Entry struct {
	Type       string          `json:"type"`
	EntityID   string          `json:"entityId"`
	FactoryID  string          `json:"factoryId,omitempty"`
	Details    json.RawMessage `json:"details"`
	OccurredAt time.Time       `json:"occurredAt,omitempty"`
}

// Reversal voids an event.
type Reversal struct {
	EventID string `json:"eventId"`
	Reason  string `json:"reason"`
}

// ChainStatus reports the result of re-hashing the ledger.
type ChainStatus struct {
	Events   int       `json:"events"`
	Valid    bool      `json:"valid"`
	Problem  string    `json:"problem,omitempty"`
	Verified time.Time `json:"verifiedAt"`
}
