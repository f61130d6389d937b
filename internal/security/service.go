// internal/security/service.go
package security

import (
	"context"

	"focis/internal/domain"
	"focis/internal/projection"
)

// Service defines the interface for the gate.
type Service interface {
	GateIn(ctx context.Context, m Movement) (GateResult, error)
	GateOut(ctx context.Context, m Movement) (GateResult, error)
	RecordCheck(ctx context.Context, c Check) (domain.Event, error)
	History(ctx context.Context) ([]projection.GateCrossing, error)
}
