package projection

import (
	"time"

	"github.com/shopspring/decimal"

	"focis/internal/domain"
)

// Gate directions.
const (
	GateIn  = "IN"
	GateOut = "OUT"
)

// GateCrossing is one vehicle movement through the gate.
type GateCrossing struct {
	EventID    string          `json:"id"`
	Direction  string          `json:"type"`
	VehicleNo  string          `json:"vehicleNo"`
	DriverName string          `json:"driverName,omitempty"`
	Payload    string          `json:"payload"`
	EntityID   string          `json:"entityId"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reference  string          `json:"reference,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	UserID     string          `json:"userId"`
	Location   string          `json:"location"`
}

// GateHistory lists gate crossings, newest first.
func GateHistory(l Ledger) []GateCrossing {
	events := l.chronological()
	out := make([]GateCrossing, 0)
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		var (
			dir string
			mv  domain.GateMovement
		)
		switch p := e.Payload().(type) {
		case domain.GateIn:
			dir, mv = GateIn, p.GateMovement
		case domain.GateOut:
			dir, mv = GateOut, p.GateMovement
		default:
			continue
		}
		payload := mv.PayloadDescription
		if payload == "" {
			payload = e.EntityID
		}
		out = append(out, GateCrossing{
			EventID:    e.ID,
			Direction:  dir,
			VehicleNo:  mv.VehicleNo,
			DriverName: mv.DriverName,
			Payload:    payload,
			EntityID:   e.EntityID,
			Quantity:   mv.Quantity,
			Reference:  mv.Reference,
			Timestamp:  e.OccurredAt,
			UserID:     e.UserID,
			Location:   e.Location,
		})
	}
	return out
}
