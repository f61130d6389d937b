// internal/integrity/handler.go
package integrity

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"focis/internal/api"
	"focis/internal/eventstore"
)

// Snapshotter supplies the ledger to audit.
type Snapshotter interface {
	Snapshot(ctx context.Context) (eventstore.Snapshot, error)
}

type Handler struct {
	store   Snapshotter
	auditor *Auditor
}

func NewHandler(store Snapshotter, auditor *Auditor) *Handler {
	return &Handler{store: store, auditor: auditor}
}

// Register mounts the audit report route on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/integrity", h.handleReport)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, h.auditor.Run(r.Context(), snap))
}
