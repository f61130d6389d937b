// internal/security/handler.go
package security

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"focis/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the gate routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/gate", func(r chi.Router) {
		r.Post("/in", movementHandler(h.service.GateIn))
		r.Post("/out", movementHandler(h.service.GateOut))
		r.Post("/checks", h.handleCheck)
		r.Get("/history", h.handleHistory)
	})
}

func movementHandler(fn func(context.Context, Movement) (GateResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Movement
		if !api.Decode(w, r, &req) {
			return
		}
		res, err := fn(r.Context(), req)
		if err != nil {
			api.Error(w, err)
			return
		}
		api.Created(w, res)
	}
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req Check
	if !api.Decode(w, r, &req) {
		return
	}
	e, err := h.service.RecordCheck(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, e)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context())
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, history)
}
