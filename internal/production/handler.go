// internal/production/handler.go
package production

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"focis/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the production routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/production", func(r chi.Router) {
		r.Post("/cycles", h.handleStartCycle)
		r.Get("/cycles", h.handleActiveCycles)
		r.Post("/cycles/{startEventID}/end", h.handleEndCycle)
		r.Post("/waste", h.handleWaste)
		r.Get("/drying", h.handleDryingSlots)
		r.Post("/drying/{entryEventID}/release", h.handleRelease)
		r.Get("/oee", h.handleOEE)
	})
}

func (h *Handler) handleStartCycle(w http.ResponseWriter, r *http.Request) {
	var req CycleStart
	if !api.Decode(w, r, &req) {
		return
	}
	e, err := h.service.StartCycle(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, e)
}

func (h *Handler) handleEndCycle(w http.ResponseWriter, r *http.Request) {
	var req CycleEnd
	if !api.Decode(w, r, &req) {
		return
	}
	req.StartEventID = chi.URLParam(r, "startEventID")
	res, err := h.service.EndCycle(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, res)
}

func (h *Handler) handleWaste(w http.ResponseWriter, r *http.Request) {
	var req Waste
	if !api.Decode(w, r, &req) {
		return
	}
	e, err := h.service.RecordWaste(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, e)
}

func (h *Handler) handleRelease(w http.ResponseWriter, r *http.Request) {
	var req DryingRelease
	if r.ContentLength != 0 && !api.Decode(w, r, &req) {
		return
	}
	req.EntryEventID = chi.URLParam(r, "entryEventID")
	e, err := h.service.ReleaseDrying(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, e)
}

func (h *Handler) handleActiveCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.service.ActiveCycles(r.Context())
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, cycles)
}

func (h *Handler) handleDryingSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.service.DryingSlots(r.Context())
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, slots)
}

func (h *Handler) handleOEE(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var window time.Duration
	if v := q.Get("windowHours"); v != "" {
		hours, err := strconv.ParseFloat(v, 64)
		if err != nil || hours <= 0 {
			http.Error(w, "invalid windowHours", http.StatusBadRequest)
			return
		}
		window = time.Duration(hours * float64(time.Hour))
	}
	oee, err := h.service.OEE(r.Context(), q.Get("factoryId"), window)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, oee)
}
