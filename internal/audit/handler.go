// internal/audit/handler.go
package audit

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

// Register mounts the ledger and dashboard routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/events", h.handleTrail)
	r.Post("/events", h.handleRecord)
	r.Get("/events/verify", h.handleVerify)
	r.Get("/events/{eventID}", h.handleEvent)
	r.Post("/events/{eventID}/reverse", h.handleReverse)
	r.Get("/dashboard", h.handleDashboard)
}

func (h *Handler) handleTrail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := TrailFilter{EntityID: q.Get("entityId"), Kind: q.Get("type")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		f.Limit = n
	}
	events, err := h.service.Trail(r.Context(), f)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, events)
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req Entry
	if !api.Decode(w, r, &req) {
		return
	}
	e, err := h.service.Record(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, e)
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Event(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, e)
}

func (h *Handler) handleReverse(w http.ResponseWriter, r *http.Request) {
	var req Reversal
	if !api.Decode(w, r, &req) {
		return
	}
	req.EventID = chi.URLParam(r, "eventID")
	e, err := h.service.Reverse(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, e)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
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
	kpis, err := h.service.Dashboard(r.Context(), q.Get("factoryId"), window)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, kpis)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.VerifyChain(r.Context())
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, status)
}
