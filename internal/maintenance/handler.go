// internal/maintenance/handler.go
package maintenance

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"focis/internal/api"
	"focis/internal/domain"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the maintenance routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/maintenance", func(r chi.Router) {
		r.Post("/breakdowns", h.handleBreakdown)
		r.Get("/work-orders", h.handleWorkOrders)
		r.Post("/work-orders/{woID}/start", workOrderHandler(h.service.StartWorkOrder))
		r.Post("/work-orders/{woID}/close", workOrderHandler(h.service.CloseWorkOrder))
		r.Post("/work-orders/{woID}/spares", h.handleSpareIssue)
		r.Post("/fixes", recordHandler(h.service.RecordFix))
		r.Post("/preventive", recordHandler(h.service.RecordPreventive))
		r.Get("/assets", h.handleAssets)
		r.Get("/assets/{assetID}", h.handleAsset)
	})
}

func (h *Handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	var req BreakdownReport
	if !api.Decode(w, r, &req) {
		return
	}
	res, err := h.service.ReportBreakdown(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, res)
}

func workOrderHandler(fn func(context.Context, WorkOrderAction) (domain.Event, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WorkOrderAction
		if r.ContentLength != 0 && !api.Decode(w, r, &req) {
			return
		}
		req.WorkOrderID = chi.URLParam(r, "woID")
		e, err := fn(r.Context(), req)
		if err != nil {
			api.Error(w, err)
			return
		}
		api.Created(w, e)
	}
}

func recordHandler(fn func(context.Context, ServiceRecord) (domain.Event, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ServiceRecord
		if !api.Decode(w, r, &req) {
			return
		}
		e, err := fn(r.Context(), req)
		if err != nil {
			api.Error(w, err)
			return
		}
		api.Created(w, e)
	}
}

func (h *Handler) handleSpareIssue(w http.ResponseWriter, r *http.Request) {
	var req SpareIssue
	if !api.Decode(w, r, &req) {
		return
	}
	req.WorkOrderID = chi.URLParam(r, "woID")
	e, err := h.service.IssueSparePart(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, e)
}

func (h *Handler) handleWorkOrders(w http.ResponseWriter, r *http.Request) {
	wos, err := h.service.WorkOrders(r.Context())
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, wos)
}

func (h *Handler) handleAssets(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.AssetMetrics(r.Context())
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, metrics)
}

func (h *Handler) handleAsset(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Asset(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, m)
}
