// internal/inventory/handler.go
package inventory

import (
	"context"
	"net/http"
	"strconv"

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

// Register mounts the inventory routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Post("/receipts", receiptHandler(h.service.Receive))
		r.Post("/opening-balances", receiptHandler(h.service.OpeningBalance))
		r.Post("/issues", issueHandler(h.service.Issue))
		r.Post("/consumptions", issueHandler(h.service.Consume))
		r.Post("/transfers", h.handleTransfer)
		r.Post("/adjustments", h.handleAdjust)
		r.Get("/batches", h.handleBatches)
		r.Get("/stock", h.handleStock)
		r.Get("/items/{itemID}/cost", h.handleCost)
	})
}

func receiptHandler(fn func(context.Context, Receipt) (domain.Event, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Receipt
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

func issueHandler(fn func(context.Context, Issue) (domain.Event, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Issue
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

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req Transfer
	if !api.Decode(w, r, &req) {
		return
	}
	e, err := h.service.Transfer(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, e)
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var req Adjustment
	if !api.Decode(w, r, &req) {
		return
	}
	e, err := h.service.Adjust(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, e)
}

func (h *Handler) handleBatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := BatchFilter{ItemID: q.Get("itemId"), WarehouseID: q.Get("warehouseId")}
	if v := q.Get("open"); v != "" {
		open, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid open flag", http.StatusBadRequest)
			return
		}
		f.OpenOnly = open
	}
	batches, err := h.service.Batches(r.Context(), f)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, batches)
}

func (h *Handler) handleStock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.service.Stock(r.Context())
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, stock)
}

func (h *Handler) handleCost(w http.ResponseWriter, r *http.Request) {
	cb, err := h.service.CostBreakdown(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, cb)
}
