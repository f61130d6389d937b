// internal/catalog/handler.go
package catalog

import (
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

// Register mounts the registry routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/master-data", h.handleMasterData)
	r.Post("/factories", h.handleAddFactory)
	r.Post("/warehouses", h.handleAddWarehouse)
	r.Post("/assets", h.handleAddAsset)
	r.Get("/assets/{assetID}", h.handleGetAsset)
	r.Post("/items", h.handleAddItem)
	r.Get("/items/{itemID}", h.handleGetItem)
}

func (h *Handler) handleMasterData(w http.ResponseWriter, r *http.Request) {
	md, err := h.service.MasterData(r.Context())
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, md)
}

func (h *Handler) handleAddFactory(w http.ResponseWriter, r *http.Request) {
	var req domain.Factory
	if !api.Decode(w, r, &req) {
		return
	}
	f, err := h.service.AddFactory(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, f)
}

func (h *Handler) handleAddWarehouse(w http.ResponseWriter, r *http.Request) {
	var req domain.Warehouse
	if !api.Decode(w, r, &req) {
		return
	}
	wh, err := h.service.AddWarehouse(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, wh)
}

func (h *Handler) handleAddAsset(w http.ResponseWriter, r *http.Request) {
	var req domain.Asset
	if !api.Decode(w, r, &req) {
		return
	}
	a, err := h.service.AddAsset(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, a)
}

func (h *Handler) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.GetAsset(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, a)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req domain.Item
	if !api.Decode(w, r, &req) {
		return
	}
	it, err := h.service.AddItem(r.Context(), req)
	if err != nil {
		api.Error(w, err)
		return
	}
	api.Created(w, it)
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.service.GetItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		api.Error(w, err)
		return
	}
	api.JSON(w, http.StatusOK, it)
}
