package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veritag/veritag/internal/server/models"
	"github.com/veritag/veritag/internal/server/services"
)

type createProductRequest struct {
	OrgID       string `json:"org_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`

	// WithSerial also mints the first serial number and prints its first
	// code in the same call.
	WithSerial   bool   `json:"with_serial"`
	UserSerialNo string `json:"user_serial_no"`
}

type createProductResponse struct {
	Product *models.Product       `json:"product"`
	Printed *services.PrintResult `json:"printed,omitempty"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeBody(r, &req); err != nil || req.OrgID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "org_id and name are required")
		return
	}

	if req.WithSerial {
		p, printed, err := h.products.CreateProductWithSerial(
			r.Context(), userID(r), req.OrgID, req.Name, req.Category, req.Description, req.UserSerialNo)
		if err != nil {
			h.writeMappedError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, createProductResponse{Product: p, Printed: printed})
		return
	}

	p, err := h.products.CreateProduct(r.Context(), userID(r), req.OrgID, req.Name, req.Category, req.Description)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createProductResponse{Product: p})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.products.ListProducts(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type updateProductRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	p, err := h.products.UpdateProduct(
		r.Context(), userID(r), chi.URLParam(r, "productID"), req.Name, req.Category, req.Description)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type promotionRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (h *Handler) setPromotion(w http.ResponseWriter, r *http.Request) {
	var req promotionRequest
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	promo, err := h.products.SetPromotion(r.Context(), chi.URLParam(r, "productID"), req.Name, req.Value)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, promo)
}

func (h *Handler) removePromotion(w http.ResponseWriter, r *http.Request) {
	if err := h.products.RemovePromotion(r.Context(), chi.URLParam(r, "productID")); err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
