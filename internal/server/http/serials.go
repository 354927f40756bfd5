package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createSerialRequest struct {
	ProductID    string `json:"product_id"`
	UserSerialNo string `json:"user_serial_no"`
}

func (h *Handler) createSerialNumber(w http.ResponseWriter, r *http.Request) {
	var req createSerialRequest
	if err := decodeBody(r, &req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	sn, err := h.verifications.CreateSerialNumber(r.Context(), userID(r), req.ProductID, req.UserSerialNo)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sn)
}

type updateSerialRequest struct {
	ProductID    string `json:"product_id"`
	SerialNo     string `json:"serial_no"`
	UserSerialNo string `json:"user_serial_no"`
}

func (h *Handler) updateSerialNumber(w http.ResponseWriter, r *http.Request) {
	var req updateSerialRequest
	if err := decodeBody(r, &req); err != nil || req.ProductID == "" || req.SerialNo == "" {
		writeError(w, http.StatusBadRequest, "product_id and serial_no are required")
		return
	}
	sn, err := h.verifications.UpdateSerialNumber(r.Context(), userID(r), req.ProductID, req.SerialNo, req.UserSerialNo)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sn)
}

func (h *Handler) listSerialNumbers(w http.ResponseWriter, r *http.Request) {
	list, err := h.verifications.ListSerialNumbers(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type printRequest struct {
	ProductID string `json:"product_id"`
	SerialNo  string `json:"serial_no"`
}

func (h *Handler) printCode(w http.ResponseWriter, r *http.Request) {
	var req printRequest
	if err := decodeBody(r, &req); err != nil || req.ProductID == "" || req.SerialNo == "" {
		writeError(w, http.StatusBadRequest, "product_id and serial_no are required")
		return
	}
	printed, err := h.verifications.Print(r.Context(), userID(r), req.ProductID, req.SerialNo)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, printed)
}
