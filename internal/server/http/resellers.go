package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type registerResellerRequest struct {
	OrgID string `json:"org_id"`
	Name  string `json:"name"`
}

func (h *Handler) registerReseller(w http.ResponseWriter, r *http.Request) {
	var req registerResellerRequest
	if err := decodeBody(r, &req); err != nil || req.OrgID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "org_id and name are required")
		return
	}
	res, err := h.resellers.RegisterReseller(r.Context(), userID(r), req.OrgID, req.Name)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) getReseller(w http.ResponseWriter, r *http.Request) {
	res, err := h.resellers.GetReseller(r.Context(), chi.URLParam(r, "resellerID"))
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type resellerCodeRequest struct {
	ResellerID string `json:"reseller_id"`
	Context    string `json:"context"`
}

func (h *Handler) resellerCode(w http.ResponseWriter, r *http.Request) {
	var req resellerCodeRequest
	if err := decodeBody(r, &req); err != nil || req.ResellerID == "" {
		writeError(w, http.StatusBadRequest, "reseller_id is required")
		return
	}
	code, err := h.resellers.GenerateUniqueCode(r.Context(), req.ResellerID, req.Context)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, code)
}

type resellerVerifyRequest struct {
	ResellerID string `json:"reseller_id"`
	Timestamp  int64  `json:"timestamp"`
	Context    string `json:"context"`
	Code       string `json:"unique_code"`
}

func (h *Handler) resellerVerify(w http.ResponseWriter, r *http.Request) {
	var req resellerVerifyRequest
	if err := decodeBody(r, &req); err != nil || req.ResellerID == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "reseller_id and unique_code are required")
		return
	}
	result, err := h.resellers.VerifyUniqueCode(r.Context(), req.ResellerID, req.Timestamp, req.Context, req.Code)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
