package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veritag/veritag/internal/server/services"
)

type verifyRequest struct {
	SerialNo        string `json:"serial_no"`
	Code            string `json:"unique_code"`
	Nonce           string `json:"nonce,omitempty"`
	PrintVersion    *uint8 `json:"print_version,omitempty"`
	ClientTimestamp *int64 `json:"client_timestamp,omitempty"`
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeBody(r, &req); err != nil || req.SerialNo == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "serial_no and unique_code are required")
		return
	}
	svcReq := services.VerifyRequest{
		SerialNo:     req.SerialNo,
		Code:         req.Code,
		Nonce:        req.Nonce,
		PrintVersion: req.PrintVersion,
	}
	if req.ClientTimestamp != nil {
		ts := time.Unix(*req.ClientTimestamp, 0)
		svcReq.ClientTimestamp = &ts
	}
	result, err := h.verifications.Verify(r.Context(), userID(r), svcReq)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) rateLimitStatus(w http.ResponseWriter, r *http.Request) {
	serialNo := r.URL.Query().Get("serial_no")
	if serialNo == "" {
		writeError(w, http.StatusBadRequest, "serial_no is required")
		return
	}
	status, err := h.verifications.RateLimitStatus(r.Context(), userID(r), serialNo)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type redeemRequest struct {
	SerialNo string `json:"serial_no"`
	Code     string `json:"unique_code"`
}

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := decodeBody(r, &req); err != nil || req.SerialNo == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "serial_no and unique_code are required")
		return
	}
	result, err := h.rewards.Redeem(r.Context(), userID(r), req.SerialNo, req.Code)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) userRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewards.GetUserRewards(r.Context(), userID(r))
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rewards)
}

func (h *Handler) userVerifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.verifications.ListUserVerifications(r.Context(), userID(r))
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) listVerifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.verifications.ListVerifications(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
