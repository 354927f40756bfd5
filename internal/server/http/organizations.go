package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type organizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) createOrganization(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	org, err := h.orgs.CreateOrganization(r.Context(), userID(r), req.Name, req.Description)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

func (h *Handler) getOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgs.GetOrganization(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (h *Handler) listOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgs.ListOrganizations(r.Context())
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}

func (h *Handler) updateOrganization(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	org, err := h.orgs.UpdateOrganization(r.Context(), userID(r), chi.URLParam(r, "orgID"), req.Name, req.Description)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}
