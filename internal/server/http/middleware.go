package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/veritag/veritag/internal/server/auth"
)

type contextKey string

const userIDKey contextKey = "user_id"

// userID returns the authenticated caller principal stored by authMiddleware.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		id, err := auth.GetUserIDFromToken(token, h.secretKey)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug(r.Context(), "request handled",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

type issueTokenRequest struct {
	UserID string `json:"user_id"`
}

type issueTokenResponse struct {
	Token string `json:"token"`
}

// issueToken mints a bearer token for the given principal. There is no user
// store; callers are identified by whatever opaque id they authenticate
// with upstream.
func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	var req issueTokenRequest
	if err := decodeBody(r, &req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	token, err := auth.GenerateToken(req.UserID, h.secretKey, h.tokenValidity)
	if err != nil {
		h.writeMappedError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, issueTokenResponse{Token: token})
}
