package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/veritag/veritag/internal/common"
)

type errorResponse struct {
	Error     string     `json:"error"`
	ResetTime *time.Time `json:"reset_time,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeMappedError translates sentinel errors from the service layer into
// HTTP status codes. Anything unrecognized is a 500 with a generic body so
// internals never leak to clients.
func (h *Handler) writeMappedError(w http.ResponseWriter, r *http.Request, err error) {
	if rl, ok := common.IsRateLimited(err); ok {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error:     "rate limit exceeded",
			ResetTime: &rl.ResetTime,
		})
		return
	}
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrorInvalidInput), errors.Is(err, common.ErrorMalformedKey):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}
