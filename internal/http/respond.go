package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/go_restaurant/internal/restapi"
	"github.com/fjod/go_restaurant/pkg/circuitbreaker"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleUpstreamError maps restaurant API failures to gateway responses.
func handleUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var httpStatus int
	var code string

	var se *restapi.StatusError
	switch {
	case circuitbreaker.IsOpen(err):
		httpStatus, code = http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		// client went away
		return
	case errors.As(err, &se):
		switch se.Code {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			httpStatus, code = http.StatusBadRequest, "invalid_argument"
		case http.StatusUnauthorized:
			httpStatus, code = http.StatusUnauthorized, "unauthenticated"
		case http.StatusForbidden:
			httpStatus, code = http.StatusForbidden, "permission_denied"
		case http.StatusNotFound:
			httpStatus, code = http.StatusNotFound, "not_found"
		case http.StatusConflict:
			httpStatus, code = http.StatusConflict, "already_exists"
		case http.StatusTooManyRequests:
			httpStatus, code = http.StatusTooManyRequests, "rate_limit_exceeded"
		case http.StatusServiceUnavailable:
			httpStatus, code = http.StatusServiceUnavailable, "service_unavailable"
		default:
			httpStatus, code = http.StatusBadGateway, "upstream_error"
		}
	default:
		httpStatus, code = http.StatusBadGateway, "upstream_error"
	}

	slog.WarnContext(r.Context(), "upstream request failed",
		"path", r.URL.Path, "status", httpStatus, "error", err)
	respondError(w, httpStatus, code, http.StatusText(httpStatus))
}
