package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apierrors "github.com/spacesedan/nairaland/internal/errors"
)

type errorPayload struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func errorBody(code, message string) map[string]errorPayload {
	return map[string]errorPayload{"error": {ErrorCode: code, Message: message}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("[HTTP] Failed to encode response", slog.String("error", err.Error()))
	}
}

func statusFor(kind apierrors.ErrorKind) int {
	switch kind {
	case apierrors.KindValidation:
		return http.StatusBadRequest
	case apierrors.KindNotFound:
		return http.StatusNotFound
	case apierrors.KindRateLimited:
		return http.StatusTooManyRequests
	case apierrors.KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto a status and the shared error body. Store failure
// details are logged, never sent.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	apiErr, ok := apierrors.As(err)
	if !ok {
		apiErr = apierrors.NewStoreError("request", err)
	}

	status := statusFor(apiErr.Kind)
	if status >= http.StatusInternalServerError {
		logger.Error("[HTTP] Request failed",
			slog.String("operation", apiErr.Operation),
			slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorBody(apiErr.Code, apiErr.Message))
}
