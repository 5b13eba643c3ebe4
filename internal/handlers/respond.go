package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"moodring/internal/apperror"
)

// Document ids are 24-character hex strings.
var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

func validID(id string) bool { return idPattern.MatchString(id) }

// currentUserID returns the authenticated user id placed in the request
// context by the auth middleware, or "" for unauthenticated routes.
func currentUserID(r *http.Request) string {
	id, _ := r.Context().Value("userID").(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeData wraps payloads in the {success, data} envelope used by the
// profile endpoints.
func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{"success": true, "data": data})
}

// invalidID rejects a malformed document id before any query runs.
func invalidID(w http.ResponseWriter, name string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"msg": fmt.Sprintf("Invalid %s format", name)})
}

// writeError maps service errors to HTTP. Unknown errors become a generic
// 500; the underlying detail is logged and only echoed back when the
// logger runs in development mode.
func writeError(logger *zap.Logger, w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrInvalidArgument):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, apperror.ErrUnavailable):
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]string{"error": appErr.Message})
		return
	}

	logger.Error("request failed", zap.Error(err))
	body := map[string]string{"error": "An internal error occurred"}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		body["details"] = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
