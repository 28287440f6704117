package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/BerylCAtieno/documind/internal/utils"
)

// APIKeyHeader carries a caller-supplied Gemini key.
const APIKeyHeader = "X-Gemini-Api-Key"

func respondJSON(logger *utils.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

func respondError(logger *utils.Logger, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request error", "status", status, "error", err)
	} else {
		logger.Warn("Request error", "status", status, "error", message)
	}

	respondJSON(logger, w, status, map[string]string{"error": message})
}

// decodeJSON reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return utils.NewBadRequestError("Invalid request body")
	}
	return nil
}
