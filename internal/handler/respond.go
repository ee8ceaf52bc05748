package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"binwatch/internal/logger"
	"binwatch/internal/pipeline"
	"binwatch/internal/service/storage"
)

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, logger *logger.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, logger *logger.Logger, status int, message string) {
	writeJSON(w, logger, status, map[string]string{"error": message})
}

// statusFor maps classification errors to an HTTP status and a fixed client
// message. Wrapped errors carry server paths and stay in the logs.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "file too large"
	case errors.Is(err, storage.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "unsupported file type"
	case errors.Is(err, pipeline.ErrSourceUnreadable):
		return http.StatusUnprocessableEntity, "video could not be read"
	case errors.Is(err, pipeline.ErrImageUnreadable):
		return http.StatusUnprocessableEntity, "image could not be read"
	case errors.Is(err, pipeline.ErrEmptyVideo):
		return http.StatusUnprocessableEntity, "video has no frames"
	case errors.Is(err, pipeline.ErrNoPredictions):
		return http.StatusUnprocessableEntity, "no frame could be classified"
	default:
		return http.StatusInternalServerError, "classification failed"
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// parseDate parses a date string in the format "2006-01-02" from the request (HTML input format).
func parseDate(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	return id, err == nil && id > 0
}
