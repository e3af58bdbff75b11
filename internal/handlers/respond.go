package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AnshRaj112/hiddenmood-backend/internal/apperrors"
	"github.com/AnshRaj112/hiddenmood-backend/internal/logger"
)

// storeTimeout bounds every database round trip made by a handler.
const storeTimeout = 5 * time.Second

func storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), storeTimeout)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}

// writeStoreError answers 404 for ErrNotFound and 500 with message otherwise.
func writeStoreError(w http.ResponseWriter, err error, notFound, message string) {
	if errors.Is(err, apperrors.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFound)
		return
	}
	logStoreError(message, err)
	writeError(w, http.StatusInternalServerError, message)
}

func logStoreError(message string, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		logger.Error(message, appErr.LogFields()...)
		return
	}
	logger.Error(message, "error", err)
}

// decodeJSON reads a JSON body of at most 1MB.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dest)
}
