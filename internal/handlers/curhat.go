package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/AnshRaj112/hiddenmood-backend/internal/apperrors"
	"github.com/AnshRaj112/hiddenmood-backend/internal/logger"
	"github.com/AnshRaj112/hiddenmood-backend/internal/middleware"
	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
	"github.com/AnshRaj112/hiddenmood-backend/internal/services"
)

const minCurhatLength = 10

type CurhatRequest struct {
	Text string `json:"text"`
	// UserID is accepted for older clients but ignored; the owner comes from the token.
	UserID string `json:"user_id,omitempty"`
}

// CurhatResponse is the normalized classification plus the persistence outcome.
type CurhatResponse struct {
	models.Analysis
	SavedToHistory bool   `json:"saved_to_history"`
	HistoryID      string `json:"history_id,omitempty"`
}

// Curhat classifies a text and, for signed-in users, records it in history.
// A failed save is logged and reported as saved_to_history=false; the
// classification is still returned. A token whose account is gone gets 401.
func Curhat(w http.ResponseWriter, r *http.Request) {
	var req CurhatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if utf8.RuneCountInString(text) < minCurhatLength {
		writeError(w, http.StatusBadRequest, "Text must be at least 10 characters long")
		return
	}

	userID, signedIn := middleware.UserIDFromContext(r.Context())
	log := logger.With("user_id", userID, "text_length", utf8.RuneCountInString(text))

	// Tokens outlive DeleteProfile; a deleted account must not gain new rows.
	if signedIn {
		ctx, cancel := storeContext(r)
		_, err := deps.Users.GetByID(ctx, userID)
		cancel()
		if errors.Is(err, apperrors.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "User not found")
			return
		}
		if err != nil {
			log.Warn("user lookup failed before curhat", "error", err)
		}
	}

	analysis, err := deps.Classifier.Analyze(r.Context(), text)
	if err != nil {
		writeClassifierError(w, err)
		return
	}

	resp := CurhatResponse{Analysis: *analysis}
	if signedIn {
		entry := analysis.ToHistoryEntry(userID, text)
		ctx, cancel := storeContext(r)
		err := deps.History.Insert(ctx, &entry)
		cancel()
		if err != nil {
			log.Error("failed to save curhat to history", "error", err)
		} else {
			resp.SavedToHistory = true
			resp.HistoryID = entry.ID
		}
	}

	log.Info("curhat classified",
		"stress_label", analysis.PredictedStress.Label,
		"emotion_label", analysis.PredictedEmotion.Label,
		"saved_to_history", resp.SavedToHistory,
	)
	writeJSON(w, http.StatusOK, resp)
}

func writeClassifierError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Error("classifier call failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":      "Failed to process text with ML API",
			"details":    err.Error(),
			"error_type": services.ClassifierGeneric,
		})
		return
	}

	logger.Error("classifier call failed", appErr.LogFields()...)
	body := map[string]interface{}{
		"error":      appErr.Message,
		"error_type": appErr.Code,
	}
	if appErr.Status != 0 {
		body["status"] = appErr.Status
	}
	if appErr.Details != "" {
		body["details"] = appErr.Details
	}
	writeJSON(w, apperrors.HTTPStatus(err), body)
}
