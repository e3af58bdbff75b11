package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/hiddenmood-backend/internal/logger"
	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	feedbackStressLevel    = "unknown"
	defaultFeedbackMessage = "Thank you for your feedback"
	anonymousName          = "Anonymous"
)

type AnalysisResult struct {
	Feedback string `json:"feedback"`
}

type SubmitFeedbackRequest struct {
	UserName       string          `json:"user_name"`
	Text           string          `json:"text"`
	AnalysisResult *AnalysisResult `json:"analysis_result"`
}

// FeedbackItem is a history row shown on the public feedback board.
type FeedbackItem struct {
	ID             string          `json:"id"`
	UserName       string          `json:"user_name"`
	Text           string          `json:"text"`
	AnalysisResult *AnalysisResult `json:"analysis_result"`
	CreatedAt      time.Time       `json:"created_at"`
}

func feedbackItem(e *models.HistoryEntry) FeedbackItem {
	return FeedbackItem{
		ID:             e.ID,
		UserName:       anonymousName,
		Text:           e.Text,
		AnalysisResult: &AnalysisResult{Feedback: e.Feedback},
		CreatedAt:      e.CreatedAt,
	}
}

// GetFeedbacks lists submitted feedback, newest first, without names.
func GetFeedbacks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storeContext(r)
	defer cancel()

	entries, err := deps.History.ListFeedback(ctx)
	if err != nil {
		logStoreError("Failed to fetch feedback", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch feedback")
		return
	}

	items := make([]FeedbackItem, 0, len(entries))
	for i := range entries {
		items = append(items, feedbackItem(&entries[i]))
	}
	writeJSON(w, http.StatusOK, items)
}

// SubmitFeedback stores feedback as a history row under a throwaway owner.
func SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userName := strings.TrimSpace(req.UserName)
	text := strings.TrimSpace(req.Text)
	if userName == "" || text == "" {
		writeError(w, http.StatusBadRequest, "User name and text are required")
		return
	}

	message := defaultFeedbackMessage
	if req.AnalysisResult != nil && req.AnalysisResult.Feedback != "" {
		message = req.AnalysisResult.Feedback
	}
	level := feedbackStressLevel
	percent := 0.0
	entry := models.HistoryEntry{
		UserID:        models.FeedbackOwnerPrefix + uuid.New().String(),
		StressLevel:   &level,
		StressPercent: &percent,
		Emotion:       models.DefaultEmotionLabel,
		Text:          text,
		Feedback:      message,
		VideoLinks:    []string{},
	}

	ctx, cancel := storeContext(r)
	defer cancel()

	if err := deps.History.Insert(ctx, &entry); err != nil {
		logStoreError("Failed to create feedback", err)
		writeError(w, http.StatusInternalServerError, "Failed to create feedback")
		return
	}

	logger.Info("feedback submitted", "id", entry.ID)
	writeJSON(w, http.StatusCreated, FeedbackItem{
		ID:             entry.ID,
		UserName:       userName,
		Text:           entry.Text,
		AnalysisResult: req.AnalysisResult,
		CreatedAt:      entry.CreatedAt,
	})
}

func GetFeedback(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if !validPathID(id) {
		writeError(w, http.StatusBadRequest, "Invalid feedback ID")
		return
	}

	ctx, cancel := storeContext(r)
	defer cancel()

	entry, err := deps.History.GetFeedback(ctx, id)
	if err != nil {
		writeStoreError(w, err, "Feedback not found", "Failed to fetch feedback")
		return
	}
	writeJSON(w, http.StatusOK, feedbackItem(entry))
}

// DeleteFeedback removes one feedback row; 204 on success. User history
// ids are not found here.
func DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if !validPathID(id) {
		writeError(w, http.StatusBadRequest, "Invalid feedback ID")
		return
	}

	ctx, cancel := storeContext(r)
	defer cancel()

	if err := deps.History.DeleteFeedback(ctx, id); err != nil {
		writeStoreError(w, err, "Feedback not found", "Failed to delete feedback")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
