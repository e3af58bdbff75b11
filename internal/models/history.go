package models

import (
	"strings"
	"time"
)

// FeedbackOwnerPrefix marks rows written by the public feedback form. Only
// those rows are visible on the feedback board.
const FeedbackOwnerPrefix = "feedback_"

// HistoryEntry is one classified curhat submission. Rows are immutable once
// written; JSON names follow the history table columns.
type HistoryEntry struct {
	ID            string    `json:"history_id"`
	UserID        string    `json:"user_id"`
	StressLevel   *string   `json:"stress_level"`
	StressPercent *float64  `json:"stress_percent"`
	Emotion       string    `json:"emotion"`
	Text          string    `json:"text"`
	Feedback      string    `json:"feedback"`
	VideoLinks    []string  `json:"video_link"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsFeedback reports whether the entry came from the public feedback form.
func (e *HistoryEntry) IsFeedback() bool {
	return strings.HasPrefix(e.UserID, FeedbackOwnerPrefix)
}
