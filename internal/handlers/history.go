package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/hiddenmood-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// GetHistory lists all of the caller's entries, newest first.
func GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	ctx, cancel := storeContext(r)
	defer cancel()

	entries, err := deps.History.ListByUser(ctx, userID)
	if err != nil {
		logStoreError("Failed to fetch history", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetHistoryItem returns one of the caller's entries. Entries owned by
// someone else are reported as not found.
func GetHistoryItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	historyID := strings.TrimSpace(chi.URLParam(r, "historyId"))
	if !validPathID(historyID) {
		writeError(w, http.StatusBadRequest, "Invalid history ID")
		return
	}

	ctx, cancel := storeContext(r)
	defer cancel()

	entry, err := deps.History.Get(ctx, userID, historyID)
	if err != nil {
		writeStoreError(w, err, "History item not found", "Failed to fetch history item")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// validPathID rejects ids that a client produced by formatting a missing value.
func validPathID(id string) bool {
	return id != "" && id != "undefined" && id != "null"
}
