package handlers

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/hiddenmood-backend/internal/analytics"
	"github.com/AnshRaj112/hiddenmood-backend/internal/logger"
	"github.com/AnshRaj112/hiddenmood-backend/internal/middleware"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 50
	maxSummaryDays     = 365
)

// DashboardSummary recomputes the dashboard for the last ?days=N days
// (default 30). Nothing is cached between requests.
func DashboardSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	days := queryInt(r, "days", analytics.DefaultWindowDays, maxSummaryDays)

	now := deps.Now()
	ctx, cancel := storeContext(r)
	defer cancel()

	entries, err := deps.History.ListSince(ctx, userID, now.AddDate(0, 0, -days))
	if err != nil {
		logStoreError("Failed to fetch dashboard summary", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch dashboard summary")
		return
	}

	summary := analytics.Summarize(entries, days, now, deps.Location)
	logger.Debug("dashboard summary computed", "user_id", userID, "days", days, "entries", len(entries))
	writeJSON(w, http.StatusOK, summary)
}

// WeeklyStats reports the last seven days' average stress and its level.
func WeeklyStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	now := deps.Now()
	ctx, cancel := storeContext(r)
	defer cancel()

	entries, err := deps.History.ListSince(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		logStoreError("Failed to fetch weekly stats", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch weekly stats")
		return
	}

	writeJSON(w, http.StatusOK, analytics.SummarizeWeek(entries, now))
}

// RecentHistory returns the newest ?limit=N entries (default 10, at most 50).
func RecentHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	limit := queryInt(r, "limit", defaultRecentLimit, maxRecentLimit)

	ctx, cancel := storeContext(r)
	defer cancel()

	entries, err := deps.History.ListRecent(ctx, userID, limit)
	if err != nil {
		logStoreError("Failed to fetch recent history", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch recent history")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// queryInt parses a positive integer query parameter. Missing or invalid
// values give def; values above max are clamped.
func queryInt(r *http.Request, key string, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
