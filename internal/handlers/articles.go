package handlers

import (
	"net/http"

	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
)

// GetArticles returns the article catalogue; an empty catalogue is [].
func GetArticles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := storeContext(r)
	defer cancel()

	articles, err := deps.Articles.List(ctx)
	if err != nil {
		logStoreError("Failed to fetch articles", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch articles")
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}
