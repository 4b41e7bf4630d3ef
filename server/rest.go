package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/noticiando/rssingest/pkg/domain"
)

const (
	defaultArticlesLimit = 50
	maxArticlesLimit     = 500
)

// feedResponse is a feed with its watermark as returned by the api
type feedResponse struct {
	ID          int64   `json:"id"`
	URL         string  `json:"url"`
	Name        string  `json:"name"`
	IconURL     string  `json:"icon_url,omitempty"`
	LastArticle *string `json:"last_article"`
}

// articleResponse is a stored article as returned by the api
type articleResponse struct {
	ID           int64  `json:"id"`
	FeedID       int64  `json:"feed_id"`
	FeedURL      string `json:"feed_url"`
	Title        string `json:"title"`
	Link         string `json:"link,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Published    string `json:"published"`
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	count, err := s.db.CountArticles(r.Context())
	if err != nil {
		log.Printf("[WARN] failed to count articles: %v", err)
		renderError(w, r, fmt.Errorf("database unavailable"), http.StatusServiceUnavailable)
		return
	}
	status := map[string]any{
		"status":   "ok",
		"version":  s.version,
		"articles": count,
		"time":     time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// feedsHandler lists stored feeds with their watermarks
func (s *Server) feedsHandler(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.db.ListFeeds(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to list feeds: %v", err)
		renderError(w, r, fmt.Errorf("failed to list feeds"), http.StatusInternalServerError)
		return
	}

	res := make([]feedResponse, 0, len(feeds))
	for _, f := range feeds {
		fr := feedResponse{ID: f.ID, URL: f.URL, Name: f.Name, IconURL: f.IconURL}
		if f.LastArticle != nil {
			ts := domain.FormatTimestamp(*f.LastArticle)
			fr.LastArticle = &ts
		}
		res = append(res, fr)
	}
	renderJSON(w, r, http.StatusOK, res)
}

// articlesHandler returns the most recently published articles, ?limit=N caps the count
func (s *Server) articlesHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultArticlesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			renderError(w, r, fmt.Errorf("invalid limit %q", v), http.StatusBadRequest)
			return
		}
		limit = min(n, maxArticlesLimit)
	}

	articles, err := s.db.RecentArticles(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] failed to get articles: %v", err)
		renderError(w, r, fmt.Errorf("failed to get articles"), http.StatusInternalServerError)
		return
	}

	res := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		res = append(res, articleResponse{
			ID:           a.ID,
			FeedID:       a.FeedID,
			FeedURL:      a.FeedURL,
			Title:        a.Title,
			Link:         a.Link,
			ThumbnailURL: a.ThumbnailURL,
			Published:    domain.FormatTimestamp(a.Published),
		})
	}
	renderJSON(w, r, http.StatusOK, res)
}
