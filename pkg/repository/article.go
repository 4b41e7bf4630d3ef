package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noticiando/rssingest/pkg/domain"
)

// ArticleRepository handles article-related database operations
type ArticleRepository struct {
	db *sqlx.DB
}

// articleSQL represents an article for SQL operations
type articleSQL struct {
	ID           int64   `db:"id"`
	FeedID       int64   `db:"feed_id"`
	FeedURL      string  `db:"feed_url"`
	Title        string  `db:"title"`
	Link         *string `db:"link"`
	ThumbnailURL *string `db:"thumbnail_url"`
	Published    string  `db:"published"`
	CreatedAt    string  `db:"created_at"`
}

const articleColumns = "id, feed_id, feed_url, title, link, thumbnail_url, published, created_at"

// NewArticleRepository creates a new article repository
func NewArticleRepository(database *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: database}
}

// FindArticleByLink returns an article with the given link or ErrNotFound
func (r *ArticleRepository) FindArticleByLink(ctx context.Context, link string) (*domain.Article, error) {
	var a articleSQL
	query := r.db.Rebind("SELECT " + articleColumns + " FROM articles WHERE link = ? LIMIT 1")
	err := withRetry(ctx, func() error {
		return r.db.GetContext(ctx, &a, query, link)
	})
	if err != nil {
		return nil, fmt.Errorf("find article %s: %w", link, notFound(err))
	}
	return a.toDomain(), nil
}

// InsertArticle stores a new article and sets its ID. Published is stored as ISO-8601 UTC,
// empty link and thumbnail are stored as NULL.
func (r *ArticleRepository) InsertArticle(ctx context.Context, article *domain.Article) error {
	query := r.db.Rebind(`
		INSERT INTO articles (feed_id, feed_url, title, link, thumbnail_url, published)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := withRetry(ctx, func() error {
		return r.db.GetContext(ctx, &article.ID, query, article.FeedID, article.FeedURL, article.Title,
			nullable(article.Link), nullable(article.ThumbnailURL), domain.FormatTimestamp(article.Published))
	})
	if err != nil {
		return fmt.Errorf("insert article %q: %w", article.Link, err)
	}
	return nil
}

// RecentArticles returns up to limit articles, newest published first
func (r *ArticleRepository) RecentArticles(ctx context.Context, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []articleSQL
	query := r.db.Rebind("SELECT " + articleColumns + " FROM articles ORDER BY published DESC, id DESC LIMIT ?")
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("get recent articles: %w", err)
	}

	res := make([]domain.Article, 0, len(rows))
	for i := range rows {
		res = append(res, *rows[i].toDomain())
	}
	return res, nil
}

// CountArticles returns the number of stored articles
func (r *ArticleRepository) CountArticles(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM articles"); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

func (a *articleSQL) toDomain() *domain.Article {
	res := &domain.Article{
		ID:           a.ID,
		FeedID:       a.FeedID,
		FeedURL:      a.FeedURL,
		Title:        a.Title,
		Link:         deref(a.Link),
		ThumbnailURL: deref(a.ThumbnailURL),
	}
	if ts, err := domain.ParseTimestamp(a.Published); err == nil {
		res.Published = ts
	}
	if ts, err := domain.ParseTimestamp(a.CreatedAt); err == nil {
		res.CreatedAt = ts
	}
	return res
}
