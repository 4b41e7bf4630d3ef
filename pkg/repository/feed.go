package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"

	"github.com/noticiando/rssingest/pkg/domain"
)

// FeedRepository handles feed-related database operations
type FeedRepository struct {
	db *sqlx.DB
}

// feedSQL represents a feed for SQL operations
type feedSQL struct {
	ID          int64   `db:"id"`
	URL         string  `db:"url"`
	Name        string  `db:"name"`
	IconURL     string  `db:"icon_url"`
	LastArticle *string `db:"last_article"`
	CreatedAt   string  `db:"created_at"`
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(database *sqlx.DB) *FeedRepository {
	return &FeedRepository{db: database}
}

// FindFeedByURL returns the feed stored for url or ErrNotFound
func (r *FeedRepository) FindFeedByURL(ctx context.Context, url string) (*domain.Feed, error) {
	var f feedSQL
	query := r.db.Rebind("SELECT id, url, name, icon_url, last_article, created_at FROM feeds WHERE url = ?")
	err := withRetry(ctx, func() error {
		return r.db.GetContext(ctx, &f, query, url)
	})
	if err != nil {
		return nil, fmt.Errorf("find feed %s: %w", url, notFound(err))
	}
	return f.toDomain(), nil
}

// CreateFeed inserts a new feed and sets its ID
func (r *FeedRepository) CreateFeed(ctx context.Context, feed *domain.Feed) error {
	query := r.db.Rebind("INSERT INTO feeds (url, name, icon_url) VALUES (?, ?, ?) RETURNING id")
	err := withRetry(ctx, func() error {
		return r.db.GetContext(ctx, &feed.ID, query, feed.URL, feed.Name, feed.IconURL)
	})
	if err != nil {
		return fmt.Errorf("create feed %s: %w", feed.URL, err)
	}
	return nil
}

// ListFeeds returns all feeds in creation order
func (r *FeedRepository) ListFeeds(ctx context.Context) ([]domain.Feed, error) {
	var rows []feedSQL
	err := r.db.SelectContext(ctx, &rows, "SELECT id, url, name, icon_url, last_article, created_at FROM feeds ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}

	feeds := make([]domain.Feed, 0, len(rows))
	for i := range rows {
		feeds = append(feeds, *rows[i].toDomain())
	}
	return feeds, nil
}

// FeedURLs returns urls of all stored feeds in creation order
func (r *FeedRepository) FeedURLs(ctx context.Context) ([]string, error) {
	var urls []string
	if err := r.db.SelectContext(ctx, &urls, "SELECT url FROM feeds WHERE url <> '' ORDER BY id"); err != nil {
		return nil, fmt.Errorf("get feed urls: %w", err)
	}
	return urls, nil
}

// UpdateFeedWatermark stores ts as the newest ingested publish instant of the feed
func (r *FeedRepository) UpdateFeedWatermark(ctx context.Context, feedID int64, ts time.Time) error {
	query := r.db.Rebind("UPDATE feeds SET last_article = ? WHERE id = ?")
	return withRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, query, domain.FormatTimestamp(ts), feedID)
		if err != nil {
			return fmt.Errorf("update watermark of feed %d: %w", feedID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("get affected rows: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("update watermark of feed %d: %w", feedID, ErrNotFound)
		}
		return nil
	})
}

// toDomain converts the row, an unreadable watermark is treated as absent
func (f *feedSQL) toDomain() *domain.Feed {
	feed := &domain.Feed{ID: f.ID, URL: f.URL, Name: f.Name, IconURL: f.IconURL}
	if f.LastArticle != nil && *f.LastArticle != "" {
		ts, err := domain.ParseTimestamp(*f.LastArticle)
		if err != nil {
			lgr.Printf("[WARN] feed %s has invalid watermark %q, ignored", f.URL, *f.LastArticle)
		} else {
			feed.LastArticle = &ts
		}
	}
	if ts, err := domain.ParseTimestamp(f.CreatedAt); err == nil {
		feed.CreatedAt = ts
	}
	return feed
}
