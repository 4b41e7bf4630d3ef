package ingest

import (
	"context"
	"errors"

	"github.com/go-pkgz/lgr"

	"github.com/noticiando/rssingest/pkg/domain"
)

//go:generate moq -out mocks/article_store.go -pkg mocks -skip-ensure -fmt goimports . ArticleStore
//go:generate moq -out mocks/thumbnailer.go -pkg mocks -skip-ensure -fmt goimports . Thumbnailer

// ArticleStore is the part of the record store used per item
type ArticleStore interface {
	FindArticleByLink(ctx context.Context, link string) (*domain.Article, error)
	InsertArticle(ctx context.Context, article *domain.Article) error
}

// Thumbnailer derives a stored thumbnail for an image and returns its public URL
type Thumbnailer interface {
	Derive(ctx context.Context, imageURL string) (string, error)
}

// Executor applies per-item side effects for planned items: duplicate check,
// thumbnail derivation and insert. Items of one feed are processed sequentially.
type Executor struct {
	articles ArticleStore
	thumbs   Thumbnailer
}

// NewExecutor makes an executor. A nil thumbnailer inserts every article without thumbnail.
func NewExecutor(articles ArticleStore, thumbs Thumbnailer) *Executor {
	return &Executor{articles: articles, thumbs: thumbs}
}

// Execute ingests items for feedID and returns aggregated counts. It never fails as a
// whole, every error is counted against the item it happened on. With zero feedID
// nothing is attempted and every item is a failure.
func (e *Executor) Execute(ctx context.Context, feedID int64, items []domain.FeedItem) domain.IngestionResult {
	var res domain.IngestionResult
	if feedID == 0 {
		if len(items) > 0 {
			lgr.Printf("[WARN] no feed id, %d items not ingested", len(items))
		}
		res.Failures = len(items)
		return res
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			lgr.Printf("[WARN] ingestion interrupted, %d items left: %v", len(items)-i, err)
			res.Failures += len(items) - i
			break
		}

		e.ingest(ctx, feedID, item, &res)
	}
	return res
}

// ingest processes one item and updates res counters
func (e *Executor) ingest(ctx context.Context, feedID int64, item domain.FeedItem, res *domain.IngestionResult) {
	if item.Link != "" {
		_, err := e.articles.FindArticleByLink(ctx, item.Link)
		switch {
		case err == nil:
			lgr.Printf("[DEBUG] duplicate link %s", item.Link)
			res.DuplicatesSkipped++
			return
		case !errors.Is(err, domain.ErrNotFound):
			lgr.Printf("[WARN] can't check link %s: %v", item.Link, err)
			res.Failures++
			return
		}
	}

	article := &domain.Article{
		FeedID:    feedID,
		FeedURL:   item.FeedURL,
		Title:     item.Title,
		Link:      item.Link,
		Published: item.PublishedAt.UTC(),
	}

	// a thumbnail failure is counted but the article is still inserted without one
	if item.ImageURL != "" && e.thumbs != nil {
		thumb, err := e.thumbs.Derive(ctx, item.ImageURL)
		if err != nil {
			lgr.Printf("[WARN] no thumbnail for %s: %v", item.Link, err)
			res.Failures++
			thumb = ""
		}
		article.ThumbnailURL = thumb
	}

	if err := e.articles.InsertArticle(ctx, article); err != nil {
		lgr.Printf("[WARN] failed to insert %q (%s): %v", item.Title, item.Link, err)
		res.Failures++
		return
	}
	res.Inserted++
	lgr.Printf("[DEBUG] inserted %q (%s)", item.Title, item.Link)
}
