package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/noticiando/rssingest/pkg/domain"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/feed_store.go -pkg mocks -skip-ensure -fmt goimports . FeedStore

// Fetcher retrieves a feed and returns its channel metadata and normalized items
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) (domain.ChannelInfo, []domain.FeedItem, error)
}

// FeedStore is the part of the record store holding feeds and their watermarks
type FeedStore interface {
	FindFeedByURL(ctx context.Context, feedURL string) (*domain.Feed, error)
	CreateFeed(ctx context.Context, feed *domain.Feed) error
	UpdateFeedWatermark(ctx context.Context, feedID int64, ts time.Time) error
}

// Runner drives fetch, plan and execute for feeds. Feeds run in parallel up to
// the configured number of workers, items within a feed are always sequential.
type Runner struct {
	fetcher  Fetcher
	feeds    FeedStore
	executor *Executor
	workers  int
}

// RunnerConfig holds the runner collaborators
type RunnerConfig struct {
	Fetcher     Fetcher
	Feeds       FeedStore
	Articles    ArticleStore
	Thumbnailer Thumbnailer // optional
	Workers     int         // parallel feeds, 1 if not set
}

// NewRunner makes a runner
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Runner{
		fetcher:  cfg.Fetcher,
		feeds:    cfg.Feeds,
		executor: NewExecutor(cfg.Articles, cfg.Thumbnailer),
		workers:  cfg.Workers,
	}
}

// FeedReport is the outcome of one feed run
type FeedReport struct {
	FeedURL string
	Channel string
	Fetched int // items with a resolved publish instant
	Planned int // items newer than the watermark
	Result  domain.IngestionResult
	Err     error // feed level error, counters are still valid
}

// RunAll runs every feed and collects reports in the order of feedURLs.
// Repeated URLs are run once. A failing feed never stops its siblings.
func (r *Runner) RunAll(ctx context.Context, feedURLs []string) Summary {
	urls := uniqueURLs(feedURLs)
	reports := make([]FeedReport, len(urls))

	lgr.Printf("[INFO] ingesting %d feeds, %d workers", len(urls), r.workers)
	g := errgroup.Group{}
	g.SetLimit(r.workers)
	for i, u := range urls {
		g.Go(func() error {
			reports[i] = r.safeRunFeed(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return NewSummary(reports)
}

// safeRunFeed contains a panic in a single feed run
func (r *Runner) safeRunFeed(ctx context.Context, feedURL string) (rep FeedReport) {
	defer func() {
		if rec := recover(); rec != nil {
			lgr.Printf("[ERROR] feed %s crashed: %v", feedURL, rec)
			rep = FeedReport{FeedURL: feedURL, Err: fmt.Errorf("feed %s: panic: %v", feedURL, rec)}
		}
	}()
	return r.RunFeed(ctx, feedURL)
}

// RunFeed fetches feedURL, plans against the stored watermark, ingests new items and
// advances the watermark. Errors are contained in the returned report.
func (r *Runner) RunFeed(ctx context.Context, feedURL string) FeedReport {
	rep := FeedReport{FeedURL: feedURL}

	channel, items, err := r.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		lgr.Printf("[WARN] skip feed %s: %v", feedURL, err)
		rep.Err = err
		return rep
	}
	rep.Channel, rep.Fetched = channel.DisplayName, len(items)

	feed, err := r.ensureFeed(ctx, feedURL, channel)
	if err != nil {
		lgr.Printf("[WARN] feed %s has no record: %v", feedURL, err)
		rep.Err = err
		feed = &domain.Feed{URL: feedURL}
	}

	toInsert, newWatermark := Plan(items, feed.LastArticle)
	rep.Planned = len(toInsert)
	rep.Result = r.executor.Execute(ctx, feed.ID, toInsert)
	rep.Result.NewWatermark = newWatermark

	if err := r.advanceWatermark(ctx, feed, newWatermark); err != nil {
		lgr.Printf("[WARN] feed %s: %v", feedURL, err)
		rep.Result.Failures++
	}

	lgr.Printf("[INFO] feed %s: fetched %d, new %d, inserted %d, duplicates %d, failures %d",
		feedURL, rep.Fetched, rep.Planned, rep.Result.Inserted, rep.Result.DuplicatesSkipped, rep.Result.Failures)
	return rep
}

// ReprocessReport is the outcome of a forced re-ingestion of the newest items of a feed
type ReprocessReport struct {
	FeedURL      string     `json:"rss"`
	Requested    int        `json:"requested"`
	Processed    int        `json:"processed"`
	Inserted     int        `json:"inserted"`
	Duplicates   int        `json:"duplicates"`
	Failures     int        `json:"failures"`
	MaxPublished *time.Time `json:"max_published"`
}

// Reprocess ingests the count newest items of feedURL regardless of the watermark.
// Duplicate links are still skipped and the watermark only moves forward.
func (r *Runner) Reprocess(ctx context.Context, feedURL string, count int) (ReprocessReport, error) {
	rep := ReprocessReport{FeedURL: feedURL, Requested: count}

	channel, items, err := r.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return rep, err
	}

	feed, err := r.ensureFeed(ctx, feedURL, channel)
	if err != nil {
		return rep, err
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].PublishedAt.After(items[j].PublishedAt) })
	if count >= 0 && count < len(items) {
		items = items[:count]
	}
	rep.Processed = len(items)

	res := r.executor.Execute(ctx, feed.ID, items)
	rep.Inserted, rep.Duplicates, rep.Failures = res.Inserted, res.DuplicatesSkipped, res.Failures

	// newest of the selected items, the stored watermark is compared on advance
	_, rep.MaxPublished = Plan(items, nil)
	if err := r.advanceWatermark(ctx, feed, rep.MaxPublished); err != nil {
		lgr.Printf("[WARN] feed %s: %v", feedURL, err)
		rep.Failures++
	}
	return rep, nil
}

// Diagnosis is a sample of what a feed currently yields, nothing is stored
type Diagnosis struct {
	FeedURL     string       `json:"rss"`
	Channel     string       `json:"channel"`
	SampleCount int          `json:"sample_count"`
	Sample      []SampleItem `json:"sample"`
	Error       string       `json:"error,omitempty"`
}

// SampleItem is a single diagnosed item
type SampleItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Image     string `json:"image,omitempty"`
}

// Diagnose fetches every feed and returns up to limit items of each, in document order
func (r *Runner) Diagnose(ctx context.Context, feedURLs []string, limit int) []Diagnosis {
	urls := uniqueURLs(feedURLs)
	res := make([]Diagnosis, len(urls))

	g := errgroup.Group{}
	g.SetLimit(r.workers)
	for i, u := range urls {
		g.Go(func() error {
			d := Diagnosis{FeedURL: u, Sample: []SampleItem{}}
			channel, items, err := r.fetcher.Fetch(ctx, u)
			if err != nil {
				d.Error = err.Error()
				res[i] = d
				return nil
			}
			d.Channel, d.SampleCount = channel.DisplayName, len(items)
			for _, item := range items {
				if limit > 0 && len(d.Sample) >= limit {
					break
				}
				d.Sample = append(d.Sample, SampleItem{
					Title:     item.Title,
					Link:      item.Link,
					Published: domain.FormatTimestamp(item.PublishedAt),
					Image:     item.ImageURL,
				})
			}
			res[i] = d
			return nil
		})
	}
	_ = g.Wait()
	return res
}

// ensureFeed returns the stored feed for the channel, creating it when missing
func (r *Runner) ensureFeed(ctx context.Context, feedURL string, channel domain.ChannelInfo) (*domain.Feed, error) {
	feed, err := r.feeds.FindFeedByURL(ctx, feedURL)
	if err == nil {
		return feed, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find feed %s: %w", feedURL, err)
	}

	feed = &domain.Feed{URL: feedURL, Name: channel.DisplayName, IconURL: channel.IconURL}
	if err := r.feeds.CreateFeed(ctx, feed); err != nil {
		return nil, fmt.Errorf("create feed %s: %w", feedURL, err)
	}
	lgr.Printf("[INFO] created feed %d %q for %s", feed.ID, feed.Name, feed.URL)
	return feed, nil
}

// advanceWatermark persists ts only if it is strictly newer than the stored watermark
func (r *Runner) advanceWatermark(ctx context.Context, feed *domain.Feed, ts *time.Time) error {
	if feed.ID == 0 || ts == nil {
		return nil
	}
	if !(domain.Watermark{LastPublishedAt: feed.LastArticle}).Advances(*ts) {
		return nil
	}
	if err := r.feeds.UpdateFeedWatermark(ctx, feed.ID, *ts); err != nil {
		return fmt.Errorf("update watermark: %w", err)
	}
	lgr.Printf("[DEBUG] feed %s watermark %s", feed.URL, domain.FormatTimestamp(*ts))
	return nil
}

func uniqueURLs(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	res := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		res = append(res, u)
	}
	return res
}
