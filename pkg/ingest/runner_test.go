package ingest

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticiando/rssingest/pkg/domain"
	"github.com/noticiando/rssingest/pkg/ingest/mocks"
)

// memFeeds is an in-memory feed store keyed by URL
func memFeeds(existing ...domain.Feed) *mocks.FeedStoreMock {
	var mu sync.Mutex
	byURL := map[string]*domain.Feed{}
	var nextID int64 = 100
	for i := range existing {
		f := existing[i]
		byURL[f.URL] = &f
	}
	return &mocks.FeedStoreMock{
		FindFeedByURLFunc: func(_ context.Context, feedURL string) (*domain.Feed, error) {
			mu.Lock()
			defer mu.Unlock()
			f, ok := byURL[feedURL]
			if !ok {
				return nil, domain.ErrNotFound
			}
			cp := *f
			return &cp, nil
		},
		CreateFeedFunc: func(_ context.Context, f *domain.Feed) error {
			mu.Lock()
			defer mu.Unlock()
			nextID++
			f.ID = nextID
			cp := *f
			byURL[f.URL] = &cp
			return nil
		},
		UpdateFeedWatermarkFunc: func(_ context.Context, feedID int64, ts time.Time) error {
			mu.Lock()
			defer mu.Unlock()
			for _, f := range byURL {
				if f.ID == feedID {
					f.LastArticle = &ts
					return nil
				}
			}
			return domain.ErrNotFound
		},
	}
}

func staticFetcher(items map[string][]domain.FeedItem) *mocks.FetcherMock {
	return &mocks.FetcherMock{
		FetchFunc: func(_ context.Context, feedURL string) (domain.ChannelInfo, []domain.FeedItem, error) {
			list, ok := items[feedURL]
			if !ok {
				return domain.ChannelInfo{}, nil, errors.New("unexpected status code: 500")
			}
			res := make([]domain.FeedItem, len(list))
			copy(res, list)
			return domain.ChannelInfo{FeedURL: feedURL, DisplayName: "Channel " + feedURL, IconURL: "icon"}, res, nil
		},
	}
}

func TestRunner_RunFeed_FirstRunAndRepeat(t *testing.T) {
	const feedURL = "https://example.com/feed"
	fetcher := staticFetcher(map[string][]domain.FeedItem{feedURL: {
		itemAt("https://example.com/1", time.Hour),
		itemAt("https://example.com/2", 2*time.Hour),
	}})
	feeds := memFeeds()
	articles := memArticles()
	r := NewRunner(RunnerConfig{Fetcher: fetcher, Feeds: feeds, Articles: articles})

	rep := r.RunFeed(context.Background(), feedURL)
	require.NoError(t, rep.Err)
	assert.Equal(t, 2, rep.Fetched)
	assert.Equal(t, 2, rep.Planned)
	assert.Equal(t, 2, rep.Result.Inserted)
	require.NotNil(t, rep.Result.NewWatermark)
	assert.Equal(t, base.Add(2*time.Hour), *rep.Result.NewWatermark)

	created := feeds.CreateFeedCalls()
	require.Len(t, created, 1)
	assert.Equal(t, feedURL, created[0].Feed.URL)
	assert.Equal(t, "Channel "+feedURL, created[0].Feed.Name)
	assert.Equal(t, "icon", created[0].Feed.IconURL)

	updates := feeds.UpdateFeedWatermarkCalls()
	require.Len(t, updates, 1)
	assert.Equal(t, int64(101), updates[0].FeedID)
	assert.Equal(t, base.Add(2*time.Hour), updates[0].Ts)

	// second run with the same document does nothing
	rep = r.RunFeed(context.Background(), feedURL)
	require.NoError(t, rep.Err)
	assert.Equal(t, 0, rep.Planned)
	assert.Equal(t, domain.IngestionResult{NewWatermark: rep.Result.NewWatermark}, rep.Result)
	assert.Len(t, feeds.CreateFeedCalls(), 1)
	assert.Len(t, feeds.UpdateFeedWatermarkCalls(), 1, "watermark not rewritten when it does not advance")
	assert.Len(t, articles.InsertArticleCalls(), 2)
}

func TestRunner_RunFeed_WatermarkFiltersAndAdvances(t *testing.T) {
	const feedURL = "https://example.com/feed"
	wm := base.Add(time.Hour)
	feeds := memFeeds(domain.Feed{ID: 5, URL: feedURL, LastArticle: &wm})
	fetcher := staticFetcher(map[string][]domain.FeedItem{feedURL: {
		itemAt("https://example.com/old", 0),
		itemAt("https://example.com/same", time.Hour),
		itemAt("https://example.com/new", 3*time.Hour),
	}})
	articles := memArticles()

	rep := NewRunner(RunnerConfig{Fetcher: fetcher, Feeds: feeds, Articles: articles}).RunFeed(context.Background(), feedURL)
	require.NoError(t, rep.Err)
	assert.Equal(t, 3, rep.Fetched)
	assert.Equal(t, 1, rep.Planned)
	assert.Equal(t, 1, rep.Result.Inserted)

	inserted := articles.InsertArticleCalls()
	require.Len(t, inserted, 1)
	assert.Equal(t, "https://example.com/new", inserted[0].Article.Link)
	assert.Equal(t, int64(5), inserted[0].Article.FeedID)

	assert.Empty(t, feeds.CreateFeedCalls())
	updates := feeds.UpdateFeedWatermarkCalls()
	require.Len(t, updates, 1)
	assert.Equal(t, base.Add(3*time.Hour), updates[0].Ts)
}

func TestRunner_RunFeed_WatermarkAdvancesDespiteFailures(t *testing.T) {
	const feedURL = "https://example.com/feed"
	feeds := memFeeds(domain.Feed{ID: 5, URL: feedURL})
	fetcher := staticFetcher(map[string][]domain.FeedItem{feedURL: {itemAt("https://example.com/1", time.Hour)}})
	articles := &mocks.ArticleStoreMock{
		FindArticleByLinkFunc: func(context.Context, string) (*domain.Article, error) { return nil, domain.ErrNotFound },
		InsertArticleFunc:     func(context.Context, *domain.Article) error { return errors.New("disk full") },
	}

	rep := NewRunner(RunnerConfig{Fetcher: fetcher, Feeds: feeds, Articles: articles}).RunFeed(context.Background(), feedURL)
	assert.Equal(t, 1, rep.Result.Failures)
	require.Len(t, feeds.UpdateFeedWatermarkCalls(), 1)
	assert.Equal(t, base.Add(time.Hour), feeds.UpdateFeedWatermarkCalls()[0].Ts)
}

func TestRunner_RunFeed_Errors(t *testing.T) {
	const feedURL = "https://example.com/feed"

	t.Run("fetch error", func(t *testing.T) {
		feeds := memFeeds()
		rep := NewRunner(RunnerConfig{Fetcher: staticFetcher(nil), Feeds: feeds, Articles: memArticles()}).
			RunFeed(context.Background(), feedURL)
		require.Error(t, rep.Err)
		assert.Equal(t, domain.IngestionResult{}, rep.Result)
		assert.Empty(t, feeds.FindFeedByURLCalls())
	})

	t.Run("feed creation fails, items counted as failures", func(t *testing.T) {
		feeds := memFeeds()
		feeds.CreateFeedFunc = func(context.Context, *domain.Feed) error { return errors.New("permission denied") }
		articles := memArticles()
		fetcher := staticFetcher(map[string][]domain.FeedItem{feedURL: {itemAt("a", 0), itemAt("b", time.Hour)}})

		rep := NewRunner(RunnerConfig{Fetcher: fetcher, Feeds: feeds, Articles: articles}).RunFeed(context.Background(), feedURL)
		require.Error(t, rep.Err)
		assert.Contains(t, rep.Err.Error(), "create feed")
		assert.Equal(t, 2, rep.Result.Failures)
		assert.Empty(t, articles.InsertArticleCalls())
		assert.Empty(t, feeds.UpdateFeedWatermarkCalls())
	})

	t.Run("feed lookup fails", func(t *testing.T) {
		feeds := memFeeds()
		feeds.FindFeedByURLFunc = func(context.Context, string) (*domain.Feed, error) { return nil, errors.New("db down") }
		fetcher := staticFetcher(map[string][]domain.FeedItem{feedURL: {itemAt("a", 0)}})

		rep := NewRunner(RunnerConfig{Fetcher: fetcher, Feeds: feeds, Articles: memArticles()}).RunFeed(context.Background(), feedURL)
		require.Error(t, rep.Err)
		assert.Empty(t, feeds.CreateFeedCalls(), "lookup error is not a missing row")
		assert.Equal(t, 1, rep.Result.Failures)
	})

	t.Run("watermark update fails", func(t *testing.T) {
		feeds := memFeeds(domain.Feed{ID: 1, URL: feedURL})
		feeds.UpdateFeedWatermarkFunc = func(context.Context, int64, time.Time) error { return errors.New("locked") }
		fetcher := staticFetcher(map[string][]domain.FeedItem{feedURL: {itemAt("a", 0)}})

		rep := NewRunner(RunnerConfig{Fetcher: fetcher, Feeds: feeds, Articles: memArticles()}).RunFeed(context.Background(), feedURL)
		require.NoError(t, rep.Err)
		assert.Equal(t, 1, rep.Result.Inserted)
		assert.Equal(t, 1, rep.Result.Failures)
	})
}

func TestRunner_RunAll(t *testing.T) {
	fetcher := staticFetcher(map[string][]domain.FeedItem{
		"https://a.com/feed": {itemAt("https://a.com/1", 0), itemAt("https://shared.com/x", time.Hour)},
		"https://b.com/feed": {itemAt("https://b.com/1", 0), itemAt("https://shared.com/x", time.Hour)},
	})
	feeds := memFeeds()
	articles := memArticles()
	// single worker, the shared link makes the outcome order dependent otherwise
	r := NewRunner(RunnerConfig{Fetcher: fetcher, Feeds: feeds, Articles: articles, Workers: 1})

	urls := []string{"https://a.com/feed", "https://broken.com/feed", "https://b.com/feed", "https://a.com/feed", ""}
	summary := r.RunAll(context.Background(), urls)

	require.Len(t, summary.Feeds, 3, "duplicates and empty urls are dropped")
	assert.Equal(t, "https://a.com/feed", summary.Feeds[0].FeedURL)
	assert.Equal(t, "https://broken.com/feed", summary.Feeds[1].FeedURL)
	assert.Equal(t, "https://b.com/feed", summary.Feeds[2].FeedURL)
	require.Error(t, summary.Feeds[1].Err)
	assert.Equal(t, 1, summary.FailedFeeds)

	// the shared link is inserted by exactly one of the feeds
	assert.Equal(t, 3, summary.Total.Inserted)
	assert.Equal(t, 1, summary.Total.DuplicatesSkipped)
	assert.Len(t, articles.InsertArticleCalls(), 3)
	assert.Len(t, fetcher.FetchCalls(), 3)
}

func TestRunner_RunAll_PanicContained(t *testing.T) {
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(_ context.Context, feedURL string) (domain.ChannelInfo, []domain.FeedItem, error) {
			if feedURL == "boom" {
				panic("unexpected")
			}
			return domain.ChannelInfo{FeedURL: feedURL}, []domain.FeedItem{itemAt(feedURL+"/1", 0)}, nil
		},
	}
	r := NewRunner(RunnerConfig{Fetcher: fetcher, Feeds: memFeeds(), Articles: memArticles(), Workers: 2})

	summary := r.RunAll(context.Background(), []string{"boom", "ok"})
	require.Len(t, summary.Feeds, 2)
	require.Error(t, summary.Feeds[0].Err)
	assert.Contains(t, summary.Feeds[0].Err.Error(), "panic")
	assert.Equal(t, 1, summary.Feeds[1].Result.Inserted)
}

func TestRunner_Reprocess(t *testing.T) {
	const feedURL = "https://example.com/feed"
	wm := base.Add(10 * time.Hour)
	feeds := memFeeds(domain.Feed{ID: 3, URL: feedURL, LastArticle: &wm})
	fetcher := staticFetcher(map[string][]domain.FeedItem{feedURL: {
		itemAt("https://example.com/1", time.Hour),
		itemAt("https://example.com/3", 3*time.Hour),
		itemAt("https://example.com/2", 2*time.Hour),
		itemAt("https://example.com/0", 0),
	}})
	articles := memArticles()
	r := NewRunner(RunnerConfig{Fetcher: fetcher, Feeds: feeds, Articles: articles})

	rep, err := r.Reprocess(context.Background(), feedURL, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Requested)
	assert.Equal(t, 2, rep.Processed)
	assert.Equal(t, 2, rep.Inserted)
	require.NotNil(t, rep.MaxPublished)
	assert.Equal(t, base.Add(3*time.Hour), *rep.MaxPublished)

	inserted := articles.InsertArticleCalls()
	require.Len(t, inserted, 2)
	assert.Equal(t, "https://example.com/3", inserted[0].Article.Link, "newest first")
	assert.Equal(t, "https://example.com/2", inserted[1].Article.Link)
	assert.Empty(t, feeds.UpdateFeedWatermarkCalls(), "watermark ahead of reprocessed items stays")

	rep, err = r.Reprocess(context.Background(), feedURL, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Processed)
	assert.Equal(t, 2, rep.Inserted)
	assert.Equal(t, 2, rep.Duplicates)

	_, err = r.Reprocess(context.Background(), "https://missing.com/feed", 10)
	require.Error(t, err)
}

func TestRunner_Diagnose(t *testing.T) {
	items := make([]domain.FeedItem, 0, 15)
	for i := 0; i < 15; i++ {
		items = append(items, itemAt("https://example.com/"+string(rune('a'+i)), time.Duration(i)*time.Hour))
	}
	fetcher := staticFetcher(map[string][]domain.FeedItem{"https://example.com/feed": items})
	feeds := memFeeds()
	r := NewRunner(RunnerConfig{Fetcher: fetcher, Feeds: feeds, Articles: memArticles(), Workers: 2})

	res := r.Diagnose(context.Background(), []string{"https://example.com/feed", "https://down.com/feed"}, 10)
	require.Len(t, res, 2)
	assert.Equal(t, 15, res[0].SampleCount)
	require.Len(t, res[0].Sample, 10)
	assert.Equal(t, "https://example.com/a", res[0].Sample[0].Link)
	assert.Equal(t, "2025-11-26T08:00:00Z", res[0].Sample[0].Published)
	assert.Empty(t, res[0].Error)

	assert.NotEmpty(t, res[1].Error)
	assert.Empty(t, res[1].Sample)
	assert.Empty(t, feeds.FindFeedByURLCalls(), "diagnose never touches storage")
}

func TestSummary_Print(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	s := NewSummary([]FeedReport{
		{FeedURL: "https://a.com/feed", Result: domain.IngestionResult{Inserted: 3, DuplicatesSkipped: 1}},
		{FeedURL: "https://b.com/feed", Err: errors.New("unexpected status code: 500")},
		{FeedURL: "https://c.com/feed", Result: domain.IngestionResult{Inserted: 1, Failures: 2}},
	})

	var buf bytes.Buffer
	s.Print(&buf)
	want := "https://a.com/feed: 3 inserted, 1 duplicates skipped\n" +
		"https://b.com/feed: error: unexpected status code: 500\n" +
		"https://c.com/feed: 1 inserted, 2 failures\n" +
		"total inserted: 4\n" +
		"total duplicates skipped: 1\n" +
		"total failures: 2\n" +
		"failed feeds: 1\n"
	assert.Equal(t, want, buf.String())
}
