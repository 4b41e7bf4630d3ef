package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticiando/rssingest/pkg/domain"
	"github.com/noticiando/rssingest/pkg/repository"
)

func TestRunner_RunFeed_SubSecondWatermarkWithStore(t *testing.T) {
	ctx := context.Background()
	repos, err := repository.NewRepositories(ctx, repository.Config{DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	const feedURL = "https://example.com/feed"
	published := time.Date(2025, 11, 26, 8, 25, 0, 500_000_000, time.UTC)
	fetcher := staticFetcher(map[string][]domain.FeedItem{feedURL: {
		{FeedURL: feedURL, Title: "no link", PublishedAt: published},
	}})
	r := NewRunner(RunnerConfig{Fetcher: fetcher, Feeds: repos.Feed, Articles: repos.Article})

	rep := r.RunFeed(ctx, feedURL)
	require.NoError(t, rep.Err)
	assert.Equal(t, 1, rep.Result.Inserted)

	for i := 0; i < 2; i++ {
		rep = r.RunFeed(ctx, feedURL)
		require.NoError(t, rep.Err)
		assert.Equal(t, 0, rep.Planned, "run %d", i+2)
		assert.Equal(t, 0, rep.Result.Inserted, "run %d", i+2)
	}

	count, err := repos.Article.CountArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	f, err := repos.Feed.FindFeedByURL(ctx, feedURL)
	require.NoError(t, err)
	require.NotNil(t, f.LastArticle)
	assert.True(t, published.Equal(*f.LastArticle))
}
