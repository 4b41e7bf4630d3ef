package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFunc func(ctx context.Context, item *gofeed.Item) string

func (f resolverFunc) Resolve(ctx context.Context, item *gofeed.Item) string { return f(ctx, item) }

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Referer"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_Fetch(t *testing.T) {
	rssContent := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
	<title>Revista &lt;b&gt;Direito&lt;/b&gt; Hoje</title>
	<link>https://example.com</link>
	<image><url>https://example.com/icon.png</url><title>icon</title><link>https://example.com</link></image>
	<item>
		<title>Primeira notícia</title>
		<link>https://example.com/1</link>
		<pubDate>Qua, 26 nov 2025 08:25:00 +0000</pubDate>
		<media:content url="https://cdn.example.com/1.jpg"/>
	</item>
	<item>
		<title>Bad date</title>
		<link>https://example.com/bad</link>
		<pubDate>sometime soon</pubDate>
	</item>
	<item>
		<title>Tom &amp; Jerry</title>
		<link> https://example.com/2 </link>
		<pubDate>Mon, 24 Nov 2025 10:00:00 -0300</pubDate>
	</item>
	<item>
		<title>No date at all</title>
		<link>https://example.com/nodate</link>
	</item>
	<item>
		<title>Older</title>
		<link>https://example.com/3</link>
		<pubDate>1 fev 2024 09:00:00 GMT</pubDate>
	</item>
</channel>
</rss>`

	srv := serveFeed(t, rssContent)
	var resolved []string
	resolver := resolverFunc(func(_ context.Context, item *gofeed.Item) string {
		resolved = append(resolved, item.Link)
		if item.Link == "https://example.com/1" {
			return "https://cdn.example.com/1.jpg"
		}
		return ""
	})

	channel, items, err := NewFetcher(5*time.Second, "", resolver).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, channel.FeedURL)
	assert.Equal(t, "Revista Direito Hoje", channel.DisplayName)
	assert.Equal(t, "https://example.com/icon.png", channel.IconURL)

	require.Len(t, items, 3, "entries without a parseable date are dropped")
	assert.Equal(t, "Primeira notícia", items[0].Title)
	assert.Equal(t, "https://example.com/1", items[0].Link)
	assert.Equal(t, time.Date(2025, 11, 26, 8, 25, 0, 0, time.UTC), items[0].PublishedAt)
	assert.Equal(t, "https://cdn.example.com/1.jpg", items[0].ImageURL)
	assert.Equal(t, srv.URL, items[0].FeedURL)

	assert.Equal(t, "Tom & Jerry", items[1].Title)
	assert.Equal(t, "https://example.com/2", items[1].Link)
	assert.Equal(t, time.Date(2025, 11, 24, 13, 0, 0, 0, time.UTC), items[1].PublishedAt)
	assert.Empty(t, items[1].ImageURL)

	assert.Equal(t, "https://example.com/3", items[2].Link, "document order is kept")
	assert.Equal(t, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), items[2].PublishedAt)

	assert.Equal(t, []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"}, resolved,
		"images resolved only for kept entries")
}

func TestFetcher_FetchAtom(t *testing.T) {
	atomContent := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Atom Feed</title>
	<entry>
		<title>Updated only</title>
		<link href="https://example.com/entry1"/>
		<updated>2025-11-26T08:25:00Z</updated>
	</entry>
	<entry>
		<title>Published and updated</title>
		<link href="https://example.com/entry2"/>
		<published>2025-11-20T10:00:00-03:00</published>
		<updated>2025-11-26T08:25:00Z</updated>
	</entry>
</feed>`

	srv := serveFeed(t, atomContent)
	channel, items, err := NewFetcher(5*time.Second, "test-agent", nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Atom Feed", channel.DisplayName)
	assert.Empty(t, channel.IconURL)

	require.Len(t, items, 2)
	assert.Equal(t, time.Date(2025, 11, 26, 8, 25, 0, 0, time.UTC), items[0].PublishedAt, "falls back to updated")
	assert.Equal(t, time.Date(2025, 11, 20, 13, 0, 0, 0, time.UTC), items[1].PublishedAt, "published wins over updated")
}

func TestFetcher_DefaultChannelName(t *testing.T) {
	srv := serveFeed(t, `<?xml version="1.0"?><rss version="2.0"><channel>
		<item><title>x</title><link>https://example.com/x</link><pubDate>Mon, 24 Nov 2025 10:00:00 GMT</pubDate></item>
	</channel></rss>`)

	channel, items, err := NewFetcher(5*time.Second, "", nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, DefaultChannelName, channel.DisplayName)
	assert.Len(t, items, 1)
}

func TestFetcher_MalformedDocument(t *testing.T) {
	srv := serveFeed(t, "this is not a feed")

	channel, items, err := NewFetcher(5*time.Second, "", nil).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, DefaultChannelName, channel.DisplayName)
}

func TestFetcher_OversizedDocumentIsCut(t *testing.T) {
	completed := make(chan bool, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>big</title>
			<item><title>x</title><link>https://example.com/x</link><pubDate>Mon, 24 Nov 2025 10:00:00 GMT</pubDate></item>`))
		pad := []byte("<!-- " + strings.Repeat("x", 1<<10) + " -->\n")
		for i := 0; i < 64<<10; i++ { // 64MB of comments
			if _, err := w.Write(pad); err != nil {
				completed <- false
				return
			}
		}
		_, _ = w.Write([]byte("</channel></rss>"))
		completed <- true
	}))
	defer srv.Close()

	f := NewFetcher(10*time.Second, "", nil)
	f.maxSize = 64 << 10
	_, items, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, items, "truncated document is not parsed")

	select {
	case done := <-completed:
		assert.False(t, done, "whole body was sent")
	case <-time.After(10 * time.Second):
		t.Fatal("server still writing after fetch returned")
	}
}

func TestFetcher_TransportErrors(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, items, err := NewFetcher(5*time.Second, "", nil).Fetch(context.Background(), srv.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code: 404")
		assert.Empty(t, items)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		_, _, err := NewFetcher(50*time.Millisecond, "", nil).Fetch(context.Background(), srv.URL)
		require.Error(t, err)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, _, err := NewFetcher(time.Second, "", nil).Fetch(context.Background(), "://bad")
		require.Error(t, err)
	})
}

func TestFetcher_EntryPanicSkipsEntryOnly(t *testing.T) {
	srv := serveFeed(t, `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>
		<item><title>a</title><link>https://example.com/a</link><pubDate>Mon, 24 Nov 2025 10:00:00 GMT</pubDate></item>
		<item><title>boom</title><link>https://example.com/boom</link><pubDate>Mon, 24 Nov 2025 11:00:00 GMT</pubDate></item>
		<item><title>c</title><link>https://example.com/c</link><pubDate>Mon, 24 Nov 2025 12:00:00 GMT</pubDate></item>
	</channel></rss>`)

	resolver := resolverFunc(func(_ context.Context, item *gofeed.Item) string {
		if item.Link == "https://example.com/boom" {
			panic("broken entry")
		}
		return ""
	})

	_, items, err := NewFetcher(5*time.Second, "", resolver).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://example.com/a", items[0].Link)
	assert.Equal(t, "https://example.com/c", items[1].Link)
}
