package feed

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/noticiando/rssingest/pkg/domain"
	"github.com/noticiando/rssingest/pkg/pubdate"
)

// DefaultChannelName is used for feeds without a title
const DefaultChannelName = "Sem Nome"

// maxFeedSize caps the bytes read from a feed document, anything past it is cut off
const maxFeedSize = 10 << 20

// ImageResolver picks a representative image for a parsed entry, empty string if none
type ImageResolver interface {
	Resolve(ctx context.Context, item *gofeed.Item) string
}

// Fetcher retrieves feed documents over HTTP and turns them into normalized items
type Fetcher struct {
	client    *http.Client
	userAgent string
	resolver  ImageResolver
	policy    *bluemonday.Policy
	maxSize   int64
}

// NewFetcher creates a feed fetcher. A nil resolver leaves every item without an image.
func NewFetcher(timeout time.Duration, userAgent string, resolver ImageResolver) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
		resolver:  resolver,
		policy:    bluemonday.StrictPolicy(),
		maxSize:   maxFeedSize,
	}
}

// Fetch gets feedURL and returns channel metadata with items in document order.
// Entries without a resolvable publish instant are dropped. A document that can't be
// parsed yields no items and no error, transport failures are returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (domain.ChannelInfo, []domain.FeedItem, error) {
	channel := domain.ChannelInfo{FeedURL: feedURL, DisplayName: DefaultChannelName}

	body, err := f.fetch(ctx, feedURL)
	if err != nil {
		return channel, nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	defer body.Close()

	parsed, err := gofeed.NewParser().Parse(io.LimitReader(body, f.maxSize))
	if err != nil {
		lgr.Printf("[WARN] can't parse feed %s: %v", feedURL, err)
		return channel, []domain.FeedItem{}, nil
	}

	if title := f.cleanText(parsed.Title); title != "" {
		channel.DisplayName = title
	}
	if parsed.Image != nil {
		channel.IconURL = strings.TrimSpace(parsed.Image.URL)
	}

	items := make([]domain.FeedItem, 0, len(parsed.Items))
	dropped := 0
	for _, entry := range parsed.Items {
		item, ok := f.convert(ctx, feedURL, entry)
		if !ok {
			dropped++
			continue
		}
		items = append(items, item)
	}
	if dropped > 0 {
		lgr.Printf("[DEBUG] feed %s: %d of %d entries dropped", feedURL, dropped, len(parsed.Items))
	}
	return channel, items, nil
}

// convert builds a FeedItem from a single entry. A panic while extracting skips the entry only.
func (f *Fetcher) convert(ctx context.Context, feedURL string, entry *gofeed.Item) (item domain.FeedItem, ok bool) {
	if entry == nil {
		return domain.FeedItem{}, false
	}
	defer func() {
		if r := recover(); r != nil {
			lgr.Printf("[WARN] skip entry %q of %s: %v", entry.Link, feedURL, r)
			item, ok = domain.FeedItem{}, false
		}
	}()

	raw := entry.Published
	if strings.TrimSpace(raw) == "" {
		raw = entry.Updated
	}
	published, ok := pubdate.Normalize(raw)
	if !ok {
		lgr.Printf("[DEBUG] drop entry %q of %s, unparseable date %q", entry.Link, feedURL, raw)
		return domain.FeedItem{}, false
	}

	item = domain.FeedItem{
		FeedURL:     feedURL,
		Title:       f.cleanText(entry.Title),
		Link:        strings.TrimSpace(entry.Link),
		PublishedAt: published,
	}
	if f.resolver != nil {
		item.ImageURL = f.resolver.Resolve(ctx, entry)
	}
	return item, true
}

// cleanText strips markup and decodes entities
func (f *Fetcher) cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(f.policy.Sanitize(s)))
}

// fetch retrieves content from a URL
func (f *Fetcher) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(req, f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}
