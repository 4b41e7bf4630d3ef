package media

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
	"golang.org/x/net/html/charset"
)

// HTTPScraper loads article pages and looks for og:image, twitter:image,
// link rel=image_src and finally the first <img> on the page
type HTTPScraper struct {
	client    *http.Client
	userAgent string
}

// NewHTTPScraper creates a page scraper with the given per-request timeout
func NewHTTPScraper(timeout time.Duration, userAgent string) *HTTPScraper {
	return &HTTPScraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Scrape returns an absolute image URL found on the page, or empty string.
// Fetch and parse errors are logged and swallowed.
func (s *HTTPScraper) Scrape(ctx context.Context, pageURL string) string {
	doc, base, err := s.load(ctx, pageURL)
	if err != nil {
		lgr.Printf("[DEBUG] page scrape of %s failed: %v", pageURL, err)
		return ""
	}
	return findPageImage(doc, base)
}

func (s *HTTPScraper) load(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, nil, fmt.Errorf("invalid URL: %s", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(req, s.userAgent, acceptHTML)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// many portuguese sites still serve iso-8859-1
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, nil, fmt.Errorf("detect charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse HTML: %w", err)
	}

	// redirects change the base for relative URLs
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}
	return doc, base, nil
}

// findPageImage applies the page selectors in priority order
func findPageImage(doc *goquery.Document, base *url.URL) string {
	candidates := []struct {
		selector string
		attr     string
	}{
		{`meta[property="og:image"], meta[name="og:image"]`, "content"},
		{`meta[name="twitter:image"], meta[property="twitter:image"]`, "content"},
		{`link[rel~="image_src"]`, "href"},
		{`img[src]`, "src"},
	}

	for _, c := range candidates {
		val, ok := doc.Find(c.selector).First().Attr(c.attr)
		if !ok || strings.TrimSpace(val) == "" {
			continue
		}
		return resolveRef(base, strings.TrimSpace(val))
	}
	return ""
}

// resolveRef makes ref absolute against base, absolute refs are returned as is
func resolveRef(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}
