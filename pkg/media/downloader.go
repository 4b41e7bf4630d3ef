package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

var (
	// ErrHotlinkBlocked is returned for 403 responses, those are never retried
	ErrHotlinkBlocked = errors.New("hotlink blocked")
	// ErrUnsupportedImage is returned for SVG and other payloads that can't be rasterized
	ErrUnsupportedImage = errors.New("unsupported image")
)

const maxImageSize = 20 << 20

// Payload is a downloaded image body with its declared content type
type Payload struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// DownloaderConfig holds retry and timeout settings for image downloads
type DownloaderConfig struct {
	Timeout   time.Duration // per attempt
	Attempts  int
	Backoff   time.Duration // first delay, doubled on each retry
	UserAgent string
}

// HTTPDownloader downloads images with browser headers and bounded exponential retries
type HTTPDownloader struct {
	client    *http.Client
	attempts  int
	backoff   time.Duration
	userAgent string
}

// NewHTTPDownloader makes a downloader, zero config values get 10s timeout, 3 attempts and 1s backoff
func NewHTTPDownloader(cfg DownloaderConfig) *HTTPDownloader {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = time.Second
	}
	return &HTTPDownloader{
		client:    &http.Client{Timeout: cfg.Timeout},
		attempts:  cfg.Attempts,
		backoff:   cfg.Backoff,
		userAgent: cfg.UserAgent,
	}
}

// Download fetches imageURL. Network errors and non-2xx responses are retried,
// 403 stops immediately with ErrHotlinkBlocked and SVG content yields ErrUnsupportedImage.
func (d *HTTPDownloader) Download(ctx context.Context, imageURL string) (*Payload, error) {
	if isSVGURL(imageURL) {
		return nil, fmt.Errorf("%w: svg %s", ErrUnsupportedImage, imageURL)
	}

	var payload *Payload
	retrier := repeater.NewBackoff(d.attempts, d.backoff, repeater.WithJitter(0))
	err := retrier.Do(ctx, func() error {
		p, err := d.fetch(ctx, imageURL)
		if err != nil {
			return err
		}
		payload = p
		return nil
	}, ErrHotlinkBlocked)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", imageURL, err)
	}

	if strings.Contains(strings.ToLower(payload.ContentType), "svg") {
		return nil, fmt.Errorf("%w: content type %q", ErrUnsupportedImage, payload.ContentType)
	}
	return payload, nil
}

func (d *HTTPDownloader) fetch(ctx context.Context, imageURL string) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(req, d.userAgent, acceptImage)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, ErrHotlinkBlocked
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Payload{StatusCode: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}

// isSVGURL checks the URL path, ignoring query and fragment
func isSVGURL(rawURL string) bool {
	if strings.HasSuffix(strings.ToLower(rawURL), ".svg") {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".svg")
}
