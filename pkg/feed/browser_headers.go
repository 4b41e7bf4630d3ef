package feed

import (
	"math/rand"
	"net/http"
)

// defaultUserAgent is used when no user agent is configured, some feed hosts reject non-browser agents
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// acceptLanguages contains common browser Accept-Language values
var acceptLanguages = []string{
	"pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
	"pt-BR,pt;q=0.9,en;q=0.8",
	"en-US,en;q=0.9,pt-BR;q=0.8",
}

// addBrowserHeaders adds browser-like headers for feed fetching
func addBrowserHeaders(req *http.Request, userAgent string) {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	// accept header for feeds - include both RSS and HTML
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/xml;q=0.8,text/html;q=0.7,*/*;q=0.5")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))]) //nolint:gosec // non-cryptographic randomness is fine for header variation

	if req.URL != nil && req.URL.Scheme != "" && req.URL.Host != "" {
		req.Header.Set("Referer", req.URL.Scheme+"://"+req.URL.Host)
	}
}
