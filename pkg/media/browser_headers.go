package media

import (
	"math/rand"
	"net/http"
	"net/url"
)

// DefaultUserAgent is a desktop browser agent, some image hosts refuse anything else
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// acceptLanguages contains browser Accept-Language values, portuguese first
var acceptLanguages = []string{
	"pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
	"pt-BR,pt;q=0.9,en;q=0.8",
	"pt-PT,pt;q=0.9,en;q=0.8",
	"en-US,en;q=0.9,pt-BR;q=0.8",
}

// addBrowserHeaders sets user agent, accept headers and a Referer with the target's origin
func addBrowserHeaders(req *http.Request, userAgent, accept string) {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))]) //nolint:gosec // non-cryptographic randomness is fine for header variation
	req.Header.Set("Cache-Control", "no-cache")

	if origin := originOf(req.URL); origin != "" {
		req.Header.Set("Referer", origin)
	}
}

// originOf returns scheme://host, or empty string if either part is missing
func originOf(u *url.URL) string {
	if u == nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

const (
	acceptHTML  = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptImage = "image/avif,image/webp,image/apng,image/*,*/*;q=0.8"
)
