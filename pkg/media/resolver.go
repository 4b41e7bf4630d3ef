package media

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// PageScraper finds a representative image on an article page. It returns an empty
// string on any fetch or parse failure.
type PageScraper interface {
	Scrape(ctx context.Context, pageURL string) string
}

// imageURLRe matches the first absolute URL ending in a known image extension
var imageURLRe = regexp.MustCompile(`(?i)(https?://[^\s'"<>]+\.(?:jpg|jpeg|png|gif|webp|bmp|svg))`)

// strategy looks for an image in a single place, empty result means "try the next one"
type strategy func(ctx context.Context, item *gofeed.Item) string

// Resolver picks one image URL per feed item, trying in order: media:content,
// enclosures, media:thumbnail, image URLs in the description and finally the
// linked page itself.
type Resolver struct {
	scraper    PageScraper
	strategies []strategy
}

// NewResolver makes a resolver. A nil scraper disables the page fallback.
func NewResolver(scraper PageScraper) *Resolver {
	r := &Resolver{scraper: scraper}
	r.strategies = []strategy{fromMediaContent, fromEnclosures, fromMediaThumbnail, fromDescription, r.fromPage}
	return r
}

// Resolve returns the best image URL for item, or empty string if there is none
func (r *Resolver) Resolve(ctx context.Context, item *gofeed.Item) string {
	if item == nil {
		return ""
	}
	for _, s := range r.strategies {
		if u := strings.TrimSpace(s(ctx, item)); u != "" {
			return u
		}
	}
	lgr.Printf("[DEBUG] no image found for %q", item.Link)
	return ""
}

func fromMediaContent(_ context.Context, item *gofeed.Item) string {
	return firstMediaURL(item.Extensions, "content")
}

func fromEnclosures(_ context.Context, item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func fromMediaThumbnail(_ context.Context, item *gofeed.Item) string {
	return firstMediaURL(item.Extensions, "thumbnail")
}

func fromDescription(_ context.Context, item *gofeed.Item) string {
	text := item.Description
	if text == "" {
		text = item.Content
	}
	return FindImageURL(text)
}

func (r *Resolver) fromPage(ctx context.Context, item *gofeed.Item) string {
	if r.scraper == nil || item.Link == "" {
		return ""
	}
	return r.scraper.Scrape(ctx, item.Link)
}

// FindImageURL returns the first URL in text ending with an image extension
func FindImageURL(text string) string {
	if text == "" {
		return ""
	}
	return imageURLRe.FindString(text)
}

// firstMediaURL returns the url attribute of the first media:<name> element,
// looking inside media:group when there is none at the top level
func firstMediaURL(exts ext.Extensions, name string) string {
	media, ok := exts["media"]
	if !ok {
		return ""
	}
	for _, e := range media[name] {
		if u := e.Attrs["url"]; u != "" {
			return u
		}
	}
	for _, group := range media["group"] {
		for _, e := range group.Children[name] {
			if u := e.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	return ""
}
