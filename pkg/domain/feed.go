package domain

import "time"

// Feed represents a stored news source, one row per feed URL
type Feed struct {
	ID          int64
	URL         string
	Name        string
	IconURL     string
	LastArticle *time.Time // watermark, nil until the first successful run
	CreatedAt   time.Time
}

// ChannelInfo is the feed-level metadata read from a fetched feed document
type ChannelInfo struct {
	FeedURL     string
	DisplayName string
	IconURL     string
}

// Watermark is the newest publish instant already ingested for a feed
type Watermark struct {
	FeedURL         string
	LastPublishedAt *time.Time
}

// Advances reports whether ts is strictly newer than the watermark.
// An absent watermark is advanced by any instant.
func (w Watermark) Advances(ts time.Time) bool {
	return w.LastPublishedAt == nil || ts.After(*w.LastPublishedAt)
}
