package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by storage lookups when no row matches.
// It is not a failure, callers branch on it with errors.Is.
var ErrNotFound = errors.New("not found")

// FeedItem is a normalized feed entry. PublishedAt is always set and in UTC,
// entries without a resolvable instant never become a FeedItem.
type FeedItem struct {
	FeedURL     string
	Title       string
	Link        string
	PublishedAt time.Time
	ImageURL    string // empty when no image was found
}

// Article is the persisted record of an ingested item
type Article struct {
	ID           int64
	FeedID       int64
	FeedURL      string
	Title        string
	Link         string
	ThumbnailURL string
	Published    time.Time
	CreatedAt    time.Time
}

// IngestionResult aggregates per-item outcomes of one feed run
type IngestionResult struct {
	Inserted          int
	DuplicatesSkipped int
	Failures          int
	NewWatermark      *time.Time
}

// Add accumulates counters of another result, watermark is left untouched
func (r *IngestionResult) Add(other IngestionResult) {
	r.Inserted += other.Inserted
	r.DuplicatesSkipped += other.DuplicatesSkipped
	r.Failures += other.Failures
}

// TimestampLayout is the ISO-8601 form used for stored publish instants and watermarks.
// Fractional seconds are kept so a stored watermark equals the instant it was taken from.
const TimestampLayout = time.RFC3339Nano

// FormatTimestamp renders ts as ISO-8601 in UTC
func FormatTimestamp(ts time.Time) string {
	return ts.UTC().Format(TimestampLayout)
}

// storedLayouts are accepted in addition to RFC3339, postgres renders timestamptz
// with a space separator and a short offset
var storedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp reads a stored ISO-8601 instant, accepting both "Z" and numeric offsets.
// Values without an offset are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range storedLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
