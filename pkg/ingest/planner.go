package ingest

import (
	"time"

	"github.com/noticiando/rssingest/pkg/domain"
)

// Plan decides which fetched items are new for a feed with the given watermark.
// Items published strictly after the watermark go to toInsert, all of them when the
// watermark is nil. newWatermark is the newest instant across every item, not only
// the new ones, and never earlier than the current watermark. It is nil only when
// both the watermark and items are empty.
func Plan(items []domain.FeedItem, watermark *time.Time) (toInsert []domain.FeedItem, newWatermark *time.Time) {
	wm := domain.Watermark{LastPublishedAt: watermark}
	toInsert = make([]domain.FeedItem, 0, len(items))

	var newest time.Time
	if watermark != nil {
		newest = *watermark
	}
	found := watermark != nil

	for _, item := range items {
		if !found || item.PublishedAt.After(newest) {
			newest, found = item.PublishedAt, true
		}
		if wm.Advances(item.PublishedAt) {
			toInsert = append(toInsert, item)
		}
	}

	if !found {
		return toInsert, nil
	}
	newest = newest.UTC()
	return toInsert, &newest
}
