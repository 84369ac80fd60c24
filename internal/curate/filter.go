package curate

import (
	"time"

	"curator/internal/core"
)

// FilterNew drops items a profile has already digested and items published
// before the window start. The window boundary is inclusive so an item
// published exactly at the start remains eligible.
func FilterNew(items []core.ContentItem, seen map[string]struct{}, windowStart time.Time) []core.ContentItem {
	var fresh []core.ContentItem
	for _, item := range items {
		if item.PublishedAt.Before(windowStart) {
			continue
		}
		if _, ok := seen[item.CompositeID()]; ok {
			continue
		}
		fresh = append(fresh, item)
	}
	return fresh
}
