package sources

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"curator/internal/config"
	"curator/internal/core"
	"curator/internal/logger"
)

// Collector fetches raw records from one source and returns them as
// normalized content items.
type Collector interface {
	Kind() string
	Collect(ctx context.Context) ([]core.ContentItem, error)
}

// FeedCollector collects items from one vendor's RSS/Atom feeds.
type FeedCollector struct {
	kind           string
	urls           []string
	parser         *gofeed.Parser
	maxDescription int
}

// NewFeedCollector creates a collector for the given vendor feeds.
func NewFeedCollector(vendor string, urls []string, cfg config.Sources) *FeedCollector {
	return &FeedCollector{
		kind:           "feed:" + vendor,
		urls:           urls,
		parser:         newParser(cfg),
		maxDescription: cfg.MaxDescription,
	}
}

// Kind returns the source kind stamped on collected items.
func (c *FeedCollector) Kind() string {
	return c.kind
}

// Collect fetches every configured feed URL. A single failing feed is
// logged and skipped; Collect errors only when every feed fails.
func (c *FeedCollector) Collect(ctx context.Context) ([]core.ContentItem, error) {
	var items []core.ContentItem
	var lastErr error
	succeeded := 0

	for _, feedURL := range c.urls {
		feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logger.Warn("Failed to fetch feed", "source", c.kind, "url", feedURL, "error", err)
			lastErr = err
			continue
		}
		succeeded++

		for _, entry := range feed.Items {
			record := RawRecord{
				SourceKind:    c.kind,
				SourceLocalID: entryLocalID(entry),
				Title:         entry.Title,
				Body:          entryBody(entry),
				URL:           entry.Link,
				Category:      entryCategory(entry),
				PublishedAt:   entryPublished(entry),
			}

			item, err := Normalize(record, c.maxDescription)
			if err != nil {
				logger.Warn("Skipping invalid feed entry", "source", c.kind, "url", entry.Link, "error", err)
				continue
			}
			items = append(items, item)
		}
	}

	if succeeded == 0 && lastErr != nil {
		return nil, fmt.Errorf("all feeds failed for %s: %w", c.kind, lastErr)
	}

	return items, nil
}

// YouTubeCollector collects recent uploads from a set of YouTube channels
// via their public upload feeds.
type YouTubeCollector struct {
	channelIDs     []string
	parser         *gofeed.Parser
	maxDescription int
	feedBase       string
}

// NewYouTubeCollector creates a collector for the given channel ids.
func NewYouTubeCollector(channelIDs []string, cfg config.Sources) *YouTubeCollector {
	return &YouTubeCollector{
		channelIDs:     channelIDs,
		parser:         newParser(cfg),
		maxDescription: cfg.MaxDescription,
		feedBase:       "https://www.youtube.com/feeds/videos.xml?channel_id=",
	}
}

// Kind returns the source kind stamped on collected items.
func (c *YouTubeCollector) Kind() string {
	return "youtube"
}

// Collect fetches the upload feed of every configured channel. A single
// failing channel is logged and skipped; Collect errors only when every
// channel fails.
func (c *YouTubeCollector) Collect(ctx context.Context) ([]core.ContentItem, error) {
	var items []core.ContentItem
	var lastErr error
	succeeded := 0

	for _, channelID := range c.channelIDs {
		feedURL := c.feedBase + channelID
		feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logger.Warn("Failed to fetch channel feed", "channel", channelID, "error", err)
			lastErr = err
			continue
		}
		succeeded++

		for _, entry := range feed.Items {
			record := RawRecord{
				SourceKind:    "youtube",
				SourceLocalID: videoID(entry),
				Title:         entry.Title,
				Body:          videoDescription(entry),
				URL:           entry.Link,
				PublishedAt:   entryPublished(entry),
			}

			item, err := Normalize(record, c.maxDescription)
			if err != nil {
				logger.Warn("Skipping invalid video entry", "channel", channelID, "url", entry.Link, "error", err)
				continue
			}
			items = append(items, item)
		}
	}

	if succeeded == 0 && lastErr != nil {
		return nil, fmt.Errorf("all channels failed: %w", lastErr)
	}

	return items, nil
}

// FromConfig builds the collector set described by the sources config, in
// deterministic order.
func FromConfig(cfg config.Sources) []Collector {
	vendors := make([]string, 0, len(cfg.Feeds))
	for vendor := range cfg.Feeds {
		vendors = append(vendors, vendor)
	}
	sort.Strings(vendors)

	var collectors []Collector
	for _, vendor := range vendors {
		collectors = append(collectors, NewFeedCollector(vendor, cfg.Feeds[vendor], cfg))
	}
	if len(cfg.YouTubeChannels) > 0 {
		collectors = append(collectors, NewYouTubeCollector(cfg.YouTubeChannels, cfg))
	}

	return collectors
}

// CollectAll runs every collector, isolating failures so one broken source
// never blocks the rest of the ingestion pass.
func CollectAll(ctx context.Context, collectors []Collector) ([]core.ContentItem, []core.SourceResult) {
	var items []core.ContentItem
	var results []core.SourceResult

	for _, collector := range collectors {
		collected, err := collector.Collect(ctx)
		result := core.SourceResult{Source: collector.Kind(), Count: len(collected)}
		if err != nil {
			result.Error = err.Error()
			logger.Error("Source collection failed", err, "source", collector.Kind())
		}
		items = append(items, collected...)
		results = append(results, result)
	}

	return items, results
}

func newParser(cfg config.Sources) *gofeed.Parser {
	timeout := 30 * time.Second
	if cfg.Timeout != "" {
		if parsed, err := time.ParseDuration(cfg.Timeout); err == nil {
			timeout = parsed
		}
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	if cfg.UserAgent != "" {
		parser.UserAgent = cfg.UserAgent
	}

	return parser
}

// entryLocalID prefers the feed's own GUID; entries without one get a
// deterministic id derived from their link so re-fetches dedup correctly.
func entryLocalID(entry *gofeed.Item) string {
	if entry.GUID != "" {
		return entry.GUID
	}
	if entry.Link != "" {
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(entry.Link)).String()
	}
	return ""
}

func entryBody(entry *gofeed.Item) string {
	if entry.Content != "" {
		return entry.Content
	}
	return entry.Description
}

func entryCategory(entry *gofeed.Item) string {
	if len(entry.Categories) > 0 {
		return entry.Categories[0]
	}
	return ""
}

func entryPublished(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}
	return time.Time{}
}

// videoID extracts the video id from a YouTube feed entry. Upload feeds
// carry it in the yt namespace; the entry id ("yt:video:<id>") is the
// fallback.
func videoID(entry *gofeed.Item) string {
	if ext, ok := entry.Extensions["yt"]; ok {
		if ids, ok := ext["videoId"]; ok && len(ids) > 0 {
			return ids[0].Value
		}
	}
	if len(entry.GUID) > len("yt:video:") && entry.GUID[:len("yt:video:")] == "yt:video:" {
		return entry.GUID[len("yt:video:"):]
	}
	return entry.GUID
}

// videoDescription pulls the media:group description when present.
func videoDescription(entry *gofeed.Item) string {
	if ext, ok := entry.Extensions["media"]; ok {
		if groups, ok := ext["group"]; ok && len(groups) > 0 {
			if descs, ok := groups[0].Children["description"]; ok && len(descs) > 0 {
				return descs[0].Value
			}
		}
	}
	return entry.Description
}
