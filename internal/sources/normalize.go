// Package sources collects raw records from RSS feeds and YouTube channels
// and normalizes them into content items.
package sources

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"curator/internal/core"
)

// ValidationError reports a raw record that cannot be normalized. Records
// failing validation are skipped, never persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s %s", e.Field, e.Reason)
}

// RawRecord is the source-shaped input to normalization. Collectors build
// these from whatever their transport returns.
type RawRecord struct {
	SourceKind    string
	SourceLocalID string
	Title         string
	Body          string
	URL           string
	Category      string
	PublishedAt   time.Time
}

var stripPolicy = bluemonday.StrictPolicy()

// Normalize validates a raw record and converts it into a content item.
// Titles and bodies are stripped of markup, timestamps are coerced to UTC,
// and bodies longer than maxDescription are truncated at a sentence
// boundary.
func Normalize(r RawRecord, maxDescription int) (core.ContentItem, error) {
	kind := strings.TrimSpace(r.SourceKind)
	localID := strings.TrimSpace(r.SourceLocalID)
	title := strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(r.Title)))
	rawURL := strings.TrimSpace(r.URL)

	if kind == "" {
		return core.ContentItem{}, &ValidationError{Field: "source_kind", Reason: "is required"}
	}
	if localID == "" {
		return core.ContentItem{}, &ValidationError{Field: "source_local_id", Reason: "is required"}
	}
	if title == "" {
		return core.ContentItem{}, &ValidationError{Field: "title", Reason: "is required"}
	}
	if rawURL == "" {
		return core.ContentItem{}, &ValidationError{Field: "url", Reason: "is required"}
	}
	if r.PublishedAt.IsZero() {
		return core.ContentItem{}, &ValidationError{Field: "published_at", Reason: "is required"}
	}

	category := strings.ToLower(strings.TrimSpace(r.Category))
	if !core.ValidCategory(category) {
		category = ""
	}

	return core.ContentItem{
		SourceKind:    kind,
		SourceLocalID: localID,
		Title:         title,
		Body:          CleanDescription(r.Body, maxDescription),
		URL:           rawURL,
		Category:      category,
		PublishedAt:   r.PublishedAt.UTC(),
	}, nil
}

// CleanDescription strips HTML from a description, collapses whitespace and
// truncates the result to at most maxChars, preferring a sentence boundary.
// maxChars <= 0 disables truncation.
func CleanDescription(raw string, maxChars int) string {
	text := htmlToText(raw)
	text = strings.Join(strings.Fields(text), " ")

	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}

	return truncateAtSentence(text, maxChars)
}

// htmlToText extracts readable text from HTML. Script and style bodies are
// dropped before text extraction; plain strings pass through unchanged.
func htmlToText(raw string) string {
	if !strings.Contains(raw, "<") {
		return html.UnescapeString(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return html.UnescapeString(stripPolicy.Sanitize(raw))
	}

	doc.Find("script, style").Remove()
	return html.UnescapeString(stripPolicy.Sanitize(doc.Text()))
}

// truncateAtSentence cuts text to at most maxChars, ending at the last full
// sentence when one finishes late enough to be useful, otherwise at the last
// word.
func truncateAtSentence(text string, maxChars int) string {
	cut := text[:maxChars]

	best := -1
	for _, end := range []string{". ", "! ", "? "} {
		if idx := strings.LastIndex(cut, end); idx > best {
			best = idx
		}
	}
	if best >= maxChars/2 {
		return cut[:best+1]
	}

	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
