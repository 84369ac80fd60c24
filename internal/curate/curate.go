// Package curate scores content items against user profiles and persists
// the resulting digests.
package curate

import (
	"context"
	"time"

	"curator/internal/core"
	"curator/internal/extract"
	"curator/internal/llm"
	"curator/internal/logger"
	"curator/internal/store"
)

// Curator drives the scoring pass: one model call per item, one digest row
// per (item, profile) pair.
type Curator struct {
	generator    llm.Generator
	store        *store.Store
	temperature  float32
	maxBodyChars int
}

// NewCurator creates a curator backed by the given generator and store.
func NewCurator(generator llm.Generator, st *store.Store, temperature float32, maxBodyChars int) *Curator {
	if temperature == 0 {
		temperature = 0.7
	}
	if maxBodyChars == 0 {
		maxBodyChars = 8000
	}
	return &Curator{
		generator:    generator,
		store:        st,
		temperature:  temperature,
		maxBodyChars: maxBodyChars,
	}
}

// ScoreBatch scores every item for one profile. Failures are isolated per
// item: a failed model call or unparseable response counts the item as
// failed and moves on. Items whose digest already exists count as existing.
// The summary always satisfies Processed + Failed + Existing == Total.
func (c *Curator) ScoreBatch(ctx context.Context, profile core.Profile, items []core.ContentItem) (core.ScoreSummary, error) {
	summary := core.ScoreSummary{Total: len(items)}
	systemPrompt := SystemPrompt(profile)
	schema := llm.DigestSchema()

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			summary.Failed += summary.Total - summary.Processed - summary.Failed - summary.Existing
			return summary, err
		}

		prompt := systemPrompt + "\n\n" + ItemPrompt(item, c.maxBodyChars)

		raw, err := c.generator.Complete(ctx, prompt, schema, c.temperature)
		if err != nil {
			logger.Warn("Scoring call failed", "item", item.CompositeID(), "profile", profile.ID, "error", err)
			summary.Failed++
			continue
		}

		output, err := extract.ParseDigest(raw)
		if err != nil {
			logger.Warn("Unusable scoring response", "item", item.CompositeID(), "profile", profile.ID, "error", err)
			summary.Failed++
			continue
		}

		digest := core.Digest{
			ID:             item.CompositeID(),
			ProfileID:      profile.ID,
			SourceKind:     item.SourceKind,
			URL:            item.URL,
			Title:          output.Title,
			Summary:        output.Summary,
			RelevanceScore: output.RelevanceScore,
			Reasoning:      output.Reasoning,
			Category:       output.Category,
			CreatedAt:      time.Now().UTC(),
		}

		created, err := c.store.CreateDigestIfAbsent(digest)
		if err != nil {
			logger.Error("Failed to persist digest", err, "item", item.CompositeID(), "profile", profile.ID)
			summary.Failed++
			continue
		}
		if created == nil {
			summary.Existing++
			continue
		}

		summary.Processed++
		logger.Debug("Scored item", "item", item.CompositeID(), "profile", profile.ID, "score", *output.RelevanceScore)
	}

	return summary, nil
}
