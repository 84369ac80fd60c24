// Package pipeline wires collection, scoring and delivery into one run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"curator/internal/config"
	"curator/internal/core"
	"curator/internal/curate"
	"curator/internal/email"
	"curator/internal/llm"
	"curator/internal/logger"
	"curator/internal/sources"
	"curator/internal/store"
)

// Pipeline owns the full ingest-score-deliver cycle.
type Pipeline struct {
	cfg        *config.Config
	store      *store.Store
	curator    *curate.Curator
	deliverer  *email.Deliverer
	collectors []sources.Collector
}

// New assembles a pipeline from configuration. The generator is shared by
// scoring and introduction writing so both respect the same rate limit.
func New(cfg *config.Config, st *store.Store, generator llm.Generator) *Pipeline {
	curator := curate.NewCurator(generator, st, cfg.Gemini.Temperature, cfg.Digest.MaxBodyChars)
	introducer := email.NewIntroducer(generator, cfg.Gemini.Temperature)
	transport := email.NewSMTPTransport(cfg.Email)
	deliverer := email.NewDeliverer(st, introducer, transport, cfg.Digest.OutputDir)

	return &Pipeline{
		cfg:        cfg,
		store:      st,
		curator:    curator,
		deliverer:  deliverer,
		collectors: sources.FromConfig(cfg.Sources),
	}
}

// Collect fetches every configured source and persists the normalized
// items. Returns the per-source outcomes and the number of newly stored
// items.
func (p *Pipeline) Collect(ctx context.Context) ([]core.SourceResult, int, error) {
	items, results := sources.CollectAll(ctx, p.collectors)

	stored, err := p.store.SaveItems(items)
	if err != nil {
		return results, stored, fmt.Errorf("failed to persist collected items: %w", err)
	}

	logger.Info("Collection finished", "sources", len(results), "items", len(items), "new", stored)
	return results, stored, nil
}

// Score runs the scoring pass for one profile over the lookback window.
// Items the profile already has a digest for are filtered out before any
// model call is made, which keeps repeated runs cheap and idempotent.
func (p *Pipeline) Score(ctx context.Context, profile core.Profile, hours int) (core.ScoreSummary, error) {
	windowStart := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	items, err := p.store.RecentItems(windowStart)
	if err != nil {
		return core.ScoreSummary{}, fmt.Errorf("failed to load recent items: %w", err)
	}

	seen, err := p.store.DigestIDsInWindow(profile.ID, windowStart)
	if err != nil {
		return core.ScoreSummary{}, fmt.Errorf("failed to load digest ids: %w", err)
	}

	fresh := curate.FilterNew(items, seen, windowStart)
	existing := len(items) - len(fresh)

	summary, err := p.curator.ScoreBatch(ctx, profile, fresh)
	summary.Total += existing
	summary.Existing += existing
	if err != nil {
		return summary, err
	}

	logger.Info("Scoring finished",
		"profile", profile.ID,
		"total", summary.Total,
		"processed", summary.Processed,
		"failed", summary.Failed,
		"existing", summary.Existing,
	)
	return summary, nil
}

// Deliver sends one profile's digest email for the window.
func (p *Pipeline) Deliver(ctx context.Context, profile core.Profile, hours, topN int) (core.DeliverySummary, error) {
	return p.deliverer.Deliver(ctx, profile, hours, topN)
}

// Run executes the full cycle for every active profile. Profile failures
// are isolated: one profile's bad day never blocks another's email. The
// summary is returned even when parts failed so the caller can tell a
// degraded run from a dead one.
func (p *Pipeline) Run(ctx context.Context, hours, topN int) (core.RunSummary, error) {
	if err := p.cfg.ValidateScoring(); err != nil {
		return core.RunSummary{}, err
	}
	if err := p.cfg.ValidateDelivery(); err != nil {
		return core.RunSummary{}, err
	}

	summary := core.RunSummary{StartedAt: time.Now().UTC(), Success: true}

	sourceResults, _, err := p.Collect(ctx)
	summary.Sources = sourceResults
	if err != nil {
		summary.FinishedAt = time.Now().UTC()
		summary.Success = false
		return summary, err
	}

	profiles, err := p.store.ListActiveProfiles()
	if err != nil {
		summary.FinishedAt = time.Now().UTC()
		summary.Success = false
		return summary, fmt.Errorf("failed to list profiles: %w", err)
	}
	if len(profiles) == 0 {
		logger.Warn("No active profiles, nothing to score or deliver")
	}

	for _, profile := range profiles {
		result := core.ProfileResult{ProfileID: profile.ID}

		scoring, err := p.Score(ctx, profile, hours)
		result.Scoring = scoring
		if err != nil {
			result.Error = err.Error()
			summary.Success = false
			summary.Profiles = append(summary.Profiles, result)
			logger.Error("Profile scoring failed", err, "profile", profile.ID)
			continue
		}

		delivery, err := p.Deliver(ctx, profile, hours, topN)
		result.Delivery = delivery
		if err != nil {
			result.Error = err.Error()
			summary.Success = false
			logger.Error("Profile delivery failed", err, "profile", profile.ID)
		}

		summary.Profiles = append(summary.Profiles, result)
	}

	summary.FinishedAt = time.Now().UTC()
	return summary, nil
}
