package email

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"curator/internal/core"
	"curator/internal/logger"
	"curator/internal/rank"
	"curator/internal/store"
)

// Deliverer assembles and sends one profile's digest email, then stamps the
// delivered digests so they are never sent twice.
type Deliverer struct {
	store      *store.Store
	introducer *Introducer
	transport  Transport
	outputDir  string
}

// NewDeliverer creates a deliverer. outputDir may be empty to skip writing
// markdown copies of sent digests.
func NewDeliverer(st *store.Store, introducer *Introducer, transport Transport, outputDir string) *Deliverer {
	return &Deliverer{
		store:      st,
		introducer: introducer,
		transport:  transport,
		outputDir:  outputDir,
	}
}

// Deliver sends the profile's top digests from the lookback window. With
// nothing eligible the delivery is skipped, not failed. Digests are marked
// sent only after the send succeeds, so a failed send leaves them eligible
// for the next attempt; a crash between send and mark can cause one
// duplicate email, never a lost one.
func (d *Deliverer) Deliver(ctx context.Context, profile core.Profile, hours, topN int) (core.DeliverySummary, error) {
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	digests, err := d.store.RecentDigests(profile.ID, since, true)
	if err != nil {
		return core.DeliverySummary{}, fmt.Errorf("failed to load digests: %w", err)
	}

	if len(digests) == 0 {
		logger.Info("No new digests to send", "profile", profile.ID)
		return core.DeliverySummary{
			Skipped: true,
			Message: "No new digests available",
		}, nil
	}

	top := rank.Select(digests, topN)
	intro := d.introducer.Introduction(ctx, profile, top, time.Now())

	msg, err := Render(intro, top)
	if err != nil {
		return core.DeliverySummary{}, err
	}

	if err := d.transport.Send(profile.Email, msg); err != nil {
		return core.DeliverySummary{Subject: msg.Subject, ArticleCount: len(top)},
			fmt.Errorf("failed to deliver digest to %s: %w", profile.Email, err)
	}

	d.writeMarkdownCopy(profile, msg)

	ids := make([]string, len(top))
	for i, digest := range top {
		ids[i] = digest.ID
	}

	marked, err := d.store.MarkSent(profile.ID, ids)
	if err != nil {
		// The email is out; surface the bookkeeping failure without
		// undoing the send.
		logger.Error("Failed to mark digests sent", err, "profile", profile.ID)
	}

	logger.Info("Digest delivered", "profile", profile.ID, "subject", msg.Subject, "articles", len(top), "marked_sent", marked)

	return core.DeliverySummary{
		Sent:         true,
		Subject:      msg.Subject,
		ArticleCount: len(top),
		MarkedSent:   marked,
	}, nil
}

// writeMarkdownCopy drops a markdown rendition of the sent digest into the
// output directory. Best effort, failures only log.
func (d *Deliverer) writeMarkdownCopy(profile core.Profile, msg Message) {
	if d.outputDir == "" {
		return
	}

	if err := os.MkdirAll(d.outputDir, 0755); err != nil {
		logger.Warn("Failed to create digest output directory", "dir", d.outputDir, "error", err)
		return
	}

	name := fmt.Sprintf("digest-%s-%s.md", profile.ID, time.Now().Format("2006-01-02"))
	path := filepath.Join(d.outputDir, name)
	if err := os.WriteFile(path, []byte(msg.Markdown), 0644); err != nil {
		logger.Warn("Failed to write digest copy", "path", path, "error", err)
	}
}
