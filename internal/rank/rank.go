// Package rank orders scored digests and selects the delivery set.
package rank

import (
	"sort"

	"curator/internal/core"
	"curator/internal/logger"
)

// Select returns the topN digests ordered by relevance score descending,
// ties broken by creation time with newer digests first. Unscored digests
// are excluded, unless nothing at all is scored, in which case the input
// order is preserved and everything stays eligible rather than producing an
// empty delivery.
func Select(digests []core.Digest, topN int) []core.Digest {
	scored := make([]core.Digest, 0, len(digests))
	for _, d := range digests {
		if d.Scored() {
			scored = append(scored, d)
		}
	}

	if len(scored) == 0 {
		if len(digests) > 0 {
			logger.Warn("No scored digests available, ranking skipped", "count", len(digests))
		}
		return limit(digests, topN)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		si, sj := *scored[i].RelevanceScore, *scored[j].RelevanceScore
		if si != sj {
			return si > sj
		}
		return scored[i].CreatedAt.After(scored[j].CreatedAt)
	})

	return limit(scored, topN)
}

func limit(digests []core.Digest, topN int) []core.Digest {
	if topN > 0 && len(digests) > topN {
		return digests[:topN]
	}
	return digests
}
