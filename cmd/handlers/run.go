package handlers

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/core"
	"curator/internal/llm"
	"curator/internal/pipeline"
)

// NewRunCmd creates the full pipeline command
func NewRunCmd() *cobra.Command {
	var hours int
	var topN int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect, score and deliver digests for every active profile",
		Long: `Run the full pipeline once: collect from all configured sources, score
new items against each active profile, rank the results, and deliver the
top articles by email.

Examples:
  curator run
  curator run --hours 48 --top-n 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := setup()
			if err != nil {
				return err
			}
			defer st.Close()

			if hours <= 0 {
				hours = cfg.Digest.Hours
			}
			if topN <= 0 {
				topN = cfg.Digest.TopN
			}

			generator, err := llm.NewClient(cmd.Context(), cfg.Gemini)
			if err != nil {
				return err
			}

			p := pipeline.New(cfg, st, generator)
			summary, err := p.Run(cmd.Context(), hours, topN)
			printRunSummary(summary)
			return err
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 0, "lookback window in hours (default from config)")
	cmd.Flags().IntVar(&topN, "top-n", 0, "articles per digest email (default from config)")

	return cmd
}

func printRunSummary(summary core.RunSummary) {
	fmt.Printf("Run %s in %s\n",
		statusWord(summary.Success),
		summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond),
	)

	for _, source := range summary.Sources {
		if source.Error != "" {
			fmt.Printf("  source %-20s FAILED: %s\n", source.Source, source.Error)
			continue
		}
		fmt.Printf("  source %-20s %d items\n", source.Source, source.Count)
	}

	for _, profile := range summary.Profiles {
		fmt.Printf("  profile %-12s scored %d/%d (failed %d, existing %d)",
			profile.ProfileID,
			profile.Scoring.Processed, profile.Scoring.Total,
			profile.Scoring.Failed, profile.Scoring.Existing,
		)
		switch {
		case profile.Error != "":
			fmt.Printf("  ERROR: %s\n", profile.Error)
		case profile.Delivery.Skipped:
			fmt.Printf("  delivery skipped: %s\n", profile.Delivery.Message)
		default:
			fmt.Printf("  sent %d articles (%q)\n", profile.Delivery.ArticleCount, profile.Delivery.Subject)
		}
	}
}

func statusWord(success bool) string {
	if success {
		return "succeeded"
	}
	return "finished with errors"
}
