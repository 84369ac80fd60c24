package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/llm"
	"curator/internal/pipeline"
)

// NewEmailCmd creates the delivery command
func NewEmailCmd() *cobra.Command {
	var hours int
	var topN int
	var profileID string

	cmd := &cobra.Command{
		Use:   "email",
		Short: "Deliver digest emails from already-scored items",
		Long: `Rank the scored, unsent digests in the lookback window and email the
top articles to each active profile (or one profile with --profile).
Profiles with nothing new are skipped, and delivered digests are marked
so they are never sent twice.

Examples:
  curator email
  curator email --top-n 5 --profile michael`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := setup()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := cfg.ValidateScoring(); err != nil {
				return err
			}
			if err := cfg.ValidateDelivery(); err != nil {
				return err
			}
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

			profiles, err := resolveProfiles(st, profileID)
			if err != nil {
				return err
			}

			for _, profile := range profiles {
				summary, err := p.Deliver(cmd.Context(), profile, hours, topN)
				if err != nil {
					return err
				}
				if summary.Skipped {
					fmt.Printf("%s: skipped (%s)\n", profile.ID, summary.Message)
					continue
				}
				fmt.Printf("%s: sent %d articles, subject %q\n", profile.ID, summary.ArticleCount, summary.Subject)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 0, "lookback window in hours (default from config)")
	cmd.Flags().IntVar(&topN, "top-n", 0, "articles per digest email (default from config)")
	cmd.Flags().StringVar(&profileID, "profile", "", "deliver to a single profile by id")

	return cmd
}
