package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/core"
	"curator/internal/llm"
	"curator/internal/pipeline"
)

// NewScoreCmd creates the scoring command
func NewScoreCmd() *cobra.Command {
	var hours int
	var profileID string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score stored items against reader profiles",
		Long: `Score items collected within the lookback window against each active
profile (or one profile with --profile). Items a profile already has a
digest for are skipped, so repeated runs only pay for genuinely new
content.

Examples:
  curator score
  curator score --hours 48 --profile michael`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := setup()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := cfg.ValidateScoring(); err != nil {
				return err
			}
			if hours <= 0 {
				hours = cfg.Digest.Hours
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
				summary, err := p.Score(cmd.Context(), profile, hours)
				if err != nil {
					return err
				}
				fmt.Printf("%s: scored %d of %d items (failed %d, existing %d)\n",
					profile.ID, summary.Processed, summary.Total, summary.Failed, summary.Existing)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 0, "lookback window in hours (default from config)")
	cmd.Flags().StringVar(&profileID, "profile", "", "score a single profile by id")

	return cmd
}

// resolveProfiles returns either the one named profile or every active one.
func resolveProfiles(st profileLister, profileID string) ([]core.Profile, error) {
	if profileID != "" {
		profile, err := st.GetProfile(profileID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, fmt.Errorf("unknown profile %q", profileID)
		}
		return []core.Profile{*profile}, nil
	}

	profiles, err := st.ListActiveProfiles()
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no active profiles")
	}
	return profiles, nil
}

type profileLister interface {
	GetProfile(id string) (*core.Profile, error)
	ListActiveProfiles() ([]core.Profile, error)
}
