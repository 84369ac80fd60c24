package handlers

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"curator/internal/core"
)

// defaultProfile is seeded on first run so the pipeline works out of the
// box. The recipient address comes from CURATOR_TO_EMAIL when set.
var defaultProfile = core.Profile{
	ID:         "michael",
	Name:       "Michael",
	Email:      envOr("CURATOR_TO_EMAIL", "michael@example.com"),
	Title:      "AI Engineer & Researcher",
	Background: "MSCS student at Duke University",
	Interests: []string{
		"Large Language Models (LLMs) and their applications",
		"Retrieval-Augmented Generation (RAG) systems",
		"AI agent architectures and frameworks",
	},
	Preferences: map[string]string{
		"prefer_practical":              "true",
		"prefer_technical_depth":        "true",
		"prefer_research_breakthroughs": "true",
		"prefer_production_focus":       "true",
		"avoid_marketing_hype":          "true",
	},
	ExpertiseLevel: "Medium",
	Active:         true,
}

// NewProfileCmd creates the profile management command
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage reader profiles",
	}

	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileShowCmd())

	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active reader profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := setup()
			if err != nil {
				return err
			}
			defer st.Close()

			profiles, err := st.ListActiveProfiles()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tEXPERTISE")
			for _, profile := range profiles {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", profile.ID, profile.Name, profile.Email, profile.ExpertiseLevel)
			}
			return w.Flush()
		},
	}
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <profile-id>",
		Short: "Show one profile in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := setup()
			if err != nil {
				return err
			}
			defer st.Close()

			profile, err := st.GetProfile(args[0])
			if err != nil {
				return err
			}
			if profile == nil {
				return fmt.Errorf("unknown profile %q", args[0])
			}

			fmt.Printf("ID:         %s\n", profile.ID)
			fmt.Printf("Name:       %s\n", profile.Name)
			fmt.Printf("Email:      %s\n", profile.Email)
			fmt.Printf("Title:      %s\n", profile.Title)
			fmt.Printf("Background: %s\n", profile.Background)
			fmt.Printf("Expertise:  %s\n", profile.ExpertiseLevel)
			fmt.Printf("Interests:\n")
			for _, interest := range profile.Interests {
				fmt.Printf("  - %s\n", interest)
			}
			if len(profile.Preferences) > 0 {
				fmt.Printf("Preferences:\n")
				for key, value := range profile.Preferences {
					fmt.Printf("  - %s: %s\n", key, value)
				}
			}
			return nil
		},
	}
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
