package handlers

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"curator/internal/pipeline"
)

// NewCollectCmd creates the source collection command
func NewCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Fetch configured sources and store new items",
		Long: `Fetch every configured RSS feed and YouTube channel, normalize the
entries and store the ones not seen before. No scoring or email happens.

Examples:
  curator collect`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := setup()
			if err != nil {
				return err
			}
			defer st.Close()

			p := pipeline.New(cfg, st, nil)
			results, stored, err := p.Collect(cmd.Context())

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SOURCE\tITEMS\tSTATUS")
			for _, result := range results {
				status := "ok"
				if result.Error != "" {
					status = result.Error
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", result.Source, result.Count, status)
			}
			w.Flush()
			fmt.Printf("\n%d new items stored\n", stored)

			return err
		},
	}
}
