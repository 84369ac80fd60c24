/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"curator/internal/config"
	"curator/internal/logger"
	"curator/internal/store"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "curator",
		Short: "Curator collects AI news, scores it per reader, and delivers daily digest emails.",
		Long: `Curator is a personalized AI news pipeline.

It collects articles from RSS feeds and YouTube channels, scores each item
against reader profiles with Gemini, ranks the results, and delivers the
top articles as a daily digest email. Every stage is idempotent: re-running
a day never re-scores or re-sends what was already handled.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .curator.yaml)")

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewCollectCmd())
	rootCmd.AddCommand(NewScoreCmd())
	rootCmd.AddCommand(NewEmailCmd())
	rootCmd.AddCommand(NewProfileCmd())
	rootCmd.AddCommand(NewScheduleCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and opens the store. Every subcommand goes
// through here so they all see the same defaults and the seeded profile.
func setup() (*config.Config, *store.Store, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.SetLevel(cfg.App.LogLevel)

	st, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return nil, nil, err
	}

	if err := st.SeedProfile(defaultProfile); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to seed default profile: %w", err)
	}

	return cfg, st, nil
}
