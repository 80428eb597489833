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

	"dailybrief/internal/brief"
	"dailybrief/internal/config"
	"dailybrief/internal/llm"
	"dailybrief/internal/logger"
	"dailybrief/internal/store"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dailybrief",
		Short: "Dailybrief generates a daily research brief and flashcard concepts.",
		Long: `Dailybrief produces one short research brief on psychology, attention and
inner work per day, plus a handful of flashcard concepts.

Without a provider credential every command still works and returns mock
content. Set GEMINI_API_KEY (or GOOGLE_GEMINI_API_KEY, GOOGLE_AI_API_KEY,
GOOGLE_API_KEY) to generate live content.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.dailybrief.yaml or $HOME/.dailybrief.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewDayCmd())

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

// loadConfig reads configuration and initializes the process logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(logger.Options{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat, Output: os.Stderr})
	if cfg.App.ConfigFile != "" {
		logger.Debug("Using config file", "path", cfg.App.ConfigFile)
	}
	if !cfg.HasCredential() {
		logger.Warn("No provider credential configured, serving mock content")
	}
	return cfg, nil
}

func newOrchestrator(cfg *config.Config) *brief.Orchestrator {
	log := logger.Get()
	cred := config.Credential{Value: cfg.AI.Gemini.APIKey, Source: cfg.AI.Gemini.KeySource}
	factory := llm.Traced(
		llm.GeminiFactory(cfg.AI.Gemini.BaseURL),
		log.With().Str("component", "provider").Logger(),
	)
	return brief.NewOrchestrator(
		cred,
		factory,
		brief.PolicyFromConfig(cfg),
		brief.WithLogger(log.With().Str("component", "orchestrator").Logger()),
	)
}

// openStore returns nil when no store is configured.
func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.Store.DSN == "" {
		return nil, nil
	}
	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	return st, nil
}
