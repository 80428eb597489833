package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"dailybrief/internal/brief"
	"dailybrief/internal/core"
	"dailybrief/internal/logger"
	"dailybrief/internal/render"

	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var (
		date      string
		topic     string
		asJSON    bool
		outputDir string
		width     int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one research brief and print it",
		Long: `Generate a research brief and flashcard concepts for a day.

The result is always printed, falling back to default content when the
provider cannot be reached or returns unusable output.

Examples:
  # Today's brief
  dailybrief generate

  # A specific day and topic, as JSON
  dailybrief generate --date 2025-01-01 --topic "self-compassion" --json

  # Also save a markdown copy
  dailybrief generate --output-dir ./briefs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			orch := newOrchestrator(cfg)
			req := core.GenerationRequest{Date: date, Topic: topic}
			res := orch.Generate(cmd.Context(), req)

			if outputDir != "" {
				day := brief.NormalizeDate(date, time.Now())
				path, err := render.WriteMarkdownFile(day, res, outputDir)
				if err != nil {
					return err
				}
				logger.Info("Brief written", "path", path)
			}

			return printResult(cmd.OutOrStdout(), res, asJSON, width)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to generate for, YYYY-MM-DD (default today, UTC)")
	cmd.Flags().StringVar(&topic, "topic", "", "Optional topic hint")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw result as JSON")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Also write a markdown file to this directory")
	cmd.Flags().IntVar(&width, "width", render.DefaultWidth, "Wrap width for terminal output")

	return cmd
}

func printResult(w io.Writer, res core.GenerationResult, asJSON bool, width int) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err := fmt.Fprint(w, render.Brief(res, width))
	return err
}
