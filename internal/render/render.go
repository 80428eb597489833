package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dailybrief/internal/core"

	"github.com/charmbracelet/lipgloss"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).MarginTop(1)
	sourceStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	termStyle    = lipgloss.NewStyle().Bold(true)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).Padding(0, 1)
	statusStyles = map[core.Status]lipgloss.Style{
		core.StatusOK:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		core.StatusMock:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		core.StatusFallback: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		core.StatusError:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// Brief renders a generation result for the terminal.
func Brief(res core.GenerationResult, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	b.WriteString(titleStyle.Render(res.Research.Title))
	b.WriteString("  ")
	b.WriteString(statusBadge(res.Status))
	b.WriteString("\n")

	sections := []struct{ heading, text string }{
		{"Introduction", res.Research.Introduction},
		{"Key findings", res.Research.KeyFindings},
		{"Conclusion", res.Research.Conclusion},
	}
	for _, s := range sections {
		b.WriteString(headingStyle.Render(s.heading))
		b.WriteString("\n")
		b.WriteString(body.Render(s.text))
		b.WriteString("\n")
	}
	if res.Research.Source != "" {
		b.WriteString(sourceStyle.Render("Source: " + res.Research.Source))
		b.WriteString("\n")
	}

	if len(res.Concepts) > 0 {
		b.WriteString(headingStyle.Render("Concepts"))
		b.WriteString("\n")
		cards := cardStyle.Width(width - 2)
		for _, c := range res.Concepts {
			b.WriteString(cards.Render(termStyle.Render(c.Term) + "\n" + c.Definition))
			b.WriteString("\n")
		}
	}

	if res.Error != "" {
		b.WriteString(statusStyles[core.StatusError].Render("Error: " + res.Error))
		b.WriteString("\n")
	}
	return b.String()
}

// Day renders a stored day record, including its journal.
func Day(rec core.DayRecord, width int) string {
	var b strings.Builder
	b.WriteString(sourceStyle.Render(fmt.Sprintf("%s · %s", rec.Date, rec.UserID)))
	b.WriteString("\n")

	if rec.HasBrief() {
		b.WriteString(Brief(core.GenerationResult{
			Status:   rec.Status,
			Research: rec.Research,
			Concepts: rec.Concepts,
		}, width))
	} else {
		b.WriteString("No brief stored for this day.\n")
	}

	b.WriteString(headingStyle.Render("Journal"))
	b.WriteString("\n")
	if strings.TrimSpace(rec.Journal) == "" {
		b.WriteString(sourceStyle.Render("(empty)"))
	} else {
		b.WriteString(rec.Journal)
	}
	b.WriteString("\n")
	return b.String()
}

func statusBadge(status core.Status) string {
	style, ok := statusStyles[status]
	if !ok {
		style = lipgloss.NewStyle()
	}
	return style.Render("[" + string(status) + "]")
}

// Markdown renders a result as a markdown document.
func Markdown(date string, res core.GenerationResult) string {
	var md strings.Builder

	md.WriteString(fmt.Sprintf("# %s\n\n", res.Research.Title))
	if date != "" {
		md.WriteString(fmt.Sprintf("*%s · status: %s*\n\n", date, res.Status))
	}
	md.WriteString("## Introduction\n\n" + res.Research.Introduction + "\n\n")
	md.WriteString("## Key Findings\n\n" + res.Research.KeyFindings + "\n\n")
	md.WriteString("## Conclusion\n\n" + res.Research.Conclusion + "\n\n")
	if res.Research.Source != "" {
		md.WriteString(fmt.Sprintf("**Source:** %s\n\n", res.Research.Source))
	}

	if len(res.Concepts) > 0 {
		md.WriteString("---\n\n## Concepts\n\n")
		for i, c := range res.Concepts {
			md.WriteString(fmt.Sprintf("%d. **%s**: %s\n", i+1, c.Term, c.Definition))
		}
	}
	return md.String()
}

// WriteMarkdownFile writes the markdown rendering of res to
// outputDir/brief_<date>.md and returns the path.
func WriteMarkdownFile(date string, res core.GenerationResult, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = "briefs"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, fmt.Sprintf("brief_%s.md", date))
	if err := os.WriteFile(filePath, []byte(Markdown(date, res)), 0644); err != nil {
		return "", fmt.Errorf("failed to write brief file %s: %w", filePath, err)
	}
	return filePath, nil
}
