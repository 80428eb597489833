package brief

import (
	"fmt"
	"strings"
)

// Section selects which part of the result a prompt asks for.
type Section string

const (
	SectionAll      Section = "all"
	SectionResearch Section = "research"
	SectionConcepts Section = "concepts"
)

// PromptOptions configures prompt generation
type PromptOptions struct {
	Section     Section
	MaxConcepts int
	Limits      Limits
}

// DefaultPromptOptions asks for the full result under the canonical limits.
func DefaultPromptOptions() PromptOptions {
	return PromptOptions{
		Section:     SectionAll,
		MaxConcepts: DefaultLimits().Concepts,
		Limits:      DefaultLimits(),
	}
}

const scopeDirective = `Write for a reflective reader interested in psychology, attention and inner work:
focus, habits, emotional regulation, self-knowledge and contemplative practice.
Ground claims in established research and name the research area or authors in "source".`

// BuildPrompt creates the instruction sent to the provider. The output is
// a pure function of its inputs. strict adds explicit minimum lengths and
// counts for the retry after a validation failure.
func BuildPrompt(date, topic string, strict bool, opts PromptOptions) string {
	if opts.MaxConcepts <= 0 {
		opts.MaxConcepts = DefaultLimits().Concepts
	}
	if opts.Section == "" {
		opts.Section = SectionAll
	}
	lim := opts.Limits

	var prompt strings.Builder

	switch opts.Section {
	case SectionResearch:
		prompt.WriteString(fmt.Sprintf("Create the daily research brief for %s.\n\n", date))
	case SectionConcepts:
		prompt.WriteString(fmt.Sprintf("Create %d flashcard concepts for the daily study session on %s.\n\n", opts.MaxConcepts, date))
	default:
		prompt.WriteString(fmt.Sprintf("Create the daily research brief and %d flashcard concepts for %s.\n\n", opts.MaxConcepts, date))
	}

	if t := strings.TrimSpace(topic); t != "" {
		prompt.WriteString(fmt.Sprintf("Today's topic: %s\n\n", t))
	}

	prompt.WriteString(scopeDirective)
	prompt.WriteString("\n\n")

	prompt.WriteString("OUTPUT FORMAT:\n")
	prompt.WriteString("Return ONLY one JSON object. No Markdown, no code fences, no commentary before or after it.\n")
	prompt.WriteString("Use plain text inside every string value: no headings, bullets, asterisks or links.\n")
	prompt.WriteString("The object must have exactly this shape:\n")
	prompt.WriteString(shapeFor(opts.Section))
	prompt.WriteString("\n")

	if strict {
		prompt.WriteString("\nSTRICT REQUIREMENTS (the previous answer was rejected for being too short or incomplete):\n")
		if opts.Section != SectionConcepts {
			prompt.WriteString(fmt.Sprintf("- \"title\": at least %d characters, at most %d.\n", lim.MinTitle, lim.MaxTitle))
			prompt.WriteString(fmt.Sprintf("- \"introduction\": at least %d words.\n", wordsFor(lim.MinIntroduction)))
			prompt.WriteString(fmt.Sprintf("- \"keyFindings\": at least %d words covering at least three distinct findings.\n", wordsFor(lim.MinKeyFindings)))
			prompt.WriteString(fmt.Sprintf("- \"conclusion\": at least %d words.\n", wordsFor(lim.MinConclusion)))
			prompt.WriteString("- \"source\": a non-empty attribution.\n")
		}
		if opts.Section != SectionResearch {
			prompt.WriteString(fmt.Sprintf("- \"concepts\": exactly %d items, each with a non-empty \"term\" and a \"definition\" of at least %d words.\n",
				opts.MaxConcepts, wordsFor(lim.MinDefinition)))
		}
		prompt.WriteString("- Every field is required. Do not leave any string empty.\n")
	}

	return prompt.String()
}

func shapeFor(section Section) string {
	research := `"research": {"title": string, "introduction": string, "keyFindings": string, "conclusion": string, "source": string}`
	concepts := `"concepts": [{"term": string, "definition": string}]`
	switch section {
	case SectionResearch:
		return "{" + research + "}"
	case SectionConcepts:
		return "{" + concepts + "}"
	default:
		return "{" + research + ", " + concepts + "}"
	}
}

// wordsFor converts a character threshold into a word count that clears it
// with some margin, assuming about six characters per word.
func wordsFor(chars int) int {
	words := (chars + 5) / 6
	words += words / 2
	if words < 10 {
		words = 10
	}
	return words
}
