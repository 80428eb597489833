package brief

import (
	"fmt"
	"strings"

	"dailybrief/internal/core"
)

const (
	defaultIntroduction = "Attention is the quiet engine of a well-lived day. Research across cognitive psychology " +
		"and contemplative science suggests that where we place our attention shapes what we learn, how we feel, " +
		"and which habits take root. Today's brief revisits that idea and offers a few anchors for practice."

	defaultKeyFindings = "Studies of mind-wandering find that people spend close to half of their waking hours " +
		"thinking about something other than what they are doing, and that they report lower mood while doing so. " +
		"Training programs built on brief, regular attention practice improve sustained focus and working memory. " +
		"Labeling emotions in words reduces their intensity, a process linked to reappraisal and self-regulation."

	defaultConclusion = "Small, repeated acts of noticing add up. Choose one moment today to pause, name what you " +
		"feel, and return your attention to the task in front of you."

	defaultSource = "Summary of established findings in attention research and contemplative psychology"

	mockIntroduction = "This is a sample brief shown because live generation is not configured. It follows the " +
		"same structure as a generated brief so the reading view, flashcards and journal can be used end to end. " +
		"The themes are attention, emotional regulation and the steady work of knowing your own mind."

	mockSource = "Sample content (no generation credential configured)"
)

var defaultConcepts = []core.ConceptCard{
	{
		Term: "Attentional Control",
		Definition: "The capacity to deliberately direct and sustain focus on a chosen target while resisting " +
			"distraction, supported by executive functions in the prefrontal cortex.",
	},
	{
		Term: "Cognitive Reappraisal",
		Definition: "An emotion regulation strategy in which a situation is reinterpreted to change its emotional " +
			"impact, for example seeing a setback as information rather than failure.",
	},
	{
		Term: "Metacognition",
		Definition: "Awareness of one's own thinking processes, including noticing when the mind has wandered and " +
			"choosing how to respond to thoughts rather than being carried by them.",
	},
	{
		Term: "Default Mode Network",
		Definition: "A set of brain regions that is most active during rest and self-referential thought, and that " +
			"is associated with mind-wandering, memory and imagining the future.",
	},
	{
		Term: "Affect Labeling",
		Definition: "Putting feelings into words, a simple practice shown to dampen the intensity of negative " +
			"emotion and to support calmer, more deliberate responses.",
	},
}

// defaultTitle is the deterministic title for a date.
func defaultTitle(date string) string {
	if strings.TrimSpace(date) == "" {
		return "Daily Research Brief"
	}
	return fmt.Sprintf("Daily Research Brief: %s", date)
}

// DefaultResearch returns the fixed brief used to fill missing fields.
func DefaultResearch(date string) core.ResearchBrief {
	return core.ResearchBrief{
		Title:        defaultTitle(date),
		Introduction: defaultIntroduction,
		KeyFindings:  defaultKeyFindings,
		Conclusion:   defaultConclusion,
		Source:       defaultSource,
	}
}

// DefaultConcept returns the i-th fixed concept card.
func DefaultConcept(i int) core.ConceptCard {
	if i < 0 {
		i = 0
	}
	return defaultConcepts[i%len(defaultConcepts)]
}

// DefaultConcepts returns the first n fixed concept cards.
func DefaultConcepts(n int) []core.ConceptCard {
	out := make([]core.ConceptCard, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, DefaultConcept(i))
	}
	return out
}

// MockResearch is the placeholder brief returned when no credential is configured.
func MockResearch(date string) core.ResearchBrief {
	r := DefaultResearch(date)
	r.Introduction = mockIntroduction
	r.Source = mockSource
	return r
}

// placeholderDefinition keeps a live term whose definition came back too short.
func placeholderDefinition(term string) string {
	return fmt.Sprintf("%s is one of today's study concepts. A full definition was not available, so "+
		"look it up in the research brief above and write your own explanation in the journal.", term)
}
