package brief

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"dailybrief/internal/core"
)

// Limits are the validation thresholds and truncation caps, in characters.
type Limits struct {
	MinTitle        int
	MaxTitle        int
	MinIntroduction int
	MinKeyFindings  int
	MinConclusion   int
	MaxBody         int // introduction, keyFindings, conclusion
	MaxSource       int
	MinTerm         int
	MaxTerm         int
	MinDefinition   int
	MaxDefinition   int
	Concepts        int // required and maximum concept count
}

// DefaultLimits returns the canonical thresholds.
func DefaultLimits() Limits {
	return Limits{
		MinTitle:        8,
		MaxTitle:        160,
		MinIntroduction: 200,
		MinKeyFindings:  200,
		MinConclusion:   120,
		MaxBody:         4000,
		MaxSource:       300,
		MinTerm:         2,
		MaxTerm:         80,
		MinDefinition:   40,
		MaxDefinition:   900,
		Concepts:        3,
	}
}

// Coercion is the outcome of Coerce. Valid reports the judgment made
// before any default was substituted; Problems lists what failed.
type Coercion struct {
	Research core.ResearchBrief
	Concepts []core.ConceptCard
	Valid    bool
	Problems []string
}

// Coerce turns a possibly partial decoded value into a presentable brief
// and exactly lim.Concepts concept cards. It accepts any input, including
// nil, and never fails. Research may be nested under "research" or given
// at the top level.
func Coerce(candidate map[string]any, date string, lim Limits) Coercion {
	if lim.Concepts <= 0 {
		lim.Concepts = DefaultLimits().Concepts
	}

	var c Coercion

	researchSrc := candidate
	if nested, ok := candidate["research"].(map[string]any); ok {
		researchSrc = nested
	}

	r := core.ResearchBrief{
		Title:        clip(stringField(researchSrc, "title", "headline"), lim.MaxTitle),
		Introduction: clip(stringField(researchSrc, "introduction", "intro"), lim.MaxBody),
		KeyFindings:  clip(stringField(researchSrc, "keyFindings", "key_findings", "findings"), lim.MaxBody),
		Conclusion:   clip(stringField(researchSrc, "conclusion", "summary"), lim.MaxBody),
		Source:       clip(stringField(researchSrc, "source", "sources"), lim.MaxSource),
	}

	def := DefaultResearch(date)
	check := func(name string, value *string, min int, fallback string) {
		if n := utf8.RuneCountInString(*value); n < min || *value == "" {
			c.Problems = append(c.Problems, fmt.Sprintf("%s too short (%d < %d)", name, n, min))
			*value = fallback
		}
	}
	check("title", &r.Title, lim.MinTitle, def.Title)
	check("introduction", &r.Introduction, lim.MinIntroduction, def.Introduction)
	check("keyFindings", &r.KeyFindings, lim.MinKeyFindings, def.KeyFindings)
	check("conclusion", &r.Conclusion, lim.MinConclusion, def.Conclusion)
	if r.Source == "" {
		// A missing attribution does not fail validation.
		r.Source = def.Source
	}
	c.Research = r

	raw, _ := candidate["concepts"].([]any)
	if len(raw) < lim.Concepts {
		c.Problems = append(c.Problems, fmt.Sprintf("concepts count %d < %d", len(raw), lim.Concepts))
	}

	concepts := make([]core.ConceptCard, 0, lim.Concepts)
	for i := 0; i < lim.Concepts; i++ {
		if i >= len(raw) {
			concepts = append(concepts, DefaultConcept(i))
			continue
		}
		item, _ := raw[i].(map[string]any)
		card := core.ConceptCard{
			Term:       clip(stringField(item, "term", "name", "concept"), lim.MaxTerm),
			Definition: clip(stringField(item, "definition", "meaning", "description"), lim.MaxDefinition),
		}

		termOK := utf8.RuneCountInString(card.Term) >= lim.MinTerm && card.Term != ""
		defOK := utf8.RuneCountInString(card.Definition) >= lim.MinDefinition && card.Definition != ""
		switch {
		case termOK && defOK:
		case !termOK && !defOK:
			c.Problems = append(c.Problems, fmt.Sprintf("concept %d empty", i+1))
			card = DefaultConcept(i)
		case !termOK:
			c.Problems = append(c.Problems, fmt.Sprintf("concept %d missing term", i+1))
			card.Term = fmt.Sprintf("Concept %d", i+1)
		default:
			c.Problems = append(c.Problems, fmt.Sprintf("concept %d definition too short", i+1))
			card.Definition = clip(placeholderDefinition(card.Term), lim.MaxDefinition)
		}
		concepts = append(concepts, card)
	}
	c.Concepts = concepts

	c.Valid = len(c.Problems) == 0
	return c
}

// Candidate converts typed content back into the decoded shape Coerce reads.
func Candidate(r core.ResearchBrief, concepts []core.ConceptCard) map[string]any {
	items := make([]any, 0, len(concepts))
	for _, cc := range concepts {
		items = append(items, map[string]any{"term": cc.Term, "definition": cc.Definition})
	}
	return map[string]any{
		"research": map[string]any{
			"title":        r.Title,
			"introduction": r.Introduction,
			"keyFindings":  r.KeyFindings,
			"conclusion":   r.Conclusion,
			"source":       r.Source,
		},
		"concepts": items,
	}
}

// stringField returns the first key holding a string, or a list of
// strings joined with spaces. Other types are ignored.
func stringField(m map[string]any, keys ...string) string {
	if m == nil {
		return ""
	}
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case []any:
			var parts []string
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					parts = append(parts, strings.TrimSpace(s))
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, " ")
			}
		}
	}
	return ""
}

// clip trims s and cuts it to at most max characters.
func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return strings.TrimSpace(s[:i])
		}
		n++
	}
	return s
}
