package brief

import (
	"time"

	"dailybrief/internal/config"
	"dailybrief/internal/llm"
)

// Policy parameterizes a single generation flow.
type Policy struct {
	RetryOnValidationFailure bool
	PreferredModelPattern    string
	MaxConcepts              int
	ParallelSections         bool // request research and concepts with two concurrent calls
	UseResponseSchema        bool
	CallTimeout              time.Duration // per outbound call, 0 disables
	Temperature              float32
	MaxTokens                int32
	MinCredentialLength      int
	Limits                   Limits
}

// DefaultPolicy returns the canonical contract.
func DefaultPolicy() Policy {
	lim := DefaultLimits()
	return Policy{
		RetryOnValidationFailure: true,
		PreferredModelPattern:    llm.DefaultModelPattern,
		MaxConcepts:              lim.Concepts,
		UseResponseSchema:        true,
		CallTimeout:              10 * time.Second,
		Temperature:              0.7,
		MaxTokens:                4096,
		MinCredentialLength:      20,
		Limits:                   lim,
	}
}

// PolicyFromConfig builds a Policy from loaded configuration.
func PolicyFromConfig(cfg *config.Config) Policy {
	p := DefaultPolicy()
	g := cfg.Generation
	p.RetryOnValidationFailure = g.RetryOnValidationFailure
	p.ParallelSections = g.ParallelSections
	p.UseResponseSchema = g.UseResponseSchema
	if g.PreferredModelPattern != "" {
		p.PreferredModelPattern = g.PreferredModelPattern
	}
	if g.MaxConcepts > 0 {
		p.MaxConcepts = g.MaxConcepts
	}
	if g.MinCredentialLength > 0 {
		p.MinCredentialLength = g.MinCredentialLength
	}
	if cfg.AI.Gemini.Timeout > 0 {
		p.CallTimeout = cfg.AI.Gemini.Timeout
	}
	if cfg.AI.Gemini.Temperature > 0 {
		p.Temperature = cfg.AI.Gemini.Temperature
	}
	if cfg.AI.Gemini.MaxTokens > 0 {
		p.MaxTokens = cfg.AI.Gemini.MaxTokens
	}
	p.Limits.Concepts = p.MaxConcepts
	return p
}
