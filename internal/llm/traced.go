package llm

import (
	"context"
	"time"

	"dailybrief/internal/core"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// TracedProvider wraps a Provider and logs every outbound call with its
// latency and token usage. Prompts and credentials are never logged.
type TracedProvider struct {
	provider Provider
	log      zerolog.Logger
}

// NewTracedProvider creates a traced provider around p.
func NewTracedProvider(p Provider, log zerolog.Logger) *TracedProvider {
	return &TracedProvider{provider: p, log: log}
}

// Traced wraps every provider created by factory.
func Traced(factory ProviderFactory, log zerolog.Logger) ProviderFactory {
	return func(ctx context.Context, apiKey string) (Provider, error) {
		p, err := factory(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		return NewTracedProvider(p, log), nil
	}
}

// Unwrap returns the underlying provider.
func (tp *TracedProvider) Unwrap() Provider {
	return tp.provider
}

// ListModels lists models with tracing
func (tp *TracedProvider) ListModels(ctx context.Context) ([]core.ModelDescriptor, error) {
	startTime := time.Now()
	models, err := tp.provider.ListModels(ctx)

	ev := tp.event(err).
		Str("op", StageListModels).
		Int64("latency_ms", time.Since(startTime).Milliseconds()).
		Int("models", len(models))
	ev.Msg("provider call")
	return models, err
}

// GenerateContent generates content with tracing
func (tp *TracedProvider) GenerateContent(ctx context.Context, model, prompt string, opts GenerateOptions) (*genai.GenerateContentResponse, error) {
	startTime := time.Now()
	resp, err := tp.provider.GenerateContent(ctx, model, prompt, opts)

	completion, _ := ExtractText(resp)
	ev := tp.event(err).
		Str("op", StageGenerate).
		Str("model", model).
		Int64("latency_ms", time.Since(startTime).Milliseconds()).
		Int("prompt_chars", len(prompt)).
		Int("total_tokens", totalTokens(resp, prompt, completion)).
		Bool("schema", opts.ResponseSchema != nil)
	ev.Msg("provider call")
	return resp, err
}

func (tp *TracedProvider) event(err error) *zerolog.Event {
	if err != nil {
		return tp.log.Warn().Err(err)
	}
	return tp.log.Debug()
}

// totalTokens prefers the provider's usage report over an estimate.
func totalTokens(resp *genai.GenerateContentResponse, prompt, completion string) int {
	if resp != nil && resp.UsageMetadata != nil && resp.UsageMetadata.TotalTokenCount > 0 {
		return int(resp.UsageMetadata.TotalTokenCount)
	}
	return estimateTokens(prompt, completion)
}

// estimateTokens provides a rough estimate of token count
// This is a simple approximation: ~4 characters per token for English text
func estimateTokens(prompt, completion string) int {
	return (len(prompt) + len(completion)) / 4
}
