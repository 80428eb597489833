package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"dailybrief/internal/core"

	"google.golang.org/genai"
)

// Provider is the generation provider as seen by the orchestrator.
type Provider interface {
	ModelLister
	GenerateContent(ctx context.Context, model, prompt string, opts GenerateOptions) (*genai.GenerateContentResponse, error)
}

// ProviderFactory builds a Provider for an API key. It is only invoked
// once a credential is known to be present.
type ProviderFactory func(ctx context.Context, apiKey string) (Provider, error)

// GenerateOptions contains options for a single generation call
type GenerateOptions struct {
	MaxTokens      int32         // Maximum number of tokens to generate
	Temperature    float32       // Temperature for randomness (0.0 to 1.0)
	ResponseSchema *genai.Schema // Optional: request JSON output matching this schema
}

// GeminiProvider talks to the Gemini API through the genai SDK.
type GeminiProvider struct {
	gClient *genai.Client
}

// NewGeminiProvider creates a provider for apiKey. An empty baseURL uses
// the SDK default endpoint.
func NewGeminiProvider(ctx context.Context, apiKey, baseURL string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, &SelectorError{Kind: NoCredential}
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	gClient, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, &UpstreamError{Stage: StageClient, Err: fmt.Errorf("failed to create Gemini client: %w", err)}
	}
	return &GeminiProvider{gClient: gClient}, nil
}

// GeminiFactory returns a ProviderFactory bound to baseURL.
func GeminiFactory(baseURL string) ProviderFactory {
	return func(ctx context.Context, apiKey string) (Provider, error) {
		return NewGeminiProvider(ctx, apiKey, baseURL)
	}
}

// ListModels walks every page of the model listing.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]core.ModelDescriptor, error) {
	page, err := p.gClient.Models.List(ctx, nil)
	if err != nil {
		return nil, AsUpstreamError(StageListModels, err)
	}

	var models []core.ModelDescriptor
	for {
		for _, m := range page.Items {
			if m == nil {
				continue
			}
			models = append(models, describeModel(m))
		}
		if page.NextPageToken == "" {
			break
		}
		page, err = page.Next(ctx)
		if errors.Is(err, genai.ErrPageDone) {
			break
		}
		if err != nil {
			return nil, AsUpstreamError(StageListModels, err)
		}
	}
	return models, nil
}

// GenerateContent performs a single-turn generation call.
func (p *GeminiProvider) GenerateContent(ctx context.Context, model, prompt string, opts GenerateOptions) (*genai.GenerateContentResponse, error) {
	if prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := p.gClient.Models.GenerateContent(ctx, model, contents, generateConfig(opts))
	if err != nil {
		return nil, AsUpstreamError(StageGenerate, err)
	}
	return resp, nil
}

func generateConfig(opts GenerateOptions) *genai.GenerateContentConfig {
	if opts.MaxTokens <= 0 && opts.Temperature <= 0 && opts.ResponseSchema == nil {
		return nil
	}
	config := &genai.GenerateContentConfig{}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		config.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.ResponseSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = opts.ResponseSchema
	}
	return config
}

func describeModel(m *genai.Model) core.ModelDescriptor {
	ops := make([]string, len(m.SupportedActions))
	copy(ops, m.SupportedActions)
	return core.ModelDescriptor{Name: m.Name, SupportedOperations: ops}
}

// AsUpstreamError converts SDK and transport errors into an UpstreamError.
func AsUpstreamError(stage string, err error) error {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream
	}

	ue := &UpstreamError{Stage: stage, Err: err}
	if errors.Is(err, context.DeadlineExceeded) {
		ue.Timeout = true
		return ue
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		ue.StatusCode = apiErr.Code
		ue.Body = Truncate(apiErr.Message, DiagnosticLimit)
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		ue.StatusCode = apiErrPtr.Code
		ue.Body = Truncate(apiErrPtr.Message, DiagnosticLimit)
	default:
		ue.Body = Truncate(err.Error(), DiagnosticLimit)
	}
	if ue.StatusCode == http.StatusRequestTimeout || ue.StatusCode == http.StatusGatewayTimeout {
		ue.Timeout = true
	}
	return ue
}
