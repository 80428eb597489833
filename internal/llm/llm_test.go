package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewGeminiProvider_NoAPIKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), "", "")
	var se *SelectorError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, NoCredential, se.Kind)
}

func TestGeminiProvider_Live(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping integration test")
	}

	ctx := context.Background()
	p, err := NewGeminiProvider(ctx, apiKey, "")
	require.NoError(t, err)

	models, err := p.ListModels(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, models)

	name, err := PickModel(models, DefaultModelPattern)
	require.NoError(t, err)

	resp, err := p.GenerateContent(ctx, name, `Reply with {"ok":true} and nothing else.`, GenerateOptions{MaxTokens: 64})
	require.NoError(t, err)

	_, err = DecodeResponse(resp)
	assert.NoError(t, err)
}

// fakeGemini serves a two-page model listing and fails every generation
// call with a 500 error envelope.
type fakeGemini struct {
	mu          sync.Mutex
	pageTokens  []string
	generateReq string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, ":generateContent"):
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.generateReq = string(body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"code":500,"message":"internal failure","status":"INTERNAL"}}`)
	case strings.HasSuffix(r.URL.Path, "/models"):
		token := r.URL.Query().Get("pageToken")
		f.mu.Lock()
		f.pageTokens = append(f.pageTokens, token)
		f.mu.Unlock()
		if token == "" {
			fmt.Fprint(w, `{"models":[{"name":"models/gemini-pro","supportedGenerationMethods":["generateContent"],"supportedActions":["generateContent"]}],"nextPageToken":"page-2"}`)
			return
		}
		fmt.Fprint(w, `{"models":[{"name":"models/gemini-2.5-flash","supportedGenerationMethods":["generateContent"],"supportedActions":["generateContent"]}]}`)
	default:
		http.NotFound(w, r)
	}
}

func newFakeGemini(t *testing.T) (*fakeGemini, *GeminiProvider) {
	t.Helper()
	fake := &fakeGemini{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(context.Background(), "test-key-0123456789abcdef", srv.URL)
	require.NoError(t, err)
	return fake, p
}

func TestGeminiProvider_Paging(t *testing.T) {
	fake, p := newFakeGemini(t)
	ctx := context.Background()

	models, err := p.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "models/gemini-pro", models[0].Name)
	assert.Equal(t, "models/gemini-2.5-flash", models[1].Name)
	assert.True(t, models[1].Supports(GenerateOperation))
	fake.mu.Lock()
	assert.Equal(t, []string{"", "page-2"}, fake.pageTokens)
	fake.mu.Unlock()

	name, err := SelectModel(ctx, p, "test-key-0123456789abcdef", DefaultModelPattern)
	require.NoError(t, err)
	assert.Equal(t, "models/gemini-2.5-flash", name)
}

func TestGeminiProvider_APIErrorIsUpstream(t *testing.T) {
	fake, p := newFakeGemini(t)

	schema := &genai.Schema{Type: genai.TypeObject}
	_, err := p.GenerateContent(context.Background(), "models/gemini-2.5-flash", "Write today's brief.", GenerateOptions{ResponseSchema: schema})

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, StageGenerate, ue.Stage)
	assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
	assert.Contains(t, ue.Body, "internal failure")
	assert.False(t, ue.Timeout)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, fake.generateReq, "Write today's brief.")
	assert.Contains(t, fake.generateReq, "application/json")
}

func TestGeminiProvider_EmptyPrompt(t *testing.T) {
	_, p := newFakeGemini(t)
	_, err := p.GenerateContent(context.Background(), "models/gemini-2.5-flash", "", GenerateOptions{})
	assert.EqualError(t, err, "prompt cannot be empty")
}

func TestGenerateConfig(t *testing.T) {
	assert.Nil(t, generateConfig(GenerateOptions{}))

	schema := &genai.Schema{Type: genai.TypeObject}
	cfg := generateConfig(GenerateOptions{MaxTokens: 128, Temperature: 0.5, ResponseSchema: schema})
	require.NotNil(t, cfg)
	assert.Equal(t, int32(128), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, float32(0.5), *cfg.Temperature)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.Same(t, schema, cfg.ResponseSchema)
}

func TestDescribeModel(t *testing.T) {
	m := &genai.Model{Name: "models/gemini-2.5-flash", SupportedActions: []string{GenerateOperation}}
	d := describeModel(m)
	assert.Equal(t, "models/gemini-2.5-flash", d.Name)
	assert.True(t, d.Supports(GenerateOperation))
	assert.False(t, d.Supports("embedContent"))
}

func TestAsUpstreamError(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", genai.APIError{Code: 429, Message: strings.Repeat("x", 2000), Status: "RESOURCE_EXHAUSTED"})
		var ue *UpstreamError
		require.ErrorAs(t, AsUpstreamError(StageGenerate, err), &ue)
		assert.Equal(t, StageGenerate, ue.Stage)
		assert.Equal(t, 429, ue.StatusCode)
		assert.Len(t, ue.Body, DiagnosticLimit)
		assert.False(t, ue.Timeout)
	})

	t.Run("deadline", func(t *testing.T) {
		var ue *UpstreamError
		require.ErrorAs(t, AsUpstreamError(StageListModels, context.DeadlineExceeded), &ue)
		assert.True(t, ue.Timeout)
		assert.ErrorIs(t, ue, context.DeadlineExceeded)
	})

	t.Run("transport", func(t *testing.T) {
		var ue *UpstreamError
		require.ErrorAs(t, AsUpstreamError(StageGenerate, errors.New("connection refused")), &ue)
		assert.Zero(t, ue.StatusCode)
		assert.Contains(t, ue.Body, "connection refused")
	})

	t.Run("already classified", func(t *testing.T) {
		orig := &UpstreamError{Stage: StageClient, StatusCode: 500}
		assert.Same(t, orig, AsUpstreamError(StageGenerate, orig))
	})
}
