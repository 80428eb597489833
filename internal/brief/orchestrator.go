package brief

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"dailybrief/internal/config"
	"dailybrief/internal/core"
	"dailybrief/internal/llm"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Step names that appear in debug.step alongside the llm stage names.
const (
	StepConfig   = "config"
	StepValidate = "validate"
)

// Orchestrator drives one request from credential check to a
// display-ready GenerationResult. It holds no per-request state and is
// safe for concurrent use.
type Orchestrator struct {
	credential config.Credential
	factory    llm.ProviderFactory
	policy     Policy
	now        func() time.Time
	log        zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the clock used for default dates and timings.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// NewOrchestrator creates an orchestrator. factory is not called when the
// credential is missing or implausibly short.
func NewOrchestrator(cred config.Credential, factory llm.ProviderFactory, policy Policy, opts ...Option) *Orchestrator {
	if policy.MaxConcepts <= 0 {
		policy.MaxConcepts = DefaultLimits().Concepts
	}
	if policy.Limits == (Limits{}) {
		policy.Limits = DefaultLimits()
	}
	policy.Limits.Concepts = policy.MaxConcepts

	o := &Orchestrator{
		credential: cred,
		factory:    factory,
		policy:     policy,
		now:        time.Now,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Policy returns the policy in effect.
func (o *Orchestrator) Policy() Policy { return o.policy }

// ConceptCount is the number of concept cards every result carries.
func (o *Orchestrator) ConceptCount() int { return o.policy.MaxConcepts }

// NormalizeDate returns date when it is a valid YYYY-MM-DD day, otherwise
// the UTC calendar day of now.
func NormalizeDate(date string, now time.Time) string {
	date = strings.TrimSpace(date)
	if t, err := time.Parse(core.DateLayout, date); err == nil {
		return t.Format(core.DateLayout)
	}
	return now.UTC().Format(core.DateLayout)
}

// Today returns the orchestrator's current calendar day.
func (o *Orchestrator) Today() string {
	return o.now().UTC().Format(core.DateLayout)
}

// Generate always returns a success-shaped result. Internal failures are
// rendered into mock or fallback content with diagnostics under Debug.
func (o *Orchestrator) Generate(ctx context.Context, req core.GenerationRequest) core.GenerationResult {
	start := o.now()
	date := NormalizeDate(req.Date, start)

	dbg := map[string]any{
		"requestId": uuid.NewString(),
		"date":      date,
		"mode":      o.mode(),
	}
	if o.credential.Source != "" {
		dbg["credentialSource"] = o.credential.Source
	}

	res, err := o.Run(ctx, req, date, dbg)
	if err != nil {
		res = o.render(err, date, dbg)
	}

	dbg["elapsedMs"] = o.now().Sub(start).Milliseconds()
	res.Debug = dbg

	o.log.Info().
		Str("request_id", dbg["requestId"].(string)).
		Str("date", date).
		Str("status", string(res.Status)).
		Interface("step", dbg["step"]).
		Interface("model", dbg["model"]).
		Msg("generation finished")
	return res
}

// Run is the error-returning core of Generate. dbg receives diagnostics as
// the run progresses and may be nil.
func (o *Orchestrator) Run(ctx context.Context, req core.GenerationRequest, date string, dbg map[string]any) (core.GenerationResult, error) {
	if dbg == nil {
		dbg = map[string]any{}
	}

	key := strings.TrimSpace(o.credential.Value)
	if key == "" {
		return core.GenerationResult{}, &OrchestratorError{Step: StepConfig, Err: &ConfigError{Reason: "no provider credential configured"}}
	}
	if utf8.RuneCountInString(key) < o.policy.MinCredentialLength {
		return core.GenerationResult{}, &OrchestratorError{Step: StepConfig, Err: &ConfigError{
			Reason: fmt.Sprintf("provider credential shorter than %d characters", o.policy.MinCredentialLength),
		}}
	}
	if o.factory == nil {
		return core.GenerationResult{}, &OrchestratorError{Step: StepConfig, Err: &ConfigError{Reason: "no provider configured"}}
	}

	provider, err := o.factory(ctx, key)
	if err != nil {
		return core.GenerationResult{}, &OrchestratorError{Step: llm.StageClient, Err: llm.AsUpstreamError(llm.StageClient, err)}
	}

	listCtx, cancel := o.callContext(ctx)
	model, err := llm.SelectModel(listCtx, provider, key, o.policy.PreferredModelPattern)
	cancel()
	if err != nil {
		var se *llm.SelectorError
		step := llm.StageListModels
		if errors.As(err, &se) {
			step = se.Stage()
		}
		return core.GenerationResult{}, &OrchestratorError{Step: step, Err: err}
	}
	dbg["model"] = model
	o.log.Debug().Str("model", model).Msg("model selected")

	dbg["attempts"] = 1
	first, err := o.attempt(ctx, provider, model, req, date, false)
	if err != nil {
		return core.GenerationResult{}, &OrchestratorError{Step: stepOf(err), Err: err}
	}
	if first.Valid {
		dbg["validation"] = "passed"
		return o.result(core.StatusOK, first), nil
	}

	if !o.policy.RetryOnValidationFailure {
		return core.GenerationResult{}, &OrchestratorError{Step: StepValidate, Err: &ValidationError{Problems: first.Problems}, Partial: &first}
	}

	o.log.Debug().Strs("problems", first.Problems).Msg("validation failed, retrying with strict prompt")
	dbg["retried"] = true
	dbg["firstProblems"] = first.Problems
	dbg["attempts"] = 2

	second, err := o.attempt(ctx, provider, model, req, date, true)
	if err != nil {
		return core.GenerationResult{}, &OrchestratorError{Step: stepOf(err), Err: err, Partial: &first}
	}
	if second.Valid {
		dbg["validation"] = "passed"
		return o.result(core.StatusOK, second), nil
	}
	return core.GenerationResult{}, &OrchestratorError{Step: StepValidate, Err: &ValidationError{Problems: second.Problems}, Partial: &second}
}

// attempt runs one generation round and coerces whatever came back.
func (o *Orchestrator) attempt(ctx context.Context, p llm.Provider, model string, req core.GenerationRequest, date string, strict bool) (Coercion, error) {
	var candidate map[string]any

	if o.policy.ParallelSections {
		var research, concepts map[string]any
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			research, err = o.call(gctx, p, model, SectionResearch, req, date, strict)
			return err
		})
		g.Go(func() error {
			var err error
			concepts, err = o.call(gctx, p, model, SectionConcepts, req, date, strict)
			return err
		})
		if err := g.Wait(); err != nil {
			return Coercion{}, err
		}

		candidate = map[string]any{"concepts": concepts["concepts"]}
		if nested, ok := research["research"]; ok {
			candidate["research"] = nested
		} else {
			candidate["research"] = research
		}
	} else {
		var err error
		candidate, err = o.call(ctx, p, model, SectionAll, req, date, strict)
		if err != nil {
			return Coercion{}, err
		}
	}

	return Coerce(candidate, date, o.policy.Limits), nil
}

func (o *Orchestrator) call(ctx context.Context, p llm.Provider, model string, section Section, req core.GenerationRequest, date string, strict bool) (map[string]any, error) {
	prompt := BuildPrompt(date, req.Topic, strict, PromptOptions{
		Section:     section,
		MaxConcepts: o.policy.MaxConcepts,
		Limits:      o.policy.Limits,
	})

	opts := llm.GenerateOptions{MaxTokens: o.policy.MaxTokens, Temperature: o.policy.Temperature}
	if o.policy.UseResponseSchema {
		opts.ResponseSchema = ResponseSchema(section)
	}

	callCtx, cancel := o.callContext(ctx)
	defer cancel()

	resp, err := p.GenerateContent(callCtx, model, prompt, opts)
	if err != nil {
		return nil, llm.AsUpstreamError(llm.StageGenerate, err)
	}
	return llm.DecodeResponse(resp)
}

func (o *Orchestrator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.policy.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.policy.CallTimeout)
}

func (o *Orchestrator) result(status core.Status, c Coercion) core.GenerationResult {
	return core.GenerationResult{
		Status:   status,
		Research: c.Research,
		Concepts: c.Concepts,
	}
}

// render converts a run error into the success-shaped payload.
func (o *Orchestrator) render(err error, date string, dbg map[string]any) core.GenerationResult {
	step := StepConfig
	var oe *OrchestratorError
	if errors.As(err, &oe) {
		step = oe.Step
	}
	dbg["step"] = step

	var ce *ConfigError
	if errors.As(err, &ce) {
		dbg["reason"] = ce.Reason
		return core.GenerationResult{
			Status:   core.StatusMock,
			Research: MockResearch(date),
			Concepts: DefaultConcepts(o.policy.MaxConcepts),
		}
	}

	dbg["error"] = llm.Truncate(err.Error(), llm.DiagnosticLimit)

	var ue *llm.UpstreamError
	if errors.As(err, &ue) {
		if ue.StatusCode != 0 {
			dbg["statusCode"] = ue.StatusCode
		}
		if ue.Body != "" {
			dbg["body"] = ue.Body
		}
		if ue.Timeout {
			dbg["timeout"] = true
		}
	}
	var de *llm.DecodeError
	if errors.As(err, &de) {
		dbg["decode"] = string(de.Kind)
		if de.Sample != "" {
			dbg["sample"] = de.Sample
		}
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		dbg["validation"] = "failed"
		dbg["problems"] = ve.Problems
	}

	c := Coerce(nil, date, o.policy.Limits)
	if oe != nil && oe.Partial != nil {
		c = *oe.Partial
	}

	o.log.Warn().Err(err).Str("step", step).Msg("generation fell back")
	return o.result(core.StatusFallback, c)
}

func (o *Orchestrator) mode() string {
	if o.policy.ParallelSections {
		return "parallel"
	}
	return "single"
}

func stepOf(err error) string {
	var ue *llm.UpstreamError
	if errors.As(err, &ue) {
		return ue.Stage
	}
	var de *llm.DecodeError
	if errors.As(err, &de) {
		return llm.StageDecode
	}
	var se *llm.SelectorError
	if errors.As(err, &se) {
		return se.Stage()
	}
	return llm.StageGenerate
}
