package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"doccompare/internal/llm"
	"doccompare/internal/logger"
	"doccompare/internal/metrics"
	"doccompare/internal/model"
	"doccompare/internal/prompt"
	"doccompare/internal/retry"
)

const jsonMIMEType = "application/json"

// ComparisonService turns two document texts into a validated comparison.
type ComparisonService interface {
	// Compare asks the model for a structured comparison, retrying failed attempts
	// with a linear backoff. The returned error carries the last attempt's message.
	Compare(ctx context.Context, doc1Text, doc2Text string) (*model.ComparisonResult, error)
}

// ComparisonOptions tunes the retry loop and the model call.
type ComparisonOptions struct {
	MaxAttempts    int
	RetryBaseDelay time.Duration
	Temperature    float32
	Persona        string
	// Sleep replaces the backoff timer; tests use it to observe delays.
	Sleep   func(ctx context.Context, d time.Duration) error
	Metrics *metrics.Comparison
	Logger  *logger.Logger
}

// DefaultComparisonOptions: three attempts, 500ms linear backoff, temperature 0.2.
func DefaultComparisonOptions() ComparisonOptions {
	return ComparisonOptions{
		MaxAttempts:    3,
		RetryBaseDelay: 500 * time.Millisecond,
		Temperature:    0.2,
		Persona:        prompt.SystemPersona,
	}
}

type comparisonService struct {
	gen    llm.Generator
	opt    ComparisonOptions
	tracer trace.Tracer
}

// NewComparisonService constructs a ComparisonService on top of gen.
func NewComparisonService(gen llm.Generator, opt ComparisonOptions) ComparisonService {
	if opt.MaxAttempts < 1 {
		opt.MaxAttempts = 1
	}
	if opt.Persona == "" {
		opt.Persona = prompt.SystemPersona
	}
	return &comparisonService{
		gen:    gen,
		opt:    opt,
		tracer: otel.Tracer("doccompare/internal/service"),
	}
}

func (s *comparisonService) Compare(ctx context.Context, doc1Text, doc2Text string) (*model.ComparisonResult, error) {
	ctx, span := s.tracer.Start(ctx, "ComparisonService.Compare")
	defer span.End()
	start := time.Now()

	p := prompt.Build(s.opt.Persona, doc1Text, doc2Text)
	req := llm.Request{
		System:           p.System,
		Prompt:           p.Text,
		Schema:           ComparisonSchema,
		ResponseMIMEType: jsonMIMEType,
		Temperature:      s.opt.Temperature,
	}

	res, err := retry.Do(ctx, retry.Policy{
		MaxAttempts: s.opt.MaxAttempts,
		Backoff:     retry.Linear(s.opt.RetryBaseDelay),
		Sleep:       s.opt.Sleep,
	}, func(ctx context.Context, attempt int) (*model.ComparisonResult, error) {
		return s.attempt(ctx, req, attempt)
	})

	s.opt.Metrics.ObserveComparison(err == nil, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return res, nil
}

func (s *comparisonService) attempt(ctx context.Context, req llm.Request, attempt int) (*model.ComparisonResult, error) {
	ctx, span := s.tracer.Start(ctx, "ComparisonService.attempt",
		trace.WithAttributes(attribute.Int("comparison.attempt", attempt)))
	defer span.End()

	res, err := s.generate(ctx, req)
	outcome := outcomeOf(err)
	span.SetAttributes(attribute.String("comparison.outcome", outcome))
	s.opt.Metrics.ObserveAttempt(outcome)
	if err == nil {
		return res, nil
	}

	span.RecordError(err)
	fields := map[string]any{
		"component":    "comparison",
		"attempt":      attempt,
		"max_attempts": s.opt.MaxAttempts,
		"outcome":      outcome,
		"error":        err,
	}
	// the model usually refuses the same input again; kept as-is, but visible
	if outcome == metrics.OutcomeRejected && attempt < s.opt.MaxAttempts {
		fields["retrying_rejection"] = true
	}
	s.opt.Logger.Warn("attempt failed", fields)
	return nil, err
}

func (s *comparisonService) generate(ctx context.Context, req llm.Request) (*model.ComparisonResult, error) {
	raw, err := s.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeComparison(raw)
}

func outcomeOf(err error) string {
	var (
		parseErr    *ParseError
		rejectedErr *RejectedError
		shapeErr    *ValidationError
	)
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &parseErr):
		return metrics.OutcomeParse
	case errors.As(err, &rejectedErr):
		return metrics.OutcomeRejected
	case errors.As(err, &shapeErr):
		return metrics.OutcomeShape
	default:
		return metrics.OutcomeTransport
	}
}
