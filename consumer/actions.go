package consumer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/sync/singleflight"

	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/observability"
	"github.com/kbukum/scribekit/provider"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/validation"
)

// Action names, also used as provider names and dedup key prefixes.
const (
	ActionSummarize = "summarize"
	ActionDraft     = "draft"
	ActionSave      = "save"
)

// Backend performs the remote calls. *api.Client implements it.
type Backend interface {
	Summarize(ctx context.Context, text string, kind transcription.SummaryKind) (string, error)
	DraftRecord(ctx context.Context, req transcription.DraftRequest) (*transcription.Draft, error)
	SaveRecord(ctx context.Context, req transcription.SaveRequest) (*transcription.Record, error)
}

// SummaryRequest is the input of the summarize action.
type SummaryRequest struct {
	Text string                    `json:"text" validate:"required"`
	Kind transcription.SummaryKind `json:"summary_type" validate:"omitempty,oneof=short detailed"`
}

// Actions runs result-consumer calls. Identical concurrent calls share one
// request; nothing is retried.
type Actions struct {
	summarize provider.RequestResponse[SummaryRequest, string]
	draft     provider.RequestResponse[transcription.DraftRequest, *transcription.Draft]
	save      provider.RequestResponse[transcription.SaveRequest, *transcription.Record]

	group singleflight.Group
	log   *logger.Logger
}

// Option configures Actions.
type Option func(*settings)

type settings struct {
	log     *logger.Logger
	metrics *observability.Metrics
}

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithMetrics records per-action counts and latency.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// New wires each action of b through validation and the middleware chain.
func New(b Backend, opts ...Option) *Actions {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logger.Get("consumer")
	}

	summarize := provider.Func(ActionSummarize, func(ctx context.Context, in SummaryRequest) (string, error) {
		return b.Summarize(ctx, in.Text, in.Kind)
	})
	draft := provider.Func(ActionDraft, b.DraftRecord)
	save := provider.Func(ActionSave, b.SaveRecord)

	return &Actions{
		summarize: wrap(summarize, s),
		draft:     wrap(draft, s),
		save:      wrap(save, s),
		log:       s.log,
	}
}

func wrap[I, O any](rr provider.RequestResponse[I, O], s settings) provider.RequestResponse[I, O] {
	validated := provider.Adapt(rr, rr.Name(),
		func(_ context.Context, in I) (I, error) { return in, validation.Validate(in) },
		func(out O) (O, error) { return out, nil },
	)
	var metrics provider.Middleware[I, O]
	if s.metrics != nil {
		metrics = provider.WithMetrics[I, O](observability.SpanAction, s.metrics)
	}
	return provider.Chain(
		provider.WithTracing[I, O](observability.SpanAction),
		provider.WithLogging[I, O](s.log),
		metrics,
	)(validated)
}

// Summarize returns a summary of text. kind defaults to short.
func (a *Actions) Summarize(ctx context.Context, text string, kind transcription.SummaryKind) (string, error) {
	if kind == "" {
		kind = transcription.SummaryShort
	}
	return run(ctx, a, a.summarize, SummaryRequest{Text: text, Kind: kind})
}

// GenerateDraft rewrites a transcript as a structured record draft.
func (a *Actions) GenerateDraft(ctx context.Context, req transcription.DraftRequest) (*transcription.Draft, error) {
	return run(ctx, a, a.draft, req)
}

// SaveDraft persists a draft.
func (a *Actions) SaveDraft(ctx context.Context, req transcription.SaveRequest) (*transcription.Record, error) {
	return run(ctx, a, a.save, req)
}

// run executes rr once per distinct in among concurrent callers. The shared
// call keeps the first caller's values but not its cancellation, so a
// caller giving up never fails the others; each caller stops waiting when
// its own context ends. The API client's timeout bounds the shared call.
func run[I, O any](ctx context.Context, a *Actions, rr provider.RequestResponse[I, O], in I) (O, error) {
	var zero O
	key, err := Key(rr.Name(), in)
	if err != nil {
		return zero, err
	}
	shared := context.WithoutCancel(ctx)
	ch := a.group.DoChan(key, func() (any, error) {
		return rr.Execute(shared, in)
	})
	select {
	case res := <-ch:
		if res.Shared {
			a.log.WithContext(ctx).Debug("joined in-flight action", logger.Fields(logger.FieldOperation, rr.Name()))
		}
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(O), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Key identifies an action invocation: the action name and the SHA-256 of
// the JSON-encoded input.
func Key(action string, in any) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return action + ":" + hex.EncodeToString(sum[:]), nil
}
