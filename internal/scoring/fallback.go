package scoring

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/candidate"
)

var errEmptyResult = errors.New("scorer returned no result")

// Fallback tries the primary scorer and, on any error or timeout, scores with
// the secondary one instead. The secondary result is returned as is, so it
// should be a scorer that cannot fail, such as LocalScorer.
type Fallback struct {
	primary       FitScorer
	secondary     FitScorer
	primaryName   string
	secondaryName string
	timeout       time.Duration
	logger        *zap.Logger
	recorder      OutcomeRecorder
}

type FallbackOption func(*Fallback)

// WithTimeout bounds each primary call. Zero means no extra deadline.
func WithTimeout(timeout time.Duration) FallbackOption {
	return func(f *Fallback) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

func WithLogger(logger *zap.Logger) FallbackOption {
	return func(f *Fallback) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func WithRecorder(recorder OutcomeRecorder) FallbackOption {
	return func(f *Fallback) {
		f.recorder = recorder
	}
}

// WithNames sets the labels used in logs and metrics.
func WithNames(primary, secondary string) FallbackOption {
	return func(f *Fallback) {
		if primary != "" {
			f.primaryName = primary
		}
		if secondary != "" {
			f.secondaryName = secondary
		}
	}
}

// NewFallback composes two scorers. A nil primary makes every call go to secondary.
func NewFallback(primary, secondary FitScorer, opts ...FallbackOption) *Fallback {
	f := &Fallback{
		primary:       primary,
		secondary:     secondary,
		primaryName:   "primary",
		secondaryName: "local",
		logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

func (f *Fallback) Score(ctx context.Context, jobDescription string, c *candidate.Candidate) (*FitResult, error) {
	if f.primary != nil {
		result, err := f.scorePrimary(ctx, jobDescription, c)
		if err == nil {
			f.observe(f.primaryName, OutcomeSuccess)
			return result, nil
		}

		f.observe(f.primaryName, OutcomeError)
		f.logger.Warn("primary scorer failed, falling back",
			zap.String("scorer", f.primaryName),
			zap.String("fallback", f.secondaryName),
			zap.String("candidate_id", candidateID(c)),
			zap.Error(err),
		)
	}

	result, err := f.secondary.Score(ctx, jobDescription, c)
	if err != nil {
		f.observe(f.secondaryName, OutcomeError)
		return nil, err
	}

	f.observe(f.secondaryName, OutcomeSuccess)
	return result, nil
}

func (f *Fallback) scorePrimary(ctx context.Context, jobDescription string, c *candidate.Candidate) (*FitResult, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	result, err := f.primary.Score(ctx, jobDescription, c)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errEmptyResult
	}

	return result, nil
}

func (f *Fallback) observe(scorer, outcome string) {
	if f.recorder != nil {
		f.recorder.ObserveScore(scorer, outcome)
	}
}

func candidateID(c *candidate.Candidate) string {
	if c == nil {
		return ""
	}
	return c.ID
}
