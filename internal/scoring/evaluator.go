package scoring

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/candidate-ranker/internal/candidate"
)

// BatchRecorder receives batch sizes and durations.
type BatchRecorder interface {
	ObserveBatch(size int, duration time.Duration)
}

// Evaluator scores a candidate pool against one job description.
type Evaluator struct {
	scorer      FitScorer
	concurrency int
	logger      *zap.Logger
	recorder    BatchRecorder
}

type EvaluatorOption func(*Evaluator)

// WithConcurrency caps in-flight scoring calls. Zero or less means unlimited.
func WithConcurrency(n int) EvaluatorOption {
	return func(e *Evaluator) {
		e.concurrency = n
	}
}

func WithEvaluatorLogger(logger *zap.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithBatchRecorder(recorder BatchRecorder) EvaluatorOption {
	return func(e *Evaluator) {
		e.recorder = recorder
	}
}

func NewEvaluator(scorer FitScorer, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		scorer: scorer,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate scores every candidate concurrently and returns them ranked by
// fit score, then years of experience, then number of skills, all descending.
// Nil entries are skipped.
func (e *Evaluator) Evaluate(ctx context.Context, jobDescription string, candidates []*candidate.Candidate) ([]EvaluatedCandidate, error) {
	started := time.Now()

	pool := make([]*candidate.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c != nil {
			pool = append(pool, c)
		}
	}

	e.logger.Debug("evaluating candidates", zap.Int("count", len(pool)))

	evaluated := make([]EvaluatedCandidate, len(pool))

	g, gctx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}

	for i, c := range pool {
		g.Go(func() error {
			result, err := e.scorer.Score(gctx, jobDescription, c)
			if err != nil {
				return fmt.Errorf("scoring candidate %s: %w", c.ID, err)
			}
			if result == nil {
				return fmt.Errorf("scoring candidate %s: %w", c.ID, errEmptyResult)
			}

			evaluated[i] = NewEvaluated(c, result)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	Rank(evaluated)

	if e.recorder != nil {
		e.recorder.ObserveBatch(len(evaluated), time.Since(started))
	}

	e.logger.Info("candidates evaluated",
		zap.Int("count", len(evaluated)),
		zap.Duration("took", time.Since(started)),
	)

	return evaluated, nil
}

// Rank sorts in place: fit score, years of experience, skill count, all
// descending. Equal keys keep their input order.
func Rank(evaluated []EvaluatedCandidate) {
	slices.SortStableFunc(evaluated, func(a, b EvaluatedCandidate) int {
		if c := cmp.Compare(b.FitScore, a.FitScore); c != 0 {
			return c
		}
		if c := cmp.Compare(b.YearsOfExperience, a.YearsOfExperience); c != 0 {
			return c
		}
		return cmp.Compare(len(b.Skills), len(a.Skills))
	})
}

// AboveThreshold returns the candidates scoring at least minScore, preserving order.
func AboveThreshold(evaluated []EvaluatedCandidate, minScore int) []EvaluatedCandidate {
	selected := make([]EvaluatedCandidate, 0, len(evaluated))
	for _, ec := range evaluated {
		if ec.FitScore >= minScore {
			selected = append(selected, ec)
		}
	}
	return selected
}
