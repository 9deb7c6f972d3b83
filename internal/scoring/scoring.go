// Package scoring computes candidate–job fit scores and ranks candidate pools.
package scoring

import (
	"context"

	"github.com/spigell/candidate-ranker/internal/candidate"
)

// FitResult is the outcome of scoring one candidate against one job description.
type FitResult struct {
	Score       int      `json:"score"`
	Explanation string   `json:"explanation"`
	Strengths   []string `json:"strengths"`
	Gaps        []string `json:"gaps"`
}

// FitScorer produces a FitResult for a (job description, candidate) pair.
type FitScorer interface {
	Score(ctx context.Context, jobDescription string, c *candidate.Candidate) (*FitResult, error)
}

// EvaluatedCandidate is a candidate with its fit fields attached.
type EvaluatedCandidate struct {
	candidate.Candidate

	FitScore       int      `json:"fitScore"`
	FitExplanation string   `json:"fitExplanation"`
	Strengths      []string `json:"strengths"`
	Gaps           []string `json:"gaps"`
}

func NewEvaluated(c *candidate.Candidate, result *FitResult) EvaluatedCandidate {
	return EvaluatedCandidate{
		Candidate:      *c,
		FitScore:       result.Score,
		FitExplanation: result.Explanation,
		Strengths:      result.Strengths,
		Gaps:           result.Gaps,
	}
}

// OutcomeRecorder receives per-call scorer outcomes.
type OutcomeRecorder interface {
	ObserveScore(scorer, outcome string)
}

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
