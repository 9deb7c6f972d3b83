package scoring

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/candidate-ranker/internal/candidate"
)

type scoreByID map[string]int

func (s scoreByID) Score(_ context.Context, _ string, c *candidate.Candidate) (*FitResult, error) {
	return &FitResult{Score: s[c.ID], Explanation: "stub"}, nil
}

func ids(evaluated []EvaluatedCandidate) []string {
	out := make([]string, 0, len(evaluated))
	for _, ec := range evaluated {
		out = append(out, ec.ID)
	}
	return out
}

func TestEvaluator_TieBreakOrder(t *testing.T) {
	pool := []*candidate.Candidate{
		{ID: "junior", YearsOfExperience: 1, Skills: []string{"a", "b", "c"}},
		{ID: "senior-few", YearsOfExperience: 8, Skills: []string{"a"}},
		{ID: "senior-many", YearsOfExperience: 8, Skills: []string{"a", "b"}},
		{ID: "mid", YearsOfExperience: 4},
		nil,
	}

	constant := &stubScorer{result: &FitResult{Score: 70}}
	evaluated, err := NewEvaluator(constant).Evaluate(context.Background(), "jd", pool)
	require.NoError(t, err)
	assert.Equal(t, []string{"senior-many", "senior-few", "mid", "junior"}, ids(evaluated))
	assert.Equal(t, 4, constant.calls)
}

func TestEvaluator_PrimaryKeyIsFitScore(t *testing.T) {
	pool := []*candidate.Candidate{
		{ID: "a", YearsOfExperience: 10},
		{ID: "b", YearsOfExperience: 1},
		{ID: "c", YearsOfExperience: 5},
	}

	evaluated, err := NewEvaluator(scoreByID{"a": 40, "b": 90, "c": 40}).Evaluate(context.Background(), "jd", pool)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids(evaluated))
}

func TestEvaluator_PreservesCandidateFields(t *testing.T) {
	c := &candidate.Candidate{
		ID:                "c1",
		Name:              "Jane",
		Email:             "jane@example.com",
		Phone:             "+100",
		Location:          "Berlin",
		Filename:          "jane.pdf",
		SourceLink:        "https://example.com/jane",
		Skills:            []string{"React", "Node.js", "AWS"},
		YearsOfExperience: 3,
		Education:         "Bachelor of Science",
		Experience:        "Built things",
	}
	original := *c

	recorder := &recordingObserver{}
	evaluated, err := NewEvaluator(NewLocalScorer(WithoutJitter()), WithBatchRecorder(recorder)).
		Evaluate(context.Background(), scenarioJD, []*candidate.Candidate{c})
	require.NoError(t, err)
	require.Len(t, evaluated, 1)

	assert.Equal(t, original, evaluated[0].Candidate)
	assert.Equal(t, original, *c)
	assert.Equal(t, 59, evaluated[0].FitScore)
	assert.Equal(t, []string{"react", "aws"}, evaluated[0].Strengths)
	assert.Equal(t, []string{"python"}, evaluated[0].Gaps)
	assert.NotEmpty(t, evaluated[0].FitExplanation)
	assert.Equal(t, []int{1}, recorder.batches)
}

func TestEvaluator_EmptyPool(t *testing.T) {
	evaluated, err := NewEvaluator(NewLocalScorer()).Evaluate(context.Background(), scenarioJD, nil)
	require.NoError(t, err)
	assert.Empty(t, evaluated)
}

func TestEvaluator_ScorerErrorFailsBatch(t *testing.T) {
	pool := []*candidate.Candidate{{ID: "a"}, {ID: "b"}}

	_, err := NewEvaluator(&stubScorer{err: errors.New("quota")}).Evaluate(context.Background(), "jd", pool)
	require.Error(t, err)
	assert.ErrorContains(t, err, "quota")

	_, err = NewEvaluator(&stubScorer{}).Evaluate(context.Background(), "jd", pool)
	require.ErrorIs(t, err, errEmptyResult)
}

type concurrencyProbe struct {
	mu      sync.Mutex
	current int
	peak    int
	total   atomic.Int32
}

func (p *concurrencyProbe) Score(_ context.Context, _ string, _ *candidate.Candidate) (*FitResult, error) {
	p.mu.Lock()
	p.current++
	if p.current > p.peak {
		p.peak = p.current
	}
	p.mu.Unlock()

	time.Sleep(5 * time.Millisecond)
	p.total.Add(1)

	p.mu.Lock()
	p.current--
	p.mu.Unlock()

	return &FitResult{Score: 50}, nil
}

func TestEvaluator_ConcurrencyLimit(t *testing.T) {
	pool := make([]*candidate.Candidate, 12)
	for i := range pool {
		pool[i] = &candidate.Candidate{ID: string(rune('a' + i))}
	}

	probe := &concurrencyProbe{}
	evaluated, err := NewEvaluator(probe, WithConcurrency(3)).Evaluate(context.Background(), "jd", pool)
	require.NoError(t, err)
	assert.Len(t, evaluated, 12)
	assert.Equal(t, int32(12), probe.total.Load())
	assert.LessOrEqual(t, probe.peak, 3)
}

func TestAboveThreshold(t *testing.T) {
	evaluated := []EvaluatedCandidate{
		{Candidate: candidate.Candidate{ID: "a"}, FitScore: 85},
		{Candidate: candidate.Candidate{ID: "b"}, FitScore: 60},
		{Candidate: candidate.Candidate{ID: "c"}, FitScore: 59},
	}

	assert.Equal(t, []string{"a", "b"}, ids(AboveThreshold(evaluated, 60)))
	assert.Empty(t, AboveThreshold(nil, 60))
}

func TestRankIsStableForFullTies(t *testing.T) {
	evaluated := []EvaluatedCandidate{
		{Candidate: candidate.Candidate{ID: "first", YearsOfExperience: 2}, FitScore: 50},
		{Candidate: candidate.Candidate{ID: "second", YearsOfExperience: 2}, FitScore: 50},
	}

	Rank(evaluated)
	assert.Equal(t, []string{"first", "second"}, ids(evaluated))
}
