package filtering

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/candidate-ranker/internal/candidate"
	"github.com/spigell/candidate-ranker/internal/scoring"
)

func evaluated() []scoring.EvaluatedCandidate {
	return []scoring.EvaluatedCandidate{
		{Candidate: candidate.Candidate{ID: "a", Name: "Ann", YearsOfExperience: 6}, FitScore: 88},
		{Candidate: candidate.Candidate{ID: "b", Name: "Ben", YearsOfExperience: 1, Experience: "Summer Intern at Acme"}, FitScore: 71},
		{Candidate: candidate.Candidate{ID: "c", Name: "Cat", YearsOfExperience: 3}, FitScore: 64},
		{Candidate: candidate.Candidate{ID: "d", Name: "Dan", YearsOfExperience: 9}, FitScore: 60},
		{Candidate: candidate.Candidate{ID: "e", Name: "Eve", YearsOfExperience: 4}, FitScore: 59},
	}
}

func TestRunDefaultSteps(t *testing.T) {
	dir := t.TempDir()
	excludePath := filepath.Join(dir, "contacted.json")

	contacted := &candidate.ExcludedCandidates{}
	contacted.Append(candidate.NewExcluded(&candidate.Candidate{ID: "c", Name: "Cat"}, 64))
	if err := contacted.ToFile(excludePath); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	cfg := &Config{MinimumFitScore: DefaultMinimumFitScore, ExcludeFile: excludePath}

	out, err := Run(context.Background(), cfg, Deps{Logger: zap.New(core)}, Default(), NewSelection(evaluated()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := out.IDs(); !slices.Equal(got, []string{"a", "d"}) {
		t.Fatalf("unexpected selection %v", got)
	}

	if n := logs.FilterMessage("filter step").Len(); n != 4 {
		t.Fatalf("expected 4 filter step logs, got %d", n)
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	input := evaluated()
	if _, err := Run(context.Background(), &Config{}, Deps{}, Default(), NewSelection(input)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if input[1].ID != "b" || len(input) != 5 {
		t.Fatalf("input slice was modified: %+v", input)
	}
}

func TestMinScoreThresholds(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		want    []string
		wantErr bool
	}{
		{name: "default outreach threshold", cfg: nil, want: []string{"a", "b", "c", "d"}},
		{name: "custom", cfg: &Config{MinimumFitScore: 70}, want: []string{"a", "b"}},
		{name: "zero keeps everyone", cfg: &Config{MinimumFitScore: 0}, want: []string{"a", "b", "c", "d", "e"}},
		{name: "out of range", cfg: &Config{MinimumFitScore: 101}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Run(context.Background(), tt.cfg, Deps{}, []Filter{NewMinScore()}, NewSelection(evaluated()))
			if tt.wantErr {
				if err == nil || !strings.HasPrefix(err.Error(), "min_score:") {
					t.Fatalf("expected min_score validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := out.IDs(); !slices.Equal(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestZeroMinScoreKeepsLowScores(t *testing.T) {
	low := []scoring.EvaluatedCandidate{
		{Candidate: candidate.Candidate{ID: "x"}, FitScore: 40},
		{Candidate: candidate.Candidate{ID: "y"}, FitScore: 10},
	}

	out, err := Run(context.Background(), &Config{MinimumFitScore: 0}, Deps{}, []Filter{NewMinScore()}, NewSelection(low))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.IDs(); !slices.Equal(got, []string{"x", "y"}) {
		t.Fatalf("expected both candidates kept, got %v", got)
	}
}

func TestValidateBeforeDescribe(t *testing.T) {
	steps := Default()
	DisableByName(steps, "no_interns", "test")

	if err := Validate(&Config{MinimumFitScore: 80, MinimumExperience: 2.5}, steps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statuses := Describe(steps)
	if got := statuses[0].Details["minimum_fit_score"]; got != "80" {
		t.Fatalf("expected configured threshold 80, got %q", got)
	}
	if got := statuses[1].Details["minimum_years"]; got != "2.5" {
		t.Fatalf("expected configured years 2.5, got %q", got)
	}
	if statuses[3].Enabled {
		t.Fatalf("expected no_interns to stay disabled")
	}
}

func TestMinExperience(t *testing.T) {
	out, err := Run(context.Background(), &Config{MinimumExperience: 4}, Deps{}, []Filter{NewMinExperience()}, NewSelection(evaluated()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.IDs(); !slices.Equal(got, []string{"a", "d", "e"}) {
		t.Fatalf("unexpected selection %v", got)
	}
}

func TestDisabledStepIsSkipped(t *testing.T) {
	steps := Default()
	DisableByName(steps, "no_interns", "requested via flag")

	out, err := Run(context.Background(), &Config{}, Deps{}, steps, NewSelection(evaluated()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Contains(out.IDs(), "b") {
		t.Fatalf("expected intern candidate to remain, got %v", out.IDs())
	}

	for _, status := range Describe(steps) {
		if status.Name == "no_interns" {
			if status.Enabled || status.Reason != "requested via flag" {
				t.Fatalf("unexpected status %+v", status)
			}
		}
	}
}

func TestExcludeFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Run(context.Background(), &Config{ExcludeFile: path}, Deps{}, []Filter{NewExcludeFile()}, NewSelection(evaluated()))
	if err == nil || !strings.HasPrefix(err.Error(), "exclude_file:") {
		t.Fatalf("expected exclude_file error, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	steps := Default()
	if _, err := Run(context.Background(), &Config{MinimumFitScore: 75, ExcludeFile: filepath.Join(t.TempDir(), "none.json")}, Deps{}, steps, NewSelection(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statuses := Describe(steps)
	if len(statuses) != 4 {
		t.Fatalf("expected 4 statuses, got %d", len(statuses))
	}
	if statuses[0].Details["minimum_fit_score"] != "75" {
		t.Fatalf("unexpected min_score details %+v", statuses[0].Details)
	}
	if statuses[2].Details["path"] == "" {
		t.Fatalf("expected exclude file path in status")
	}
}
