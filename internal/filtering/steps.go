package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/candidate"
	"github.com/spigell/candidate-ranker/internal/scoring"
)

type minScoreFilter struct {
	toggle
	threshold int
}

// NewMinScore drops candidates scoring below the configured threshold.
func NewMinScore() Filter {
	return &minScoreFilter{threshold: DefaultMinimumFitScore}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.threshold = DefaultMinimumFitScore
	if cfg != nil {
		f.threshold = cfg.MinimumFitScore
	}
	if f.threshold < 0 || f.threshold > 100 {
		return fmt.Errorf("minimum fit score must be within 0..100, got %d", f.threshold)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, s *Selection) (*Selection, Step, error) {
	initial := s.Len()
	kept := scoring.AboveThreshold(s.Items, f.threshold)
	dropped := make([]string, 0, initial-len(kept))
	for _, ec := range s.Items {
		if ec.FitScore < f.threshold {
			dropped = append(dropped, ec.ID)
		}
	}
	s.Items = kept

	if len(dropped) > 0 {
		deps.Logger.Info("excluding candidates below fit threshold",
			zap.Int("threshold", f.threshold),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", s.Len()),
		)
	}

	return s, Step{Initial: initial, Dropped: len(dropped), Left: s.Len()}, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_fit_score": strconv.Itoa(f.threshold)},
	}
}

type minExperienceFilter struct {
	toggle
	years float64
}

// NewMinExperience drops candidates with fewer years than configured. Zero keeps everyone.
func NewMinExperience() Filter {
	return &minExperienceFilter{}
}

func (f *minExperienceFilter) Name() string { return "min_experience" }

func (f *minExperienceFilter) Validate(cfg *Config) error {
	f.years = 0
	if cfg != nil {
		f.years = cfg.MinimumExperience
	}
	if f.years < 0 {
		return fmt.Errorf("minimum experience must not be negative")
	}
	return nil
}

func (f *minExperienceFilter) Apply(_ context.Context, deps Deps, s *Selection) (*Selection, Step, error) {
	initial := s.Len()
	if f.years == 0 {
		return s, Step{Initial: initial, Left: initial}, nil
	}

	dropped := s.Drop(func(ec *scoring.EvaluatedCandidate) bool {
		return ec.YearsOfExperience < f.years
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding candidates by experience",
			zap.Float64("minimum_years", f.years),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", s.Len()),
		)
	}

	return s, Step{Initial: initial, Dropped: len(dropped), Left: s.Len()}, nil
}

func (f *minExperienceFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_years": strconv.FormatFloat(f.years, 'f', -1, 64)},
	}
}

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile drops candidates already recorded in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, s *Selection) (*Selection, Step, error) {
	initial := s.Len()
	if f.path == "" {
		return s, Step{Initial: initial, Left: initial}, nil
	}

	excluded, err := candidate.GetExcludedFromFile(f.path)
	if err != nil {
		return s, Step{}, fmt.Errorf("getting excluded candidates from file: %w", err)
	}

	ids := make(map[string]struct{}, len(excluded.Items))
	for _, id := range excluded.IDs() {
		ids[id] = struct{}{}
	}

	removed := s.Drop(func(ec *scoring.EvaluatedCandidate) bool {
		_, ok := ids[ec.ID]
		return ok
	})
	if len(removed) > 0 {
		deps.Logger.Info("excluding candidates based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", s.Len()),
		)
	}

	return s, Step{Initial: initial, Dropped: len(removed), Left: s.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type noInternsFilter struct {
	toggle
}

// NewNoInterns drops candidates whose experience narrative mentions an internship.
func NewNoInterns() Filter {
	return &noInternsFilter{}
}

func (f *noInternsFilter) Name() string { return "no_interns" }

func (f *noInternsFilter) Validate(*Config) error { return nil }

func (f *noInternsFilter) Apply(_ context.Context, deps Deps, s *Selection) (*Selection, Step, error) {
	initial := s.Len()
	dropped := s.Drop(func(ec *scoring.EvaluatedCandidate) bool {
		return ec.Internships() > 0
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding intern candidates",
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", s.Len()),
		)
	}

	return s, Step{Initial: initial, Dropped: len(dropped), Left: s.Len()}, nil
}

func (f *noInternsFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
