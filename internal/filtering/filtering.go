// Package filtering narrows a ranked candidate list down to the outreach selection.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/scoring"
)

// DefaultMinimumFitScore is the outreach threshold.
const DefaultMinimumFitScore = 60

// Filter represents a single filtering step applied to evaluated candidates.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, s *Selection) (*Selection, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains settings consumed by the filters.
type Config struct {
	MinimumFitScore   int
	MinimumExperience float64
	ExcludeFile       string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Selection is the ranked list being filtered. Filters keep its order.
type Selection struct {
	Items []scoring.EvaluatedCandidate
}

func NewSelection(evaluated []scoring.EvaluatedCandidate) *Selection {
	items := make([]scoring.EvaluatedCandidate, len(evaluated))
	copy(items, evaluated)
	return &Selection{Items: items}
}

func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}

func (s *Selection) IDs() []string {
	ids := make([]string, 0, s.Len())
	for _, ec := range s.Items {
		ids = append(ids, ec.ID)
	}
	return ids
}

// Drop removes candidates matching the predicate and returns their ids.
func (s *Selection) Drop(match func(ec *scoring.EvaluatedCandidate) bool) []string {
	var dropped []string
	kept := s.Items[:0]
	for i := range s.Items {
		if match(&s.Items[i]) {
			dropped = append(dropped, s.Items[i].ID)
			continue
		}
		kept = append(kept, s.Items[i])
	}
	s.Items = kept
	return dropped
}

// Default returns every step in execution order.
func Default() []Filter {
	return []Filter{
		NewMinScore(),
		NewMinExperience(),
		NewExcludeFile(),
		NewNoInterns(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Validate configures every enabled step from cfg. A nil cfg applies the defaults.
func Validate(cfg *Config, steps []Filter) error {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return nil
}

// Run validates every enabled step and then applies them in order.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, s *Selection) (*Selection, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	if err := Validate(cfg, steps); err != nil {
		return nil, err
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		s = next
	}

	return s, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// toggle carries the enable/disable state shared by all steps.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }
