package scoring

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spigell/candidate-ranker/internal/candidate"
	"github.com/spigell/candidate-ranker/internal/skills"
)

// Component caps of the local formula.
const (
	maxSkillMatchPoints  = 40.0
	neutralSkillPoints   = 20.0
	maxExperiencePoints  = 25.0
	pointsPerYear        = 4.0
	maxBreadthPoints     = 15.0
	breadthSkillsCeiling = 20.0
	maxDensityPoints     = 10.0

	advancedDegreePoints = 10.0
	bachelorDegreePoints = 8.0
	baseEducationPoints  = 5.0

	defaultJitter = 2.0

	maxStrengths = 5
	maxGaps      = 3
)

var (
	advancedDegreeMarkers = []string{"master", "phd"}
	bachelorDegreeMarkers = []string{"bachelor", "b.tech", "b.e"}
)

// RandomSource yields uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// Option configures a LocalScorer.
type Option func(*LocalScorer)

// WithExtractor shares a required-skills extractor, e.g. one built from a custom vocabulary.
func WithExtractor(extractor *skills.Extractor) Option {
	return func(s *LocalScorer) {
		if extractor != nil {
			s.extractor = extractor
		}
	}
}

// WithRandom sets the source used for the tie-break adjustment.
func WithRandom(src RandomSource) Option {
	return func(s *LocalScorer) {
		if src != nil {
			s.rnd = src
		}
	}
}

// WithSeed makes the tie-break adjustment reproducible.
func WithSeed(seed uint64) Option {
	return WithRandom(rand.New(rand.NewPCG(seed, seed)))
}

// WithJitter sets the amplitude of the tie-break adjustment. Negative values are ignored.
func WithJitter(amplitude float64) Option {
	return func(s *LocalScorer) {
		if amplitude >= 0 {
			s.jitter = amplitude
		}
	}
}

// WithoutJitter disables the tie-break adjustment.
func WithoutJitter() Option {
	return WithJitter(0)
}

// LocalScorer implements FitScorer with a weighted keyword formula. It never
// returns an error. Scores of repeated calls differ by up to twice the jitter
// amplitude.
type LocalScorer struct {
	extractor *skills.Extractor
	jitter    float64

	mu  sync.Mutex
	rnd RandomSource
}

func NewLocalScorer(opts ...Option) *LocalScorer {
	now := uint64(time.Now().UnixNano())
	s := &LocalScorer{
		extractor: skills.NewExtractor(nil, 0),
		jitter:    defaultJitter,
		rnd:       rand.New(rand.NewPCG(now, now>>1)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Breakdown holds the deterministic parts of a local score.
type Breakdown struct {
	Required []string
	Matched  []string
	// Missing is Required without Matched, uncapped.
	Missing []string

	SkillMatch float64
	Experience float64
	Breadth    float64
	Education  float64
	Density    float64
}

// Base is the score before the tie-break adjustment and clamping.
func (b Breakdown) Base() float64 {
	return b.SkillMatch + b.Experience + b.Breadth + b.Education + b.Density
}

// Breakdown computes every component of the formula for c against jobDescription.
func (s *LocalScorer) Breakdown(jobDescription string, c *candidate.Candidate) Breakdown {
	if c == nil {
		c = &candidate.Candidate{}
	}

	required := s.extractor.Extract(jobDescription)

	b := Breakdown{
		Required: required,
		Matched:  make([]string, 0, len(required)),
		Missing:  make([]string, 0, len(required)),
	}

	for _, term := range required {
		if skills.HasMatch(c.Skills, term) {
			b.Matched = append(b.Matched, term)
		} else {
			b.Missing = append(b.Missing, term)
		}
	}

	if len(required) > 0 {
		b.SkillMatch = maxSkillMatchPoints * float64(len(b.Matched)) / float64(len(required))
	} else {
		b.SkillMatch = neutralSkillPoints
	}

	b.Experience = math.Min(math.Max(c.YearsOfExperience, 0)*pointsPerYear, maxExperiencePoints)
	b.Breadth = math.Min(float64(len(c.Skills))/breadthSkillsCeiling*maxBreadthPoints, maxBreadthPoints)
	b.Education = EducationPoints(c.Education)
	b.Density = densityPoints(c.Skills, b.Matched)

	return b
}

// Score implements FitScorer.
func (s *LocalScorer) Score(_ context.Context, jobDescription string, c *candidate.Candidate) (*FitResult, error) {
	if c == nil {
		c = &candidate.Candidate{}
	}

	b := s.Breakdown(jobDescription, c)

	total := b.Base() + s.adjustment()
	total = math.Max(0, math.Min(100, total))

	return &FitResult{
		Score: int(math.Round(total)),
		Explanation: fmt.Sprintf("Matched %d/%d key skills with %s years experience. %d total skills identified.",
			len(b.Matched), len(b.Required), formatYears(c.YearsOfExperience), len(c.Skills)),
		Strengths: head(b.Matched, maxStrengths),
		Gaps:      head(b.Missing, maxGaps),
	}, nil
}

func (s *LocalScorer) adjustment() float64 {
	if s.jitter == 0 {
		return 0
	}

	s.mu.Lock()
	u := s.rnd.Float64()
	s.mu.Unlock()

	return s.jitter * (2*u - 1)
}

// EducationPoints classifies a free-text education entry.
func EducationPoints(education string) float64 {
	lower := strings.ToLower(education)

	for _, marker := range advancedDegreeMarkers {
		if strings.Contains(lower, marker) {
			return advancedDegreePoints
		}
	}
	for _, marker := range bachelorDegreeMarkers {
		if strings.Contains(lower, marker) {
			return bachelorDegreePoints
		}
	}

	return baseEducationPoints
}

// densityPoints averages how many raw skill entries mention each matched term.
func densityPoints(candidateSkills, matched []string) float64 {
	if len(matched) == 0 {
		return 0
	}

	occurrences := 0
	for _, term := range matched {
		occurrences += skills.CountContaining(candidateSkills, term)
	}

	avg := float64(occurrences) / float64(len(matched))
	return math.Min(avg*maxDensityPoints, maxDensityPoints)
}

func head(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	return append([]string{}, items...)
}

func formatYears(years float64) string {
	return strconv.FormatFloat(years, 'f', -1, 64)
}
