package analytics

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/candidate"
)

const (
	notableExperienceGap = 2
	uniqueSkillsShown    = 2
)

// Comparer writes a short comparison of two candidates.
type Comparer interface {
	Compare(ctx context.Context, a, b *candidate.Candidate) (string, error)
}

// LocalComparer implements Comparer with CompareLocally.
type LocalComparer struct{}

func (LocalComparer) Compare(_ context.Context, a, b *candidate.Candidate) (string, error) {
	return CompareLocally(a, b), nil
}

// CompareLocally summarizes experience and skill differences between a and b.
// When experience is equal, a is reported as stronger.
func CompareLocally(a, b *candidate.Candidate) string {
	if a == nil {
		a = &candidate.Candidate{}
	}
	if b == nil {
		b = &candidate.Candidate{}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s years) vs %s (%s years). ",
		a.Name, formatYears(a.YearsOfExperience), b.Name, formatYears(b.YearsOfExperience))

	diff := b.YearsOfExperience - a.YearsOfExperience
	if math.Abs(diff) >= notableExperienceGap {
		more := a.Name
		if diff > 0 {
			more = b.Name
		}
		fmt.Fprintf(&sb, "%s has %s more years experience. ", more, formatYears(math.Abs(diff)))
	}

	if unique := uniqueSkills(a.Skills, b.Skills); len(unique) > 0 {
		fmt.Fprintf(&sb, "%s brings %s. ", a.Name, strings.Join(unique, ", "))
	}
	if unique := uniqueSkills(b.Skills, a.Skills); len(unique) > 0 {
		fmt.Fprintf(&sb, "%s has %s. ", b.Name, strings.Join(unique, ", "))
	}

	stronger := a.Name
	if b.YearsOfExperience > a.YearsOfExperience {
		stronger = b.Name
	}
	fmt.Fprintf(&sb, "%s appears stronger overall.", stronger)

	return sb.String()
}

// CompareWithFallback asks comparer first and falls back to CompareLocally on
// any error or empty answer. A nil comparer compares locally.
func CompareWithFallback(ctx context.Context, comparer Comparer, a, b *candidate.Candidate, logger *zap.Logger) string {
	if comparer == nil {
		return CompareLocally(a, b)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	text, err := comparer.Compare(ctx, a, b)
	if err == nil && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}

	logger.Warn("comparison failed, using local comparison", zap.Error(err))
	return CompareLocally(a, b)
}

// uniqueSkills returns the first skills of own absent (case-insensitively) from other.
func uniqueSkills(own, other []string) []string {
	theirs := make(map[string]struct{}, len(other))
	for _, s := range other {
		theirs[strings.ToLower(s)] = struct{}{}
	}

	unique := make([]string, 0, uniqueSkillsShown)
	for _, s := range own {
		if _, ok := theirs[strings.ToLower(s)]; ok {
			continue
		}
		unique = append(unique, s)
		if len(unique) == uniqueSkillsShown {
			break
		}
	}

	return unique
}

func formatYears(years float64) string {
	return strconv.FormatFloat(years, 'f', -1, 64)
}
