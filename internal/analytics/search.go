package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/spigell/candidate-ranker/internal/candidate"
	"github.com/spigell/candidate-ranker/internal/skills"
)

// SkillMatch is a candidate annotated with the requested skills it covers.
type SkillMatch struct {
	candidate.Candidate

	MatchedSkills   []string `json:"matchedSkills"`
	MatchCount      int      `json:"matchCount"`
	MatchPercentage float64  `json:"matchPercentage"`
}

// FindBySkills returns candidates covering at least one requested skill,
// ordered by match count descending. Requested skills are compared
// lowercased and reported in the order given. Blank entries never match but
// still count towards the percentage denominator.
func FindBySkills(candidates []*candidate.Candidate, requested []string) []SkillMatch {
	terms := make([]string, 0, len(requested))
	for _, r := range requested {
		if t := strings.ToLower(strings.TrimSpace(r)); t != "" {
			terms = append(terms, t)
		}
	}

	matches := make([]SkillMatch, 0)
	if len(terms) == 0 {
		return matches
	}

	for _, c := range candidates {
		if c == nil {
			continue
		}

		matched := make([]string, 0, len(terms))
		for _, term := range terms {
			if skills.HasMatch(c.Skills, term) {
				matched = append(matched, term)
			}
		}
		if len(matched) == 0 {
			continue
		}

		matches = append(matches, SkillMatch{
			Candidate:       *c,
			MatchedSkills:   matched,
			MatchCount:      len(matched),
			MatchPercentage: float64(len(matched)) / float64(len(requested)) * 100,
		})
	}

	slices.SortStableFunc(matches, func(a, b SkillMatch) int {
		return cmp.Compare(b.MatchCount, a.MatchCount)
	})

	return matches
}
