// Package analytics computes pool-wide views over candidates: skill
// statistics, skill search, the skill matrix and pairwise comparison.
package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/spigell/candidate-ranker/internal/candidate"
)

const topSkillsLimit = 10

type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

type Statistics struct {
	TopSkills         []SkillCount `json:"topSkills"`
	TotalCandidates   int          `json:"totalCandidates"`
	AverageExperience float64      `json:"averageExperience"`
	TotalUniqueSkills int          `json:"totalUniqueSkills"`
}

// ComputeStatistics counts skills exactly as stored (case-sensitive). Skills
// with equal counts keep the order in which they were first seen. An empty
// pool yields zeroed statistics.
func ComputeStatistics(candidates []*candidate.Candidate) Statistics {
	counts := make(map[string]int)
	order := make([]string, 0)
	total := 0
	years := 0.0

	for _, c := range candidates {
		if c == nil {
			continue
		}
		total++
		years += c.YearsOfExperience

		for _, skill := range c.Skills {
			if _, seen := counts[skill]; !seen {
				order = append(order, skill)
			}
			counts[skill]++
		}
	}

	frequency := make([]SkillCount, 0, len(order))
	for _, skill := range order {
		frequency = append(frequency, SkillCount{Skill: skill, Count: counts[skill]})
	}
	slices.SortStableFunc(frequency, func(a, b SkillCount) int {
		return cmp.Compare(b.Count, a.Count)
	})

	stats := Statistics{
		TopSkills:         frequency[:min(len(frequency), topSkillsLimit)],
		TotalCandidates:   total,
		TotalUniqueSkills: len(order),
	}
	if total > 0 {
		stats.AverageExperience = math.Round(years/float64(total)*10) / 10
	}

	return stats
}
