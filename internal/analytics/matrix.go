package analytics

import (
	"slices"

	"github.com/spigell/candidate-ranker/internal/candidate"
)

type MatrixRow struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Skills map[string]bool `json:"skills"`
}

// Matrix marks, for every candidate, which pool skills they list.
type Matrix struct {
	Skills     []string    `json:"skills"`
	Candidates []MatrixRow `json:"candidates"`
}

// BuildMatrix collects the distinct skills of the pool, sorted, and records
// exact (case-sensitive) membership per candidate.
func BuildMatrix(candidates []*candidate.Candidate) Matrix {
	unique := make(map[string]struct{})
	for _, c := range candidates {
		if c == nil {
			continue
		}
		for _, skill := range c.Skills {
			unique[skill] = struct{}{}
		}
	}

	all := make([]string, 0, len(unique))
	for skill := range unique {
		all = append(all, skill)
	}
	slices.Sort(all)

	m := Matrix{
		Skills:     all,
		Candidates: make([]MatrixRow, 0, len(candidates)),
	}

	for _, c := range candidates {
		if c == nil {
			continue
		}

		row := MatrixRow{ID: c.ID, Name: c.Name, Skills: make(map[string]bool, len(all))}
		for _, skill := range all {
			row.Skills[skill] = slices.Contains(c.Skills, skill)
		}
		m.Candidates = append(m.Candidates, row)
	}

	return m
}

// Has reports whether the candidate in row i lists skill.
func (m Matrix) Has(i int, skill string) bool {
	if i < 0 || i >= len(m.Candidates) {
		return false
	}
	return m.Candidates[i].Skills[skill]
}
