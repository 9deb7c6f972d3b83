package analytics

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/spigell/candidate-ranker/internal/candidate"
)

// ProfileSort selects the key RankProfiles orders by.
type ProfileSort string

const (
	SortByExperience  ProfileSort = "experience"
	SortByInternships ProfileSort = "internships"
	SortByCombined    ProfileSort = "combined"
	SortByActivity    ProfileSort = "activity"

	pointsPerYear       = 10
	pointsPerInternship = 5
	pointsPerProfile    = 2
)

// ProfileRank is a job-independent ranking entry.
type ProfileRank struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	YearsOfExperience float64           `json:"yearsOfExperience"`
	Internships       int               `json:"internships"`
	ActivityBoost     int               `json:"activityBoost"`
	CombinedScore     float64           `json:"combinedScore"`
	Skills            []string          `json:"skills"`
	Education         string            `json:"education,omitempty"`
	ProfileLinks      map[string]string `json:"profileLinks,omitempty"`
}

func ParseProfileSort(s string) (ProfileSort, error) {
	switch ps := ProfileSort(s); ps {
	case SortByExperience, SortByInternships, SortByCombined, SortByActivity:
		return ps, nil
	case "":
		return SortByCombined, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// RankProfiles scores candidates without a job description: ten points per
// year, five per internship mention and two per active profile link. The
// result is stably sorted descending by the chosen key.
func RankProfiles(candidates []*candidate.Candidate, by ProfileSort) []ProfileRank {
	ranks := make([]ProfileRank, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}

		internships := c.Internships()
		boost := c.ActiveProfiles() * pointsPerProfile

		ranks = append(ranks, ProfileRank{
			ID:                c.ID,
			Name:              c.Name,
			YearsOfExperience: c.YearsOfExperience,
			Internships:       internships,
			ActivityBoost:     boost,
			CombinedScore:     c.YearsOfExperience*pointsPerYear + float64(internships*pointsPerInternship+boost),
			Skills:            c.Skills,
			Education:         c.Education,
			ProfileLinks:      c.ProfileLinks,
		})
	}

	slices.SortStableFunc(ranks, func(a, b ProfileRank) int {
		switch by {
		case SortByExperience:
			return cmp.Compare(b.YearsOfExperience, a.YearsOfExperience)
		case SortByInternships:
			return cmp.Compare(b.Internships, a.Internships)
		case SortByActivity:
			return cmp.Compare(b.ActivityBoost, a.ActivityBoost)
		default:
			return cmp.Compare(b.CombinedScore, a.CombinedScore)
		}
	})

	return ranks
}
