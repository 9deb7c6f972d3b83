package skills

import "strings"

// Matches reports whether a candidate skill and a requested term refer to the
// same skill: either one contains the other after lowercasing. Blank values
// never match.
func Matches(candidateSkill, term string) bool {
	a := strings.ToLower(strings.TrimSpace(candidateSkill))
	b := strings.ToLower(strings.TrimSpace(term))
	if a == "" || b == "" {
		return false
	}

	return strings.Contains(a, b) || strings.Contains(b, a)
}

// HasMatch reports whether any of the candidate skills matches term.
func HasMatch(candidateSkills []string, term string) bool {
	for _, skill := range candidateSkills {
		if Matches(skill, term) {
			return true
		}
	}
	return false
}

// CountContaining returns how many candidate skills contain term, ignoring case.
func CountContaining(candidateSkills []string, term string) int {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return 0
	}

	count := 0
	for _, skill := range candidateSkills {
		if strings.Contains(strings.ToLower(skill), term) {
			count++
		}
	}
	return count
}
