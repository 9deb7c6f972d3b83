// Package skills holds the recognized skill catalog and the matching rules
// used to compare job descriptions with candidate skill lists.
package skills

import "strings"

// DefaultVocabulary is the catalog of recognized skill terms. Order matters:
// extraction returns terms in this order.
var DefaultVocabulary = []string{
	"javascript", "python", "java", "react", "node", "aws", "sql", "docker",
	"kubernetes", "typescript", "angular", "vue", "mongodb", "postgresql",
	"redis", "graphql", "rest", "api", "microservices", "devops", "ci/cd",
	"git", "agile", "scrum", "machine learning", "ai", "data science",
	"cloud", "azure", "gcp", "linux", "jenkins", "terraform", "ansible",
}

// Vocabulary is an immutable, lowercased list of skill terms.
type Vocabulary struct {
	terms []string
}

// NewVocabulary returns DefaultVocabulary extended with extra terms.
// Extra terms are lowercased and trimmed; blanks and duplicates are skipped.
func NewVocabulary(extra ...string) *Vocabulary {
	terms := make([]string, 0, len(DefaultVocabulary)+len(extra))
	seen := make(map[string]struct{}, cap(terms))

	for _, term := range append(append([]string{}, DefaultVocabulary...), extra...) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	return &Vocabulary{terms: terms}
}

func (v *Vocabulary) Terms() []string {
	return append([]string(nil), v.terms...)
}

func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Extract returns the vocabulary terms mentioned anywhere in text, in vocabulary order.
func (v *Vocabulary) Extract(text string) []string {
	lower := strings.ToLower(text)
	required := make([]string, 0)
	if strings.TrimSpace(lower) == "" {
		return required
	}

	for _, term := range v.terms {
		if strings.Contains(lower, term) {
			required = append(required, term)
		}
	}

	return required
}
