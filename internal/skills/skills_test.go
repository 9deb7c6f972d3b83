package skills

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		candidate string
		term      string
		expect    bool
	}{
		{"React.js", "react", true},
		{"react", "React Native", true},
		{"NODE.JS", "node", true},
		{"Python", "java", false},
		{"", "java", false},
		{"java", "  ", false},
		{"CI/CD", "ci/cd", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s~%s", tt.candidate, tt.term), func(t *testing.T) {
			assert.Equal(t, tt.expect, Matches(tt.candidate, tt.term))
		})
	}
}

func TestHasMatchAndCountContaining(t *testing.T) {
	candidateSkills := []string{"React", "React.js", "Node.js", "AWS"}

	assert.True(t, HasMatch(candidateSkills, "react"))
	assert.False(t, HasMatch(candidateSkills, "python"))
	assert.False(t, HasMatch(nil, "react"))

	assert.Equal(t, 2, CountContaining(candidateSkills, "react"))
	assert.Equal(t, 1, CountContaining(candidateSkills, "aws"))
	assert.Equal(t, 0, CountContaining(candidateSkills, ""))
}

func TestVocabularyExtractKeepsCatalogOrder(t *testing.T) {
	v := NewVocabulary()

	required := v.Extract("Looking for React and Python developer with AWS experience, 2+ years")
	assert.Equal(t, []string{"python", "react", "aws"}, required)

	assert.Empty(t, v.Extract(""))
	assert.Empty(t, v.Extract("Friendly barista wanted"))
	assert.NotNil(t, v.Extract(""))
}

func TestNewVocabularyExtendsDefaults(t *testing.T) {
	v := NewVocabulary(" Golang ", "REACT", "", "rust", "golang")

	require.Equal(t, len(DefaultVocabulary)+2, v.Len())
	terms := v.Terms()
	assert.Equal(t, "golang", terms[len(terms)-2])
	assert.Equal(t, "rust", terms[len(terms)-1])

	terms[0] = "mutated"
	assert.Equal(t, "javascript", v.Terms()[0])

	assert.Contains(t, v.Extract("We write Golang services"), "golang")
}

func TestExtractorMemoizesAndIsConcurrencySafe(t *testing.T) {
	e := NewExtractor(nil, 2)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			jd := fmt.Sprintf("docker and kubernetes #%d", i%4)
			assert.Equal(t, []string{"docker", "kubernetes"}, e.Extract(jd))
		}(i)
	}
	wg.Wait()

	e.mu.RLock()
	size := len(e.cache)
	e.mu.RUnlock()
	assert.LessOrEqual(t, size, 2)

	assert.True(t, strings.Contains(strings.Join(e.Extract("terraform"), ","), "terraform"))
}
