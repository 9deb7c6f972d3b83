package skills

import (
	"crypto/sha256"
	"sync"
)

const defaultExtractorCapacity = 64

// Extractor memoizes Vocabulary.Extract per job description. It is safe for
// concurrent use.
type Extractor struct {
	vocabulary *Vocabulary
	capacity   int

	mu    sync.RWMutex
	cache map[[sha256.Size]byte][]string
}

func NewExtractor(vocabulary *Vocabulary, capacity int) *Extractor {
	if vocabulary == nil {
		vocabulary = NewVocabulary()
	}
	if capacity <= 0 {
		capacity = defaultExtractorCapacity
	}

	return &Extractor{
		vocabulary: vocabulary,
		capacity:   capacity,
		cache:      make(map[[sha256.Size]byte][]string),
	}
}

func (e *Extractor) Vocabulary() *Vocabulary {
	return e.vocabulary
}

// Extract returns the required skills for jobText. Callers must not modify the result.
func (e *Extractor) Extract(jobText string) []string {
	key := sha256.Sum256([]byte(jobText))

	e.mu.RLock()
	cached, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return cached
	}

	required := e.vocabulary.Extract(jobText)

	e.mu.Lock()
	defer e.mu.Unlock()

	// bounded: drop everything once full
	if len(e.cache) >= e.capacity {
		clear(e.cache)
	}
	e.cache[key] = required

	return required
}
