package candidate

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// ExcludedCandidates is the on-disk list of candidates already contacted.
type ExcludedCandidates struct {
	Items []*ExcludedCandidate
}

type ExcludedCandidate struct {
	ID         string
	Name       string
	Email      string
	FitScore   int
	ExcludedAt time.Time
}

func NewExcluded(c *Candidate, fitScore int) *ExcludedCandidate {
	return &ExcludedCandidate{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		FitScore:   fitScore,
		ExcludedAt: time.Now().UTC(),
	}
}

// GetExcludedFromFile reads the exclude file. A missing or empty file yields an empty list.
func GetExcludedFromFile(path string) (*ExcludedCandidates, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ExcludedCandidates{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedCandidates{}, nil
	}

	var excluded ExcludedCandidates
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedCandidates) Append(items ...*ExcludedCandidate) {
	e.Items = append(e.Items, items...)
}

func (e *ExcludedCandidates) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (e *ExcludedCandidates) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
