package candidate

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a candidates file. Both a top-level JSON array and an object with
// a "candidates" array are accepted.
func Load(path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidates file %q: %w", path, err)
	}

	records, err := parseRecords(data)
	if err != nil {
		return nil, fmt.Errorf("parsing candidates file %q: %w", path, err)
	}

	return Decode(records)
}

func parseRecords(data []byte) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var records []map[string]any
		if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var wrapped struct {
		Candidates []map[string]any `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Candidates, nil
}

// Decode converts loosely typed records (numbers as strings, comma separated
// skills) into candidates. Records without an id get a generated one.
func Decode(records []map[string]any) (*Pool, error) {
	pool := &Pool{Items: make([]*Candidate, 0, len(records))}

	for idx, record := range records {
		var c Candidate
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
			WeaklyTypedInput: true,
			Result:           &c,
		})
		if err != nil {
			return nil, fmt.Errorf("building decoder: %w", err)
		}

		if err := decoder.Decode(record); err != nil {
			return nil, fmt.Errorf("decoding candidate #%d: %w", idx, err)
		}

		c.normalize()

		if err := validate.Struct(&c); err != nil {
			return nil, fmt.Errorf("validating candidate #%d (%s): %w", idx, c.Name, err)
		}

		if c.ID == "" {
			c.ID = uuid.NewString()
		}

		pool.Items = append(pool.Items, &c)
	}

	return pool, nil
}

func (c *Candidate) normalize() {
	c.ID = strings.TrimSpace(c.ID)
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)

	skills := make([]string, 0, len(c.Skills))
	for _, skill := range c.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	c.Skills = skills
}
