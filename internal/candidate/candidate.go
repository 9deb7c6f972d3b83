package candidate

import "strings"

// Candidate is a parsed resume record. Scoring code only reads it.
type Candidate struct {
	ID                string   `json:"id" mapstructure:"id"`
	Filename          string   `json:"filename,omitempty" mapstructure:"filename"`
	SourceLink        string   `json:"sourceLink,omitempty" mapstructure:"sourceLink"`
	Name              string   `json:"name" mapstructure:"name"`
	Email             string   `json:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`
	Phone             string   `json:"phone,omitempty" mapstructure:"phone"`
	Location          string   `json:"location,omitempty" mapstructure:"location"`
	Skills            []string `json:"skills" mapstructure:"skills"`
	YearsOfExperience float64  `json:"yearsOfExperience" mapstructure:"yearsOfExperience" validate:"gte=0"`
	Education         string   `json:"education,omitempty" mapstructure:"education"`
	Experience        string   `json:"experience,omitempty" mapstructure:"experience"`

	ProfileLinks map[string]string `json:"profileLinks,omitempty" mapstructure:"profileLinks"`
}

// Internships counts mentions of "intern" in the experience narrative.
func (c *Candidate) Internships() int {
	return strings.Count(strings.ToLower(c.Experience), "intern")
}

// ActiveProfiles counts non-empty profile links.
func (c *Candidate) ActiveProfiles() int {
	n := 0
	for _, link := range c.ProfileLinks {
		if strings.TrimSpace(link) != "" {
			n++
		}
	}
	return n
}

type Pool struct {
	Items []*Candidate
}

func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

func (p *Pool) Names() []string {
	names := make([]string, 0, p.Len())
	for _, c := range p.Items {
		names = append(names, c.Name)
	}
	return names
}

// FindByName returns the first candidate whose name equals the given one, ignoring case.
func (p *Pool) FindByName(name string) *Candidate {
	name = strings.TrimSpace(name)
	for _, c := range p.Items {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func (p *Pool) FindByID(id string) *Candidate {
	for _, c := range p.Items {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Exclude removes candidates with the given ids, keeping the order of the rest.
// It returns ids that were actually removed.
func (p *Pool) Exclude(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}

	targets := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		targets[id] = struct{}{}
	}

	var removed []string
	kept := p.Items[:0]
	for _, c := range p.Items {
		if _, ok := targets[c.ID]; ok {
			removed = append(removed, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	p.Items = kept

	return removed
}
