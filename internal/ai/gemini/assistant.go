package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/candidate"
	"github.com/spigell/candidate-ranker/internal/utils"
)

const (
	comparedSkills = 5

	assistantInstruction = `You are a recruitment assistant with access to a candidate database.
Always answer with specific information from the candidates listed below. Never make up or assume information.

When answering:
1. Use only the candidate data provided
2. Include actual names, skills and experience from the database
3. Be specific with numbers and details
4. If asked about skills, list the exact candidates who have those skills
5. If no candidates match, say so clearly

Available candidates in database:
%s

Total candidates: %d`
)

type instructedGenerator interface {
	GenerateWithInstruction(ctx context.Context, instruction, prompt string) (string, error)
}

// Comparer writes a short comparison of two candidates with Gemini.
type Comparer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewComparer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Comparer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Comparer{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

func (c *Comparer) Compare(ctx context.Context, a, b *candidate.Candidate) (string, error) {
	if a == nil || b == nil {
		return "", fmt.Errorf("two candidates are required")
	}

	prompt := fmt.Sprintf("Compare these candidates briefly (max 80 words):\n\n%s\n%s\n\n"+
		"Focus on: experience difference, 2-3 key skill differences, who's stronger overall. Be concise and professional.",
		compareLine(a), compareLine(b))

	out, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	c.logger.Debug("gemini comparison response",
		zap.String("first_id", a.ID),
		zap.String("second_id", b.ID),
		zap.String("response_preview", utils.TruncateForLog(out, c.maxLogLen)),
	)

	return out, nil
}

func compareLine(c *candidate.Candidate) string {
	return fmt.Sprintf("%s: %s years, Key skills: %s",
		c.Name, formatYears(c.YearsOfExperience), strings.Join(c.Skills[:min(len(c.Skills), comparedSkills)], ", "))
}

// Assistant answers free-form questions about the pool with Gemini.
type Assistant struct {
	generator instructedGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAssistant(generator instructedGenerator, logger *zap.Logger, maxLogLength int) *Assistant {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

func (a *Assistant) Answer(ctx context.Context, query string, pool []*candidate.Candidate) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("query must not be empty")
	}

	instruction := fmt.Sprintf(assistantInstruction, poolContext(pool), len(pool))

	a.logger.Debug("gemini assistant request",
		zap.Int("candidates", len(pool)),
		zap.String("query_preview", utils.TruncateForLog(query, a.maxLogLen)),
	)

	return a.generator.GenerateWithInstruction(ctx, instruction, query)
}

func poolContext(pool []*candidate.Candidate) string {
	blocks := make([]string, 0, len(pool))
	for i, c := range pool {
		if c == nil {
			continue
		}
		location := c.Location
		if location == "" {
			location = "Not specified"
		}
		blocks = append(blocks, fmt.Sprintf("Candidate %d: %s\n  Skills: %s\n  Experience: %s years\n  Education: %s\n  Email: %s\n  Location: %s",
			i+1, c.Name, strings.Join(c.Skills, ", "), formatYears(c.YearsOfExperience), c.Education, c.Email, location))
	}
	return strings.Join(blocks, "\n\n")
}

func formatYears(years float64) string {
	return strconv.FormatFloat(years, 'f', -1, 64)
}
