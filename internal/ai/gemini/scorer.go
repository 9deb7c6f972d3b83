package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/candidate"
	"github.com/spigell/candidate-ranker/internal/logger"
	"github.com/spigell/candidate-ranker/internal/scoring"
	"github.com/spigell/candidate-ranker/internal/utils"
)

// ErrMalformedResponse marks model output that is not a usable FitResult.
var ErrMalformedResponse = errors.New("malformed gemini response")

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, instruction, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

//go:embed fit_schema.json
var fitSchema string

const (
	defaultMaxLogLength = 200
	maxSummaryRunes     = 500

	scoringInstruction = "You are a recruitment assistant scoring candidates against job descriptions. Use only the data provided."
)

var fitSchemaLoader = gojsonschema.NewStringLoader(fitSchema)

// Scorer asks Gemini for a FitResult. It implements scoring.FitScorer.
type Scorer struct {
	generator jsonGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator jsonGenerator, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) Score(ctx context.Context, jobDescription string, c *candidate.Candidate) (*scoring.FitResult, error) {
	if c == nil {
		return nil, fmt.Errorf("candidate is required")
	}

	prompt := buildPrompt(jobDescription, c)

	s.logger.Debug("gemini fit score request",
		zap.String("candidate_id", c.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateJSON(ctx, scoringInstruction, prompt)
	if err != nil {
		return nil, err
	}

	result, err := parseFitResult(raw)
	if err != nil {
		s.logger.Debug("gemini fit score response rejected",
			zap.String("candidate_id", c.ID),
			zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Debug("gemini fit score response", append(logger.CandidateFields(c.ID, c.Name, result.Score),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)...)

	return result, nil
}

func buildPrompt(jobDescription string, c *candidate.Candidate) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job Description:\n{{JOB_DESCRIPTION}}\n\nCandidate: {{NAME}}, skills {{SKILLS}}, {{YEARS}} years.\n\nJSON Response:"
	}

	r := strings.NewReplacer(
		"{{JOB_DESCRIPTION}}", strings.TrimSpace(jobDescription),
		"{{NAME}}", c.Name,
		"{{SKILLS}}", strings.Join(c.Skills, ", "),
		"{{YEARS}}", formatYears(c.YearsOfExperience),
		"{{EDUCATION}}", c.Education,
		"{{SUMMARY}}", utils.TruncateRunes(c.Experience, maxSummaryRunes),
	)
	return r.Replace(template)
}

type fitPayload struct {
	Score       float64  `json:"score"`
	Explanation string   `json:"explanation"`
	Strengths   []string `json:"strengths"`
	Gaps        []string `json:"gaps"`
}

func parseFitResult(raw string) (*scoring.FitResult, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	result, err := gojsonschema.Validate(fitSchemaLoader, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(details, "; "))
	}

	var payload fitPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	score := math.Round(math.Max(0, math.Min(100, payload.Score)))

	return &scoring.FitResult{
		Score:       int(score),
		Explanation: strings.TrimSpace(payload.Explanation),
		Strengths:   nonNil(payload.Strengths),
		Gaps:        nonNil(payload.Gaps),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
