package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/candidate-ranker/internal/logger"
)

const (
	Provider = "gemini"

	defaultModel       = "gemini-2.5-flash"
	defaultMaxRetries  = 3
	defaultTemperature = 0.3
	maxRetryElapsed    = 30 * time.Second
)

type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newBackOff = func() backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime = maxRetryElapsed
	return expo
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	models     contentModels
	modelName  string
	maxRetries uint64
	logger     *zap.Logger
}

type GeneratorOption func(*Generator)

// WithMaxRetries sets how many times a transient API error is retried.
func WithMaxRetries(n int) GeneratorOption {
	return func(g *Generator) {
		if n >= 0 {
			g.maxRetries = uint64(n)
		}
	}
}

func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, opts ...GeneratorOption) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model, opts...), nil
}

func newGenerator(models contentModels, model string, opts ...GeneratorOption) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	g := &Generator{
		models:     models,
		modelName:  model,
		maxRetries: defaultMaxRetries,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(g)
	}

	g.logger = logger.WithCommonFields(g.logger, Provider, g.modelName)

	return g
}

// GenerateContent sends the prompt to Gemini and returns the first textual response.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return g.generateContent(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](defaultTemperature),
	})
}

// GenerateWithInstruction sends the prompt under a system instruction.
func (g *Generator) GenerateWithInstruction(ctx context.Context, instruction, prompt string) (string, error) {
	return g.generateContent(ctx, prompt, withInstruction(&genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](defaultTemperature),
	}, instruction))
}

// GenerateJSON asks for a JSON-only response under the given system instruction.
func (g *Generator) GenerateJSON(ctx context.Context, instruction, prompt string) (string, error) {
	return g.generateContent(ctx, prompt, withInstruction(&genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](defaultTemperature),
		ResponseMIMEType: "application/json",
	}, instruction))
}

func withInstruction(cfg *genai.GenerateContentConfig, instruction string) *genai.GenerateContentConfig {
	if instruction = strings.TrimSpace(instruction); instruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}
	return cfg
}

func (g *Generator) generateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var resp *genai.GenerateContentResponse
	attempt := 0

	op := func() error {
		attempt++

		var err error
		resp, err = g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
		if err == nil {
			return nil
		}
		if !isTemporary(err) {
			return backoff.Permanent(err)
		}

		g.logger.Warn("gemini temporary error", zap.Int("attempt", attempt), zap.Error(err))
		return err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), g.maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := responseText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

// isTemporary reports rate limiting and server-side failures.
func isTemporary(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}

	var ptrErr *genai.APIError
	if errors.As(err, &ptrErr) && ptrErr != nil {
		return ptrErr.Code == http.StatusTooManyRequests || ptrErr.Code >= http.StatusInternalServerError
	}

	return false
}
