package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/candidate"
)

type stubGenerator struct {
	response        string
	err             error
	lastPrompt      string
	lastInstruction string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	return s.response, s.err
}

func (s *stubGenerator) GenerateJSON(_ context.Context, instruction, prompt string) (string, error) {
	s.lastInstruction = instruction
	s.lastPrompt = prompt
	return s.response, s.err
}

func (s *stubGenerator) GenerateWithInstruction(_ context.Context, instruction, prompt string) (string, error) {
	s.lastInstruction = instruction
	s.lastPrompt = prompt
	return s.response, s.err
}

func jane() *candidate.Candidate {
	return &candidate.Candidate{
		ID:                "c1",
		Name:              "Jane Doe",
		Email:             "jane@example.com",
		Skills:            []string{"React", "Node.js", "AWS"},
		YearsOfExperience: 3.5,
		Education:         "Bachelor of Science",
		Experience:        strings.Repeat("é", 800),
	}
}

func TestScorerScore(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"score\": 84.6, \"explanation\": \" Strong React background. \", \"strengths\": [\"react\"], \"gaps\": [\"python\"]}\n```"}
	s := NewScorer(stub, zap.NewNop(), 0)

	result, err := s.Score(context.Background(), "React and Python developer", jane())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score != 85 {
		t.Fatalf("expected rounded score 85, got %d", result.Score)
	}
	if result.Explanation != "Strong React background." {
		t.Fatalf("unexpected explanation %q", result.Explanation)
	}
	if len(result.Strengths) != 1 || result.Strengths[0] != "react" {
		t.Fatalf("unexpected strengths %v", result.Strengths)
	}
	if len(result.Gaps) != 1 || result.Gaps[0] != "python" {
		t.Fatalf("unexpected gaps %v", result.Gaps)
	}
	if stub.lastInstruction == "" {
		t.Fatal("expected system instruction to be sent")
	}

	for _, want := range []string{
		"React and Python developer",
		"Name: Jane Doe",
		"Skills: React, Node.js, AWS",
		"Experience: 3.5 years",
		"Education: Bachelor of Science",
	} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("expected prompt to contain %q", want)
		}
	}

	if strings.Contains(stub.lastPrompt, strings.Repeat("é", 501)) {
		t.Fatal("expected experience summary to be truncated to 500 runes")
	}
	if !strings.Contains(stub.lastPrompt, "Summary: "+strings.Repeat("é", 500)+"\n") {
		t.Fatal("expected 500 rune summary")
	}
}

func TestScorerClampsScore(t *testing.T) {
	tests := []struct {
		response string
		want     int
	}{
		{response: `{"score": 140, "explanation": "x"}`, want: 100},
		{response: `{"score": -3, "explanation": "x"}`, want: 0},
		{response: `{"score": 59.5, "explanation": "x"}`, want: 60},
	}

	for _, tt := range tests {
		result, err := NewScorer(&stubGenerator{response: tt.response}, nil, 0).Score(context.Background(), "jd", jane())
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.response, err)
		}
		if result.Score != tt.want {
			t.Fatalf("expected %d for %s, got %d", tt.want, tt.response, result.Score)
		}
		if result.Strengths == nil || result.Gaps == nil {
			t.Fatalf("expected non-nil strengths and gaps")
		}
	}
}

func TestScorerMalformedResponses(t *testing.T) {
	cases := map[string]string{
		"not json":        "I think they are great",
		"missing score":   `{"explanation": "ok"}`,
		"string score":    `{"score": "eighty", "explanation": "ok"}`,
		"empty":           "   ",
		"bad strengths":   `{"score": 80, "explanation": "ok", "strengths": "react"}`,
		"empty rationale": `{"score": 80, "explanation": ""}`,
	}

	for name, response := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewScorer(&stubGenerator{response: response}, nil, 0).Score(context.Background(), "jd", jane())
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestScorerPropagatesGeneratorError(t *testing.T) {
	genErr := errors.New("quota exceeded")
	_, err := NewScorer(&stubGenerator{err: genErr}, nil, 0).Score(context.Background(), "jd", jane())
	if !errors.Is(err, genErr) {
		t.Fatalf("expected generator error, got %v", err)
	}

	if _, err := NewScorer(&stubGenerator{}, nil, 0).Score(context.Background(), "jd", nil); err == nil {
		t.Fatal("expected error for nil candidate")
	}
}

func TestComparer(t *testing.T) {
	stub := &stubGenerator{response: "Jane is stronger."}
	other := &candidate.Candidate{Name: "John", Skills: []string{"Go", "SQL", "Git", "Linux", "Docker", "AWS"}, YearsOfExperience: 6}

	out, err := NewComparer(stub, nil, 0).Compare(context.Background(), jane(), other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Jane is stronger." {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(stub.lastPrompt, "Jane Doe: 3.5 years, Key skills: React, Node.js, AWS") {
		t.Fatalf("unexpected prompt %q", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "John: 6 years, Key skills: Go, SQL, Git, Linux, Docker\n") {
		t.Fatalf("expected first five skills only, got %q", stub.lastPrompt)
	}
}

func TestAssistant(t *testing.T) {
	stub := &stubGenerator{response: "Jane knows React."}
	pool := []*candidate.Candidate{jane(), {Name: "John", Location: "Berlin"}}

	out, err := NewAssistant(stub, nil, 0).Answer(context.Background(), "who knows react?", pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Jane knows React." {
		t.Fatalf("unexpected output %q", out)
	}
	if stub.lastPrompt != "who knows react?" {
		t.Fatalf("unexpected prompt %q", stub.lastPrompt)
	}
	for _, want := range []string{"Candidate 1: Jane Doe", "Location: Not specified", "Candidate 2: John", "Location: Berlin", "Total candidates: 2"} {
		if !strings.Contains(stub.lastInstruction, want) {
			t.Fatalf("expected instruction to contain %q", want)
		}
	}

	if _, err := NewAssistant(stub, nil, 0).Answer(context.Background(), " ", pool); err == nil {
		t.Fatal("expected error for empty query")
	}
}
