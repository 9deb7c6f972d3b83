// Package chat answers free-text questions about the candidate pool.
package chat

import (
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/analytics"
	"github.com/spigell/candidate-ranker/internal/candidate"
)

const (
	previewSkills     = 5
	maxSearchResults  = 10
	maxListedSkills   = 20
	suggestionsNamed  = 3
	jdMatchHint       = `To match candidates with a job description, run "candidate-ranker evaluate --job-file <path>". It scores every candidate against the description and ranks them.`
	emptyPoolResponse = "No candidates found in the database. Please load some candidates first."
)

var yearsPattern = regexp.MustCompile(`(\d+)\s*\+?\s*year`)

// Answerer handles questions the local rules cannot.
type Answerer interface {
	Answer(ctx context.Context, query string, pool []*candidate.Candidate) (string, error)
}

type Handler struct {
	pool     []*candidate.Candidate
	comparer analytics.Comparer
	answerer Answerer
	logger   *zap.Logger
}

type Option func(*Handler)

func WithComparer(c analytics.Comparer) Option {
	return func(h *Handler) {
		h.comparer = c
	}
}

func WithAnswerer(a Answerer) Option {
	return func(h *Handler) {
		h.answerer = a
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHandler(pool *candidate.Pool, opts ...Option) *Handler {
	h := &Handler{logger: zap.NewNop()}
	if pool != nil {
		for _, c := range pool.Items {
			if c != nil {
				h.pool = append(h.pool, c)
			}
		}
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Handle answers query locally when a rule applies. Otherwise it asks the
// Answerer, if any, and falls back to the local suggestions on failure.
func (h *Handler) Handle(ctx context.Context, query string) string {
	answer, handled := h.HandleLocally(ctx, query)
	if handled || h.answerer == nil || len(h.pool) == 0 {
		return answer
	}

	remote, err := h.answerer.Answer(ctx, query, h.pool)
	if err != nil || strings.TrimSpace(remote) == "" {
		h.logger.Warn("assistant answer failed, using local response", zap.Error(err))
		return answer
	}

	return strings.TrimSpace(remote)
}

// HandleLocally applies the routing rules in order. The boolean is false when
// no rule matched and the response is only a list of suggestions.
func (h *Handler) HandleLocally(ctx context.Context, query string) (string, bool) {
	q := strings.ToLower(query)

	if containsAny(q, "list all", "show all", "all candidates") {
		return h.listAll(), true
	}

	if strings.Contains(q, "compare") {
		if a, b := h.comparePair(q); a != nil {
			return analytics.CompareWithFallback(ctx, h.comparer, a, b, h.logger), true
		}
	}

	if containsAny(q, "breakdown", "statistics", "average", "top skills") {
		return h.statistics(), true
	}

	if answer, ok := h.skillSearch(q); ok {
		return answer, true
	}

	if answer, ok := h.yearsSearch(q); ok {
		return answer, true
	}

	if strings.Contains(q, "match") && strings.Contains(q, "jd") {
		return jdMatchHint, true
	}

	if len(h.pool) == 0 {
		return emptyPoolResponse, true
	}

	return h.suggestions(), false
}

func (h *Handler) listAll() string {
	entries := make([]string, 0, len(h.pool))
	for i, c := range h.pool {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d. %s\n", i+1, c.Name)
		fmt.Fprintf(&sb, "   Skills: %s\n", skillPreview(c.Skills))
		fmt.Fprintf(&sb, "   Experience: %s years", formatYears(c.YearsOfExperience))
		writeEmail(&sb, c.Email)
		entries = append(entries, sb.String())
	}

	return fmt.Sprintf("Found %d candidates in database:\n\n", len(h.pool)) + strings.Join(entries, "\n\n")
}

// comparePair picks the "top" two by experience, two candidates named in the
// query, or the first two in the pool.
func (h *Handler) comparePair(q string) (*candidate.Candidate, *candidate.Candidate) {
	if len(h.pool) < 2 {
		return nil, nil
	}

	if strings.Contains(q, "top") {
		sorted := slices.Clone(h.pool)
		slices.SortStableFunc(sorted, func(a, b *candidate.Candidate) int {
			return cmp.Compare(b.YearsOfExperience, a.YearsOfExperience)
		})
		return sorted[0], sorted[1]
	}

	var named []*candidate.Candidate
	for _, c := range h.pool {
		if c.Name != "" && strings.Contains(q, strings.ToLower(c.Name)) {
			named = append(named, c)
		}
	}
	if len(named) >= 2 {
		return named[0], named[1]
	}

	return h.pool[0], h.pool[1]
}

func (h *Handler) statistics() string {
	stats := analytics.ComputeStatistics(h.pool)

	lines := make([]string, 0, len(stats.TopSkills))
	for i, s := range stats.TopSkills {
		lines = append(lines, fmt.Sprintf("%d. %s (%d candidates)", i+1, s.Skill, s.Count))
	}

	return "Talent Pool Insights:\n\n" +
		fmt.Sprintf("Total Candidates: %d\n", stats.TotalCandidates) +
		fmt.Sprintf("Average Experience: %.1f years\n", stats.AverageExperience) +
		fmt.Sprintf("Unique Skills: %d\n\n", stats.TotalUniqueSkills) +
		"Top 10 Skills:\n" +
		strings.Join(lines, "\n")
}

func (h *Handler) skillSearch(q string) (string, bool) {
	known := h.knownSkills()

	var requested []string
	for _, skill := range known {
		if strings.Contains(q, skill) {
			requested = append(requested, skill)
		}
	}

	if len(requested) == 0 || !containsAny(q, "who has", "with", "skill", "know") {
		return "", false
	}

	wanted := strings.Join(requested, " and ")
	matches := analytics.FindBySkills(h.pool, requested)
	if len(matches) == 0 {
		return fmt.Sprintf("No candidates found with %s. Available skills in database:\n%s",
			wanted, strings.Join(known[:min(len(known), maxListedSkills)], ", ")), true
	}

	entries := make([]string, 0, min(len(matches), maxSearchResults))
	for i, m := range matches[:min(len(matches), maxSearchResults)] {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d. %s - %.0f%% match\n", i+1, m.Name, m.MatchPercentage)
		fmt.Fprintf(&sb, "   Matched Skills: %s\n", strings.Join(m.MatchedSkills, ", "))
		fmt.Fprintf(&sb, "   Experience: %s years", formatYears(m.YearsOfExperience))
		writeEmail(&sb, m.Email)
		entries = append(entries, sb.String())
	}

	return fmt.Sprintf("Found %d candidate(s) with %s:\n\n", len(matches), wanted) + strings.Join(entries, "\n\n"), true
}

func (h *Handler) yearsSearch(q string) (string, bool) {
	if !containsAny(q, "year", "experience") {
		return "", false
	}

	m := yearsPattern.FindStringSubmatch(q)
	if m == nil {
		return "", false
	}

	required, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}

	var matches []*candidate.Candidate
	for _, c := range h.pool {
		if c.YearsOfExperience >= float64(required) {
			matches = append(matches, c)
		}
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No candidates found with %d+ years of experience. Average experience in pool: %.1f years",
			required, analytics.ComputeStatistics(h.pool).AverageExperience), true
	}

	entries := make([]string, 0, len(matches))
	for i, c := range matches {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d. %s: %s years\n", i+1, c.Name, formatYears(c.YearsOfExperience))
		fmt.Fprintf(&sb, "   Skills: %s", strings.Join(c.Skills[:min(len(c.Skills), previewSkills)], ", "))
		writeEmail(&sb, c.Email)
		entries = append(entries, sb.String())
	}

	return fmt.Sprintf("Found %d candidate(s) with %d+ years of experience:\n\n", len(matches), required) +
		strings.Join(entries, "\n\n"), true
}

func (h *Handler) suggestions() string {
	names := make([]string, 0, suggestionsNamed)
	for _, c := range h.pool[:min(len(h.pool), suggestionsNamed)] {
		names = append(names, c.Name)
	}

	intro := fmt.Sprintf("I found %d candidates in the database including %s.", len(h.pool), strings.Join(names, ", "))
	if len(h.pool) <= suggestionsNamed {
		intro = fmt.Sprintf("I found %d candidates in the database: %s.", len(h.pool), strings.Join(names, ", "))
	}

	return intro + "\n\n" +
		"Try asking:\n" +
		"- \"List all candidates\"\n" +
		"- \"Compare the top 2 candidates\"\n" +
		"- \"Who has Python and Machine Learning skills?\"\n" +
		"- \"Show me candidates with 5+ years experience\"\n" +
		"- \"Give me a breakdown of top skills\""
}

// knownSkills lists the lowercased pool skills in first-seen order.
func (h *Handler) knownSkills() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range h.pool {
		for _, s := range c.Skills {
			lower := strings.ToLower(strings.TrimSpace(s))
			if lower == "" {
				continue
			}
			if _, ok := seen[lower]; ok {
				continue
			}
			seen[lower] = struct{}{}
			out = append(out, lower)
		}
	}
	return out
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func skillPreview(skills []string) string {
	preview := strings.Join(skills[:min(len(skills), previewSkills)], ", ")
	if len(skills) > previewSkills {
		preview += "..."
	}
	return preview
}

func writeEmail(sb *strings.Builder, email string) {
	if email != "" {
		fmt.Fprintf(sb, "\n   Email: %s", email)
	}
}

func formatYears(years float64) string {
	return strconv.FormatFloat(years, 'f', -1, 64)
}
