// Package fitcache stores AI fit results in redis so that re-ranking the same
// pool against the same job description does not repeat model calls.
package fitcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/candidate"
	"github.com/spigell/candidate-ranker/internal/logger"
	"github.com/spigell/candidate-ranker/internal/scoring"
)

const (
	DefaultTTL = 24 * time.Hour
	keyPrefix  = "fit:"
)

// ErrMiss is returned by Get when no result is stored for the key.
var ErrMiss = errors.New("fit result not cached")

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Connect dials redis and pings it.
func Connect(ctx context.Context, opts *redis.Options, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	return New(client, ttl), nil
}

func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) Get(ctx context.Context, key string) (*scoring.FitResult, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	var result scoring.FitResult
	if err := json.Unmarshal(b, &result); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}

	return &result, nil
}

func (c *Cache) Set(ctx context.Context, key string, result *scoring.FitResult) error {
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Key identifies a (job description, candidate) pair. Any change to the
// candidate's scored fields yields a new key.
func Key(jobDescription string, c *candidate.Candidate) string {
	jd := sha256.Sum256([]byte(strings.TrimSpace(jobDescription)))

	profile, _ := json.Marshal(struct {
		Skills     []string `json:"s"`
		Years      float64  `json:"y"`
		Education  string   `json:"e"`
		Experience string   `json:"x"`
	}{c.Skills, c.YearsOfExperience, c.Education, c.Experience})
	cand := sha256.Sum256(profile)

	return keyPrefix + hex.EncodeToString(jd[:8]) + ":" + c.ID + ":" + hex.EncodeToString(cand[:8])
}

// LookupRecorder receives cache hits and misses.
type LookupRecorder interface {
	ObserveCache(hit bool)
}

// Scorer serves results from the cache and stores fresh ones from inner.
// Redis failures are logged and bypassed.
type Scorer struct {
	inner    scoring.FitScorer
	cache    *Cache
	logger   *zap.Logger
	recorder LookupRecorder
}

type Option func(*Scorer)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithRecorder(recorder LookupRecorder) Option {
	return func(s *Scorer) {
		s.recorder = recorder
	}
}

func NewScorer(inner scoring.FitScorer, cache *Cache, opts ...Option) *Scorer {
	s := &Scorer{inner: inner, cache: cache, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scorer) Score(ctx context.Context, jobDescription string, c *candidate.Candidate) (*scoring.FitResult, error) {
	if c == nil || s.cache == nil {
		return s.inner.Score(ctx, jobDescription, c)
	}

	key := Key(jobDescription, c)

	cached, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		s.observe(true)
		s.logger.Debug("fit cache hit", logger.CandidateFields(c.ID, c.Name, cached.Score)...)
		return cached, nil
	case errors.Is(err, ErrMiss):
		s.observe(false)
	default:
		s.logger.Warn("fit cache lookup failed", zap.String("candidate_id", c.ID), zap.Error(err))
	}

	result, err := s.inner.Score(ctx, jobDescription, c)
	if err != nil || result == nil {
		return result, err
	}

	if err := s.cache.Set(ctx, key, result); err != nil {
		s.logger.Warn("fit cache store failed", zap.String("candidate_id", c.ID), zap.Error(err))
	}

	return result, nil
}

func (s *Scorer) observe(hit bool) {
	if s.recorder != nil {
		s.recorder.ObserveCache(hit)
	}
}
