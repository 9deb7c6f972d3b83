package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/candidate-ranker/internal/ai/gemini"
	"github.com/spigell/candidate-ranker/internal/analytics"
	"github.com/spigell/candidate-ranker/internal/candidate"
	"github.com/spigell/candidate-ranker/internal/chat"
	"github.com/spigell/candidate-ranker/internal/fitcache"
	"github.com/spigell/candidate-ranker/internal/logger"
	"github.com/spigell/candidate-ranker/internal/metrics"
	"github.com/spigell/candidate-ranker/internal/scoring"
	"github.com/spigell/candidate-ranker/internal/secrets"
	"github.com/spigell/candidate-ranker/internal/skills"
)

// application holds everything a command needs after configuration is loaded.
type application struct {
	config  *Config
	logger  *zap.Logger
	pool    *candidate.Pool
	metrics *metrics.Recorder

	generator *gemini.Generator
	cache     *fitcache.Cache
}

// newApplication builds the logger, loads the candidate pool and, when AI is
// enabled, the Gemini client. A missing key degrades to local-only behavior.
func newApplication(ctx context.Context) *application {
	config, err := getConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to decode config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to create logger: %v\n", err)
		os.Exit(1)
	}

	a := &application{
		config:  config,
		logger:  log,
		metrics: metrics.New(),
	}

	a.pool, err = candidate.Load(config.CandidatesFile)
	if err != nil {
		log.Fatal("loading candidates", zap.Error(err))
	}
	log.Debug("candidates loaded",
		zap.String("file", config.CandidatesFile),
		zap.Int("count", a.pool.Len()),
	)

	if config.AI.Enabled {
		a.generator = a.buildGenerator(ctx)
	}

	return a
}

// connectCache dials the fit cache when both AI scoring and caching are on.
// Only AI results are cached, so there is nothing to do otherwise.
func (a *application) connectCache(ctx context.Context) {
	cfg := a.config.Cache
	if a.generator == nil || !cfg.Enabled || a.cache != nil {
		return
	}

	cache, err := fitcache.Connect(ctx, &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, cfg.TTL)
	if err != nil {
		a.logger.Warn("fit cache is unavailable, continuing without it", zap.Error(err))
		return
	}

	a.cache = cache
}

func (a *application) buildGenerator(ctx context.Context) *gemini.Generator {
	provider := strings.ToLower(strings.TrimSpace(a.config.AI.Provider))
	if provider != "" && provider != gemini.Provider {
		a.logger.Fatal("unsupported AI provider", zap.String("provider", provider))
	}

	cfg := a.config.AI.Gemini
	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		a.logger.Warn("AI is enabled but no key is available, using local scoring", zap.Error(err))
		return nil
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model,
		gemini.WithMaxRetries(cfg.MaxRetries),
		gemini.WithLogger(a.logger.Named("gemini")),
	)
	if err != nil {
		a.logger.Warn("creating gemini client failed, using local scoring", zap.Error(err))
		return nil
	}

	a.logger.Info("AI scoring enabled", logger.CommonFields(gemini.Provider, generator.Model())...)

	return generator
}

// close flushes metrics and releases connections.
func (a *application) close() {
	if path := strings.TrimSpace(a.config.MetricsFile); path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.logger.Warn("writing metrics failed", zap.Error(err))
		}
	}

	if err := a.cache.Close(); err != nil {
		a.logger.Debug("closing fit cache", zap.Error(err))
	}

	_ = a.logger.Sync()
}

// skipContacted drops candidates recorded in the exclude file before scoring.
func (a *application) skipContacted() {
	path := strings.TrimSpace(a.config.Outreach.ExcludeFile)
	if path == "" {
		return
	}

	excluded, err := candidate.GetExcludedFromFile(path)
	if err != nil {
		a.logger.Fatal("reading exclude file", zap.String("path", path), zap.Error(err))
	}

	if removed := a.pool.Exclude(excluded.IDs()); len(removed) > 0 {
		a.logger.Info("skipping contacted candidates",
			zap.String("path", path),
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", a.pool.Len()),
		)
	}
}

func (a *application) localScorer() *scoring.LocalScorer {
	vocabulary := skills.NewVocabulary(a.config.Vocabulary...)

	opts := []scoring.Option{
		scoring.WithExtractor(skills.NewExtractor(vocabulary, 0)),
		scoring.WithJitter(a.config.Scoring.Jitter),
	}
	if seed := a.config.Scoring.Seed; seed != 0 {
		opts = append(opts, scoring.WithSeed(seed))
	}

	return scoring.NewLocalScorer(opts...)
}

// scorer assembles the scoring chain: Gemini (optionally cached) with a local
// fallback, or the local scorer alone.
func (a *application) scorer() scoring.FitScorer {
	local := a.localScorer()
	if a.generator == nil {
		return local
	}

	var primary scoring.FitScorer = gemini.NewScorer(a.generator, a.logger.Named("scorer"), a.config.AI.Gemini.MaxLogLength)
	if a.cache != nil {
		primary = fitcache.NewScorer(primary, a.cache,
			fitcache.WithLogger(a.logger.Named("fitcache")),
			fitcache.WithRecorder(a.metrics),
		)
	}

	return scoring.NewFallback(primary, local,
		scoring.WithNames(gemini.Provider, "local"),
		scoring.WithTimeout(a.config.AI.Timeout),
		scoring.WithLogger(a.logger.Named("fallback")),
		scoring.WithRecorder(a.metrics),
	)
}

func (a *application) evaluator() *scoring.Evaluator {
	return scoring.NewEvaluator(a.scorer(),
		scoring.WithConcurrency(a.config.Scoring.Concurrency),
		scoring.WithEvaluatorLogger(a.logger.Named("evaluator")),
		scoring.WithBatchRecorder(a.metrics),
	)
}

// evaluate scores the whole pool and records the final score distribution.
func (a *application) evaluate(ctx context.Context, jobDescription string) []scoring.EvaluatedCandidate {
	a.connectCache(ctx)

	evaluated, err := a.evaluator().Evaluate(ctx, jobDescription, a.pool.Items)
	if err != nil {
		a.logger.Fatal("evaluating candidates", zap.Error(err))
	}

	for _, ec := range evaluated {
		a.metrics.ObserveFitScore(ec.FitScore)
	}

	return evaluated
}

func (a *application) comparer() analytics.Comparer {
	if a.generator == nil {
		return analytics.LocalComparer{}
	}
	return gemini.NewComparer(a.generator, a.logger.Named("comparer"), a.config.AI.Gemini.MaxLogLength)
}

func (a *application) chatHandler() *chat.Handler {
	opts := []chat.Option{
		chat.WithComparer(a.comparer()),
		chat.WithLogger(a.logger.Named("chat")),
	}
	if a.generator != nil {
		opts = append(opts, chat.WithAnswerer(
			gemini.NewAssistant(a.generator, a.logger.Named("assistant"), a.config.AI.Gemini.MaxLogLength),
		))
	}
	return chat.NewHandler(a.pool, opts...)
}

func addJobFlags(cmd *cobra.Command) {
	cmd.Flags().String("job", "", "job description text")
	cmd.Flags().String("job-file", "", "file with the job description, - for stdin (default from config job-file)")
}

// readJobDescription returns the job text from --job, --job-file, the
// configured job file or stdin when the file is "-".
func readJobDescription(cmd *cobra.Command, configuredFile string) (string, error) {
	text, _ := cmd.Flags().GetString("job")
	jobFile, _ := cmd.Flags().GetString("job-file")
	if strings.TrimSpace(jobFile) == "" {
		jobFile = configuredFile
	}

	if strings.TrimSpace(text) == "" && jobFile != "" {
		var data []byte
		var err error
		if jobFile == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(jobFile)
		}
		if err != nil {
			return "", fmt.Errorf("reading job description: %w", err)
		}
		text = string(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", errors.New("job description is empty: pass --job or --job-file")
	}

	return text, nil
}
