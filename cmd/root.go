package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "candidate-ranker"
)

type Config struct {
	CandidatesFile string          `mapstructure:"candidates-file"`
	JobFile        string          `mapstructure:"job-file"`
	Vocabulary     []string        `mapstructure:"vocabulary"`
	Scoring        *ScoringConfig  `mapstructure:"scoring"`
	AI             *AIConfig       `mapstructure:"ai"`
	Cache          *CacheConfig    `mapstructure:"cache"`
	Outreach       *OutreachConfig `mapstructure:"outreach"`
	MetricsFile    string          `mapstructure:"metrics-file"`
}

type ScoringConfig struct {
	// Jitter is the amplitude of the random tie-break term. Zero disables it.
	Jitter      float64 `mapstructure:"jitter"`
	Seed        uint64  `mapstructure:"seed"`
	Concurrency int     `mapstructure:"concurrency"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type OutreachConfig struct {
	MinimumFitScore   int     `mapstructure:"minimum-fit-score"`
	MinimumExperience float64 `mapstructure:"minimum-experience"`
	ExcludeFile       string  `mapstructure:"exclude-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "candidate-ranker scores candidates against job descriptions and helps pick who to contact",
	}
)

// Execute executes the root command. An interrupt cancels in-flight scoring.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	envBindings := map[string]string{
		"candidates-file":        "CANDIDATES_FILE",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"cache.addr":             "REDIS_ADDR",
		"cache.password":         "REDIS_PASSWORD",
		"outreach.exclude-file":  "EXCLUDE_FILE",
		"metrics-file":           "METRICS_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is candidate-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("candidates-file", "c", "", "JSON file with parsed candidates")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("candidates-file", rootCmd.PersistentFlags().Lookup("candidates-file"))
}

func setDefaults() {
	viper.SetDefault("candidates-file", "candidates.json")
	viper.SetDefault("scoring.jitter", 2.0)
	viper.SetDefault("scoring.concurrency", 8)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.timeout", 30*time.Second)
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("cache.addr", "localhost:6379")
	viper.SetDefault("cache.ttl", 24*time.Hour)
	viper.SetDefault("outreach.minimum-fit-score", 60)
}

func initConfig() {
	// .env is optional; values already in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless it was requested explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if config.Scoring == nil {
		config.Scoring = &ScoringConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Cache == nil {
		config.Cache = &CacheConfig{}
	}
	if config.Outreach == nil {
		config.Outreach = &OutreachConfig{}
	}

	config.CandidatesFile = strings.TrimSpace(config.CandidatesFile)
	config.JobFile = strings.TrimSpace(config.JobFile)

	return config, nil
}
