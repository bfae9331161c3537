// ABOUTME: Centralized configuration for the lifeline engine
// ABOUTME: Loads defaults, an optional YAML file, then environment variables, with validation
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Known provider names
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	ClassifierHeuristic = "heuristic"
	ClassifierOpenAI    = "openai"
	ClassifierAnthropic = "anthropic"
)

// Config holds all configuration for the lifeline engine
type Config struct {
	// Storage
	DBPath string `yaml:"db_path"`

	// Embedding provider
	EmbeddingProvider string `yaml:"embedding_provider"`
	EmbeddingModel    string `yaml:"embedding_model"`
	OpenAIKey         string `yaml:"openai_api_key"`
	OllamaURL         string `yaml:"ollama_url"`

	// Relationship classifier
	Classifier     string `yaml:"classifier"`
	ChatModel      string `yaml:"chat_model"`
	AnthropicKey   string `yaml:"anthropic_api_key"`
	AnthropicModel string `yaml:"anthropic_model"`

	// Provider call bounds
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`

	// Analysis thresholds
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MinConfidence       float64 `yaml:"min_confidence"`
	LLMConfidenceFloor  float64 `yaml:"llm_confidence_floor"`
	AdjacentDays        int     `yaml:"adjacent_days"`

	// Batch and pattern settings
	Workers            int    `yaml:"workers"`
	MinCategorySupport int    `yaml:"min_category_support"`
	ClusterWindowDays  int    `yaml:"cluster_window_days"`
	ClusterMinEvents   int    `yaml:"cluster_min_events"`
	EraWindowDays      int    `yaml:"era_window_days"`
	TagNeighbors       int    `yaml:"tag_neighbors"`
	CacheSize          int    `yaml:"cache_size"`
	AnalyzeSchedule    string `yaml:"analyze_schedule"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DBPath:              DefaultDBPath(),
		EmbeddingProvider:   ProviderLocal,
		OllamaURL:           "http://localhost:11434",
		Classifier:          ClassifierHeuristic,
		ChatModel:           "gpt-4o-mini",
		AnthropicModel:      "claude-3-5-haiku-latest",
		Timeout:             30 * time.Second,
		MaxRetries:          3,
		RetryDelay:          time.Second,
		SimilarityThreshold: 0.3,
		MinConfidence:       0.3,
		LLMConfidenceFloor:  0.5,
		AdjacentDays:        30,
		Workers:             3,
		MinCategorySupport:  3,
		ClusterWindowDays:   7,
		ClusterMinEvents:    3,
		EraWindowDays:       180,
		TagNeighbors:        20,
		CacheSize:           256,
		AnalyzeSchedule:     "@daily",
	}
}

// Load reads configuration from LIFELINE_CONFIG (if set) and environment variables
func Load() (*Config, error) {
	return LoadFile(os.Getenv("LIFELINE_CONFIG"))
}

// LoadFile reads configuration from a YAML file (optional) and environment variables
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.DBPath = getEnv("LIFELINE_DB_PATH", c.DBPath)
	c.EmbeddingProvider = getEnv("LIFELINE_EMBEDDING_PROVIDER", c.EmbeddingProvider)
	c.EmbeddingModel = getEnv("LIFELINE_EMBEDDING_MODEL", c.EmbeddingModel)
	c.OpenAIKey = getEnv("OPENAI_API_KEY", c.OpenAIKey)
	c.OllamaURL = getEnv("OLLAMA_URL", c.OllamaURL)
	c.Classifier = getEnv("LIFELINE_CLASSIFIER", c.Classifier)
	c.ChatModel = getEnv("LIFELINE_CHAT_MODEL", c.ChatModel)
	c.AnthropicKey = getEnv("ANTHROPIC_API_KEY", c.AnthropicKey)
	c.AnthropicModel = getEnv("LIFELINE_ANTHROPIC_MODEL", c.AnthropicModel)
	c.Timeout = getEnvDuration("LIFELINE_TIMEOUT", c.Timeout)
	c.MaxRetries = getEnvInt("LIFELINE_MAX_RETRIES", c.MaxRetries)
	c.RetryDelay = getEnvDuration("LIFELINE_RETRY_DELAY", c.RetryDelay)
	c.SimilarityThreshold = getEnvFloat("LIFELINE_SIMILARITY_THRESHOLD", c.SimilarityThreshold)
	c.MinConfidence = getEnvFloat("LIFELINE_MIN_CONFIDENCE", c.MinConfidence)
	c.LLMConfidenceFloor = getEnvFloat("LIFELINE_LLM_CONFIDENCE_FLOOR", c.LLMConfidenceFloor)
	c.AdjacentDays = getEnvInt("LIFELINE_ADJACENT_DAYS", c.AdjacentDays)
	c.Workers = getEnvInt("LIFELINE_WORKERS", c.Workers)
	c.MinCategorySupport = getEnvInt("LIFELINE_MIN_CATEGORY_SUPPORT", c.MinCategorySupport)
	c.ClusterWindowDays = getEnvInt("LIFELINE_CLUSTER_WINDOW_DAYS", c.ClusterWindowDays)
	c.ClusterMinEvents = getEnvInt("LIFELINE_CLUSTER_MIN_EVENTS", c.ClusterMinEvents)
	c.EraWindowDays = getEnvInt("LIFELINE_ERA_WINDOW_DAYS", c.EraWindowDays)
	c.TagNeighbors = getEnvInt("LIFELINE_TAG_NEIGHBORS", c.TagNeighbors)
	c.CacheSize = getEnvInt("LIFELINE_CACHE_SIZE", c.CacheSize)
	c.AnalyzeSchedule = getEnv("LIFELINE_ANALYZE_SCHEDULE", c.AnalyzeSchedule)
}

func (c *Config) Validate() error {
	switch c.EmbeddingProvider {
	case ProviderLocal, ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("LIFELINE_EMBEDDING_PROVIDER must be local, openai or ollama, got %q", c.EmbeddingProvider)
	}
	switch c.Classifier {
	case ClassifierHeuristic, ClassifierOpenAI, ClassifierAnthropic:
	default:
		return fmt.Errorf("LIFELINE_CLASSIFIER must be heuristic, openai or anthropic, got %q", c.Classifier)
	}
	for name, v := range map[string]float64{
		"LIFELINE_SIMILARITY_THRESHOLD": c.SimilarityThreshold,
		"LIFELINE_MIN_CONFIDENCE":       c.MinConfidence,
		"LIFELINE_LLM_CONFIDENCE_FLOOR": c.LLMConfidenceFloor,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be 0-1, got %f", name, v)
		}
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("LIFELINE_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("LIFELINE_TIMEOUT must be positive, got %v", c.Timeout)
	}
	for name, v := range map[string]int{
		"LIFELINE_WORKERS":              c.Workers,
		"LIFELINE_MIN_CATEGORY_SUPPORT": c.MinCategorySupport,
		"LIFELINE_CLUSTER_WINDOW_DAYS":  c.ClusterWindowDays,
		"LIFELINE_CLUSTER_MIN_EVENTS":   c.ClusterMinEvents,
		"LIFELINE_ERA_WINDOW_DAYS":      c.EraWindowDays,
		"LIFELINE_TAG_NEIGHBORS":        c.TagNeighbors,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if c.AdjacentDays < 0 {
		return fmt.Errorf("LIFELINE_ADJACENT_DAYS must not be negative, got %d", c.AdjacentDays)
	}
	return nil
}

// DefaultDataDir returns the XDG data directory: ~/.local/share/lifeline/
// XDG_DATA_HOME overrides it, which tests rely on
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "lifeline")
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "lifeline.db")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
