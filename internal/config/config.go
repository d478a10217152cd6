// Package config loads NET-EST's runtime configuration from environment
// variables with an optional YAML overlay, mirroring the teacher's
// getEnv/getEnvInt/getEnvBool pattern in cmd/sercha-core/main.go but
// promoting the nested spec.md §6 options (embedder.*, aligner.*,
// classifier.*, persistence.*) into a structured, YAML-friendly tree
// instead of a flat list of env lookups.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/netest/netest-core/internal/core/services"
)

// Config is the fully-resolved NET-EST configuration, covering every
// option enumerated in spec.md §6.
type Config struct {
	MaxWords int `yaml:"max_words"`

	Embedder   EmbedderConfig   `yaml:"embedder"`
	Linguistic LinguisticConfig `yaml:"linguistic"`
	Aligner    AlignerConfig    `yaml:"aligner"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Persistence PersistenceConfig `yaml:"persistence"`

	WorkerPoolSize int `yaml:"worker_pool_size"`
	StageTimeoutMs int `yaml:"stage_timeout_ms"`

	Port      int    `yaml:"port"`
	RedisURL  string `yaml:"redis_url"`
	QueueKind string `yaml:"queue_kind"` // "redis", "postgres", or "" (in-process only)

	ExportSecret string `yaml:"export_secret"`
}

// EmbedderConfig carries embedder.* options.
type EmbedderConfig struct {
	Provider      string `yaml:"provider"`
	ModelID       string `yaml:"model_id"`
	ModelPath     string `yaml:"model_path"`
	TokenizerPath string `yaml:"tokenizer_path"`
	BatchSize     int    `yaml:"batch_size"`
	CacheCapacity int    `yaml:"cache_capacity"`
	MaxSeqLength  int    `yaml:"max_seq_length"`
}

// LinguisticConfig carries the optional linguistic-pipeline options; this
// section is not named explicitly in spec.md §6 but is implied by §4.2's
// "optional Portuguese linguistic pipeline".
type LinguisticConfig struct {
	Provider       string `yaml:"provider"`
	Endpoint       string `yaml:"endpoint"`
	Annotators     string `yaml:"annotators"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// AlignerConfig carries aligner.* options.
type AlignerConfig struct {
	Threshold float64 `yaml:"threshold"`
	TopK      int     `yaml:"top_k"`
}

// ClassifierConfig carries classifier.* options.
type ClassifierConfig struct {
	MinConfidence float64                  `yaml:"min_confidence"`
	EnableOM      bool                     `yaml:"enable_om"`
	RuleWeights   map[string]RuleWeightCfg `yaml:"rule_weights"`
	CustomRuleLua string                   `yaml:"custom_rule_lua"`
}

// RuleWeightCfg is one entry of classifier.rule_weights: a tag's
// overridden thresholds/weights, per spec.md §6.
type RuleWeightCfg struct {
	Thresholds map[string]float64 `yaml:"thresholds"`
	Weights    map[string]float64 `yaml:"weights"`
}

// PersistenceConfig carries persistence.* options.
type PersistenceConfig struct {
	Backend string `yaml:"backend"` // "filesystem", "sqlite", or "postgres"
	Path    string `yaml:"path"`
}

// Load builds a Config from environment variables, then overlays a YAML
// file if NETEST_CONFIG_FILE (or the supplied path) points at one.
// Environment variables always take precedence over file values, mirroring
// the teacher's "env var first, defaults second" discipline.
func Load(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if yamlPath == "" {
		yamlPath = os.Getenv("NETEST_CONFIG_FILE")
	}
	if yamlPath != "" {
		if err := applyYAML(cfg, yamlPath); err != nil {
			return nil, fmt.Errorf("load yaml config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// Defaults returns the spec.md §6 compiled-in defaults.
func Defaults() *Config {
	return &Config{
		MaxWords: 2000,
		Embedder: EmbedderConfig{
			BatchSize:     32,
			CacheCapacity: 4096,
			MaxSeqLength:  256,
		},
		Linguistic: LinguisticConfig{
			Annotators:     "tokenize,ssplit,pos,lemma,depparse",
			TimeoutSeconds: 30,
		},
		Aligner: AlignerConfig{
			Threshold: 0.5,
			TopK:      3,
		},
		Classifier: ClassifierConfig{
			MinConfidence: 0.3,
			EnableOM:      false,
		},
		Persistence: PersistenceConfig{
			Backend: "filesystem",
			Path:    "./data/sessions",
		},
		WorkerPoolSize: 4,
		StageTimeoutMs: 5000,
		Port:           8080,
	}
}

func applyYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.MaxWords = getEnvInt("MAX_WORDS", cfg.MaxWords)

	cfg.Embedder.Provider = getEnv("EMBEDDER_PROVIDER", cfg.Embedder.Provider)
	cfg.Embedder.ModelID = getEnv("EMBEDDER_MODEL_ID", cfg.Embedder.ModelID)
	cfg.Embedder.ModelPath = getEnv("EMBEDDER_MODEL_PATH", cfg.Embedder.ModelPath)
	cfg.Embedder.TokenizerPath = getEnv("EMBEDDER_TOKENIZER_PATH", cfg.Embedder.TokenizerPath)
	cfg.Embedder.BatchSize = getEnvInt("EMBEDDER_BATCH_SIZE", cfg.Embedder.BatchSize)
	cfg.Embedder.CacheCapacity = getEnvInt("EMBEDDER_CACHE_CAPACITY", cfg.Embedder.CacheCapacity)
	cfg.Embedder.MaxSeqLength = getEnvInt("EMBEDDER_MAX_SEQ_LENGTH", cfg.Embedder.MaxSeqLength)

	cfg.Linguistic.Provider = getEnv("LINGUISTIC_PROVIDER", cfg.Linguistic.Provider)
	cfg.Linguistic.Endpoint = getEnv("LINGUISTIC_ENDPOINT", cfg.Linguistic.Endpoint)
	cfg.Linguistic.Annotators = getEnv("LINGUISTIC_ANNOTATORS", cfg.Linguistic.Annotators)
	cfg.Linguistic.TimeoutSeconds = getEnvInt("LINGUISTIC_TIMEOUT_SECONDS", cfg.Linguistic.TimeoutSeconds)

	cfg.Aligner.Threshold = getEnvFloat("ALIGNER_THRESHOLD", cfg.Aligner.Threshold)
	cfg.Aligner.TopK = getEnvInt("ALIGNER_TOP_K", cfg.Aligner.TopK)

	cfg.Classifier.MinConfidence = getEnvFloat("CLASSIFIER_MIN_CONFIDENCE", cfg.Classifier.MinConfidence)
	cfg.Classifier.EnableOM = getEnvBool("CLASSIFIER_ENABLE_OM", cfg.Classifier.EnableOM)
	cfg.Classifier.CustomRuleLua = getEnv("CLASSIFIER_CUSTOM_RULE_LUA", cfg.Classifier.CustomRuleLua)

	cfg.Persistence.Backend = getEnv("PERSISTENCE_BACKEND", cfg.Persistence.Backend)
	cfg.Persistence.Path = getEnv("PERSISTENCE_PATH", cfg.Persistence.Path)

	cfg.WorkerPoolSize = getEnvInt("WORKER_POOL_SIZE", cfg.WorkerPoolSize)
	cfg.StageTimeoutMs = getEnvInt("STAGE_TIMEOUT_MS", cfg.StageTimeoutMs)

	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.QueueKind = getEnv("QUEUE_KIND", cfg.QueueKind)

	if cfg.ExportSecret == "" || os.Getenv("EXPORT_SECRET") != "" {
		cfg.ExportSecret = getOrGenerateSecret("EXPORT_SECRET", cfg.Persistence.Path)
	}
}

// StageTimeout returns the configured per-stage timeout as a Duration.
func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutMs) * time.Millisecond
}

// RuleWeights converts the YAML-friendly rule_weights map into the
// services.RuleWeights struct the Classifier actually consumes, starting
// from services.DefaultRuleWeights. Only the "PASSIVE" entry's
// thresholds.passive_delta_min is read; other tags' entries and every
// weights map are ignored, and the other rule thresholds are fixed in the
// rule table.
func (c *Config) RuleWeights() services.RuleWeights {
	w := services.DefaultRuleWeights()
	entry, ok := c.Classifier.RuleWeights["PASSIVE"]
	if !ok {
		return w
	}
	if v, ok := entry.Thresholds["passive_delta_min"]; ok {
		w.PassiveDeltaMin = v
	}
	return w
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getOrGenerateSecret returns the export-manifest signing secret from env
// var, or derives a stable one from the persistence path so a fresh
// deployment signs manifests consistently across restarts without
// operator setup, matching the teacher's getOrGenerateSecret for JWT_SECRET.
func getOrGenerateSecret(envKey, seed string) string {
	if secret := os.Getenv(envKey); secret != "" {
		return secret
	}
	hash := sha256.Sum256([]byte("netest-export-secret:" + seed))
	return hex.EncodeToString(hash[:])
}
