package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/policyqa/internal/chunker"
	"github.com/kailas-cloud/policyqa/internal/usecase/retrieval"
)

// Config holds the policyqa configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Documents DocumentsConfig `yaml:"documents"`
	Index     IndexConfig     `yaml:"index"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Generator GeneratorConfig `yaml:"generator"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DocumentsConfig locates the policy corpus.
type DocumentsConfig struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions"` // default: .pdf, .txt
}

// IndexConfig locates the persisted index files.
type IndexConfig struct {
	Dir string `yaml:"dir"`
}

// ChunkingConfig bounds chunk sizes in estimated tokens.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	MinChunkSize int `yaml:"min_chunk_size"`
}

// RetrievalConfig tunes retrieval. Zero thresholds take the defaults.
type RetrievalConfig struct {
	TopK                int     `yaml:"top_k"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	DedupThreshold      float64 `yaml:"dedup_threshold"`
	TimeoutMs           int     `yaml:"timeout_ms"` // 0 = no timeout
}

// EmbeddingConfig selects the encoder backend.
type EmbeddingConfig struct {
	Backend      string       `yaml:"backend"` // hashing (default), openai
	Model        string       `yaml:"model"`
	Dimensions   int          `yaml:"dimensions"`
	BatchSize    int          `yaml:"batch_size"`
	Instruction  string       `yaml:"instruction"`
	APIKey       string       `yaml:"api_key"`
	BaseURL      string       `yaml:"base_url"`
	User         string       `yaml:"user"`
	RateLimitRPS float64      `yaml:"rate_limit_rps"` // 0 = unlimited
	Budget       BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// GeneratorConfig selects the answer generator backend.
type GeneratorConfig struct {
	Backend      string  `yaml:"backend"` // extractive (default), openai
	Model        string  `yaml:"model"`
	APIKey       string  `yaml:"api_key"`
	BaseURL      string  `yaml:"base_url"`
	MaxTokens    int     `yaml:"max_tokens"`
	Temperature  float32 `yaml:"temperature"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
}

// CacheConfig holds the redis connection used for the embedding cache and budget counters.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Standalone       bool     `yaml:"standalone"` // skip cluster topology discovery
	TTLSec           int      `yaml:"ttl_sec"` // 0 = no expiry
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from a YAML file path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Documents.Dir == "" {
		c.Documents.Dir = "data"
	}
	if c.Index.Dir == "" {
		c.Index.Dir = "vector_db"
	}

	def := chunker.DefaultOptions()
	if c.Chunking.ChunkSize <= 0 {
		c.Chunking.ChunkSize = def.ChunkSize
	}
	if c.Chunking.ChunkOverlap <= 0 {
		c.Chunking.ChunkOverlap = def.ChunkOverlap
	}
	if c.Chunking.MinChunkSize <= 0 {
		c.Chunking.MinChunkSize = def.MinChunkSize
	}

	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = retrieval.DefaultTopK
	}
	if c.Retrieval.SimilarityThreshold == 0 {
		c.Retrieval.SimilarityThreshold = retrieval.DefaultSimilarityThreshold
	}
	if c.Retrieval.DedupThreshold == 0 {
		c.Retrieval.DedupThreshold = retrieval.DefaultDedupThreshold
	}

	if c.Embedding.Backend == "" {
		c.Embedding.Backend = "hashing"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 16
	}
	if c.Generator.Backend == "" {
		c.Generator.Backend = "extractive"
	}
	if c.Generator.MaxTokens <= 0 {
		c.Generator.MaxTokens = 512
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// ChunkerOptions returns the chunking section as chunker options.
func (c *Config) ChunkerOptions() chunker.Options {
	return chunker.Options{
		ChunkSize:    c.Chunking.ChunkSize,
		ChunkOverlap: c.Chunking.ChunkOverlap,
		MinChunkSize: c.Chunking.MinChunkSize,
	}
}

// RetrievalOptions returns the retrieval section as retriever options.
func (c *Config) RetrievalOptions() retrieval.Options {
	return retrieval.Options{
		TopK:                c.Retrieval.TopK,
		SimilarityThreshold: c.Retrieval.SimilarityThreshold,
		DedupThreshold:      c.Retrieval.DedupThreshold,
		Timeout:             time.Duration(c.Retrieval.TimeoutMs) * time.Millisecond,
	}
}

// Validate checks the configuration for correctness. Backend names are
// checked by the backend factories.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if err := c.ChunkerOptions().Validate(); err != nil {
		return fmt.Errorf("chunking: %w", err)
	}
	if err := c.RetrievalOptions().Validate(); err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}
	switch c.Embedding.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"embedding.budget.action must be \"warn\" or \"reject\", got %q",
			c.Embedding.Budget.Action,
		)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
