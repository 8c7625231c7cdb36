package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Corpus      CorpusConfig    `toml:"corpus"`
	LLM         LLMConfig       `toml:"llm"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	WebSocket   WebSocketConfig `toml:"websocket"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// CorpusConfig controls document ingestion and chunking
type CorpusConfig struct {
	Dir               string   `toml:"dir"`                 // Directory containing corpus documents
	Extensions        []string `toml:"extensions"`          // File extensions to ingest
	SentencesPerChunk int      `toml:"sentences_per_chunk"` // Chunk size in sentences
	OverlapSentences  int      `toml:"overlap_sentences"`   // Sentence overlap between consecutive chunks
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig maps pipeline tiers onto providers
type LLMConfig struct {
	ReasoningProvider LLMProvider `toml:"reasoning_provider"` // Provider for classification/validation (default: "claude")
	SpeedProvider     LLMProvider `toml:"speed_provider"`     // Provider for expansion/generation (default: "gemini")
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`         // Google Gemini API key
	Model          string  `toml:"model"`           // Model for completions (default: "gemini-3-flash-preview")
	EmbedModel     string  `toml:"embed_model"`     // Model for embeddings (default: "gemini-embedding-001")
	EmbedDimension int     `toml:"embed_dimension"` // Embedding vector dimensionality (default: 768)
	Timeout        string  `toml:"timeout"`         // Operation timeout as duration string (default: "2m")
	RateLimit      string  `toml:"rate_limit"`      // Minimum interval between requests (default: "4s" for 15 RPM)
	Temperature    float32 `toml:"temperature"`     // Completion temperature (default: 0.3)
	MaxTokens      int     `toml:"max_tokens"`      // Maximum tokens in response (default: 4096)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for completions (default: "claude-haiku-3-5-20241022")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between requests (default: "1s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
}

// RetrievalBreadth is the per-intent retrieval width and cut-off
type RetrievalBreadth struct {
	K         int     `toml:"k"`         // Maximum passages returned
	Threshold float64 `toml:"threshold"` // Minimum relevance score
}

// PipelineConfig contains the quality-control loop settings
type PipelineConfig struct {
	MaxAttempts         int              `toml:"max_attempts"`          // Generation attempts before giving up (default: 2)
	MinOverallScore     float64          `toml:"min_overall_score"`     // Acceptance floor for the weighted score (default: 0.65)
	MinHallucination    float64          `toml:"min_hallucination"`     // Critical floor for hallucination absence (default: 0.70)
	MinAlignment        float64          `toml:"min_alignment"`         // Critical floor for alignment (default: 0.60)
	ExpandBelowWords    int              `toml:"expand_below_words"`    // Expand queries shorter than this many words (default: 3)
	SearchBreadth       RetrievalBreadth `toml:"search_breadth"`        // Breadth for search intent
	SummarizeBreadth    RetrievalBreadth `toml:"summarize_breadth"`     // Breadth for summarize intent
	CompareBreadth      RetrievalBreadth `toml:"compare_breadth"`       // Breadth for compare intent
	IncludeTraceInAPI   bool             `toml:"include_trace_in_api"`  // Return the full trace in HTTP responses
	ValidateGeneralOnce bool             `toml:"validate_general_once"` // Validate conversational answers without regeneration
}

// WebSocketConfig contains configuration for the step event stream
type WebSocketConfig struct {
	ThrottleInterval string `toml:"throttle_interval"` // Minimum interval between broadcasts per client (default: "100ms")
	BufferSize       int    `toml:"buffer_size"`       // Per-subscriber event buffer (default: 64)
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in quaesitor.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Corpus: CorpusConfig{
			Dir:               "./corpus",
			Extensions:        []string{".txt", ".md", ".html", ".pdf"},
			SentencesPerChunk: 5,
			OverlapSentences:  1,
		},
		LLM: LLMConfig{
			ReasoningProvider: LLMProviderClaude,
			SpeedProvider:     LLMProviderGemini,
		},
		Gemini: GeminiConfig{
			APIKey:         "", // User must provide API key (no fallback)
			Model:          "gemini-3-flash-preview",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			Timeout:        "2m",
			RateLimit:      "4s", // Default to 4s (15 RPM) for free tier
			Temperature:    0.3,
			MaxTokens:      4096,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			Timeout:     "2m",
			RateLimit:   "1s",
			Temperature: 0.2,
			MaxTokens:   4096,
		},
		Pipeline: PipelineConfig{
			MaxAttempts:         2,
			MinOverallScore:     0.65,
			MinHallucination:    0.70,
			MinAlignment:        0.60,
			ExpandBelowWords:    3,
			SearchBreadth:       RetrievalBreadth{K: 5, Threshold: 0.50},
			SummarizeBreadth:    RetrievalBreadth{K: 10, Threshold: 0.35},
			CompareBreadth:      RetrievalBreadth{K: 6, Threshold: 0.30},
			IncludeTraceInAPI:   true,
			ValidateGeneralOnce: true,
		},
		WebSocket: WebSocketConfig{
			ThrottleInterval: "100ms",
			BufferSize:       64,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("QUAESITOR_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("QUAESITOR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("QUAESITOR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("QUAESITOR_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("QUAESITOR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("QUAESITOR_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("QUAESITOR_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Corpus configuration
	if corpusDir := os.Getenv("QUAESITOR_CORPUS_DIR"); corpusDir != "" {
		config.Corpus.Dir = corpusDir
	}

	// Provider tier routing
	if provider := os.Getenv("QUAESITOR_LLM_REASONING_PROVIDER"); provider != "" {
		config.LLM.ReasoningProvider = LLMProvider(provider)
	}
	if provider := os.Getenv("QUAESITOR_LLM_SPEED_PROVIDER"); provider != "" {
		config.LLM.SpeedProvider = LLMProvider(provider)
	}

	// Gemini configuration
	if apiKey := os.Getenv("QUAESITOR_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("QUAESITOR_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if embedModel := os.Getenv("QUAESITOR_GEMINI_EMBED_MODEL"); embedModel != "" {
		config.Gemini.EmbedModel = embedModel
	}
	if dim := os.Getenv("QUAESITOR_GEMINI_EMBED_DIMENSION"); dim != "" {
		if d, err := strconv.Atoi(dim); err == nil && d > 0 {
			config.Gemini.EmbedDimension = d
		}
	}
	if timeout := os.Getenv("QUAESITOR_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if rateLimit := os.Getenv("QUAESITOR_GEMINI_RATE_LIMIT"); rateLimit != "" {
		config.Gemini.RateLimit = rateLimit
	}
	if temperature := os.Getenv("QUAESITOR_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("QUAESITOR_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // QUAESITOR_ prefix takes priority
	}
	if model := os.Getenv("QUAESITOR_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if timeout := os.Getenv("QUAESITOR_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}
	if rateLimit := os.Getenv("QUAESITOR_CLAUDE_RATE_LIMIT"); rateLimit != "" {
		config.Claude.RateLimit = rateLimit
	}
	if maxTokens := os.Getenv("QUAESITOR_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}

	// Pipeline configuration
	if attempts := os.Getenv("QUAESITOR_PIPELINE_MAX_ATTEMPTS"); attempts != "" {
		if a, err := strconv.Atoi(attempts); err == nil && a > 0 {
			config.Pipeline.MaxAttempts = a
		}
	}
	if words := os.Getenv("QUAESITOR_PIPELINE_EXPAND_BELOW_WORDS"); words != "" {
		if w, err := strconv.Atoi(words); err == nil && w >= 0 {
			config.Pipeline.ExpandBelowWords = w
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Breadth returns the retrieval breadth for an intent label. General intent
// has no breadth because it skips retrieval.
func (p *PipelineConfig) Breadth(intent string) (RetrievalBreadth, bool) {
	switch intent {
	case "search":
		return p.SearchBreadth, true
	case "summarize":
		return p.SummarizeBreadth, true
	case "compare":
		return p.CompareBreadth, true
	default:
		return RetrievalBreadth{}, false
	}
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
