package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"

	DefaultConfigFile = "stairreg.yaml"
	DefaultEnvFile    = ".env"
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultModel      = "openai/gpt-4o-mini"
	DefaultOllamaURL  = "http://127.0.0.1:11434"
	DefaultTimeout    = 180 * time.Second
	DefaultRetries    = 3
	DefaultMaxChars   = 15000
	DefaultOutputDir  = "output"
	// DefaultTemperature biases the model toward deterministic extraction.
	DefaultTemperature = 0.1
)

var (
	ErrUnknownProvider = errors.New("config: unknown LLM provider")
	ErrMissingAPIKey   = errors.New("config: API key is required")
	ErrInvalidValue    = errors.New("config: invalid value")
)

var providerModels = map[string]string{
	ProviderOpenAI:    DefaultModel,
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOllama:    "qwen2.5:7b",
}

var providerKeyEnv = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// Config is everything a run needs. It is built once by the driver and
// passed explicitly to the components.
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Output     OutputConfig     `yaml:"output"`
}

type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	Temperature float64       `yaml:"temperature"`
}

type ExtractionConfig struct {
	Method   string   `yaml:"method"`
	MaxChars int      `yaml:"max_chars"`
	Keywords []string `yaml:"keywords"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoadOptions names the optional files Load reads. Empty ConfigFile means
// DefaultConfigFile if it exists; empty EnvFile means DefaultEnvFile.
type LoadOptions struct {
	ConfigFile string
	EnvFile    string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Timeout:     DefaultTimeout,
			MaxRetries:  DefaultRetries,
			Temperature: DefaultTemperature,
		},
		Extraction: ExtractionConfig{
			Method:   "auto",
			MaxChars: DefaultMaxChars,
		},
		Output: OutputConfig{
			Dir: DefaultOutputDir,
		},
	}
}

// Load layers defaults, the YAML file, the .env file and the process
// environment, in that order. Variables already set in the environment win
// over the .env file.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	configFile, explicit := opts.ConfigFile, opts.ConfigFile != ""
	if !explicit {
		configFile = DefaultConfigFile
	}
	if err := cfg.mergeFile(configFile); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", c.LLM.Provider))
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.MaxRetries = getEnvAsInt("LLM_MAX_RETRIES", c.LLM.MaxRetries)

	if key, ok := providerKeyEnv[c.LLM.Provider]; ok {
		c.LLM.APIKey = getEnv(key, c.LLM.APIKey)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI:
		c.LLM.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.BaseURL)
	case ProviderOllama:
		c.LLM.BaseURL = getEnv("OLLAMA_URL", c.LLM.BaseURL)
	}
}

// fillDefaults resolves provider-dependent defaults once the provider is known.
func (c *Config) fillDefaults() {
	if c.LLM.Model == "" {
		c.LLM.Model = providerModels[c.LLM.Provider]
	}
	if c.LLM.BaseURL == "" {
		switch c.LLM.Provider {
		case ProviderOpenAI:
			c.LLM.BaseURL = DefaultBaseURL
		case ProviderOllama:
			c.LLM.BaseURL = DefaultOllamaURL
		}
	}
}

// SetProvider switches provider and re-resolves the provider-specific
// settings from the environment. The model is kept only if set explicitly.
func (c *Config) SetProvider(provider string) {
	provider = strings.ToLower(provider)
	if provider == c.LLM.Provider {
		return
	}
	if c.LLM.Model == providerModels[c.LLM.Provider] {
		c.LLM.Model = ""
	}
	c.LLM.Provider = provider
	c.LLM.APIKey = ""
	c.LLM.BaseURL = ""
	c.applyEnv()
	c.fillDefaults()
}

// Validate checks the configuration before any network or file work starts.
func (c *Config) Validate() error {
	if _, ok := providerModels[c.LLM.Provider]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.LLM.Provider)
	}
	if key, hosted := providerKeyEnv[c.LLM.Provider]; hosted && c.LLM.APIKey == "" {
		return fmt.Errorf("%w: set %s", ErrMissingAPIKey, key)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidValue)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidValue)
	}
	if c.Extraction.MaxChars <= 0 {
		return fmt.Errorf("%w: max_chars must be positive", ErrInvalidValue)
	}
	if !slices.Contains([]string{"auto", "fast", "tables"}, c.Extraction.Method) {
		return fmt.Errorf("%w: extraction method %q", ErrInvalidValue, c.Extraction.Method)
	}
	return nil
}

// Providers lists the supported provider names.
func Providers() []string {
	return []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOllama}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
