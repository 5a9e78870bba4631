package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// FetchConfig controls the shared outbound HTTP client used for both
// search-result pages and scraped product pages.
type FetchConfig struct {
	TimeoutMs    int `yaml:"timeoutMs"`
	MaxRedirects int `yaml:"maxRedirects"`
}

type RodConfig struct {
	BrowserURL string `yaml:"browserURL"`
}

// ScraperConfig selects the fetch engine used for third-party pages.
// "http" uses a plain client; "browser" renders pages through rod.
type ScraperConfig struct {
	Engine string    `yaml:"engine"`
	Rod    RodConfig `yaml:"rod"`
}

// SearchConfig controls the web-search client and the link-resolution
// retry policy. PacingMs is the fixed delay between search requests
// and MaxRetries the per-link retry cap after the initial pass.
type SearchConfig struct {
	BaseURL    string `yaml:"baseURL"`
	PacingMs   int    `yaml:"pacingMs"`
	MaxRetries int    `yaml:"maxRetries"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
	Model   string `yaml:"model"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

type GoogleLLMConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

type LLMConfig struct {
	DefaultProvider string          `yaml:"defaultProvider"`
	OpenAI          OpenAIConfig    `yaml:"openai"`
	Anthropic       AnthropicConfig `yaml:"anthropic"`
	Google          GoogleLLMConfig `yaml:"google"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Scraper ScraperConfig `yaml:"scraper"`
	Search  SearchConfig  `yaml:"search"`
	LLM     LLMConfig     `yaml:"llm"`
	Logging LoggingConfig `yaml:"logging"`
}

func Load(path string) *Config {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg
}

// applyEnvOverrides lets API keys come from the environment (or a
// .env file loaded in main) instead of the config file, so secrets
// stay out of checked-in yaml.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.LLM.Google.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAI.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.Anthropic.APIKey = v
	}
}
