package types

import "time"

// HTTPConfig holds shared settings for outbound provider requests.
type HTTPConfig struct {
	// Timeout bounds a single outbound request.
	Timeout time.Duration `json:"http_timeout" yaml:"http_timeout" mapstructure:"http_timeout"`

	// UserAgent is the User-Agent header sent to providers
	// (e.g. "research-hub/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds provider settings.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Timeout is the bounded wait for all providers on the combined page.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of 429 retries for providers that rate limit
	// (Semantic Scholar, GitHub).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// SerpAPIKey authenticates the Google Scholar proxy. Required by that
	// provider only; there is no built-in default.
	SerpAPIKey string `json:"serpapi_api_key,omitempty" yaml:"serpapi_api_key,omitempty" mapstructure:"serpapi_api_key"`

	// GitHubToken is an optional token for higher GitHub rate limits.
	GitHubToken string `json:"github_token,omitempty" yaml:"github_token,omitempty" mapstructure:"github_token"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// StaticDir holds index.html, results.html, and other static assets.
	StaticDir string `json:"static_dir" yaml:"static_dir" mapstructure:"static_dir"`

	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// ResultsConfig controls the combined results page.
type ResultsConfig struct {
	// Required names providers whose failure aborts the page instead of
	// degrading to a notice in their section.
	Required []string `json:"required" yaml:"required" mapstructure:"required"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// HubConfig groups all configuration for the process.
type HubConfig struct {
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Search  SearchConfig  `json:"search" yaml:"search" mapstructure:"search"`
	Results ResultsConfig `json:"results" yaml:"results" mapstructure:"results"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// Redacted returns a copy of c with credentials masked, for display.
func (c HubConfig) Redacted() HubConfig {
	c.Search.SerpAPIKey = mask(c.Search.SerpAPIKey)
	c.Search.GitHubToken = mask(c.Search.GitHubToken)
	c.Search.SemanticScholarAPIKey = mask(c.Search.SemanticScholarAPIKey)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
