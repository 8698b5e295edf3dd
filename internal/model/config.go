package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Render  RenderConfig  `yaml:"render" mapstructure:"render"`
	Markers MarkersConfig `yaml:"markers" mapstructure:"markers"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
}

// LLMConfig selects and configures the extraction provider
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // gemini, openai, anthropic, ollama
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// RenderConfig configures the static map rendering collaborator
type RenderConfig struct {
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey       string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Width        int           `yaml:"width" mapstructure:"width"`
	Height       int           `yaml:"height" mapstructure:"height"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	DefaultTheme string        `yaml:"default_theme" mapstructure:"default_theme"`
}

// MarkersConfig configures marker synthesis
type MarkersConfig struct {
	Palette    []string `yaml:"palette" mapstructure:"palette"`
	NameOffset float64  `yaml:"name_offset" mapstructure:"name_offset"` // longitude delta for name markers
}

// StoreConfig selects where the current result set lives
type StoreConfig struct {
	Backend   string `yaml:"backend" mapstructure:"backend"` // memory, file, layered, redis
	Path      string `yaml:"path" mapstructure:"path"`
	RedisAddr string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisDB   int    `yaml:"redis_db" mapstructure:"redis_db"`
	RedisKey  string `yaml:"redis_key" mapstructure:"redis_key"`
}

// ServerConfig configures the HTTP front end
type ServerConfig struct {
	Host        string   `yaml:"host" mapstructure:"host"`
	Port        int      `yaml:"port" mapstructure:"port"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second per client
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`

	// TrustedProxies lists proxy IPs/CIDRs allowed to set X-Forwarded-For.
	// Empty means the peer address is always the client.
	TrustedProxies []string `yaml:"trusted_proxies" mapstructure:"trusted_proxies"`
}

// HTTPConfig holds outbound HTTP settings shared by all collaborators
type HTTPConfig struct {
	UserAgent  string `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LogConfig configures zap
type LogConfig struct {
	Mode  string `yaml:"mode" mapstructure:"mode"` // dev or prod
	Level string `yaml:"level" mapstructure:"level"`
}

// BatchConfig configures the batch command
type BatchConfig struct {
	Concurrency       int     `yaml:"concurrency" mapstructure:"concurrency"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// DefaultPalette is the 8-colour marker cycle
var DefaultPalette = []string{
	"0xE6194B", // red
	"0x4363D8", // blue
	"0x3CB44B", // green
	"0x911EB4", // purple
	"0xF58231", // orange
	"0x42D4F4", // cyan
	"0xF032E6", // magenta
	"0x9A6324", // brown
}

// DefaultNameOffset is the longitude delta between a numbered pin and its name marker
const DefaultNameOffset = 0.2

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "gemini",
			Model:     "gemini-2.0-flash",
			Timeout:   60,
			MaxTokens: 2048,
		},
		Render: RenderConfig{
			BaseURL:      "https://maps.googleapis.com/maps/api/staticmap",
			Width:        800,
			Height:       600,
			Timeout:      30 * time.Second,
			MaxBodyBytes: 10_000_000,
			DefaultTheme: "default",
		},
		Markers: MarkersConfig{
			Palette:    append([]string(nil), DefaultPalette...),
			NameOffset: DefaultNameOffset,
		},
		Store: StoreConfig{
			Backend:  "layered",
			Path:     "coordinates.json",
			RedisKey: "atlasprompt:current",
		},
		Server: ServerConfig{
			Host:      "localhost",
			Port:      5000,
			RateLimit: 2,
			RateBurst: 5,
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
		HTTP: HTTPConfig{
			UserAgent: "atlasprompt/0.1",
		},
		Log: LogConfig{
			Mode:  "dev",
			Level: "info",
		},
		Batch: BatchConfig{
			Concurrency:       4,
			RequestsPerSecond: 1,
			Burst:             2,
		},
	}
}
