package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the vibecheck server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Spotify  SpotifyConfig
	Auth     AuthConfig
	AI       AIConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	FrontendURL     string
	CORSOrigins     []string
	RateLimitPerMin int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Timeout      time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	DeepSeek         DeepSeekConfig
	OpenAI           OpenAIConfig
}

type DeepSeekConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

var validProviders = map[string]bool{
	"deepseek": true,
	"openai":   true,
	"mock":     true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	frontendURL := envString("FRONTEND_URL", "http://127.0.0.1:5174")

	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("VIBECHECK_PORT", 8080),
			Env:             envString("VIBECHECK_ENV", "development"),
			FrontendURL:     frontendURL,
			CORSOrigins:     envList("CORS_ALLOWED_ORIGINS", []string{frontendURL}),
			RateLimitPerMin: envInt("RATE_LIMIT_PER_MIN", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Spotify: SpotifyConfig{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("SPOTIFY_REDIRECT_URI"),
			Timeout:      envDuration("SPOTIFY_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  envDuration("JWT_TOKEN_TTL", 30*time.Minute),
		},
		AI: AIConfig{
			Provider:         os.Getenv("AI_PROVIDER"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			DeepSeek: DeepSeekConfig{
				APIKey:  os.Getenv("DEEPSEEK_API_KEY"),
				BaseURL: envString("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
				Model:   envString("DEEPSEEK_MODEL", "deepseek-chat"),
			},
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Spotify.ClientID == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID is required")
	}
	if c.Spotify.ClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_SECRET is required")
	}
	if c.Spotify.RedirectURI == "" {
		return fmt.Errorf("SPOTIFY_REDIRECT_URI is required")
	}
	if !strings.HasPrefix(c.Spotify.RedirectURI, "http://") && !strings.HasPrefix(c.Spotify.RedirectURI, "https://") {
		return fmt.Errorf("SPOTIFY_REDIRECT_URI must start with http:// or https://, got %q", c.Spotify.RedirectURI)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of deepseek, openai, mock; got %q", c.AI.Provider)
	}

	if c.AI.Provider == "deepseek" && c.AI.DeepSeek.APIKey == "" {
		return fmt.Errorf("DEEPSEEK_API_KEY is required when AI_PROVIDER is deepseek")
	}
	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
