package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	GrantPassword          = "password"
	GrantRefreshToken      = "refresh_token"
	GrantClientCredentials = "client_credentials"
)

const (
	ProviderGroq       = "groq"
	ProviderPerplexity = "perplexity"
)

// Config is built once at startup and handed to every component.
type Config struct {
	Env  string
	Port string

	Reddit RedditConfig
	LLM    LLMConfig
	Cache  CacheConfig
	Events EventsConfig
	Export ExportConfig

	AllowedOrigins []string
	LogLevel       string
}

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	GrantType    string
	Username     string
	Password     string
	RefreshToken string
	Timeout      time.Duration
	RPM          int
	Burst        int
}

type LLMConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	RawFallback bool
}

type CacheConfig struct {
	Address  string
	Password string
	TLS      bool
	TTL      time.Duration
}

type EventsConfig struct {
	Broker string
	Topic  string
}

type ExportConfig struct {
	S3Bucket    string
	S3Prefix    string
	AWSRegion   string
	AWSEndpoint string
}

// MissingConfigError lists every required key that was blank.
type MissingConfigError struct {
	Keys []string
}

func (e *MissingConfigError) Error() string {
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// InvalidConfigError reports a value that is present but unusable.
type InvalidConfigError struct {
	Key   string
	Value string
	Cause string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s=%q: %s", e.Key, e.Value, e.Cause)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

// Load reads the environment and validates it. Callers are expected to exit on error.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("APP_ENV", "dev"),
		Port:     getEnv("PORT", "3001"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	cfg.Reddit = RedditConfig{
		ClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		ClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		UserAgent:    getEnv("REDDIT_USER_AGENT", ""),
		Username:     getEnv("REDDIT_USERNAME", ""),
		Password:     getEnv("REDDIT_PASSWORD", ""),
		RefreshToken: getEnv("REDDIT_REFRESH_TOKEN", ""),
	}
	cfg.Reddit.GrantType = getEnv("REDDIT_GRANT_TYPE", defaultGrant(cfg.Reddit))

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderGroq))
	cfg.LLM = LLMConfig{
		Provider: provider,
		APIKey:   getEnv("LLM_API_KEY", providerKey(provider)),
		Model:    getEnv("LLM_MODEL", ""),
		BaseURL:  getEnv("LLM_BASE_URL", ""),
	}

	cfg.Cache = CacheConfig{
		Address:  getEnv("VALKEY_INIT_ADDRESS", ""),
		Password: getEnv("VALKEY_PASSWORD", ""),
	}
	cfg.Events = EventsConfig{
		Broker: getEnv("KAFKA_BROKER", ""),
		Topic:  getEnv("KAFKA_TOPIC", "persona-analyses"),
	}
	cfg.Export = ExportConfig{
		S3Bucket:    getEnv("EXPORT_S3_BUCKET", ""),
		S3Prefix:    getEnv("EXPORT_S3_PREFIX", "personas"),
		AWSRegion:   getEnv("AWS_REGION", "us-west-2"),
		AWSEndpoint: getEnv("AWS_ENDPOINT", ""),
	}

	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	var err error
	if cfg.Reddit.Timeout, err = durationEnv("REDDIT_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.LLM.Timeout, err = durationEnv("LLM_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Cache.TTL, err = durationEnv("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Reddit.RPM, err = intEnv("REDDIT_RPM", 60); err != nil {
		return nil, err
	}
	if cfg.Reddit.Burst, err = intEnv("REDDIT_BURST", 5); err != nil {
		return nil, err
	}
	if cfg.LLM.RawFallback, err = boolEnv("PERSONA_RAW_FALLBACK", false); err != nil {
		return nil, err
	}
	if cfg.Cache.TLS, err = boolEnv("VALKEY_TLS", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails on the first class of problem it finds, reporting all missing keys together.
func (c *Config) Validate() error {
	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	require("REDDIT_CLIENT_ID", c.Reddit.ClientID)
	require("REDDIT_CLIENT_SECRET", c.Reddit.ClientSecret)
	require("REDDIT_USER_AGENT", c.Reddit.UserAgent)

	switch c.Reddit.GrantType {
	case GrantPassword:
		require("REDDIT_USERNAME", c.Reddit.Username)
		require("REDDIT_PASSWORD", c.Reddit.Password)
	case GrantRefreshToken:
		require("REDDIT_REFRESH_TOKEN", c.Reddit.RefreshToken)
	case GrantClientCredentials:
	default:
		return &InvalidConfigError{Key: "REDDIT_GRANT_TYPE", Value: c.Reddit.GrantType,
			Cause: "expected password, refresh_token or client_credentials"}
	}

	switch c.LLM.Provider {
	case ProviderGroq, ProviderPerplexity:
	default:
		return &InvalidConfigError{Key: "LLM_PROVIDER", Value: c.LLM.Provider,
			Cause: "expected groq or perplexity"}
	}
	require("LLM_API_KEY", c.LLM.APIKey)

	if len(missing) > 0 {
		return &MissingConfigError{Keys: missing}
	}
	return nil
}

// HealthFlags reports which credential sets are present without exposing them.
func (c *Config) HealthFlags() (redditConfigured, llmConfigured bool) {
	redditConfigured = c.Reddit.ClientID != "" && c.Reddit.ClientSecret != "" && c.Reddit.UserAgent != ""
	llmConfigured = c.LLM.APIKey != ""
	return redditConfigured, llmConfigured
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func defaultGrant(r RedditConfig) string {
	switch {
	case r.Username != "":
		return GrantPassword
	case r.RefreshToken != "":
		return GrantRefreshToken
	default:
		return GrantClientCredentials
	}
}

func providerKey(provider string) string {
	switch provider {
	case ProviderPerplexity:
		return getEnv("PERPLEXITY_API_KEY", "")
	default:
		return getEnv("GROQ_API_KEY", "")
	}
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		// bare numbers are seconds, like the intervals in the producer config
		secs, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return 0, &InvalidConfigError{Key: key, Value: raw, Cause: err.Error()}
		}
		d = time.Duration(secs) * time.Second
	}
	if d <= 0 {
		return 0, &InvalidConfigError{Key: key, Value: raw, Cause: "must be positive"}
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, &InvalidConfigError{Key: key, Value: raw, Cause: "must be a positive integer"}
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &InvalidConfigError{Key: key, Value: raw, Cause: err.Error()}
	}
	return b, nil
}
