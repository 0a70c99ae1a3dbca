package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"APP_ENV", "PORT", "LOG_LEVEL",
	"REDDIT_CLIENT_ID", "REDDIT_CLIENT_SECRET", "REDDIT_USER_AGENT", "REDDIT_GRANT_TYPE",
	"REDDIT_USERNAME", "REDDIT_PASSWORD", "REDDIT_REFRESH_TOKEN", "REDDIT_TIMEOUT",
	"REDDIT_RPM", "REDDIT_BURST",
	"LLM_PROVIDER", "LLM_API_KEY", "GROQ_API_KEY", "PERPLEXITY_API_KEY", "LLM_MODEL",
	"LLM_BASE_URL", "LLM_TIMEOUT", "PERSONA_RAW_FALLBACK",
	"VALKEY_INIT_ADDRESS", "VALKEY_PASSWORD", "VALKEY_TLS", "CACHE_TTL",
	"KAFKA_BROKER", "KAFKA_TOPIC", "EXPORT_S3_BUCKET", "EXPORT_S3_PREFIX",
	"AWS_REGION", "AWS_ENDPOINT", "ALLOWED_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func setBaseEnv(t *testing.T) {
	t.Helper()
	clearEnv(t)
	t.Setenv("REDDIT_CLIENT_ID", "id")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret")
	t.Setenv("REDDIT_USER_AGENT", "persona-test/1.0")
	t.Setenv("GROQ_API_KEY", "gsk_test")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3001" {
		t.Fatalf("expected default port 3001, got %s", cfg.Port)
	}
	if cfg.Reddit.GrantType != GrantClientCredentials {
		t.Fatalf("expected client_credentials grant, got %s", cfg.Reddit.GrantType)
	}
	if cfg.Reddit.Timeout != 15*time.Second {
		t.Fatalf("expected finite reddit timeout, got %v", cfg.Reddit.Timeout)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Fatalf("expected 30s llm timeout, got %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.Provider != ProviderGroq || cfg.LLM.APIKey != "gsk_test" {
		t.Fatalf("unexpected llm config %+v", cfg.LLM)
	}
	if cfg.LLM.RawFallback {
		t.Fatalf("raw fallback should be off by default")
	}
}

func TestLoadMissingReportsEveryKey(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	var missing *MissingConfigError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingConfigError, got %v", err)
	}
	for _, key := range []string{"REDDIT_CLIENT_ID", "REDDIT_CLIENT_SECRET", "REDDIT_USER_AGENT", "LLM_API_KEY"} {
		if !strings.Contains(missing.Error(), key) {
			t.Fatalf("expected %s in %q", key, missing.Error())
		}
	}
}

func TestLoadPasswordGrantRequiresCredentials(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REDDIT_USERNAME", "bot")

	_, err := Load()
	var missing *MissingConfigError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingConfigError, got %v", err)
	}
	if len(missing.Keys) != 1 || missing.Keys[0] != "REDDIT_PASSWORD" {
		t.Fatalf("expected only REDDIT_PASSWORD missing, got %v", missing.Keys)
	}

	t.Setenv("REDDIT_PASSWORD", "hunter2")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reddit.GrantType != GrantPassword {
		t.Fatalf("expected password grant, got %s", cfg.Reddit.GrantType)
	}
}

func TestLoadPerplexityKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "Perplexity")
	t.Setenv("PERPLEXITY_API_KEY", "pplx_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != ProviderPerplexity || cfg.LLM.APIKey != "pplx_test" {
		t.Fatalf("unexpected llm config %+v", cfg.LLM)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	cases := map[string]string{
		"REDDIT_GRANT_TYPE":    "implicit",
		"LLM_PROVIDER":         "openai",
		"REDDIT_TIMEOUT":       "soon",
		"REDDIT_RPM":           "-3",
		"PERSONA_RAW_FALLBACK": "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			var invalid *InvalidConfigError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidConfigError, got %v", err)
			}
			if invalid.Key != key {
				t.Fatalf("expected key %s, got %s", key, invalid.Key)
			}
		})
	}
}

func TestDurationAcceptsSeconds(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LLM_TIMEOUT", "45")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Timeout != 45*time.Second {
		t.Fatalf("expected 45s, got %v", cfg.LLM.Timeout)
	}
}

func TestHealthFlags(t *testing.T) {
	cfg := &Config{}
	reddit, llm := cfg.HealthFlags()
	if reddit || llm {
		t.Fatalf("empty config should report nothing configured")
	}

	cfg.Reddit = RedditConfig{ClientID: "a", ClientSecret: "b", UserAgent: "c"}
	cfg.LLM.APIKey = "k"
	reddit, llm = cfg.HealthFlags()
	if !reddit || !llm {
		t.Fatalf("expected both configured")
	}
}

func TestLoadEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	// registered with t.Setenv so the value is restored afterwards
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")
	file := filepath.Join(t.TempDir(), ".env.test")
	if err := os.WriteFile(file, []byte("PORT=4000\nREDDIT_USER_AGENT=from-file/1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", file)
	t.Setenv("REDDIT_USER_AGENT", "from-env/1.0")

	if got := LoadEnv("test"); got != file {
		t.Fatalf("expected %s loaded, got %q", file, got)
	}
	if os.Getenv("PORT") != "4000" {
		t.Fatalf("expected PORT from file, got %q", os.Getenv("PORT"))
	}
	if os.Getenv("REDDIT_USER_AGENT") != "from-env/1.0" {
		t.Fatalf("environment value should win, got %q", os.Getenv("REDDIT_USER_AGENT"))
	}
}

func TestLoadEnvMissingFile(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "nope"))
	if got := LoadEnv("test"); got != "" {
		t.Fatalf("expected no file loaded, got %q", got)
	}
}
