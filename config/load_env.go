package config

import (
	"log/slog"
	"os"

	"github.com/subosito/gotenv"
)

const ENV_DIR = "config/envs"

// LoadEnv loads ENV_FILE when set, otherwise config/envs/.env.<env>. Values already
// present in the process environment win. It returns the file that was loaded, or
// "" when none was found.
func LoadEnv(env string) string {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ENV_DIR + "/.env." + env
	}

	if err := gotenv.Load(envFile); err != nil {
		slog.Warn("[Config] No .env file found, using OS environment",
			slog.String("file", envFile))
		return ""
	}
	slog.Info("[Config] Loaded env file", slog.String("file", envFile))
	return envFile
}
