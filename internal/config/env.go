package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvServerURL overrides server.url when set.
const EnvServerURL = "INTERVUAI_SERVER_URL"

// applyEnv loads a .env file when present and applies recognized environment
// overrides on top of the parsed config. A missing .env file is not an error.
func applyEnv(cfg Config) Config {
	_ = godotenv.Load()

	if url := strings.TrimSpace(os.Getenv(EnvServerURL)); url != "" {
		cfg.Server.URL = url
	}
	return cfg
}
