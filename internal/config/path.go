package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const configFileName = "config.conf"

// ResolvePath picks the config location: an explicit --config path wins,
// then $XDG_CONFIG_HOME/intervuai, then ~/.config/intervuai.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "intervuai", configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}
	return filepath.Join(home, ".config", "intervuai", configFileName), nil
}
