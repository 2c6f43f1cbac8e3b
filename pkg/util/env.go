package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvWithFallbacks ensures the specified environment variable is present.
// It attempts to load each fallback .env file (in order) to populate any variables that
// are currently missing from the environment, without overwriting already-set variables.
// Then it reads and returns the requested variable.
//
// Fallback files, in order:
//   - <ConfigBase>/.env (next to profiles.json)
//   - $HOME/.local/bin/.env
//
// Returns the value when found, or a non-nil error if the variable remains unset.
func LoadEnvWithFallbacks(name string) (string, error) {
	var tried []string
	for _, envPath := range envFallbackPaths() {
		if info, statErr := os.Stat(envPath); statErr == nil && !info.IsDir() {
			// godotenv.Load will NOT override variables that are already set.
			_ = godotenv.Load(envPath)
		}
		tried = append(tried, envPath)
	}

	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, nil
	}

	if len(tried) == 0 {
		return "", fmt.Errorf("environment variable %q not set and no fallback file resolved", name)
	}
	return "", fmt.Errorf("environment variable %q not set; attempted fallback files %s", name, strings.Join(tried, ", "))
}

func envFallbackPaths() []string {
	paths := []string{GetEnvFilePath()}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".local", "bin", ".env"))
	}
	return paths
}

// EnvBool reports whether the variable holds a truthy value (1, true, yes, on).
func EnvBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// EnvString returns the trimmed variable or def when blank.
func EnvString(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

// EnvInt64 returns the variable parsed as int64 or def when blank or invalid.
func EnvInt64(name string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
