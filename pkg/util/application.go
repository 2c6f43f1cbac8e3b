package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultAppName = "richpresence"

var (
	// ConfiguredAppName overrides the directory name used under the OS config and cache roots.
	ConfiguredAppName string

	ApplicationSupportPath string
	ApplicationCachesPath  string
)

// Version is the current version of richpresence.
const Version = "v0.4.0"

func init() {
	ApplicationSupportPath = GetApplicationSupportPath()
	ApplicationCachesPath = GetApplicationCachesPath()
}

// EffectiveAppName returns the configured application name or the default.
func EffectiveAppName() string {
	return sanitizeName(ConfiguredAppName)
}

// GetApplicationSupportPath returns the base path for configuration files using the unified OS rules:
//   - Linux/Unix:  ~/.config/<AppName>
//   - macOS:       ~/Library/Preferences/<AppName>
//   - Windows:     %APPDATA%/<AppName>
func GetApplicationSupportPath() string {
	app := EffectiveAppName()
	if dir := strings.TrimSpace(platformConfigDir(app)); dir != "" {
		return dir
	}
	return filepath.Join(".", "config", app)
}

// GetApplicationCachesPath returns the base path for cache files using the unified OS rules:
//   - Linux/Unix:  ~/.cache/<AppName>
//   - macOS:       ~/Library/Caches/<AppName>
//   - Windows:     %APPDATA%/<AppName>/Cache
func GetApplicationCachesPath() string {
	app := EffectiveAppName()
	if dir := strings.TrimSpace(platformCacheDir(app)); dir != "" {
		return dir
	}
	return filepath.Join(".", "cache", app)
}

// GetProfilesFilePath returns the path of the profile document.
// Layout: <ConfigBase>/profiles.json
func GetProfilesFilePath() string {
	return filepath.Join(ApplicationSupportPath, "profiles.json")
}

// GetEnvFilePath returns the optional .env file kept next to the profiles.
func GetEnvFilePath() string {
	return filepath.Join(ApplicationSupportPath, ".env")
}

// GetHistoryDBPath returns the SQLite DB path for broadcast run history.
// Layout: <CachesBase>/history/history.db
func GetHistoryDBPath() string {
	return filepath.Join(ApplicationCachesPath, "history", "history.db")
}

// GetLogFilePath returns the path to the main log file using the unified OS rules:
//   - Linux/Unix:  ~/.log/<AppName>/richpresence.log
//   - macOS:       ~/Library/Logs/<AppName>/richpresence.log
//   - Windows:     %APPDATA%/<AppName>/Logs/richpresence.log
func GetLogFilePath() string {
	app := EffectiveAppName()
	base := strings.TrimSpace(platformLogDir(app))
	if base == "" {
		base = filepath.Join(".", "logs", app)
	}
	return filepath.Join(base, "richpresence.log")
}

// EnsureCacheDirs creates base cache directories as needed.
// Safe to call multiple times.
func EnsureCacheDirs() error {
	dirs := []string{
		filepath.Dir(GetHistoryDBPath()),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory %s: %w", d, err)
		}
	}
	return nil
}

func sanitizeName(s string) string {
	out := strings.TrimSpace(s)
	out = strings.ReplaceAll(out, "/", "-")
	out = strings.ReplaceAll(out, string(filepath.Separator), "-")
	if out == "" {
		return defaultAppName
	}
	return out
}
