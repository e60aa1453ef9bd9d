// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"sync"
)

// configDirOverride allows tests to override the config directory.
// This is necessary because os.UserHomeDir() doesn't reliably respect
// the HOME environment variable on all platforms (e.g., macOS in CI).
var configDirOverride string

var (
	mu sync.Mutex

	// configFilePathOverride forces Load to read a specific file,
	// set from the --config flag before any command runs.
	configFilePathOverride string

	// globalConfig caches the last successful Load result.
	globalConfig *Config
)

// Reset clears test overrides and the cached config.
// Call from test cleanup to restore defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	configDirOverride = ""
	configFilePathOverride = ""
	globalConfig = nil
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms (e.g., macOS in CI).
func SetConfigDirOverride(dir string) {
	mu.Lock()
	defer mu.Unlock()
	configDirOverride = dir
	globalConfig = nil
}

// SetConfigFilePathOverride forces subsequent Load calls to read the
// given file and invalidates the cached config.
func SetConfigFilePathOverride(path string) {
	mu.Lock()
	defer mu.Unlock()
	configFilePathOverride = path
	globalConfig = nil
}

// Load reads the configuration, caching the result for Get. Errors do
// not poison the cache; a later call retries.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: configFilePathOverride})
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

// Get returns the cached configuration, loading it on first use.
// Load failures fall back to defaults so read-only callers always get
// a usable config.
func Get() *Config {
	mu.Lock()
	cached := globalConfig
	mu.Unlock()
	if cached != nil {
		return cached
	}

	cfg, err := Load()
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}
