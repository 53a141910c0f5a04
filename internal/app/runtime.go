package app

import (
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "TILEQUOTE_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether runtime side effects (migrations, cron
// registration, PDF rendering against Gotenberg) should be skipped.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode updates the cached flag after environment changes.
func RefreshTestMode() {
	detectTestMode()
}

// ShouldMigrate reports whether the API should apply migrations at boot.
func ShouldMigrate(cfg *Config) bool {
	return cfg != nil && cfg.MigrateOnStart && !InTestMode()
}
