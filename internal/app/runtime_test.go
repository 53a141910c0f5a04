package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldMigrateHonoursTestMode(t *testing.T) {
	t.Cleanup(RefreshTestMode)
	cfg := &Config{MigrateOnStart: true}

	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.False(t, ShouldMigrate(cfg))

	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.True(t, ShouldMigrate(cfg))

	cfg.MigrateOnStart = false
	assert.False(t, ShouldMigrate(cfg))
	assert.False(t, ShouldMigrate(nil))
}
