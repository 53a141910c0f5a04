// Package testing switches the process into test mode when imported by a
// test binary, so packages skip migrations and external renderers.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("TILEQUOTE_TEST_MODE", "1")
		if os.Getenv("API_TOKEN_HASH") == "" {
			_ = os.Setenv("API_TOKEN_HASH", "test-only")
		}
		if os.Getenv("GOTENBERG_URL") == "" {
			_ = os.Setenv("GOTENBERG_URL", "http://127.0.0.1:0")
		}
		if os.Getenv("INTERPRETER_URL") == "" {
			_ = os.Setenv("INTERPRETER_URL", "http://127.0.0.1:0/interpret")
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain can be delegated to from packages that need test mode before
// any other init runs.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
