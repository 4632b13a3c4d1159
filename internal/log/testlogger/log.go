package testlogger

import (
	"os"
	"testing"

	"github.com/taurusgroup/multi-party-compute/internal/log"
)

// New returns a JSON logger tagged with the test name. It logs at
// DebugLevel when MPC_LOG=DEBUG.
func New(t testing.TB) log.Logger {
	level := log.InfoLevel
	if os.Getenv("MPC_LOG") == "DEBUG" {
		level = log.DebugLevel
	}
	return log.New(nil, level, true).With("testName", t.Name())
}
