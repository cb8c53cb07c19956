package testsupport

import (
	"path/filepath"
	"testing"

	"geotag/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.TimelineFile = filepath.Join(base, "timeline.json")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DatabasePath = filepath.Join(base, "gps.db")
	return &cfg
}
