package testsupport

import (
	"path/filepath"
	"testing"

	"geotag/internal/gpsstore"
)

// MustOpenGPSStore opens a gpsstore.Store backed by a per-test temp database
// and registers cleanup.
func MustOpenGPSStore(t testing.TB) *gpsstore.Store {
	t.Helper()

	store, err := gpsstore.Open(filepath.Join(t.TempDir(), "gps.db"))
	if err != nil {
		t.Fatalf("gpsstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
