package storage

import (
	"path/filepath"
	"testing"
)

// setupTestService creates a migrated service backed by a temp-dir database.
func setupTestService(t *testing.T) *Service {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	service, err := OpenService(dbPath)
	if err != nil {
		t.Fatalf("Failed to open test service: %v", err)
	}

	t.Cleanup(func() {
		_ = service.Close()
	})

	return service
}
