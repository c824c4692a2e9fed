package services

import (
	"path/filepath"
	"testing"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/ports/mocks"
	"github.com/kamal-hamza/cloak-cli/internal/handle"
)

func newTestRegistry(t *testing.T) *handle.Registry {
	t.Helper()
	r, err := handle.NewRegistry(filepath.Join(t.TempDir(), "handles"), nil)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// seedFile stores a record through the mock and returns its id
func seedFile(t *testing.T, gw *mocks.MockGateway, name, mimeType string, payload []byte) int64 {
	t.Helper()
	id, err := gw.Add(t.Context(), domain.NewFile{
		Name:     name,
		MimeType: mimeType,
		Payload:  payload,
	})
	if err != nil {
		t.Fatalf("failed to seed %s: %v", name, err)
	}
	return id
}
