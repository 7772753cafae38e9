// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nyoka-packages/internal/adapters"
	"nyoka-packages/internal/server"
	"nyoka-packages/internal/types"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// Repository is a served store rooted in a temp dir.
type Repository struct {
	Root  string
	URL   string
	Store adapters.ResourceStoreFileAdapter
}

// StartRepository serves a fresh store over httptest for the duration of
// the test.
func StartRepository(t *testing.T) Repository {
	t.Helper()
	root := t.TempDir()
	store := adapters.NewResourceStoreFileAdapter(root)
	srv := httptest.NewServer(server.NewServer(store).Handler())
	t.Cleanup(srv.Close)
	return Repository{Root: root, URL: srv.URL, Store: store}
}

// Seed stores one resource version with the given direct dependencies.
func (r Repository) Seed(t *testing.T, id types.ResourceID, payload string, deps ...types.ResourceID) {
	t.Helper()
	SeedResource(t, r.Store, id, payload, deps...)
}

func SeedResource(t *testing.T, store adapters.ResourceStoreFileAdapter, id types.ResourceID, payload string, deps ...types.ResourceID) {
	t.Helper()
	manifest := types.NewManifest()
	for _, dep := range deps {
		manifest.Add(dep.Namespace, dep.Name, dep.Version)
	}
	require.NoError(t, store.PutResource(t.Context(), id, manifest, strings.NewReader(payload)))
}

// ID builds a ResourceID.
func ID(ns types.Namespace, name string, version string) types.ResourceID {
	return types.ResourceID{Namespace: ns, Name: name, Version: version}
}
