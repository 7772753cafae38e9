package integration

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyoka-packages/internal/adapters"
	"nyoka-packages/internal/server"
	"nyoka-packages/internal/types"
	"nyoka-packages/tests/testutil"
)

// TestExistingStoreLayoutServed serves a store tree written by hand in the
// on-disk layout and reads it back through the remote adapter.
func TestExistingStoreLayoutServed(t *testing.T) {
	root := t.TempDir()
	writeStoreFile(t, root, "data/iris.csv/1.0/iris.csv", "a,b\n1,2\n")
	writeStoreFile(t, root, "data/iris.csv/1.0/iris.csv.deps", `{"code": [], "data": [], "model": []}`)
	writeStoreFile(t, root, "data/iris.csv/2.0/iris.csv", "a,b\n")
	writeStoreFile(t, root, "data/iris.csv/2.0/iris.csv.deps", `{"code": [], "data": [], "model": []}`)
	writeStoreFile(t, root, "code/prep.py/1.0/prep.py", "import csv\n")
	// Repeated keys keep the last listed version.
	writeStoreFile(t, root, "code/prep.py/1.0/prep.py.deps",
		`{"code": [], "data": [{"key": "iris.csv", "version": "2.0"}, {"key": "iris.csv", "version": "1.0"}], "model": []}`)

	srv := httptest.NewServer(server.NewServer(adapters.NewResourceStoreFileAdapter(root)).Handler())
	defer srv.Close()
	remote := adapters.NewRemoteRepositoryHTTPAdapter(srv.URL, 5)
	ctx := t.Context()

	summaries, err := remote.ListResources(ctx, types.NamespaceData)
	require.NoError(t, err)
	assert.Equal(t, types.ResourceSummary{LatestVersion: "2.0", ByteCount: 4}, summaries["iris.csv"])

	closure, err := remote.FetchClosure(ctx, testutil.ID(types.NamespaceCode, "prep.py", "1.0"))
	require.NoError(t, err)
	want := types.NewClosure()
	want[types.NamespaceData]["iris.csv"] = types.DependencyDescription{Version: "1.0", IsDirectDependency: true, ByteCount: 8}
	if diff := cmp.Diff(want, closure); diff != "" {
		t.Fatalf("unexpected closure (-want +got):\n%s", diff)
	}
}

func TestPublishedResourceLandsInStoreLayout(t *testing.T) {
	repo := testutil.StartRepository(t)
	remote := adapters.NewRemoteRepositoryHTTPAdapter(repo.URL, 5)
	ctx := t.Context()

	repo.Seed(t, testutil.ID(types.NamespaceData, "iris.csv", "1.0"), "a,b\n")
	manifest := types.NewManifest()
	manifest.Add(types.NamespaceData, "iris.csv", "1.0")
	payload := "import csv\n"
	require.NoError(t, remote.Publish(ctx, testutil.ID(types.NamespaceCode, "prep.py", "3.1"), manifest,
		strings.NewReader(payload), int64(len(payload))))

	content, err := os.ReadFile(filepath.Join(repo.Root, "code", "prep.py", "3.1", "prep.py"))
	require.NoError(t, err)
	assert.Equal(t, payload, string(content))

	deps, err := os.ReadFile(filepath.Join(repo.Root, "code", "prep.py", "3.1", "prep.py.deps"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code": [], "data": [{"key": "iris.csv", "version": "1.0"}], "model": []}`, string(deps))
}

func writeStoreFile(t *testing.T, root string, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
