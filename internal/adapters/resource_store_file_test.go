package adapters

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyoka-packages/internal/types"
)

func putTestResource(t *testing.T, store ResourceStoreFileAdapter, ns types.Namespace, name string, version string, payload string, manifest types.Manifest) {
	t.Helper()
	if manifest == nil {
		manifest = types.NewManifest()
	}
	id := types.ResourceID{Namespace: ns, Name: name, Version: version}
	require.NoError(t, store.PutResource(t.Context(), id, manifest, bytes.NewBufferString(payload)))
}

func TestResourceStoreRoundTrip(t *testing.T) {
	store := NewResourceStoreFileAdapter(t.TempDir())
	manifest := types.NewManifest()
	manifest.Add(types.NamespaceData, "iris.csv", "2.0")
	manifest.Add(types.NamespaceCode, "prep.py", "1.1")
	id := types.ResourceID{Namespace: types.NamespaceModel, Name: "iris.pmml", Version: "1.0.0"}
	payload := []byte("<PMML version=\"4.4\"/>\n")

	require.NoError(t, store.PutResource(t.Context(), id, manifest, bytes.NewReader(payload)))

	body, size, err := store.OpenPayload(t.Context(), id)
	require.NoError(t, err)
	defer body.Close()
	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, int64(len(payload)), size)

	gotManifest, err := store.ReadManifest(t.Context(), id)
	require.NoError(t, err)
	if diff := cmp.Diff(manifest, gotManifest); diff != "" {
		t.Fatalf("unexpected manifest (-want +got):\n%s", diff)
	}
}

func TestResourceStoreManifestFileFormat(t *testing.T) {
	root := t.TempDir()
	store := NewResourceStoreFileAdapter(root)
	manifest := types.NewManifest()
	manifest.Add(types.NamespaceData, "iris.csv", "2.0")
	putTestResource(t, store, types.NamespaceCode, "train.py", "1.0", "print(1)\n", manifest)

	content, err := os.ReadFile(filepath.Join(root, "code", "train.py", "1.0", "train.py.deps"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":[],"data":[{"key":"iris.csv","version":"2.0"}],"model":[]}`, string(content))
	assert.FileExists(t, filepath.Join(root, "code", "train.py", "1.0", "train.py"))
}

func TestResourceStorePutOverwrites(t *testing.T) {
	store := NewResourceStoreFileAdapter(t.TempDir())
	first := types.NewManifest()
	first.Add(types.NamespaceData, "a.csv", "1.0")
	putTestResource(t, store, types.NamespaceCode, "x.py", "1.0", "long original payload", first)
	putTestResource(t, store, types.NamespaceCode, "x.py", "1.0", "short", nil)

	id := types.ResourceID{Namespace: types.NamespaceCode, Name: "x.py", Version: "1.0"}
	size, err := store.PayloadSize(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(len("short")), size)
	manifest, err := store.ReadManifest(t.Context(), id)
	require.NoError(t, err)
	assert.Zero(t, manifest.Len())
}

func TestResourceStoreListResourcesReportsLatest(t *testing.T) {
	store := NewResourceStoreFileAdapter(t.TempDir())
	putTestResource(t, store, types.NamespaceData, "iris.csv", "1.0", "a", nil)
	putTestResource(t, store, types.NamespaceData, "iris.csv", "1.2", "abcdef", nil)
	putTestResource(t, store, types.NamespaceData, "iris.csv", "1.1", "abc", nil)
	putTestResource(t, store, types.NamespaceData, "wine.csv", "3", "12345678", nil)

	summaries, err := store.ListResources(t.Context(), types.NamespaceData)
	require.NoError(t, err)
	want := map[string]types.ResourceSummary{
		"iris.csv": {LatestVersion: "1.2", ByteCount: 6},
		"wine.csv": {LatestVersion: "3", ByteCount: 8},
	}
	if diff := cmp.Diff(want, summaries); diff != "" {
		t.Fatalf("unexpected summaries (-want +got):\n%s", diff)
	}
}

func TestResourceStoreListVersions(t *testing.T) {
	store := NewResourceStoreFileAdapter(t.TempDir())
	for _, version := range []string{"1.0", "1.10", "1.9", "1.9.1"} {
		putTestResource(t, store, types.NamespaceCode, "a.py", version, version, nil)
	}
	versions, err := store.ListVersions(t.Context(), types.NamespaceCode, "a.py")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.10", "1.9", "1.9.1", "1.0"}, versions.Versions)
	assert.Equal(t, "1.10", versions.Latest)
}

func TestResourceStoreErrors(t *testing.T) {
	root := t.TempDir()
	store := NewResourceStoreFileAdapter(root)
	putTestResource(t, store, types.NamespaceCode, "a.py", "1.0", "x", nil)

	_, err := store.ListResources(t.Context(), types.NamespaceModel)
	assert.Equal(t, types.ErrorKindNotFound, types.KindOf(err))

	_, err = store.ListVersions(t.Context(), types.NamespaceCode, "missing.py")
	assert.Equal(t, types.ErrorKindNotFound, types.KindOf(err))

	_, _, err = store.OpenPayload(t.Context(), types.ResourceID{Namespace: types.NamespaceCode, Name: "a.py", Version: "2.0"})
	assert.Equal(t, types.ErrorKindNotFound, types.KindOf(err))

	_, err = store.ReadManifest(t.Context(), types.ResourceID{Namespace: types.NamespaceCode, Name: "a.py", Version: "9"})
	assert.Equal(t, types.ErrorKindNotFound, types.KindOf(err))

	_, err = store.PayloadSize(t.Context(), types.ResourceID{Namespace: types.NamespaceCode, Name: "../a.py", Version: "1.0"})
	assert.Equal(t, types.ErrorKindInvalidIdentifier, types.KindOf(err))

	err = store.PutResource(t.Context(), types.ResourceID{Namespace: types.NamespaceCode, Name: "a.py", Version: "1.x"}, nil, bytes.NewBufferString("x"))
	assert.Equal(t, types.ErrorKindMalformedVersion, types.KindOf(err))

	manifestPath := filepath.Join(root, "code", "a.py", "1.0", "a.py.deps")
	require.NoError(t, os.WriteFile(manifestPath, []byte("{not json"), 0644))
	_, err = store.ReadManifest(t.Context(), types.ResourceID{Namespace: types.NamespaceCode, Name: "a.py", Version: "1.0"})
	assert.Equal(t, types.ErrorKindCorruptManifest, types.KindOf(err))
}

func TestResourceStoreEmptyResourceIsCorrupt(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "code", "empty.py"), 0755))
	store := NewResourceStoreFileAdapter(root)

	_, err := store.ListResources(t.Context(), types.NamespaceCode)
	require.Error(t, err)
	assert.Equal(t, types.ErrorKindCorruptStore, types.KindOf(err))
}

func TestResourceStoreMalformedVersionDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "code", "a.py", "beta"), 0755))
	store := NewResourceStoreFileAdapter(root)

	_, err := store.ListVersions(t.Context(), types.NamespaceCode, "a.py")
	assert.Equal(t, types.ErrorKindMalformedVersion, types.KindOf(err))
}
