package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"nyoka-packages/internal/adapters"
	"nyoka-packages/internal/types"
)

func newTestServer(t *testing.T) (*httptest.Server, adapters.ResourceStoreFileAdapter) {
	t.Helper()
	store := adapters.NewResourceStoreFileAdapter(t.TempDir())
	srv := httptest.NewServer(NewServer(store).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func seed(t *testing.T, store adapters.ResourceStoreFileAdapter, ns types.Namespace, name string, version string, payload string, manifest types.Manifest) {
	t.Helper()
	if manifest == nil {
		manifest = types.NewManifest()
	}
	id := types.ResourceID{Namespace: ns, Name: name, Version: version}
	require.NoError(t, store.PutResource(t.Context(), id, manifest, strings.NewReader(payload)))
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestListResources(t *testing.T) {
	srv, store := newTestServer(t)
	seed(t, store, types.NamespaceCode, "train.py", "1.0", "a", nil)
	seed(t, store, types.NamespaceCode, "train.py", "1.10", "abcd", nil)
	seed(t, store, types.NamespaceCode, "train.py", "1.9", "abc", nil)
	seed(t, store, types.NamespaceCode, "prep.py", "0.1", "xy", nil)

	var got map[string]types.ResourceSummaryDocument
	status := getJSON(t, srv.URL+"/resources/code", &got)
	require.Equal(t, http.StatusOK, status)

	want := map[string]types.ResourceSummaryDocument{
		"train.py": {ByteCount: 4, VersionStr: "1.10"},
		"prep.py":  {ByteCount: 2, VersionStr: "0.1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected summaries (-want +got):\n%s", diff)
	}
}

func TestListResourcesUnknownNamespace(t *testing.T) {
	srv, _ := newTestServer(t)

	var got types.ErrorDocument
	status := getJSON(t, srv.URL+"/resources/binaries", &got)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, string(types.ErrorKindInvalidIdentifier), got.Error)
}

func TestListResourcesMissingNamespaceDir(t *testing.T) {
	srv, _ := newTestServer(t)

	var got types.ErrorDocument
	status := getJSON(t, srv.URL+"/resources/model", &got)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, string(types.ErrorKindNotFound), got.Error)
}

func TestListVersions(t *testing.T) {
	srv, store := newTestServer(t)
	seed(t, store, types.NamespaceData, "iris.csv", "1.0", "a", nil)
	seed(t, store, types.NamespaceData, "iris.csv", "2.0", "b", nil)
	seed(t, store, types.NamespaceData, "iris.csv", "1.5", "c", nil)

	var got types.VersionListDocument
	status := getJSON(t, srv.URL+"/resources/data/iris.csv/versions", &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2.0", got.LatestVersion)
	assert.ElementsMatch(t, []string{"1.0", "1.5", "2.0"}, got.Versions)
}

func TestGetFile(t *testing.T) {
	srv, store := newTestServer(t)
	seed(t, store, types.NamespaceData, "iris.csv", "1.0", "a,b\n1,2\n", nil)

	resp, err := http.Get(srv.URL + "/resources/data/iris.csv/versions/1.0/file")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, "a,b\n1,2\n", string(body))
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestHeadFileReportsLength(t *testing.T) {
	srv, store := newTestServer(t)
	seed(t, store, types.NamespaceModel, "iris.pmml", "1.0", "<PMML/>", nil)

	resp, err := http.Head(srv.URL + "/resources/model/iris.pmml/versions/1.0/file")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(len("<PMML/>")), resp.ContentLength)
}

func TestGetFileUnknownExtension(t *testing.T) {
	srv, store := newTestServer(t)
	seed(t, store, types.NamespaceData, "blob.bin", "1.0", "xx", nil)

	var got types.ErrorDocument
	status := getJSON(t, srv.URL+"/resources/data/blob.bin/versions/1.0/file", &got)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, string(types.ErrorKindUnsupportedMediaType), got.Error)
}

func TestGetFileMissingVersion(t *testing.T) {
	srv, store := newTestServer(t)
	seed(t, store, types.NamespaceData, "iris.csv", "1.0", "x", nil)

	status := getJSON(t, srv.URL+"/resources/data/iris.csv/versions/9.9/file", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetDependencies(t *testing.T) {
	srv, store := newTestServer(t)
	seed(t, store, types.NamespaceData, "iris.csv", "2.0", "12345", nil)
	prepDeps := types.NewManifest()
	prepDeps.Add(types.NamespaceData, "iris.csv", "2.0")
	seed(t, store, types.NamespaceCode, "prep.py", "1.1", "abc", prepDeps)
	trainDeps := types.NewManifest()
	trainDeps.Add(types.NamespaceCode, "prep.py", "1.1")
	seed(t, store, types.NamespaceCode, "train.py", "1.0", "x", trainDeps)

	var got types.ClosureDocument
	status := getJSON(t, srv.URL+"/resources/code/train.py/versions/1.0/dependencies", &got)
	require.Equal(t, http.StatusOK, status)

	want := types.ClosureDocument{
		CodeDeps: map[string]types.DependencyDescriptionDocument{
			"prep.py": {VersionStr: "1.1", IsDirectDependency: true, ByteCount: 3},
		},
		DataDeps: map[string]types.DependencyDescriptionDocument{
			"iris.csv": {VersionStr: "2.0", IsDirectDependency: false, ByteCount: 5},
		},
		ModelDeps: map[string]types.DependencyDescriptionDocument{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected closure (-want +got):\n%s", diff)
	}
}

func TestGetDependenciesBrokenChain(t *testing.T) {
	srv, store := newTestServer(t)
	deps := types.NewManifest()
	deps.Add(types.NamespaceData, "gone.csv", "1.0")
	seed(t, store, types.NamespaceCode, "train.py", "1.0", "x", deps)

	var got types.ErrorDocument
	status := getJSON(t, srv.URL+"/resources/code/train.py/versions/1.0/dependencies", &got)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, string(types.ErrorKindDependencyResolution), got.Error)
}

func TestGetDependenciesMissingRoot(t *testing.T) {
	srv, _ := newTestServer(t)

	status := getJSON(t, srv.URL+"/resources/code/train.py/versions/1.0/dependencies", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPublishStoresResource(t *testing.T) {
	srv, store := newTestServer(t)
	seed(t, store, types.NamespaceData, "iris.csv", "2.0", "12345", nil)

	deps := types.NewManifest()
	deps.Add(types.NamespaceData, "iris.csv", "2.0")
	encoded, err := json.Marshal(types.ManifestToDocument(deps))
	require.NoError(t, err)
	target := srv.URL + "/resources/code/train.py/versions/1.2?deps=" + url.QueryEscape(string(encoded))

	resp, err := http.Post(target, "application/octet-stream", bytes.NewBufferString("print('hi')\n"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	id := types.ResourceID{Namespace: types.NamespaceCode, Name: "train.py", Version: "1.2"}
	manifest, err := store.ReadManifest(t.Context(), id)
	require.NoError(t, err)
	if diff := cmp.Diff(deps, manifest); diff != "" {
		t.Fatalf("unexpected manifest (-want +got):\n%s", diff)
	}
	size, err := store.PayloadSize(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(len("print('hi')\n")), size)

	var manifestDoc types.ManifestDocument
	status := getJSON(t, srv.URL+"/resources/code/train.py/versions/1.2/manifest", &manifestDoc)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2.0", manifestDoc.DataDeps["iris.csv"].Version)
}

func TestPublishRejectsBadDeps(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := map[string]string{
		"not json":      "{",
		"empty version": `{"codeDeps":{},"dataDeps":{"iris.csv":{"version":""}},"modelDeps":{}}`,
		"bad name":      `{"codeDeps":{"../x.py":{"version":"1.0"}},"dataDeps":{},"modelDeps":{}}`,
	}
	for name, deps := range cases {
		t.Run(name, func(t *testing.T) {
			target := srv.URL + "/resources/code/train.py/versions/1.0?deps=" + url.QueryEscape(deps)
			resp, err := http.Post(target, "application/octet-stream", strings.NewReader("x"))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestPublishRejectsMalformedVersion(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/resources/code/train.py/versions/1.x", "application/octet-stream", strings.NewReader("x"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	seed(t, store, types.NamespaceData, "iris.csv", "1.0", "abc", nil)

	resp, err := http.Get(srv.URL + "/resources/data/iris.csv/versions/1.0/file")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `nyoka_packages_payload_bytes_served_total{namespace="data"} 3`)
	assert.Contains(t, string(body), "nyoka_packages_api_response_duration_milliseconds")
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "req-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-42", resp.Header.Get(requestIDHeader))
}

func TestRequestSpansUseRoute(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(t.Context()) })

	store := adapters.NewResourceStoreFileAdapter(t.TempDir())
	seed(t, store, types.NamespaceData, "iris.csv", "1.0", "abc", nil)
	srv := httptest.NewServer(NewServer(store, WithTracer(provider.Tracer("test"))).Handler())
	t.Cleanup(srv.Close)

	status := getJSON(t, srv.URL+"/resources/data/iris.csv/versions", &types.VersionListDocument{})
	require.Equal(t, http.StatusOK, status)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET "+routeVersions, spans[0].Name())
}
