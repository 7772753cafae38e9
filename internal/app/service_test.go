package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"nyoka-packages/internal/adapters"
	"nyoka-packages/internal/core"
	"nyoka-packages/internal/types"
)

type stubVersion struct {
	payload  string
	manifest types.Manifest
}

type publishCall struct {
	id       types.ResourceID
	manifest types.Manifest
	payload  string
}

// stubRemote is an in-memory repository. Its closures are resolved with
// the same resolver the server uses.
type stubRemote struct {
	resources map[types.Namespace]map[string]map[string]stubVersion
	failFetch map[string]bool

	mu        sync.Mutex
	calls     []string
	published []publishCall
}

func newStubRemote() *stubRemote {
	return &stubRemote{
		resources: map[types.Namespace]map[string]map[string]stubVersion{},
		failFetch: map[string]bool{},
	}
}

func (r *stubRemote) put(ns types.Namespace, name string, version string, payload string, deps ...types.ResourceID) {
	manifest := types.NewManifest()
	for _, dep := range deps {
		manifest.Add(dep.Namespace, dep.Name, dep.Version)
	}
	if r.resources[ns] == nil {
		r.resources[ns] = map[string]map[string]stubVersion{}
	}
	if r.resources[ns][name] == nil {
		r.resources[ns][name] = map[string]stubVersion{}
	}
	r.resources[ns][name][version] = stubVersion{payload: payload, manifest: manifest}
}

func (r *stubRemote) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *stubRemote) lookup(id types.ResourceID) (stubVersion, error) {
	version, ok := r.resources[id.Namespace][id.Name][id.Version]
	if !ok {
		return stubVersion{}, types.NewError(types.ErrorKindNotFound, id.String()+" not found", nil)
	}
	return version, nil
}

func (r *stubRemote) ListResources(_ context.Context, ns types.Namespace) (map[string]types.ResourceSummary, error) {
	r.record("list " + string(ns))
	bucket, ok := r.resources[ns]
	if !ok {
		return nil, types.NewError(types.ErrorKindNotFound, string(ns)+" not found", nil)
	}
	summaries := map[string]types.ResourceSummary{}
	for name, versions := range bucket {
		all := make([]string, 0, len(versions))
		for version := range versions {
			all = append(all, version)
		}
		latest, err := core.LatestVersion(all)
		if err != nil {
			return nil, err
		}
		summaries[name] = types.ResourceSummary{LatestVersion: latest, ByteCount: int64(len(versions[latest].payload))}
	}
	return summaries, nil
}

func (r *stubRemote) ListVersions(_ context.Context, ns types.Namespace, name string) (types.VersionList, error) {
	r.record("versions " + string(ns) + "/" + name)
	versions, ok := r.resources[ns][name]
	if !ok {
		return types.VersionList{}, types.NewError(types.ErrorKindNotFound, name+" not found", nil)
	}
	all := make([]string, 0, len(versions))
	for version := range versions {
		all = append(all, version)
	}
	sorted, err := core.SortVersionsDescending(all)
	if err != nil {
		return types.VersionList{}, err
	}
	return types.VersionList{Versions: sorted, Latest: sorted[0]}, nil
}

func (r *stubRemote) FetchPayload(_ context.Context, id types.ResourceID) (types.PayloadStream, error) {
	r.record("fetch " + id.String())
	if r.failFetch[id.Name] {
		return types.PayloadStream{}, types.NewError(types.ErrorKindTransfer, "fetch "+id.String()+" failed", nil)
	}
	version, err := r.lookup(id)
	if err != nil {
		return types.PayloadStream{}, err
	}
	return types.PayloadStream{
		Body: io.NopCloser(strings.NewReader(version.payload)),
		Size: int64(len(version.payload)),
	}, nil
}

func (r *stubRemote) FetchClosure(ctx context.Context, id types.ResourceID) (types.Closure, error) {
	r.record("closure " + id.String())
	version, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return core.NewClosureResolver(r).Resolve(ctx, version.manifest)
}

func (r *stubRemote) ReadManifest(_ context.Context, id types.ResourceID) (types.Manifest, error) {
	version, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return version.manifest, nil
}

func (r *stubRemote) PayloadSize(_ context.Context, id types.ResourceID) (int64, error) {
	version, err := r.lookup(id)
	if err != nil {
		return 0, err
	}
	return int64(len(version.payload)), nil
}

func (r *stubRemote) Publish(_ context.Context, id types.ResourceID, manifest types.Manifest, payload io.Reader, _ int64) error {
	r.record("publish " + id.String())
	body, err := io.ReadAll(payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.published = append(r.published, publishCall{id: id, manifest: manifest, payload: string(body)})
	r.mu.Unlock()
	return nil
}

// scriptedPrompt answers questions in order and fails on unexpected ones.
type scriptedPrompt struct {
	answers   []bool
	questions []string
}

func (p *scriptedPrompt) Confirm(_ context.Context, question string) (bool, error) {
	p.questions = append(p.questions, question)
	if len(p.answers) == 0 {
		return false, fmt.Errorf("unexpected prompt: %s", question)
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

type recordingReporter struct {
	mu       sync.Mutex
	closures []types.ResourceID
	progress map[string]int64
}

func (r *recordingReporter) Closure(id types.ResourceID, _ types.Closure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closures = append(r.closures, id)
}

func (r *recordingReporter) Progress(id types.ResourceID, done int64, _ int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress == nil {
		r.progress = map[string]int64{}
	}
	r.progress[id.String()] = done
}

type testEnv struct {
	svc      Service
	remote   *stubRemote
	prompt   *scriptedPrompt
	reporter *recordingReporter
	root     string
}

func newTestEnv(t *testing.T, answers ...bool) testEnv {
	t.Helper()
	root := t.TempDir()
	mirror := adapters.NewLocalMirrorFileAdapter(root)
	_, err := mirror.CreateNamespaceDirs()
	require.NoError(t, err)
	env := testEnv{
		remote:   newStubRemote(),
		prompt:   &scriptedPrompt{answers: answers},
		reporter: &recordingReporter{},
		root:     root,
	}
	env.svc = Service{Remote: env.remote, Mirror: mirror, Prompt: env.prompt, Reporter: env.reporter}
	return env
}

func (e testEnv) install(t *testing.T, ns types.Namespace, name string, version string, payload string) {
	t.Helper()
	_, err := e.svc.Mirror.WritePayload(t.Context(), ns, name, strings.NewReader(payload))
	require.NoError(t, err)
	if version != "" {
		require.NoError(t, e.svc.Mirror.WriteVersionRecord(ns, name, version))
	}
}

func (e testEnv) readLocal(t *testing.T, parts ...string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(append([]string{e.root}, parts...)...))
	require.NoError(t, err)
	return string(content)
}

func (e testEnv) localExists(parts ...string) bool {
	_, err := os.Stat(filepath.Join(append([]string{e.root}, parts...)...))
	return !errors.Is(err, os.ErrNotExist)
}

func rid(ns types.Namespace, name string, version string) types.ResourceID {
	return types.ResourceID{Namespace: ns, Name: name, Version: version}
}

func newMirror(root string) adapters.LocalMirrorFileAdapter {
	return adapters.NewLocalMirrorFileAdapter(root)
}
