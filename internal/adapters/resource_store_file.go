package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"

	"nyoka-packages/internal/core"
	"nyoka-packages/internal/ports"
	"nyoka-packages/internal/types"
)

const manifestSuffix = ".deps"

// ResourceStoreFileAdapter keeps resources in a directory tree:
//
//	<root>/<namespace>/<name>/<version>/<name>
//	<root>/<namespace>/<name>/<version>/<name>.deps
//
// Directory presence is the only index. Writes are not transactional and
// concurrent writers to the same version are not serialized.
type ResourceStoreFileAdapter struct {
	Root string
}

func NewResourceStoreFileAdapter(root string) ResourceStoreFileAdapter {
	return ResourceStoreFileAdapter{Root: root}
}

func (a ResourceStoreFileAdapter) ListResources(ctx context.Context, ns types.Namespace) (map[string]types.ResourceSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	assert.NotEmpty(ctx, a.Root, "resource store root must be set")
	nsDir := filepath.Join(a.Root, string(ns))
	entries, err := os.ReadDir(nsDir)
	if err != nil {
		return nil, types.NewError(types.ErrorKindNotFound,
			fmt.Sprintf("namespace %s is unreadable", ns), err)
	}
	summaries := map[string]types.ResourceSummary{}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()
		versions, err := a.ListVersions(ctx, ns, name)
		if err != nil {
			return nil, err
		}
		id := types.ResourceID{Namespace: ns, Name: name, Version: versions.Latest}
		size, err := a.PayloadSize(ctx, id)
		if err != nil {
			return nil, types.NewError(types.ErrorKindCorruptStore,
				fmt.Sprintf("latest version of %s has no payload", id), err)
		}
		summaries[name] = types.ResourceSummary{LatestVersion: versions.Latest, ByteCount: size}
	}
	return summaries, nil
}

func (a ResourceStoreFileAdapter) ListVersions(ctx context.Context, ns types.Namespace, name string) (types.VersionList, error) {
	if err := ctx.Err(); err != nil {
		return types.VersionList{}, err
	}
	if err := core.ValidateResourceName(name); err != nil {
		return types.VersionList{}, err
	}
	resourceDir := filepath.Join(a.Root, string(ns), name)
	entries, err := os.ReadDir(resourceDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.VersionList{}, types.NewError(types.ErrorKindNotFound,
				fmt.Sprintf("resource %s/%s not found", ns, name), nil)
		}
		return types.VersionList{}, storeAccessError("failed to read resource directory", err)
	}
	var versions []string
	for _, entry := range entries {
		if entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}
	if len(versions) == 0 {
		return types.VersionList{}, types.NewError(types.ErrorKindCorruptStore,
			fmt.Sprintf("resource %s/%s has no versions", ns, name), nil)
	}
	sorted, err := core.SortVersionsDescending(versions)
	if err != nil {
		return types.VersionList{}, err
	}
	return types.VersionList{Versions: sorted, Latest: sorted[0]}, nil
}

func (a ResourceStoreFileAdapter) OpenPayload(ctx context.Context, id types.ResourceID) (io.ReadSeekCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	path, err := a.payloadPath(id)
	if err != nil {
		return nil, 0, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, a.missingOr(id, "payload", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, 0, storeAccessError("failed to stat payload", err)
	}
	return file, info.Size(), nil
}

func (a ResourceStoreFileAdapter) PayloadSize(ctx context.Context, id types.ResourceID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	path, err := a.payloadPath(id)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, a.missingOr(id, "payload", err)
	}
	return info.Size(), nil
}

func (a ResourceStoreFileAdapter) ReadManifest(ctx context.Context, id types.ResourceID) (types.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := a.payloadPath(id)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path + manifestSuffix)
	if err != nil {
		return nil, a.missingOr(id, "manifest", err)
	}
	var stored types.StoredManifest
	if err := json.Unmarshal(content, &stored); err != nil {
		return nil, types.NewError(types.ErrorKindCorruptManifest,
			fmt.Sprintf("manifest of %s is not valid", id), err)
	}
	return types.ManifestFromStored(stored), nil
}

// PutResource writes payload and manifest for one version, replacing
// whatever was stored there before.
func (a ResourceStoreFileAdapter) PutResource(ctx context.Context, id types.ResourceID, manifest types.Manifest, payload io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := a.payloadPath(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return storeAccessError("failed to create version directory", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return storeAccessError("failed to create payload file", err)
	}
	if _, err := io.Copy(file, payload); err != nil {
		_ = file.Close()
		return storeAccessError("failed to write payload", err)
	}
	if err := file.Close(); err != nil {
		return storeAccessError("failed to write payload", err)
	}
	content, err := json.MarshalIndent(types.ManifestToStored(manifest), "", "  ")
	if err != nil {
		return storeAccessError("failed to encode manifest", err)
	}
	if err := os.WriteFile(path+manifestSuffix, content, 0644); err != nil {
		return storeAccessError("failed to write manifest", err)
	}
	return nil
}

func (a ResourceStoreFileAdapter) payloadPath(id types.ResourceID) (string, error) {
	if strings.TrimSpace(a.Root) == "" {
		return "", storeAccessError("resource store root is empty", nil)
	}
	if !id.Namespace.Valid() {
		return "", types.NewError(types.ErrorKindInvalidIdentifier,
			fmt.Sprintf("unknown namespace %q", id.Namespace), nil)
	}
	if err := core.ValidateResourceName(id.Name); err != nil {
		return "", err
	}
	if err := core.ValidateVersion(id.Version); err != nil {
		return "", err
	}
	return filepath.Join(a.Root, string(id.Namespace), id.Name, id.Version, id.Name), nil
}

func (a ResourceStoreFileAdapter) missingOr(id types.ResourceID, what string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return types.NewError(types.ErrorKindNotFound, fmt.Sprintf("%s of %s not found", what, id), nil)
	}
	return storeAccessError(fmt.Sprintf("failed to read %s of %s", what, id), err)
}

func storeAccessError(msg string, cause error) error {
	return types.NewError(types.ErrorKindStoreAccess, msg, cause)
}

var _ ports.ResourceStorePort = ResourceStoreFileAdapter{}
