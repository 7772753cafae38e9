package adapters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nyoka-packages/internal/core"
	"nyoka-packages/internal/ports"
	"nyoka-packages/internal/types"
)

const (
	metaDirName         = ".meta"
	versionRecordSuffix = ".version"
)

// LocalMirrorFileAdapter keeps fetched payloads under
// <root>/<namespace>/<name> and the installed version of each in
// <root>/<namespace>/.meta/<name>.version.
type LocalMirrorFileAdapter struct {
	Root string
}

func NewLocalMirrorFileAdapter(root string) LocalMirrorFileAdapter {
	return LocalMirrorFileAdapter{Root: root}
}

func (a LocalMirrorFileAdapter) NamespaceDirsExist() (bool, error) {
	for _, ns := range types.Namespaces {
		info, err := os.Stat(a.namespaceDir(ns))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, storeAccessError("failed to inspect resource directory", err)
		}
		if !info.IsDir() {
			return false, storeAccessError(fmt.Sprintf("%s is not a directory", a.namespaceDir(ns)), nil)
		}
	}
	return true, nil
}

// CreateNamespaceDirs creates missing namespace and metadata directories
// and returns the ones it created.
func (a LocalMirrorFileAdapter) CreateNamespaceDirs() ([]string, error) {
	var created []string
	for _, ns := range types.Namespaces {
		for _, dir := range []string{a.namespaceDir(ns), a.metaDir(ns)} {
			if _, err := os.Stat(dir); err == nil {
				continue
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return created, storeAccessError("failed to create resource directory", err)
			}
			created = append(created, dir)
		}
	}
	return created, nil
}

func (a LocalMirrorFileAdapter) Exists(ns types.Namespace, name string) (bool, error) {
	path, err := a.payloadPath(ns, name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, storeAccessError("failed to inspect local payload", err)
	}
	return !info.IsDir(), nil
}

// InstalledVersion reads the version record of a resource. The boolean is
// false when no record exists.
func (a LocalMirrorFileAdapter) InstalledVersion(ns types.Namespace, name string) (string, bool, error) {
	path, err := a.recordPath(ns, name)
	if err != nil {
		return "", false, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, storeAccessError("failed to read version record", err)
	}
	return strings.TrimSpace(string(content)), true, nil
}

// List returns the payloads of one namespace sorted by name. A namespace
// directory that does not exist yet lists as empty.
func (a LocalMirrorFileAdapter) List(ns types.Namespace) ([]types.LocalResource, error) {
	entries, err := os.ReadDir(a.namespaceDir(ns))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, storeAccessError(fmt.Sprintf("failed to read %s directory", ns), err)
	}
	var resources []types.LocalResource
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, storeAccessError("failed to inspect local payload", err)
		}
		version, known, err := a.InstalledVersion(ns, entry.Name())
		if err != nil {
			return nil, err
		}
		resources = append(resources, types.LocalResource{
			Namespace:    ns,
			Name:         entry.Name(),
			Version:      version,
			VersionKnown: known,
			ByteCount:    info.Size(),
		})
	}
	sort.Slice(resources, func(i, j int) bool {
		return resources[i].Name < resources[j].Name
	})
	return resources, nil
}

func (a LocalMirrorFileAdapter) OpenPayload(ns types.Namespace, name string) (io.ReadCloser, int64, error) {
	path, err := a.payloadPath(ns, name)
	if err != nil {
		return nil, 0, err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, types.NewError(types.ErrorKindNotFound,
				fmt.Sprintf("%s/%s is not present locally", ns, name), nil)
		}
		return nil, 0, storeAccessError("failed to open local payload", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, 0, storeAccessError("failed to inspect local payload", err)
	}
	return file, info.Size(), nil
}

func (a LocalMirrorFileAdapter) WritePayload(ctx context.Context, ns types.Namespace, name string, payload io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	path, err := a.payloadPath(ns, name)
	if err != nil {
		return 0, err
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, storeAccessError("failed to create local payload", err)
	}
	written, err := io.Copy(file, payload)
	if err != nil {
		_ = file.Close()
		return written, types.NewError(types.ErrorKindTransfer,
			fmt.Sprintf("download of %s/%s interrupted", ns, name), err)
	}
	if err := file.Close(); err != nil {
		return written, storeAccessError("failed to write local payload", err)
	}
	return written, nil
}

func (a LocalMirrorFileAdapter) WriteVersionRecord(ns types.Namespace, name string, version string) error {
	path, err := a.recordPath(ns, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return storeAccessError("failed to create metadata directory", err)
	}
	if err := os.WriteFile(path, []byte(version), 0644); err != nil {
		return storeAccessError("failed to write version record", err)
	}
	return nil
}

// Remove deletes the payload and then the version record. A missing
// version record is not an error.
func (a LocalMirrorFileAdapter) Remove(ns types.Namespace, name string) error {
	path, err := a.payloadPath(ns, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.NewError(types.ErrorKindNotFound,
				fmt.Sprintf("%s/%s is not present locally", ns, name), nil)
		}
		return storeAccessError("failed to delete local payload", err)
	}
	record, err := a.recordPath(ns, name)
	if err != nil {
		return err
	}
	if err := os.Remove(record); err != nil && !errors.Is(err, os.ErrNotExist) {
		return storeAccessError("failed to delete version record", err)
	}
	return nil
}

func (a LocalMirrorFileAdapter) namespaceDir(ns types.Namespace) string {
	return filepath.Join(a.Root, string(ns))
}

func (a LocalMirrorFileAdapter) metaDir(ns types.Namespace) string {
	return filepath.Join(a.Root, string(ns), metaDirName)
}

func (a LocalMirrorFileAdapter) payloadPath(ns types.Namespace, name string) (string, error) {
	if !ns.Valid() {
		return "", types.NewError(types.ErrorKindInvalidIdentifier,
			fmt.Sprintf("unknown namespace %q", ns), nil)
	}
	if err := core.ValidateResourceName(name); err != nil {
		return "", err
	}
	return filepath.Join(a.namespaceDir(ns), name), nil
}

func (a LocalMirrorFileAdapter) recordPath(ns types.Namespace, name string) (string, error) {
	if _, err := a.payloadPath(ns, name); err != nil {
		return "", err
	}
	return filepath.Join(a.metaDir(ns), name+versionRecordSuffix), nil
}

var _ ports.LocalMirrorPort = LocalMirrorFileAdapter{}
