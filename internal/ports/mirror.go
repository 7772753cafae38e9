package ports

import (
	"context"
	"io"

	"nyoka-packages/internal/types"
)

// LocalMirrorPort is the client's on-disk copy of fetched resources.
type LocalMirrorPort interface {
	NamespaceDirsExist() (bool, error)
	CreateNamespaceDirs() ([]string, error)
	Exists(ns types.Namespace, name string) (bool, error)
	InstalledVersion(ns types.Namespace, name string) (string, bool, error)
	List(ns types.Namespace) ([]types.LocalResource, error)
	OpenPayload(ns types.Namespace, name string) (io.ReadCloser, int64, error)
	WritePayload(ctx context.Context, ns types.Namespace, name string, payload io.Reader) (int64, error)
	WriteVersionRecord(ns types.Namespace, name string, version string) error
	Remove(ns types.Namespace, name string) error
}
