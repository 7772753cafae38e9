package ports

import (
	"context"
	"io"

	"nyoka-packages/internal/types"
)

// DependencySourcePort supplies what the closure resolver needs to know
// about one resource version.
type DependencySourcePort interface {
	ReadManifest(ctx context.Context, id types.ResourceID) (types.Manifest, error)
	PayloadSize(ctx context.Context, id types.ResourceID) (int64, error)
}

// ResourceStorePort is the canonical versioned resource store.
type ResourceStorePort interface {
	DependencySourcePort
	ListResources(ctx context.Context, ns types.Namespace) (map[string]types.ResourceSummary, error)
	ListVersions(ctx context.Context, ns types.Namespace, name string) (types.VersionList, error)
	OpenPayload(ctx context.Context, id types.ResourceID) (io.ReadSeekCloser, int64, error)
	PutResource(ctx context.Context, id types.ResourceID, manifest types.Manifest, payload io.Reader) error
}

// RemoteRepositoryPort is the client side of the transfer protocol.
type RemoteRepositoryPort interface {
	DependencySourcePort
	ListResources(ctx context.Context, ns types.Namespace) (map[string]types.ResourceSummary, error)
	ListVersions(ctx context.Context, ns types.Namespace, name string) (types.VersionList, error)
	FetchPayload(ctx context.Context, id types.ResourceID) (types.PayloadStream, error)
	FetchClosure(ctx context.Context, id types.ResourceID) (types.Closure, error)
	Publish(ctx context.Context, id types.ResourceID, manifest types.Manifest, payload io.Reader, size int64) error
}
