package app

import "nyoka-packages/internal/types"

type InitResult struct {
	Created []string
}

type AddRequest struct {
	ID types.ResourceID
}

// DependencyFailure is a dependency whose download failed during add. The
// requested resource is still installed.
type DependencyFailure struct {
	ID  types.ResourceID
	Err error
}

type AddResult struct {
	ID                  types.ResourceID
	Installed           []types.ResourceID
	Failed              []DependencyFailure
	DependenciesSkipped bool
}

type RemoveRequest struct {
	ID types.ResourceID
}

type RemoveResult struct {
	ID types.ResourceID
}

type ListRequest struct {
	Namespace types.Namespace
}

type ListResult struct {
	Resources []types.LocalResource
}

type AvailableEntry struct {
	Namespace        types.Namespace
	Name             string
	LatestVersion    string
	ByteCount        int64
	Installed        bool
	InstalledVersion string
}

type AvailableResult struct {
	Entries []AvailableEntry
}

type DependenciesRequest struct {
	ID types.ResourceID
}

// DependencyRow is one closure entry with its size as reported by the
// remote listing.
type DependencyRow struct {
	Namespace types.Namespace
	Name      string
	Version   string
	Direct    bool
	ByteCount int64
}

type DependenciesResult struct {
	ID      types.ResourceID
	Closure types.Closure
	Rows    []DependencyRow
}

type PublishRequest struct {
	ID   types.ResourceID
	Deps []types.ResourceID
}

type PublishResult struct {
	ID          types.ResourceID
	Overwritten bool
}

type PruneRequest struct {
	Keep   []types.ResourceID
	DryRun bool
}

type PruneResult struct {
	Plan     types.PrunePlan
	Removed  []types.PruneDecision
	Failures []types.PruneFailure
	DryRun   bool
}
