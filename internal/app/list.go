package app

import (
	"context"
	"sort"

	"nyoka-packages/internal/types"
)

func selectNamespaces(ns types.Namespace) []types.Namespace {
	if ns == "" {
		return types.Namespaces
	}
	return []types.Namespace{ns}
}

// List enumerates the local mirror, all namespaces when req.Namespace is
// empty.
func (s Service) List(ctx context.Context, req ListRequest) (ListResult, error) {
	var result ListResult
	for _, ns := range selectNamespaces(req.Namespace) {
		resources, err := s.Mirror.List(ns)
		if err != nil {
			return ListResult{}, err
		}
		result.Resources = append(result.Resources, resources...)
	}
	return result, nil
}

// Available lists the remote's resources annotated with their local
// install status. A namespace the remote has no directory for is empty.
func (s Service) Available(ctx context.Context, req ListRequest) (AvailableResult, error) {
	var result AvailableResult
	for _, ns := range selectNamespaces(req.Namespace) {
		summaries, err := s.Remote.ListResources(ctx, ns)
		if err != nil {
			if types.IsKind(err, types.ErrorKindNotFound) {
				continue
			}
			return AvailableResult{}, err
		}
		names := make([]string, 0, len(summaries))
		for name := range summaries {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			entry := AvailableEntry{
				Namespace:     ns,
				Name:          name,
				LatestVersion: summaries[name].LatestVersion,
				ByteCount:     summaries[name].ByteCount,
			}
			installed, err := s.Mirror.Exists(ns, name)
			if err != nil {
				return AvailableResult{}, err
			}
			if installed {
				entry.Installed = true
				entry.InstalledVersion, _, err = s.Mirror.InstalledVersion(ns, name)
				if err != nil {
					return AvailableResult{}, err
				}
			}
			result.Entries = append(result.Entries, entry)
		}
	}
	return result, nil
}

// Dependencies fetches the closure of a resource. Without an explicit
// version the installed version is used, else the remote's latest. Row
// sizes come from the remote listing of each namespace.
func (s Service) Dependencies(ctx context.Context, req DependenciesRequest) (DependenciesResult, error) {
	id := req.ID
	if id.Version == "" {
		version, err := s.defaultVersion(ctx, id)
		if err != nil {
			return DependenciesResult{}, err
		}
		id.Version = version
	}
	closure, err := s.Remote.FetchClosure(ctx, id)
	if err != nil {
		return DependenciesResult{}, err
	}

	listings := map[types.Namespace]map[string]types.ResourceSummary{}
	rows := make([]DependencyRow, 0, closure.Len())
	for _, entry := range closure.Entries() {
		listing, ok := listings[entry.Namespace]
		if !ok {
			listing, err = s.Remote.ListResources(ctx, entry.Namespace)
			if err != nil {
				return DependenciesResult{}, err
			}
			listings[entry.Namespace] = listing
		}
		row := DependencyRow{
			Namespace: entry.Namespace,
			Name:      entry.Name,
			Version:   entry.Version,
			Direct:    entry.IsDirectDependency,
			ByteCount: entry.ByteCount,
		}
		if summary, ok := listing[entry.Name]; ok {
			row.ByteCount = summary.ByteCount
		}
		rows = append(rows, row)
	}
	return DependenciesResult{ID: id, Closure: closure, Rows: rows}, nil
}

// defaultVersion is the locally installed version of id if recorded,
// otherwise the remote's latest.
func (s Service) defaultVersion(ctx context.Context, id types.ResourceID) (string, error) {
	installed, known, err := s.Mirror.InstalledVersion(id.Namespace, id.Name)
	if err != nil {
		return "", err
	}
	if known {
		return installed, nil
	}
	versions, err := s.Remote.ListVersions(ctx, id.Namespace, id.Name)
	if err != nil {
		return "", err
	}
	return versions.Latest, nil
}
