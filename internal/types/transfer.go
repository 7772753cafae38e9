package types

// Wire and on-disk document shapes. Field names are fixed by existing
// clients and stores.

type ResourceSummaryDocument struct {
	ByteCount  int64  `json:"byteCount"`
	VersionStr string `json:"versionStr"`
}

type VersionListDocument struct {
	Versions      []string `json:"versions"`
	LatestVersion string   `json:"latestVersion"`
}

type DependencyDescriptionDocument struct {
	VersionStr         string `json:"versionStr"`
	IsDirectDependency bool   `json:"isDirectDependency"`
	ByteCount          int64  `json:"byteCount"`
}

type ClosureDocument struct {
	CodeDeps  map[string]DependencyDescriptionDocument `json:"codeDeps"`
	DataDeps  map[string]DependencyDescriptionDocument `json:"dataDeps"`
	ModelDeps map[string]DependencyDescriptionDocument `json:"modelDeps"`
}

type ManifestVersionDocument struct {
	Version string `json:"version"`
}

// ManifestDocument is the manifest as carried by the publish request and
// the manifest endpoint.
type ManifestDocument struct {
	CodeDeps  map[string]ManifestVersionDocument `json:"codeDeps"`
	DataDeps  map[string]ManifestVersionDocument `json:"dataDeps"`
	ModelDeps map[string]ManifestVersionDocument `json:"modelDeps"`
}

type StoredManifestEntry struct {
	Key     string `json:"key"`
	Version string `json:"version"`
}

// StoredManifest is the `<name>.deps` file format.
type StoredManifest struct {
	Code  []StoredManifestEntry `json:"code"`
	Data  []StoredManifestEntry `json:"data"`
	Model []StoredManifestEntry `json:"model"`
}

type ErrorDocument struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func SummariesToDocument(summaries map[string]ResourceSummary) map[string]ResourceSummaryDocument {
	doc := make(map[string]ResourceSummaryDocument, len(summaries))
	for name, summary := range summaries {
		doc[name] = ResourceSummaryDocument{ByteCount: summary.ByteCount, VersionStr: summary.LatestVersion}
	}
	return doc
}

func SummariesFromDocument(doc map[string]ResourceSummaryDocument) map[string]ResourceSummary {
	summaries := make(map[string]ResourceSummary, len(doc))
	for name, entry := range doc {
		summaries[name] = ResourceSummary{LatestVersion: entry.VersionStr, ByteCount: entry.ByteCount}
	}
	return summaries
}

func ClosureToDocument(closure Closure) ClosureDocument {
	convert := func(bucket map[string]DependencyDescription) map[string]DependencyDescriptionDocument {
		out := make(map[string]DependencyDescriptionDocument, len(bucket))
		for name, dep := range bucket {
			out[name] = DependencyDescriptionDocument{
				VersionStr:         dep.Version,
				IsDirectDependency: dep.IsDirectDependency,
				ByteCount:          dep.ByteCount,
			}
		}
		return out
	}
	return ClosureDocument{
		CodeDeps:  convert(closure[NamespaceCode]),
		DataDeps:  convert(closure[NamespaceData]),
		ModelDeps: convert(closure[NamespaceModel]),
	}
}

func ClosureFromDocument(doc ClosureDocument) Closure {
	closure := NewClosure()
	fill := func(ns Namespace, bucket map[string]DependencyDescriptionDocument) {
		for name, dep := range bucket {
			closure[ns][name] = DependencyDescription{
				Version:            dep.VersionStr,
				IsDirectDependency: dep.IsDirectDependency,
				ByteCount:          dep.ByteCount,
			}
		}
	}
	fill(NamespaceCode, doc.CodeDeps)
	fill(NamespaceData, doc.DataDeps)
	fill(NamespaceModel, doc.ModelDeps)
	return closure
}

func ManifestToDocument(manifest Manifest) ManifestDocument {
	convert := func(ns Namespace) map[string]ManifestVersionDocument {
		out := map[string]ManifestVersionDocument{}
		for _, entry := range manifest.Entries(ns) {
			out[entry.Name] = ManifestVersionDocument{Version: entry.Version}
		}
		return out
	}
	return ManifestDocument{
		CodeDeps:  convert(NamespaceCode),
		DataDeps:  convert(NamespaceData),
		ModelDeps: convert(NamespaceModel),
	}
}

func ManifestFromDocument(doc ManifestDocument) Manifest {
	manifest := NewManifest()
	fill := func(ns Namespace, bucket map[string]ManifestVersionDocument) {
		for name, entry := range bucket {
			manifest.Add(ns, name, entry.Version)
		}
	}
	fill(NamespaceCode, doc.CodeDeps)
	fill(NamespaceData, doc.DataDeps)
	fill(NamespaceModel, doc.ModelDeps)
	return manifest
}

func ManifestToStored(manifest Manifest) StoredManifest {
	convert := func(ns Namespace) []StoredManifestEntry {
		out := []StoredManifestEntry{}
		for _, entry := range manifest.Entries(ns) {
			out = append(out, StoredManifestEntry{Key: entry.Name, Version: entry.Version})
		}
		return out
	}
	return StoredManifest{
		Code:  convert(NamespaceCode),
		Data:  convert(NamespaceData),
		Model: convert(NamespaceModel),
	}
}

// ManifestFromStored converts a stored manifest. Repeated keys keep the
// last listed version.
func ManifestFromStored(stored StoredManifest) Manifest {
	manifest := NewManifest()
	fill := func(ns Namespace, entries []StoredManifestEntry) {
		for _, entry := range entries {
			manifest.Add(ns, entry.Key, entry.Version)
		}
	}
	fill(NamespaceCode, stored.Code)
	fill(NamespaceData, stored.Data)
	fill(NamespaceModel, stored.Model)
	return manifest
}
