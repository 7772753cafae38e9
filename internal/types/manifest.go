package types

import "sort"

// Manifest holds the direct dependencies of one resource version, keyed by
// namespace and then by resource name.
type Manifest map[Namespace]map[string]string

type ManifestEntry struct {
	Namespace Namespace
	Name      string
	Version   string
}

func NewManifest() Manifest {
	return Manifest{}
}

func (m Manifest) Add(ns Namespace, name string, version string) {
	bucket, ok := m[ns]
	if !ok {
		bucket = map[string]string{}
		m[ns] = bucket
	}
	bucket[name] = version
}

func (m Manifest) Contains(ns Namespace, name string) bool {
	_, ok := m[ns][name]
	return ok
}

// Entries returns the entries of one namespace sorted by name.
func (m Manifest) Entries(ns Namespace) []ManifestEntry {
	bucket := m[ns]
	names := make([]string, 0, len(bucket))
	for name := range bucket {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]ManifestEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, ManifestEntry{Namespace: ns, Name: name, Version: bucket[name]})
	}
	return entries
}

// AllEntries returns every entry in namespace priority order.
func (m Manifest) AllEntries() []ManifestEntry {
	var entries []ManifestEntry
	for _, ns := range Namespaces {
		entries = append(entries, m.Entries(ns)...)
	}
	return entries
}

func (m Manifest) Len() int {
	total := 0
	for _, bucket := range m {
		total += len(bucket)
	}
	return total
}
