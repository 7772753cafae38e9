package types

import "sort"

type DependencyDescription struct {
	Version            string
	IsDirectDependency bool
	ByteCount          int64
}

// Closure is the transitive dependency set produced by one resolution.
type Closure map[Namespace]map[string]DependencyDescription

type ClosureEntry struct {
	Namespace Namespace
	Name      string
	DependencyDescription
}

func NewClosure() Closure {
	closure := Closure{}
	for _, ns := range Namespaces {
		closure[ns] = map[string]DependencyDescription{}
	}
	return closure
}

func (c Closure) Has(ns Namespace, name string) bool {
	_, ok := c[ns][name]
	return ok
}

func (c Closure) Len() int {
	total := 0
	for _, bucket := range c {
		total += len(bucket)
	}
	return total
}

func (c Closure) TotalBytes() int64 {
	var total int64
	for _, bucket := range c {
		for _, dep := range bucket {
			total += dep.ByteCount
		}
	}
	return total
}

// Entries flattens the closure in namespace priority order, names sorted.
func (c Closure) Entries() []ClosureEntry {
	var entries []ClosureEntry
	for _, ns := range Namespaces {
		bucket := c[ns]
		names := make([]string, 0, len(bucket))
		for name := range bucket {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			entries = append(entries, ClosureEntry{Namespace: ns, Name: name, DependencyDescription: bucket[name]})
		}
	}
	return entries
}
