package types

import (
	"fmt"
	"io"
)

// ResourceID names a resource in a namespace, optionally pinned to a version.
type ResourceID struct {
	Namespace Namespace
	Name      string
	Version   string
}

func (id ResourceID) String() string {
	if id.Version == "" {
		return fmt.Sprintf("%s/%s", id.Namespace, id.Name)
	}
	return fmt.Sprintf("%s/%s@%s", id.Namespace, id.Name, id.Version)
}

func (id ResourceID) WithVersion(version string) ResourceID {
	id.Version = version
	return id
}

type ResourceSummary struct {
	LatestVersion string
	ByteCount     int64
}

type VersionList struct {
	Versions []string
	Latest   string
}

func (v VersionList) Contains(version string) bool {
	for _, candidate := range v.Versions {
		if candidate == version {
			return true
		}
	}
	return false
}

// LocalResource describes one payload present in the local mirror.
type LocalResource struct {
	Namespace    Namespace
	Name         string
	Version      string
	VersionKnown bool
	ByteCount    int64
}

// PayloadStream is an open payload transfer. Size is -1 when unknown.
type PayloadStream struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}
