package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"nyoka-packages/internal/types"
)

// Version is a parsed dot-separated numeric version.
type Version []uint64

// ParseVersion splits value on dots and parses every component as a
// non-negative integer.
func ParseVersion(value string) (Version, error) {
	if value == "" {
		return nil, malformedVersion(value, "empty version")
	}
	parts := strings.Split(value, ".")
	parsed := make(Version, 0, len(parts))
	for _, part := range parts {
		if part == "" || strings.TrimLeft(part, "0123456789") != "" {
			return nil, malformedVersion(value, fmt.Sprintf("component %q is not numeric", part))
		}
		component, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, malformedVersion(value, fmt.Sprintf("component %q is out of range", part))
		}
		parsed = append(parsed, component)
	}
	return parsed, nil
}

// ValidateVersion reports whether value parses as a version.
func ValidateVersion(value string) error {
	_, err := ParseVersion(value)
	return err
}

// compareParsed returns 1 when a is newer, -1 when b is newer. When one
// version is a strict prefix of the other the shorter one is newer.
func compareParsed(a Version, b Version) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] > b[i] {
			return 1
		}
		if a[i] < b[i] {
			return -1
		}
	}
	switch {
	case len(a) == len(b):
		return 0
	case len(a) < len(b):
		return 1
	default:
		return -1
	}
}

// CompareVersions returns 1 when a is newer than b, -1 when older and 0
// when both are numerically equal.
func CompareVersions(a string, b string) (int, error) {
	va, err := ParseVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := ParseVersion(b)
	if err != nil {
		return 0, err
	}
	return compareParsed(va, vb), nil
}

// versionCache memoizes parsed versions while sorting.
type versionCache map[string]Version

func (c versionCache) parse(value string) (Version, error) {
	if parsed, ok := c[value]; ok {
		return parsed, nil
	}
	parsed, err := ParseVersion(value)
	if err != nil {
		return nil, err
	}
	c[value] = parsed
	return parsed, nil
}

// SortVersionsDescending returns a copy of versions ordered newest first.
// Numerically equal versions keep their input order.
func SortVersionsDescending(versions []string) ([]string, error) {
	cache := versionCache{}
	for _, version := range versions {
		if _, err := cache.parse(version); err != nil {
			return nil, err
		}
	}
	sorted := append([]string(nil), versions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareParsed(cache[sorted[i]], cache[sorted[j]]) > 0
	})
	return sorted, nil
}

// LatestVersion returns the newest of versions.
func LatestVersion(versions []string) (string, error) {
	if len(versions) == 0 {
		return "", types.NewError(types.ErrorKindNotFound, "no versions to choose from", nil)
	}
	sorted, err := SortVersionsDescending(versions)
	if err != nil {
		return "", err
	}
	return sorted[0], nil
}

func malformedVersion(value string, reason string) error {
	return types.NewError(types.ErrorKindMalformedVersion,
		fmt.Sprintf("malformed version %q: %s", value, reason), nil)
}
