package core

import (
	"fmt"
	"strings"

	"nyoka-packages/internal/shared"
	"nyoka-packages/internal/types"
)

// ValidateResourceName checks that name is usable as a single path
// element: letters, digits, '_', '-' and '.', and not "." or "..".
func ValidateResourceName(name string) error {
	if name == "" || name == "." || name == ".." {
		return invalidIdentifier(name, "resource name must not be empty")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return invalidIdentifier(name, fmt.Sprintf("character %q is not allowed", r))
		}
	}
	return nil
}

// ParseIdentifier parses "name[@version]". The namespace is ns when set,
// otherwise it is inferred from the name's extension.
func ParseIdentifier(raw string, ns types.Namespace) (types.ResourceID, error) {
	raw = strings.TrimSpace(raw)
	if strings.Count(raw, "@") > 1 {
		return types.ResourceID{}, invalidIdentifier(raw, "more than one '@'")
	}
	name, version, pinned := strings.Cut(raw, "@")
	if err := ValidateResourceName(name); err != nil {
		return types.ResourceID{}, err
	}
	if pinned {
		if err := ValidateVersion(version); err != nil {
			return types.ResourceID{}, err
		}
	}
	if ns == "" {
		inferred, ok := shared.NamespaceForName(name)
		if !ok {
			return types.ResourceID{}, invalidIdentifier(raw,
				fmt.Sprintf("cannot infer namespace from extension %q", shared.Extension(name)))
		}
		ns = inferred
	} else if !ns.Valid() {
		return types.ResourceID{}, invalidIdentifier(raw, fmt.Sprintf("unknown namespace %q", ns))
	}
	return types.ResourceID{Namespace: ns, Name: name, Version: version}, nil
}

// ParseIdentifiers parses each raw identifier in order.
func ParseIdentifiers(raw []string, ns types.Namespace) ([]types.ResourceID, error) {
	ids := make([]types.ResourceID, 0, len(raw))
	for _, value := range raw {
		id, err := ParseIdentifier(value, ns)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func invalidIdentifier(raw string, reason string) error {
	return types.NewError(types.ErrorKindInvalidIdentifier,
		fmt.Sprintf("invalid identifier %q: %s", raw, reason), nil)
}
