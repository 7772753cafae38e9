package types

import "strings"

type Namespace string

const (
	NamespaceCode  Namespace = "code"
	NamespaceData  Namespace = "data"
	NamespaceModel Namespace = "model"
)

// Namespaces lists every namespace in resolution priority order.
var Namespaces = []Namespace{NamespaceCode, NamespaceData, NamespaceModel}

func (n Namespace) Valid() bool {
	switch n {
	case NamespaceCode, NamespaceData, NamespaceModel:
		return true
	default:
		return false
	}
}

func ParseNamespace(value string) (Namespace, bool) {
	ns := Namespace(strings.ToLower(strings.TrimSpace(value)))
	return ns, ns.Valid()
}

type PruneAction string

const (
	PruneActionKeep   PruneAction = "keep"
	PruneActionRemove PruneAction = "remove"
)
