package shared

import (
	"path/filepath"
	"strings"

	"nyoka-packages/internal/types"
)

var extensionNamespaces = map[string]types.Namespace{
	"py":    types.NamespaceCode,
	"ipynb": types.NamespaceCode,
	"r":     types.NamespaceCode,
	"jar":   types.NamespaceCode,
	"pmml":  types.NamespaceModel,
	"json":  types.NamespaceData,
	"csv":   types.NamespaceData,
	"png":   types.NamespaceData,
	"jpg":   types.NamespaceData,
	"jpeg":  types.NamespaceData,
	"zip":   types.NamespaceData,
	"txt":   types.NamespaceData,
	"md":    types.NamespaceData,
}

var extensionMediaTypes = map[string]string{
	"py":    "application/x-python-code",
	"ipynb": "application/x-ipynb+json",
	"r":     "text/x-r-source",
	"jar":   "application/java-archive",
	"pmml":  "application/xml",
	"json":  "application/json",
	"csv":   "text/csv",
	"png":   "image/png",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"zip":   "application/zip",
	"txt":   "text/plain",
	"md":    "text/markdown",
}

// Extension returns the lowercased file extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// NamespaceForName infers the namespace of a resource from its extension.
func NamespaceForName(name string) (types.Namespace, bool) {
	ns, ok := extensionNamespaces[Extension(name)]
	return ns, ok
}

// MediaTypeForName returns the content type served for a payload name.
func MediaTypeForName(name string) (string, bool) {
	mediaType, ok := extensionMediaTypes[Extension(name)]
	return mediaType, ok
}
