package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"nyoka-packages/internal/core"
	"nyoka-packages/internal/shared"
	"nyoka-packages/internal/types"
)

const (
	routeResources    = "/resources/:namespace"
	routeVersions     = "/resources/:namespace/:name/versions"
	routeVersion      = "/resources/:namespace/:name/versions/:version"
	routeFile         = routeVersion + "/file"
	routeDependencies = routeVersion + "/dependencies"
	routeManifest     = routeVersion + "/manifest"
	routeHealth       = "/healthz"
)

func (s *Server) getResources(w http.ResponseWriter, r *http.Request, p httprouter.Params) (string, int) {
	ns, err := namespaceParam(p)
	if err != nil {
		return routeResources, writeError(w, r, err)
	}
	summaries, err := s.Store.ListResources(r.Context(), ns)
	if err != nil {
		return routeResources, writeError(w, r, err)
	}
	return routeResources, writeJSON(w, http.StatusOK, types.SummariesToDocument(summaries))
}

func (s *Server) getVersions(w http.ResponseWriter, r *http.Request, p httprouter.Params) (string, int) {
	ns, err := namespaceParam(p)
	if err != nil {
		return routeVersions, writeError(w, r, err)
	}
	versions, err := s.Store.ListVersions(r.Context(), ns, p.ByName("name"))
	if err != nil {
		return routeVersions, writeError(w, r, err)
	}
	return routeVersions, writeJSON(w, http.StatusOK, types.VersionListDocument{
		Versions:      versions.Versions,
		LatestVersion: versions.Latest,
	})
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request, p httprouter.Params) (string, int) {
	id, err := resourceParams(p)
	if err != nil {
		return routeFile, writeError(w, r, err)
	}
	mediaType, ok := shared.MediaTypeForName(id.Name)
	if !ok {
		return routeFile, writeError(w, r, types.NewError(types.ErrorKindUnsupportedMediaType,
			fmt.Sprintf("no media type for extension %q", shared.Extension(id.Name)), nil))
	}
	body, size, err := s.Store.OpenPayload(r.Context(), id)
	if err != nil {
		return routeFile, writeError(w, r, err)
	}
	defer body.Close()

	w.Header().Set("Content-Type", mediaType)
	if r.Method == http.MethodGet {
		s.metrics.bytesServed.WithLabelValues(string(id.Namespace)).Add(float64(size))
	}
	http.ServeContent(w, r, id.Name, time.Time{}, body)
	return routeFile, http.StatusOK
}

func (s *Server) getDependencies(w http.ResponseWriter, r *http.Request, p httprouter.Params) (string, int) {
	id, err := resourceParams(p)
	if err != nil {
		return routeDependencies, writeError(w, r, err)
	}
	seed, err := s.Store.ReadManifest(r.Context(), id)
	if err != nil {
		return routeDependencies, writeError(w, r, err)
	}
	closure, err := s.Resolver.Resolve(r.Context(), seed)
	if err != nil {
		return routeDependencies, writeError(w, r, err)
	}
	log.Ctx(r.Context()).Debug().
		Str("resource", id.String()).
		Int("closure_size", closure.Len()).
		Int64("closure_bytes", closure.TotalBytes()).
		Msg("resolved closure")
	return routeDependencies, writeJSON(w, http.StatusOK, types.ClosureToDocument(closure))
}

func (s *Server) getManifest(w http.ResponseWriter, r *http.Request, p httprouter.Params) (string, int) {
	id, err := resourceParams(p)
	if err != nil {
		return routeManifest, writeError(w, r, err)
	}
	manifest, err := s.Store.ReadManifest(r.Context(), id)
	if err != nil {
		return routeManifest, writeError(w, r, err)
	}
	return routeManifest, writeJSON(w, http.StatusOK, types.ManifestToDocument(manifest))
}

func (s *Server) postResource(w http.ResponseWriter, r *http.Request, p httprouter.Params) (string, int) {
	id, err := resourceParams(p)
	if err != nil {
		return routeVersion, writeError(w, r, err)
	}
	manifest, err := manifestParam(r)
	if err != nil {
		return routeVersion, writeError(w, r, err)
	}
	defer r.Body.Close()
	if err := s.Store.PutResource(r.Context(), id, manifest, r.Body); err != nil {
		return routeVersion, writeError(w, r, err)
	}
	s.metrics.published.WithLabelValues(string(id.Namespace)).Inc()
	log.Ctx(r.Context()).Info().
		Str("resource", id.String()).
		Int("dependencies", manifest.Len()).
		Msg("published resource")
	return routeVersion, writeJSON(w, http.StatusOK, types.VersionListDocument{
		Versions:      []string{id.Version},
		LatestVersion: id.Version,
	})
}

func getHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) (string, int) {
	return routeHealth, writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func namespaceParam(p httprouter.Params) (types.Namespace, error) {
	ns, ok := types.ParseNamespace(p.ByName("namespace"))
	if !ok {
		return "", types.NewError(types.ErrorKindInvalidIdentifier,
			fmt.Sprintf("unknown namespace %q", p.ByName("namespace")), nil)
	}
	return ns, nil
}

func resourceParams(p httprouter.Params) (types.ResourceID, error) {
	ns, err := namespaceParam(p)
	if err != nil {
		return types.ResourceID{}, err
	}
	id := types.ResourceID{Namespace: ns, Name: p.ByName("name"), Version: p.ByName("version")}
	if err := core.ValidateResourceName(id.Name); err != nil {
		return types.ResourceID{}, err
	}
	if err := core.ValidateVersion(id.Version); err != nil {
		return types.ResourceID{}, err
	}
	return id, nil
}

// manifestParam decodes the deps query parameter. An absent parameter is
// an empty manifest.
func manifestParam(r *http.Request) (types.Manifest, error) {
	raw := r.URL.Query().Get("deps")
	if raw == "" {
		return types.NewManifest(), nil
	}
	var doc types.ManifestDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, types.NewError(types.ErrorKindInvalidIdentifier, "deps parameter is not a valid manifest", err)
	}
	manifest := types.ManifestFromDocument(doc)
	for _, entry := range manifest.AllEntries() {
		if err := core.ValidateResourceName(entry.Name); err != nil {
			return nil, err
		}
		if entry.Version == "" {
			return nil, types.NewError(types.ErrorKindMissingDependencyVersion,
				fmt.Sprintf("dependency %s/%s has no version", entry.Namespace, entry.Name), nil)
		}
		if err := core.ValidateVersion(entry.Version); err != nil {
			return nil, err
		}
	}
	return manifest, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("failed to write response body")
	}
	return status
}

func writeError(w http.ResponseWriter, r *http.Request, err error) int {
	status := statusForError(err)
	kind := types.KindOf(err)
	if kind == "" {
		kind = "internal"
	}
	event := log.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = log.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("kind", string(kind)).Msg("request failed")
	return writeJSON(w, status, types.ErrorDocument{Error: string(kind), Message: types.ErrorMessage(err)})
}

func statusForError(err error) int {
	switch types.KindOf(err) {
	case types.ErrorKindMalformedVersion, types.ErrorKindInvalidIdentifier,
		types.ErrorKindUnsupportedMediaType, types.ErrorKindMissingDependencyVersion:
		return http.StatusBadRequest
	case types.ErrorKindNotFound:
		return http.StatusNotFound
	case types.ErrorKindDependencyResolution:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
