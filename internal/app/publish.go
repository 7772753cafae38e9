package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"nyoka-packages/internal/types"
)

// DefaultPublishVersion is used when publish is given no version.
const DefaultPublishVersion = "1.0"

// Publish uploads the local payload of req.ID with req.Deps as its
// manifest. Every dependency must carry a version; this is checked before
// anything is read or sent. Overwriting a version that already exists on
// the remote is confirmed first.
func (s Service) Publish(ctx context.Context, req PublishRequest) (PublishResult, error) {
	manifest := types.NewManifest()
	for _, dep := range req.Deps {
		if dep.Version == "" {
			return PublishResult{}, types.NewError(types.ErrorKindMissingDependencyVersion,
				fmt.Sprintf("dependency %s has no version", dep), nil)
		}
		manifest.Add(dep.Namespace, dep.Name, dep.Version)
	}
	id := req.ID
	if id.Version == "" {
		id.Version = DefaultPublishVersion
	}

	payload, size, err := s.Mirror.OpenPayload(id.Namespace, id.Name)
	if err != nil {
		return PublishResult{}, err
	}
	defer payload.Close()

	result := PublishResult{ID: id}
	versions, err := s.Remote.ListVersions(ctx, id.Namespace, id.Name)
	switch {
	case types.IsKind(err, types.ErrorKindNotFound):
	case err != nil:
		return PublishResult{}, err
	case versions.Contains(id.Version):
		question := fmt.Sprintf("Version %s of %s/%s already exists on the remote. Overwrite it?", id.Version, id.Namespace, id.Name)
		if err := s.confirm(ctx, question, "publish "+id.String()); err != nil {
			return PublishResult{}, err
		}
		result.Overwritten = true
	}

	if err := s.Remote.Publish(ctx, id, manifest, payload, size); err != nil {
		return PublishResult{}, err
	}
	if err := s.Mirror.WriteVersionRecord(id.Namespace, id.Name, id.Version); err != nil {
		return PublishResult{}, err
	}
	log.Ctx(ctx).Info().
		Str("resource", id.String()).
		Int("dependencies", manifest.Len()).
		Bool("overwritten", result.Overwritten).
		Msg("published resource")
	return result, nil
}
