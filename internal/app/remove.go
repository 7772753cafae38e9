package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"nyoka-packages/internal/types"
)

// Remove deletes a local payload and its version record. Removal without
// a version record, or with a version that disagrees with the record, is
// confirmed first.
func (s Service) Remove(ctx context.Context, req RemoveRequest) (RemoveResult, error) {
	id := req.ID
	exists, err := s.Mirror.Exists(id.Namespace, id.Name)
	if err != nil {
		return RemoveResult{}, err
	}
	if !exists {
		return RemoveResult{}, types.NewError(types.ErrorKindNotFound,
			fmt.Sprintf("%s/%s is not installed locally", id.Namespace, id.Name), nil)
	}
	installed, known, err := s.Mirror.InstalledVersion(id.Namespace, id.Name)
	if err != nil {
		return RemoveResult{}, err
	}
	switch {
	case !known:
		question := fmt.Sprintf("The installed version of %s/%s is unknown. Remove it anyway?", id.Namespace, id.Name)
		if err := s.confirm(ctx, question, "remove "+id.String()); err != nil {
			return RemoveResult{}, err
		}
	case id.Version != "" && id.Version != installed:
		question := fmt.Sprintf("%s/%s is installed at version %s, not %s. Remove it anyway?", id.Namespace, id.Name, installed, id.Version)
		if err := s.confirm(ctx, question, "remove "+id.String()); err != nil {
			return RemoveResult{}, err
		}
	}
	if err := s.Mirror.Remove(id.Namespace, id.Name); err != nil {
		return RemoveResult{}, err
	}
	if known {
		id.Version = installed
	}
	log.Ctx(ctx).Info().Str("resource", id.String()).Msg("removed resource")
	return RemoveResult{ID: id}, nil
}
