package app

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Init creates the local namespace directories. It is idempotent.
func (s Service) Init(ctx context.Context) (InitResult, error) {
	created, err := s.Mirror.CreateNamespaceDirs()
	if err != nil {
		return InitResult{}, err
	}
	for _, dir := range created {
		log.Ctx(ctx).Debug().Str("dir", dir).Msg("created directory")
	}
	return InitResult{Created: created}, nil
}
