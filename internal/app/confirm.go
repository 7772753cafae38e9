package app

import (
	"context"

	"nyoka-packages/internal/types"
)

func (s Service) ask(ctx context.Context, question string) (bool, error) {
	if s.Prompt == nil {
		return false, types.NewError(types.ErrorKindAborted, "confirmation required but no prompt is configured", nil)
	}
	return s.Prompt.Confirm(ctx, question)
}

// confirm asks question and returns an Aborted error naming action when
// the user declines.
func (s Service) confirm(ctx context.Context, question string, action string) error {
	ok, err := s.ask(ctx, question)
	if err != nil {
		return types.NewError(types.ErrorKindAborted, action+" aborted", err)
	}
	if !ok {
		return types.NewError(types.ErrorKindAborted, action+" aborted by user", nil)
	}
	return nil
}
