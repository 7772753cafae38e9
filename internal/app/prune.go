package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"nyoka-packages/internal/core"
	"nyoka-packages/internal/types"
)

// PruneTo removes every local resource outside the dependency closure of
// req.Keep. The closure is resolved against the remote with all keep
// entries treated as direct. Removal is confirmed once; a failure to
// remove one resource does not stop the others and is reported as a
// partial failure.
func (s Service) PruneTo(ctx context.Context, req PruneRequest) (PruneResult, error) {
	seed := types.NewManifest()
	for _, keep := range req.Keep {
		version := keep.Version
		if version == "" {
			resolved, err := s.defaultVersion(ctx, keep)
			if err != nil {
				return PruneResult{}, err
			}
			version = resolved
		}
		seed.Add(keep.Namespace, keep.Name, version)
	}

	closure, err := core.NewClosureResolver(s.Remote).Resolve(ctx, seed)
	if err != nil {
		return PruneResult{}, err
	}

	var present []types.LocalResource
	for _, ns := range types.Namespaces {
		resources, err := s.Mirror.List(ns)
		if err != nil {
			return PruneResult{}, err
		}
		present = append(present, resources...)
	}

	plan := BuildPrunePlan(closure, present)
	result := PruneResult{Plan: plan, DryRun: req.DryRun}
	if req.DryRun || len(plan.Remove) == 0 {
		return result, nil
	}
	question := fmt.Sprintf("Remove %d local resources outside the kept closure?", len(plan.Remove))
	if err := s.confirm(ctx, question, "prune"); err != nil {
		return PruneResult{}, err
	}

	for _, decision := range plan.Remove {
		if err := s.Mirror.Remove(decision.Namespace, decision.Name); err != nil {
			log.Ctx(ctx).Warn().Err(err).
				Str("resource", decision.Name).
				Str("namespace", string(decision.Namespace)).
				Msg("failed to remove resource")
			result.Failures = append(result.Failures, types.PruneFailure{Decision: decision, Err: err})
			continue
		}
		result.Removed = append(result.Removed, decision)
	}
	if len(result.Failures) > 0 {
		return result, types.NewError(types.ErrorKindPartialFailure,
			fmt.Sprintf("failed to remove %d of %d resources", len(result.Failures), len(plan.Remove)), nil)
	}
	return result, nil
}
