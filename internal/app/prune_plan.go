package app

import "nyoka-packages/internal/types"

// BuildPrunePlan keeps every present resource whose name is in closure
// and removes the rest. Decisions follow the order of present.
func BuildPrunePlan(closure types.Closure, present []types.LocalResource) types.PrunePlan {
	var plan types.PrunePlan
	for _, resource := range present {
		decision := types.PruneDecision{
			Namespace: resource.Namespace,
			Name:      resource.Name,
			Version:   resource.Version,
		}
		if closure.Has(resource.Namespace, resource.Name) {
			decision.Action = types.PruneActionKeep
			plan.Keep = append(plan.Keep, decision)
		} else {
			decision.Action = types.PruneActionRemove
			plan.Remove = append(plan.Remove, decision)
		}
	}
	return plan
}
