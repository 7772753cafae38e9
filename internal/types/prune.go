package types

type PruneDecision struct {
	Namespace Namespace
	Name      string
	Version   string
	Action    PruneAction
}

type PrunePlan struct {
	Keep   []PruneDecision
	Remove []PruneDecision
}

type PruneFailure struct {
	Decision PruneDecision
	Err      error
}
