package core

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"nyoka-packages/internal/ports"
	"nyoka-packages/internal/types"
)

// ClosureResolver computes transitive dependency closures over a
// dependency source.
type ClosureResolver struct {
	Source ports.DependencySourcePort
}

func NewClosureResolver(source ports.DependencySourcePort) ClosureResolver {
	return ClosureResolver{Source: source}
}

// workQueue is a FIFO of pending entries for one namespace with a set of
// the names currently queued.
type workQueue struct {
	entries []types.ManifestEntry
	queued  map[string]struct{}
}

func (q *workQueue) push(entry types.ManifestEntry) {
	q.entries = append(q.entries, entry)
	q.queued[entry.Name] = struct{}{}
}

func (q *workQueue) pop() types.ManifestEntry {
	entry := q.entries[0]
	q.entries = q.entries[1:]
	delete(q.queued, entry.Name)
	return entry
}

func (q *workQueue) contains(name string) bool {
	_, ok := q.queued[name]
	return ok
}

// Resolve walks every manifest reachable from seed. Entries of seed are
// reported as direct dependencies. Each name is resolved at most once per
// namespace; the first version reached wins. Namespaces are drained in
// priority order code, data, model, one entry at a time.
func (r ClosureResolver) Resolve(ctx context.Context, seed types.Manifest) (types.Closure, error) {
	if r.Source == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("closure resolver requires a dependency source")
	}

	queues := map[types.Namespace]*workQueue{}
	for _, ns := range types.Namespaces {
		queues[ns] = &workQueue{queued: map[string]struct{}{}}
		for _, entry := range seed.Entries(ns) {
			queues[ns].push(entry)
		}
	}

	closure := types.NewClosure()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, ok := nextEntry(queues)
		if !ok {
			break
		}
		if closure.Has(entry.Namespace, entry.Name) {
			continue
		}
		id := types.ResourceID{Namespace: entry.Namespace, Name: entry.Name, Version: entry.Version}

		size, err := r.Source.PayloadSize(ctx, id)
		if err != nil {
			return nil, resolutionError(id, "payload unavailable", err)
		}
		closure[entry.Namespace][entry.Name] = types.DependencyDescription{
			Version:            entry.Version,
			IsDirectDependency: seed.Contains(entry.Namespace, entry.Name),
			ByteCount:          size,
		}

		manifest, err := r.Source.ReadManifest(ctx, id)
		if err != nil {
			return nil, resolutionError(id, "manifest unavailable", err)
		}
		for _, dep := range manifest.AllEntries() {
			if closure.Has(dep.Namespace, dep.Name) || queues[dep.Namespace].contains(dep.Name) {
				continue
			}
			queues[dep.Namespace].push(dep)
		}
		log.Ctx(ctx).Debug().
			Str("resource", id.String()).
			Int("fanout", manifest.Len()).
			Msg("resolved dependency")
	}
	return closure, nil
}

func nextEntry(queues map[types.Namespace]*workQueue) (types.ManifestEntry, bool) {
	for _, ns := range types.Namespaces {
		if len(queues[ns].entries) > 0 {
			return queues[ns].pop(), true
		}
	}
	return types.ManifestEntry{}, false
}

func resolutionError(id types.ResourceID, reason string, cause error) error {
	return types.NewError(types.ErrorKindDependencyResolution,
		fmt.Sprintf("cannot resolve dependency %s: %s", id, reason), cause)
}
