package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"nyoka-packages/internal/shared"
	"nyoka-packages/internal/types"
)

// Add installs a resource from the remote, optionally with its full
// dependency closure. A failed dependency download is recorded in the
// result and does not stop the install of the requested resource.
func (s Service) Add(ctx context.Context, req AddRequest) (AddResult, error) {
	id := req.ID
	summaries, err := s.Remote.ListResources(ctx, id.Namespace)
	if err != nil && !types.IsKind(err, types.ErrorKindNotFound) {
		return AddResult{}, err
	}
	summary, ok := summaries[id.Name]
	if !ok {
		return AddResult{}, types.NewError(types.ErrorKindNotAvailable,
			fmt.Sprintf("%s is not available on the remote", types.ResourceID{Namespace: id.Namespace, Name: id.Name}), nil)
	}
	if id.Version == "" {
		id.Version = summary.LatestVersion
	} else {
		versions, err := s.Remote.ListVersions(ctx, id.Namespace, id.Name)
		if err != nil {
			return AddResult{}, err
		}
		if !versions.Contains(id.Version) {
			return AddResult{}, types.NewError(types.ErrorKindVersionNotFound,
				fmt.Sprintf("version %s of %s/%s does not exist on the remote", id.Version, id.Namespace, id.Name), nil)
		}
	}

	if err := s.ensureNamespaceDirs(ctx); err != nil {
		return AddResult{}, err
	}
	exists, err := s.Mirror.Exists(id.Namespace, id.Name)
	if err != nil {
		return AddResult{}, err
	}
	if exists {
		question := fmt.Sprintf("%s/%s already exists locally. Overwrite it with version %s?", id.Namespace, id.Name, id.Version)
		if err := s.confirm(ctx, question, "add "+id.String()); err != nil {
			return AddResult{}, err
		}
	}

	result := AddResult{ID: id}
	closure, err := s.Remote.FetchClosure(ctx, id)
	if err != nil {
		return AddResult{}, err
	}
	if closure.Len() > 0 {
		s.reporter().Closure(id, closure)
		question := fmt.Sprintf("Download all %d dependencies (%s)?", closure.Len(), shared.HumanBytes(closure.TotalBytes()))
		ok, err := s.ask(ctx, question)
		if err != nil {
			return AddResult{}, err
		}
		if ok {
			for _, entry := range closure.Entries() {
				dep := types.ResourceID{Namespace: entry.Namespace, Name: entry.Name, Version: entry.Version}
				if err := s.download(ctx, dep, entry.ByteCount); err != nil {
					log.Ctx(ctx).Warn().Err(err).Str("dependency", dep.String()).Msg("dependency download failed")
					result.Failed = append(result.Failed, DependencyFailure{ID: dep, Err: err})
					continue
				}
				result.Installed = append(result.Installed, dep)
			}
		} else {
			result.DependenciesSkipped = true
		}
	}

	if err := s.download(ctx, id, summary.ByteCount); err != nil {
		return result, err
	}
	log.Ctx(ctx).Info().
		Str("resource", id.String()).
		Int("dependencies", len(result.Installed)).
		Int("failed", len(result.Failed)).
		Msg("installed resource")
	return result, nil
}

func (s Service) ensureNamespaceDirs(ctx context.Context) error {
	ok, err := s.Mirror.NamespaceDirsExist()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := s.confirm(ctx, "Local resource directories are missing. Create them?", "creating local directories"); err != nil {
		return err
	}
	_, err = s.Mirror.CreateNamespaceDirs()
	return err
}

// download streams one payload into the mirror. The payload write and the
// version record write run concurrently and are joined before returning;
// a failure in either is not rolled back.
func (s Service) download(ctx context.Context, id types.ResourceID, expected int64) error {
	stream, err := s.Remote.FetchPayload(ctx, id)
	if err != nil {
		return err
	}
	defer stream.Body.Close()

	total := expected
	if total <= 0 {
		total = stream.Size
	}
	body := &progressReader{
		r:      stream.Body,
		total:  total,
		report: func(done int64, total int64) { s.reporter().Progress(id, done, total) },
	}

	var group errgroup.Group
	group.Go(func() error {
		_, err := s.Mirror.WritePayload(ctx, id.Namespace, id.Name, body)
		return err
	})
	group.Go(func() error {
		return s.Mirror.WriteVersionRecord(id.Namespace, id.Name, id.Version)
	})
	return group.Wait()
}

type progressReader struct {
	r      io.Reader
	done   int64
	total  int64
	report func(done int64, total int64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.done += int64(n)
		p.report(p.done, p.total)
	}
	return n, err
}
