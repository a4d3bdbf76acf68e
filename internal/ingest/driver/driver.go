// Package driver runs the per-file ingest coordinator across multiple
// FASTA files concurrently, honoring spec.md §5's rule that files may be
// processed in parallel provided each worker holds a distinct store
// session. Grounded on the teacher's channel-based file-processing
// pipelines in internal/indexing/master_index.go, adapted here to a
// bounded worker pool over golang.org/x/sync/errgroup + semaphore, one
// store session checked out per worker.
package driver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/saitomics/proteomics/internal/debug"
	"github.com/saitomics/proteomics/internal/ingest"
	"github.com/saitomics/proteomics/internal/registry"
	"github.com/saitomics/proteomics/internal/store"
)

// SessionFactory opens a new, independent store session (e.g. a pgxpool
// connection checked out of the pool) for one worker.
type SessionFactory func(ctx context.Context) (store.Gateway, error)

// Result is the outcome of ingesting a single file.
type Result struct {
	Path    string
	Skipped bool
	Stats   ingest.Stats
	Err     error
}

// Run ingests every file in paths concurrently, at most parallelism files
// at a time, each through its own Gateway session, and returns one Result
// per file (order matches paths). The first worker error cancels the
// remaining in-flight work; already-completed files are not rolled back
// since each file's checkpoint (FileDigest) only ever commits after all of
// that file's own work completes.
func Run(ctx context.Context, paths []string, parallelism int, newSession SessionFactory, cfg ingest.Config, digest registry.Resolved) ([]Result, error) {
	if parallelism < 1 {
		parallelism = 1
	}
	sem := semaphore.NewWeighted(int64(parallelism))
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, fmt.Errorf("driver: %w", err)
		}
		g.Go(func() error {
			defer sem.Release(1)

			gw, err := newSession(gctx)
			if err != nil {
				results[i] = Result{Path: path, Err: err}
				return err
			}
			defer gw.Close()

			debug.Log("INGEST", "starting %s", path)
			coord := ingest.New(gw, cfg, digest)
			skipped, stats, err := coord.File(gctx, path)
			results[i] = Result{Path: path, Skipped: skipped, Stats: stats, Err: err}
			return err
		})
	}

	// errgroup cancels gctx on first error but Wait still drains every
	// goroutine; the partial results slice is returned alongside the error
	// so a caller can report what did and did not complete.
	err := g.Wait()
	return results, err
}
