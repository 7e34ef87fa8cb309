// Package crawl walks a directory tree and fans out one task per regular file
// across a bounded worker pool, the Go equivalent of the reference
// implementation's std::async/std::future pool.
package crawl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrNotDirectory is returned when the given root is not a directory.
type ErrNotDirectory struct {
	Root string
}

func (e *ErrNotDirectory) Error() string {
	return fmt.Sprintf("crawl: not a directory: %s", e.Root)
}

// FileTask is invoked once per regular file found under root. A non-nil error
// from a task does not stop the crawl; callers are expected to log and
// swallow per-file errors themselves if they want per-file failures to be
// non-fatal (matching the Indexer's "never fatal per file" policy).
type FileTask func(ctx context.Context, path string) error

// Walk recursively enumerates root and runs fn for every regular file found,
// using up to maxWorkers goroutines concurrently (runtime.NumCPU() if
// maxWorkers <= 0). Walk returns an error when root cannot be walked (it does
// not exist or is not a directory). Per-file errors returned by fn do not
// abort the walk of sibling files; once all files have been visited, Walk
// returns the first of them. ctx is passed through to fn; Walk itself does
// not stop early when ctx is cancelled.
func Walk(ctx context.Context, root string, maxWorkers int, fn FileTask) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return &ErrNotDirectory{Root: root}
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	var mu sync.Mutex
	var firstFileErr error
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		g.Go(func() error {
			if taskErr := fn(ctx, path); taskErr != nil {
				mu.Lock()
				if firstFileErr == nil {
					firstFileErr = taskErr
				}
				mu.Unlock()
			}
			return nil
		})
		return nil
	})
	if walkErr != nil {
		_ = g.Wait()
		return fmt.Errorf("walk root: %w", walkErr)
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return firstFileErr
}
