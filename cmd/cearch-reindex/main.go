// Command cearch-reindex is an offline companion to cearch: it forces a
// fresh build of an index directory, discarding any existing snapshot.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aumeinctutw1/cearch/internal/cas"
	"github.com/aumeinctutw1/cearch/internal/index"
	"github.com/aumeinctutw1/cearch/pkg/logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "cearch-reindex",
		Usage: "rebuild a cearch index from scratch",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "directory",
				Aliases:  []string{"d"},
				Usage:    "directory to index",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "index-path",
				Aliases:  []string{"i"},
				Usage:    "index directory to rebuild",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "max-workers",
				Usage: "bound on concurrent file indexing workers (0 = runtime.NumCPU())",
				Value: 0,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "verbose development logging",
			},
		},
		Action: reindex,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func reindex(c *cli.Context) error {
	directory := c.String("directory")
	indexPath := c.String("index-path")
	maxWorkers := c.Int("max-workers")

	logger, err := logging.NewLogger(c.Bool("debug"))
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync()

	if err := os.MkdirAll(indexPath, 0o755); err != nil {
		return fmt.Errorf("prepare index path: %w", err)
	}

	markerPath := indexPath + "/.index_complete"
	if err := os.Remove(markerPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale completion marker: %w", err)
	}

	store := cas.New(indexPath)
	idx := index.New(indexPath, store, index.WithLogger(logger))

	if err := idx.Build(context.Background(), directory, maxWorkers); err != nil {
		logger.Error("reindex failed", zap.Error(err))
		return fmt.Errorf("reindex failed: %w", err)
	}

	logger.Info("reindex complete",
		zap.Int("documents", idx.DocumentCount()),
		zap.Int("total_term_count", idx.TotalTermCount()),
	)
	return nil
}
