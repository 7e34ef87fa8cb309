// Command cearch is the full-text search server: it builds (or restores) an
// index over a directory tree and serves BM25-ranked queries over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aumeinctutw1/cearch/internal/cas"
	"github.com/aumeinctutw1/cearch/internal/config"
	"github.com/aumeinctutw1/cearch/internal/index"
	"github.com/aumeinctutw1/cearch/internal/query"
	"github.com/aumeinctutw1/cearch/internal/server"
	"github.com/aumeinctutw1/cearch/pkg/logging"
	"go.uber.org/zap"
)

const usage = "usage: cearch <query_port> <directory_to_index> <index_path>"

func main() {
	os.Exit(run())
}

// parsedArgs holds the three required positional arguments.
type parsedArgs struct {
	port      int
	directory string
	indexPath string
}

// parseArgs validates the binary's strict positional calling convention:
// <query_port> <directory_to_index> <index_path>.
func parseArgs(args []string) (parsedArgs, error) {
	if len(args) != 3 {
		return parsedArgs{}, fmt.Errorf("%s", usage)
	}
	port, err := strconv.Atoi(args[0])
	if err != nil || port <= 0 || port > 65535 {
		return parsedArgs{}, fmt.Errorf("invalid query_port %q", args[0])
	}
	return parsedArgs{port: port, directory: args[1], indexPath: args[2]}, nil
}

// loadOptionalConfig reads the YAML config file named by CEARCH_CONFIG, if
// set. Its settings (bind host, worker cap, logging, stopwords file) layer
// underneath the CLI's required positional arguments, which always win for
// port/directory/index path.
func loadOptionalConfig() (*config.Config, error) {
	path := os.Getenv("CEARCH_CONFIG")
	if path == "" {
		return nil, nil
	}
	return config.Load(path)
}

func run() int {
	parsed, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	port, directory, indexPath := parsed.port, parsed.directory, parsed.indexPath

	cfg, err := loadOptionalConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 2
	}

	debug := os.Getenv("CEARCH_DEBUG") != "" || (cfg != nil && cfg.Debug)
	logger, err := logging.NewLogger(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 2
	}
	defer logger.Sync()

	if err := os.MkdirAll(indexPath, 0o755); err != nil {
		logger.Error("failed to prepare index path", zap.String("index_path", indexPath), zap.Error(err))
		return 2
	}

	host := "0.0.0.0"
	maxWorkers := 0
	var idxOpts []index.Option
	idxOpts = append(idxOpts, index.WithLogger(logger))
	if cfg != nil {
		if cfg.Server.Host != "" {
			host = cfg.Server.Host
		}
		maxWorkers = cfg.Index.MaxWorkers
		if cfg.Index.StopwordsFile != "" {
			idxOpts = append(idxOpts, index.WithStopwordsFile(cfg.Index.StopwordsFile))
		}
	}

	store := cas.New(indexPath)
	idx := index.New(indexPath, store, idxOpts...)

	ctx, cancelBuild := context.WithCancel(context.Background())
	if err := idx.Build(ctx, directory, maxWorkers); err != nil {
		cancelBuild()
		logger.Error("index build failed", zap.Error(err))
		return 2
	}
	cancelBuild()

	engine := query.New(idx)
	srv := server.New(idx, engine, host, port, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server failed to start", zap.Error(err))
		return 2
	case <-sigCh:
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return 2
	}
	return 0
}
