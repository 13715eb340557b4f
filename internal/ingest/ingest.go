package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/igovsol/extract/internal/digest"
	"github.com/igovsol/extract/internal/parse"
	"github.com/igovsol/extract/internal/report"
	"github.com/igovsol/extract/pkg/types"
)

// Writer consumes parsed document trees. Implemented by the spewer.
type Writer interface {
	Write(ctx context.Context, doc *types.Document) error
}

// Config contains configuration for an ingest run.
type Config struct {
	// Workers is the number of files processed concurrently.
	// Defaults to runtime.NumCPU().
	Workers int
}

// Statistics summarizes an ingest run.
type Statistics struct {
	Indexed       int
	Skipped       int
	Failed        int
	Duration      time.Duration
	ErrorMessages []string
}

// Ingester drives the ingestion pipeline over a set of files: parse each
// into a document tree, write it through the shared writer, and record
// the outcome in the report store so unchanged files are skipped next run.
type Ingester struct {
	engine   *parse.Engine
	writer   Writer
	store    *report.Store
	digester digest.Digester
	logger   *slog.Logger
}

// New creates an ingester. store may be nil to disable skip tracking.
func New(engine *parse.Engine, writer Writer, store *report.Store, digester digest.Digester) *Ingester {
	return &Ingester{
		engine:   engine,
		writer:   writer,
		store:    store,
		digester: digester,
		logger:   slog.Default(),
	}
}

// IngestPaths processes the given files concurrently. Per-file failures
// are collected in the statistics rather than aborting the run; the
// returned error is reserved for cancellation.
func (ing *Ingester) IngestPaths(ctx context.Context, paths []string, cfg *Config) (*Statistics, error) {
	workers := runtime.NumCPU()
	if cfg != nil && cfg.Workers > 0 {
		workers = cfg.Workers
	}

	start := time.Now()
	stats := &Statistics{}

	var (
		indexed atomic.Int32
		skipped atomic.Int32
		failed  atomic.Int32
	)
	var mu sync.Mutex // protects stats.ErrorMessages

	sem := make(chan struct{}, workers)
	g, gctx := errgroup.WithContext(ctx)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			switch err := ing.ingestOne(gctx, path); {
			case err == nil:
				indexed.Add(1)
			case err == errSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
				ing.logger.Error("ingest failed", "path", path, "error", err)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", path, err))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.Indexed = int(indexed.Load())
	stats.Skipped = int(skipped.Load())
	stats.Failed = int(failed.Load())
	stats.Duration = time.Since(start)
	return stats, nil
}

// errSkipped marks a file passed over because a prior run already indexed
// the same content. Internal control flow, never returned to callers.
var errSkipped = fmt.Errorf("skipped")

func (ing *Ingester) ingestOne(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	sum := ing.digester.DigestBytes(data)

	if ing.store != nil {
		skip, err := ing.store.Skip(ctx, path, sum)
		if err != nil {
			return err
		}
		if skip {
			ing.logger.Info("unchanged since last run", "path", path)
			return errSkipped
		}
	}

	doc, err := ing.engine.ParseDocument(path, bytes.NewReader(data))
	if err != nil {
		ing.record(ctx, path, sum, report.StatusFailure, err)
		return err
	}

	if err := ing.writer.Write(ctx, doc); err != nil {
		ing.record(ctx, path, sum, report.StatusFailure, err)
		return err
	}

	ing.record(ctx, path, sum, report.StatusSuccess, nil)
	return nil
}

func (ing *Ingester) record(ctx context.Context, path, sum string, status report.Status, cause error) {
	if ing.store == nil {
		return
	}
	entry := report.Entry{Path: path, Digest: sum, Status: status}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if err := ing.store.Save(ctx, entry); err != nil {
		ing.logger.Error("failed to save report entry", "path", path, "error", err)
	}
}
