package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/igovsol/extract/internal/digest"
	"github.com/igovsol/extract/internal/extractor"
	"github.com/igovsol/extract/internal/ingest"
	"github.com/igovsol/extract/internal/parse"
	"github.com/igovsol/extract/internal/report"
	"github.com/igovsol/extract/internal/solr"
	"github.com/igovsol/extract/internal/spewer"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

type config struct {
	solrURL        string
	commitInterval int
	commitWithin   time.Duration
	atomicWrites   bool
	fixDates       bool
	tags           []string
	workers        int
	reportPath     string
	algorithm      string
	digestModifier string
	recoverDigest  string
	showVersion    bool
}

func main() {
	var cfg config

	pflag.StringVar(&cfg.solrURL, "solr", envOr("EXTRACT_SOLR_URL", "http://localhost:8983/solr/extract"),
		"Solr core URL to index into")
	pflag.IntVar(&cfg.commitInterval, "commit-interval", 0,
		"commit once more than this many documents are pending (0 disables)")
	pflag.DurationVar(&cfg.commitWithin, "commit-within", 0,
		"ask the index to commit within this duration of each add")
	pflag.BoolVar(&cfg.atomicWrites, "atomic-writes", false,
		"send fields as atomic updates instead of whole documents")
	pflag.BoolVar(&cfg.fixDates, "fix-dates", true,
		"qualify bare ISO date metadata with a Z suffix")
	pflag.StringArrayVar(&cfg.tags, "tag", nil,
		"extra field to set on every document, as name=value (repeatable)")
	pflag.IntVar(&cfg.workers, "workers", 0,
		"number of files processed concurrently (0 means one per CPU)")
	pflag.StringVar(&cfg.reportPath, "report", envOr("EXTRACT_REPORT_PATH", ""),
		"path to the SQLite report database (empty disables skip tracking)")
	pflag.StringVar(&cfg.algorithm, "algorithm", envOr("EXTRACT_ALGORITHM", digest.SHA256),
		"digest algorithm for document identifiers")
	pflag.StringVar(&cfg.digestModifier, "digest-modifier", "",
		"string mixed into the digest metadata key")
	pflag.StringVar(&cfg.recoverDigest, "digest", "",
		"recover the embedded document with this digest to stdout instead of indexing")
	pflag.BoolVar(&cfg.showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if cfg.showVersion {
		fmt.Printf("extract %s (built %s)\n", version, buildTime)
		fmt.Printf("SQLite: %s driver (%s build)\n", report.DriverName, report.BuildMode)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg, pflag.Args()); err != nil {
		logger.Error("extract failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no input files given")
	}

	digester, err := digest.New(cfg.algorithm, cfg.digestModifier)
	if err != nil {
		return err
	}
	engine := parse.NewEngine(parse.WithDigester(digester))

	if cfg.recoverDigest != "" {
		return recoverEmbedded(cfg, engine, digester, paths)
	}
	return index(ctx, cfg, engine, digester, paths)
}

// recoverEmbedded re-parses a container and writes the embedded document
// matching the requested digest to stdout.
func recoverEmbedded(cfg *config, engine *parse.Engine, digester digest.Digester, paths []string) error {
	if len(paths) != 1 {
		return fmt.Errorf("recovery takes exactly one container file, got %d", len(paths))
	}

	f, err := os.Open(paths[0])
	if err != nil {
		return err
	}
	defer f.Close()

	source, err := extractor.New(engine, digester).Extract(f, cfg.recoverDigest)
	if err != nil {
		return fmt.Errorf("recover %s from %s: %w", cfg.recoverDigest, paths[0], err)
	}

	if _, err := os.Stdout.Write(source.Content); err != nil {
		return err
	}
	return nil
}

func index(ctx context.Context, cfg *config, engine *parse.Engine, digester digest.Digester, paths []string) error {
	tags, err := parseTags(cfg.tags)
	if err != nil {
		return err
	}

	client := solr.NewHTTPClient(cfg.solrURL)
	sp := spewer.New(client, spewer.DefaultFieldNames())
	sp.Configure(spewer.Options{
		CommitInterval: cfg.commitInterval,
		CommitWithin:   cfg.commitWithin,
		AtomicWrites:   cfg.atomicWrites,
		FixDates:       cfg.fixDates,
	})
	sp.SetTags(tags)
	defer func() {
		if err := sp.Close(); err != nil {
			slog.Error("failed to close index writer", "error", err)
		}
	}()

	var store *report.Store
	if cfg.reportPath != "" {
		store, err = report.Open(cfg.reportPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	stats, err := ingest.New(engine, sp, store, digester).
		IngestPaths(ctx, paths, &ingest.Config{Workers: cfg.workers})
	if err != nil {
		return err
	}

	slog.Info("run complete",
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"duration", stats.Duration)
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", stats.Failed, len(paths))
	}
	return nil
}

func parseTags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	tags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed tag %q, want name=value", pair)
		}
		tags[name] = value
	}
	return tags, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
