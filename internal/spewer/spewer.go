package spewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/igovsol/extract/internal/solr"
	"github.com/igovsol/extract/pkg/types"
)

// Options configures the index writer. The zero value disables
// threshold-based auto-commit, commitWithin, and atomic writes; date
// fixing defaults on via DefaultOptions.
type Options struct {
	// CommitInterval commits the index every time this many documents
	// have been added since the last commit. 0 disables.
	CommitInterval int

	// CommitWithin instructs the index to commit each added document on
	// its own within this duration. 0 disables.
	CommitWithin time.Duration

	// AtomicWrites makes every field (except the identifier) a partial
	// "set" update, so fields absent from the payload keep their stored
	// values instead of being erased.
	AtomicWrites bool

	// FixDates appends a UTC marker to non-compliant values of the
	// well-known date fields.
	FixDates bool
}

// DefaultOptions returns the writer defaults: everything disabled except
// date fixing.
func DefaultOptions() Options {
	return Options{FixDates: true}
}

// WriteError reports that a document could not be added to the index. It
// carries the document's identity and, for index-side faults, the HTTP
// status code.
type WriteError struct {
	Document   string
	StatusCode int
	Err        error
}

func (e *WriteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("unable to add document to index: %q: HTTP error %d", e.Document, e.StatusCode)
	}
	return fmt.Sprintf("unable to add document to index: %q: %v", e.Document, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Spewer writes mapped documents to a Solr core and coordinates batched
// auto-commit across concurrent writers.
//
// The pending counter tracks documents added since the last successful
// commit. At most one goroutine commits at a time, enforced by a
// single-permit gate; writers that cross the threshold while another
// commit is in flight block until the gate frees.
type Spewer struct {
	client solr.Client
	mapper *Mapper
	logger *slog.Logger

	// commitGate is the commit exclusivity gate. Weight 1: mutual
	// exclusion, not a counting limiter.
	commitGate *semaphore.Weighted
	pending    atomic.Int64

	commitThreshold int
	commitWithin    time.Duration
}

// New creates a writer over the given client with default options.
func New(client solr.Client, fields FieldNames) *Spewer {
	return &Spewer{
		client:     client,
		mapper:     NewMapper(fields),
		logger:     slog.Default(),
		commitGate: semaphore.NewWeighted(1),
	}
}

// Configure applies the full option set.
func (s *Spewer) Configure(opts Options) {
	s.commitThreshold = opts.CommitInterval
	s.commitWithin = opts.CommitWithin
	s.mapper.atomicWrites = opts.AtomicWrites
	s.mapper.fixDates = opts.FixDates
}

// SetTags replaces the tags written with every document.
func (s *Spewer) SetTags(tags map[string]string) {
	s.mapper.SetTags(tags)
}

// Write maps the document tree, sends it to the index, and triggers an
// auto-commit once the configured threshold is exceeded.
//
// Any fault while adding surfaces as a *WriteError. A fault in a
// subsequent auto-commit does not: the document was already written, so
// the commit is logged and retried on the next threshold crossing or at
// Close.
func (s *Spewer) Write(ctx context.Context, doc *types.Document) error {
	rec, err := s.mapper.Map(doc)
	if err != nil {
		return &WriteError{Document: doc.String(), Err: err}
	}

	var resp *solr.UpdateResponse
	if s.commitWithin > 0 {
		resp, err = s.client.AddWithin(ctx, rec, s.commitWithin)
	} else {
		resp, err = s.client.Add(ctx, rec)
	}
	if err != nil {
		we := &WriteError{Document: doc.String(), Err: err}
		var statusErr *solr.StatusError
		if errors.As(err, &statusErr) {
			we.StatusCode = statusErr.Code
		}
		return we
	}

	s.logger.Info("document added to index", "document", doc.String(), "elapsed", resp.Elapsed)
	s.pending.Add(1)

	if s.commitThreshold > 0 {
		s.commitPending(ctx, s.commitThreshold)
	}
	return nil
}

// WriteMetadata is not implemented by the index writer: metadata is only
// ever written as part of a full document.
func (s *Spewer) WriteMetadata(*types.Document) error {
	return fmt.Errorf("write metadata: %w", errors.ErrUnsupported)
}

// Close forces a final commit of whatever is pending (when threshold
// auto-commit is enabled) and releases the client.
func (s *Spewer) Close() error {
	if s.commitThreshold > 0 {
		s.commitPending(context.Background(), 0)
	}
	return s.client.Close()
}

// commitPending issues a commit if more than threshold documents are
// pending. Exactly one goroutine may be mid-commit; others block on the
// gate. Cancellation while waiting abandons the attempt with no side
// effects. Commit faults are absorbed: the pending count is left intact
// for the next attempt.
func (s *Spewer) commitPending(ctx context.Context, threshold int) {
	if err := s.commitGate.Acquire(ctx, 1); err != nil {
		s.logger.Warn("interrupted while waiting to commit", "error", err)
		return
	}
	defer s.commitGate.Release(1)

	if s.pending.Load() <= int64(threshold) {
		return
	}

	resp, err := s.client.Commit(ctx)
	if err != nil {
		var statusErr *solr.StatusError
		if errors.As(err, &statusErr) {
			s.logger.Error("failed to commit to index", "status", statusErr.Code, "error", err)
		} else {
			s.logger.Error("failed to commit to index", "error", err)
		}
		return
	}

	s.pending.Store(0)
	s.logger.Info("committed to index", "elapsed", resp.Elapsed)
}
