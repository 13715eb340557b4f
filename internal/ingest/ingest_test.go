package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igovsol/extract/internal/digest"
	"github.com/igovsol/extract/internal/parse"
	"github.com/igovsol/extract/internal/report"
	"github.com/igovsol/extract/pkg/types"
)

type mockWriter struct {
	mu      sync.Mutex
	written []string
	failFor map[string]error
}

func (m *mockWriter) Write(_ context.Context, doc *types.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[doc.Path]; ok {
		return err
	}
	m.written = append(m.written, doc.Path)
	return nil
}

func (m *mockWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.written)
}

func writeFixtures(t *testing.T, contents map[string]string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, 0, len(contents))
	for name, body := range contents {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func newTestIngester(t *testing.T, writer Writer, store *report.Store) *Ingester {
	t.Helper()

	digester, err := digest.New(digest.SHA256, "")
	require.NoError(t, err)
	return New(parse.NewEngine(), writer, store, digester)
}

func openTestStore(t *testing.T) *report.Store {
	t.Helper()

	store, err := report.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestIngestPaths(t *testing.T) {
	paths := writeFixtures(t, map[string]string{
		"a.txt": "alpha",
		"b.txt": "bravo",
		"c.txt": "charlie",
	})
	writer := &mockWriter{}
	ing := newTestIngester(t, writer, nil)

	stats, err := ing.IngestPaths(context.Background(), paths, &Config{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Indexed)
	assert.Zero(t, stats.Skipped)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, 3, writer.count())
}

func TestIngestSkipsUnchanged(t *testing.T) {
	paths := writeFixtures(t, map[string]string{
		"a.txt": "alpha",
		"b.txt": "bravo",
	})
	store := openTestStore(t)
	writer := &mockWriter{}
	ing := newTestIngester(t, writer, store)
	ctx := context.Background()

	stats, err := ing.IngestPaths(ctx, paths, &Config{Workers: 1})
	require.NoError(t, err)
	require.Equal(t, 2, stats.Indexed)

	// Second run over the same content touches nothing.
	stats, err = ing.IngestPaths(ctx, paths, &Config{Workers: 1})
	require.NoError(t, err)
	assert.Zero(t, stats.Indexed)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 2, writer.count())

	// Changed content is re-ingested.
	require.NoError(t, os.WriteFile(paths[0], []byte("alpha v2"), 0o644))
	stats, err = ing.IngestPaths(ctx, paths, &Config{Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Indexed)
	assert.Equal(t, 1, stats.Skipped)
}

func TestIngestFailuresAreNonFatal(t *testing.T) {
	paths := writeFixtures(t, map[string]string{
		"good.txt": "fine",
		"bad.txt":  "rejected",
	})
	var badPath string
	for _, p := range paths {
		if strings.HasSuffix(p, "bad.txt") {
			badPath = p
		}
	}

	store := openTestStore(t)
	writer := &mockWriter{failFor: map[string]error{badPath: errors.New("index unavailable")}}
	ing := newTestIngester(t, writer, store)
	ctx := context.Background()

	stats, err := ing.IngestPaths(ctx, paths, &Config{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Indexed)
	assert.Equal(t, 1, stats.Failed)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], "index unavailable")

	// The failure is recorded so the next run retries it.
	entry, err := store.Get(ctx, badPath)
	require.NoError(t, err)
	assert.Equal(t, report.StatusFailure, entry.Status)

	writer.failFor = nil
	stats, err = ing.IngestPaths(ctx, paths, &Config{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Indexed, "the failed file is retried")
	assert.Equal(t, 1, stats.Skipped)
}

func TestIngestMissingFile(t *testing.T) {
	writer := &mockWriter{}
	ing := newTestIngester(t, writer, nil)

	stats, err := ing.IngestPaths(context.Background(), []string{"/no/such/file"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, writer.count())
}
