// Package drugquery answers drug intelligence questions from the Orange Book
// and Purple Book data. It owns the database lifecycle: the first query (or
// an explicit warm-up) downloads the sources, builds the SQLite store and
// memoizes the handle, and later queries reuse it until the file goes stale.
package drugquery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fdatools/openfda-mcp/logging"
	"github.com/fdatools/openfda-mcp/metrics"
	"github.com/fdatools/openfda-mcp/orangebook"
	"github.com/fdatools/openfda-mcp/store"
)

const (
	defaultMaxStalenessDays = 30
	productSearchLimit      = 100
	biologicSearchLimit     = 100
)

// BookFetcher downloads the Orange Book and Purple Book source files into a
// directory. Satisfied by orangebook.Downloader.
type BookFetcher interface {
	FetchAll(ctx context.Context, dir string, progress orangebook.ProgressFunc) (orangebook.BookPaths, error)
}

var _ BookFetcher = (*orangebook.Downloader)(nil)

// Options configures a Service.
type Options struct {
	// StorePath is where the built database file lives.
	StorePath string
	// MaxStalenessDays is how old the database file may grow before a
	// query triggers a rebuild. Defaults to 30.
	MaxStalenessDays int
}

// Service serves the analytical drug queries. All methods are safe for
// concurrent use.
type Service struct {
	opts    Options
	fetcher BookFetcher

	mu       sync.Mutex
	store    *store.Store
	building *buildFuture

	// now is swapped out by tests that need a fixed clock.
	now func() time.Time
}

// buildFuture is a single in-flight build shared by every caller that arrives
// while it runs. done is closed after err is set.
type buildFuture struct {
	done chan struct{}
	err  error
}

func (f *buildFuture) wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		// The build itself keeps running; this caller just stops waiting.
		return ctx.Err()
	}
}

// NewService creates a Service. A nil fetcher gets the production downloader.
func NewService(opts Options, fetcher BookFetcher) *Service {
	if opts.MaxStalenessDays <= 0 {
		opts.MaxStalenessDays = defaultMaxStalenessDays
	}
	if fetcher == nil {
		fetcher = orangebook.NewDownloader()
	}
	return &Service{opts: opts, fetcher: fetcher, now: time.Now}
}

// EnsureReady guarantees a fresh database is open before returning. When the
// database is missing or older than the staleness limit it triggers a full
// download-parse-build cycle; concurrent callers share one build rather than
// racing their own. The ctx only bounds this caller's wait, never the build.
func (s *Service) EnsureReady(ctx context.Context) error {
	s.mu.Lock()

	if s.store != nil && !s.isStale() {
		s.mu.Unlock()
		return nil
	}

	if s.building != nil {
		f := s.building
		s.mu.Unlock()
		return f.wait(ctx)
	}

	// A fresh file left by an earlier run is reused instead of rebuilt.
	if s.store == nil && !s.isStale() {
		st, err := store.Open(s.opts.StorePath)
		if err == nil {
			s.store = st
			s.mu.Unlock()
			logging.Info("Reusing existing drug database", "path", s.opts.StorePath)
			return nil
		}
		logging.Warn("Existing drug database is unusable, rebuilding", "path", s.opts.StorePath, "error", err)
	}

	f := &buildFuture{done: make(chan struct{})}
	s.building = f
	s.mu.Unlock()

	go s.runBuild(f)

	return f.wait(ctx)
}

// Ready reports whether a database handle is currently open. It does not
// trigger a build.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store != nil
}

// StoreAge returns how long ago the database file was built, from its
// modification time.
func (s *Service) StoreAge() (time.Duration, error) {
	info, err := os.Stat(s.opts.StorePath)
	if err != nil {
		return 0, fmt.Errorf("failed to stat database file: %w", err)
	}
	return s.now().Sub(info.ModTime()), nil
}

// Counts reports row counts from the open database.
func (s *Service) Counts(ctx context.Context) (store.RecordCounts, error) {
	st := s.currentStore()
	if st == nil {
		return store.RecordCounts{}, ErrNotInitialized
	}
	return st.Counts(ctx)
}

// Metadata reports the build metadata from the open database.
func (s *Service) Metadata(ctx context.Context) (map[string]string, error) {
	st := s.currentStore()
	if st == nil {
		return nil, ErrNotInitialized
	}
	return st.Metadata(ctx)
}

// KnownIngredients lists distinct product ingredients for name suggestion.
// It never triggers a build; before the first build it returns nothing.
func (s *Service) KnownIngredients(ctx context.Context, limit int) ([]string, error) {
	st := s.currentStore()
	if st == nil {
		return nil, nil
	}
	return st.DistinctIngredients(ctx, limit)
}

// Close releases the database handle if one is open.
func (s *Service) Close() error {
	s.mu.Lock()
	st := s.store
	s.store = nil
	s.mu.Unlock()
	if st == nil {
		return nil
	}
	return st.Close()
}

// isStale reports whether the database file is missing or older than the
// configured limit. The file's mtime is the freshness signal. Callers hold
// s.mu.
func (s *Service) isStale() bool {
	info, err := os.Stat(s.opts.StorePath)
	if err != nil {
		return true
	}
	maxAge := time.Duration(s.opts.MaxStalenessDays) * 24 * time.Hour
	return s.now().Sub(info.ModTime()) > maxAge
}

func (s *Service) currentStore() *store.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// readyStore runs the readiness check and hands back the open store.
func (s *Service) readyStore(ctx context.Context) (*store.Store, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	st := s.currentStore()
	if st == nil {
		return nil, ErrNotInitialized
	}
	return st, nil
}

func (s *Service) runBuild(f *buildFuture) {
	start := time.Now()
	err := s.buildOnce()

	outcome := "success"
	if err != nil {
		outcome = "failure"
		logging.Error("Drug database build failed", "error", err)
	}
	metrics.RecordStoreBuild(outcome, time.Since(start).Seconds())

	s.mu.Lock()
	f.err = err
	s.building = nil
	s.mu.Unlock()
	close(f.done)
}

// buildOnce runs one full download-parse-build-publish cycle. It runs on a
// background context: once started, a build is never cancelled, so the money
// spent downloading is not wasted when the triggering caller goes away.
func (s *Service) buildOnce() error {
	ctx := context.Background()

	tempDir, err := os.MkdirTemp("", "fda-books-")
	if err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			logging.Warn("Failed to remove download dir", "dir", tempDir, "error", err)
		}
	}()

	tracker := newProgressTracker()
	paths, err := s.fetcher.FetchAll(ctx, tempDir, tracker.report)
	if err != nil {
		return fmt.Errorf("source download failed: %w", err)
	}

	dataset, err := orangebook.ParseOrangeBookArchive(paths.OrangeBook)
	if err != nil {
		return fmt.Errorf("orange book parse failed: %w", err)
	}

	biologics, err := orangebook.ParsePurpleBookWorkbook(paths.PurpleBook)
	if err != nil {
		return fmt.Errorf("purple book parse failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.opts.StorePath), 0o750); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	// Build beside the serving path, then publish with a rename so readers
	// never observe a half-written file.
	buildPath := s.opts.StorePath + ".building"
	if err := os.Remove(buildPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear stale build file: %w", err)
	}

	info := store.BuildInfo{
		DataVersion:    s.now().UTC().Format("2006-01-02"),
		OrangeBookFile: filepath.Base(paths.OrangeBook),
		PurpleBookFile: filepath.Base(paths.PurpleBook),
		FetchedAt:      s.now().UTC(),
	}
	if err := store.Build(buildPath, dataset, biologics, info); err != nil {
		if rmErr := os.Remove(buildPath); rmErr != nil && !os.IsNotExist(rmErr) {
			logging.Warn("Failed to remove partial build file", "path", buildPath, "error", rmErr)
		}
		return fmt.Errorf("database build failed: %w", err)
	}

	if err := os.Rename(buildPath, s.opts.StorePath); err != nil {
		return fmt.Errorf("failed to publish database: %w", err)
	}

	st, err := store.Open(s.opts.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open built database: %w", err)
	}

	s.mu.Lock()
	old := s.store
	s.store = st
	s.mu.Unlock()
	if old != nil {
		if err := old.Close(); err != nil {
			logging.Warn("Failed to close previous database handle", "error", err)
		}
	}
	return nil
}

// progressTracker feeds download progress into metrics and the debug log.
// One tracker covers a single build, so byte deltas start from zero.
type progressTracker struct {
	mu   sync.Mutex
	seen map[string]int64
}

func newProgressTracker() *progressTracker {
	return &progressTracker{seen: make(map[string]int64)}
}

func (t *progressTracker) report(label string, done, total int64) {
	t.mu.Lock()
	prev := t.seen[label]
	t.seen[label] = done
	t.mu.Unlock()

	if delta := done - prev; delta > 0 {
		metrics.AddDownloadBytes(label, float64(delta))
	}

	// Log at 10MB boundaries to keep the debug log readable.
	const step = 10 * 1024 * 1024
	if prev/step != done/step {
		logging.Debug("Download progress", "file", label, "bytes", done, "total", total)
	}
}
