package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	perrors "github.com/Aman-CERP/referer-parser/internal/errors"
	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

// DefaultDebounce is how long a dataset file must be quiet before a reload.
const DefaultDebounce = 200 * time.Millisecond

// Reloader serves classifications from a dataset file and swaps in a
// rebuilt table when the file changes. A failed reload keeps the previous
// table in service.
type Reloader struct {
	path     string
	internal []string
	logger   *slog.Logger
	debounce time.Duration
	onReload func(*referer.Table)
	cache    int

	current atomic.Pointer[serving]
	reloads atomic.Uint64
	mu      sync.Mutex // serializes rebuilds
}

// serving pairs a table's matcher with the classifier built over it. When a
// cache is configured, each cache belongs to exactly one matcher, so a result
// computed from an old table can never land in the cache of a newer one.
type serving struct {
	matcher    *referer.Matcher
	classifier referer.Classifier
}

func newServing(table *referer.Table, cacheSize int) *serving {
	m := referer.NewMatcher(table)
	s := &serving{matcher: m, classifier: m}
	if cacheSize > 0 {
		s.classifier = referer.NewCachedClassifier(m, cacheSize)
	}
	return s
}

// Ensure Reloader implements referer.Classifier.
var _ referer.Classifier = (*Reloader)(nil)

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithLogger sets the logger for reload events.
func WithLogger(logger *slog.Logger) ReloaderOption {
	return func(r *Reloader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) ReloaderOption {
	return func(r *Reloader) {
		if d > 0 {
			r.debounce = d
		}
	}
}

// WithCache serves classifications through an LRU of size entries. Every
// reload starts a fresh cache together with the new table.
func WithCache(size int) ReloaderOption {
	return func(r *Reloader) {
		r.cache = size
	}
}

// WithOnReload registers fn to run after each successful swap.
func WithOnReload(fn func(*referer.Table)) ReloaderOption {
	return func(r *Reloader) {
		r.onReload = fn
	}
}

// NewReloader loads the dataset at path and returns a reloader serving it.
// The initial load must succeed.
func NewReloader(path string, internalDomains []string, opts ...ReloaderOption) (*Reloader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve dataset path: %w", err)
	}

	r := &Reloader{
		path:     abs,
		internal: internalDomains,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(r)
	}

	table, err := Open(abs, internalDomains)
	if err != nil {
		return nil, err
	}
	r.current.Store(newServing(table, r.cache))
	return r, nil
}

// Classify classifies with the table currently in service.
func (r *Reloader) Classify(host, path, query string) referer.Classification {
	return r.current.Load().classifier.Classify(host, path, query)
}

// Table returns the table currently in service.
func (r *Reloader) Table() *referer.Table {
	return r.current.Load().matcher.Table()
}

// Path returns the absolute dataset path.
func (r *Reloader) Path() string {
	return r.path
}

// Reloads returns the number of successful reloads.
func (r *Reloader) Reloads() uint64 {
	return r.reloads.Load()
}

// Reload rebuilds the table from disk and swaps it in.
// On failure the current table stays in service and an
// ERR_502_RELOAD_FAILED error wrapping the cause is returned.
func (r *Reloader) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	table, err := Open(r.path, r.internal)
	if err != nil {
		r.logger.Warn("dataset_reload_failed",
			slog.String("path", r.path),
			slog.String("error", err.Error()))
		return perrors.New(perrors.ErrCodeReloadFailed, "dataset reload failed, keeping previous table", err).
			WithDetail("path", r.path)
	}

	r.current.Store(newServing(table, r.cache))
	r.reloads.Add(1)
	r.logger.Info("dataset_reloaded",
		slog.String("path", r.path),
		slog.Int("domains", table.Len()),
		slog.Duration("duration", time.Since(start)))

	if r.onReload != nil {
		r.onReload(table)
	}
	return nil
}

// Watch reloads the dataset whenever its file changes, until ctx is done.
// The parent directory is watched so that editors replacing the file by
// rename are seen. Reload failures are logged and do not stop the watch.
func (r *Reloader) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	dir := filepath.Dir(r.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	r.logger.Debug("dataset_watch_started", slog.String("path", r.path))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !r.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(r.debounce)
			} else {
				timer.Reset(r.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			_ = r.Reload()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("dataset_watch_error", slog.String("error", err.Error()))
		}
	}
}

func (r *Reloader) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != r.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
