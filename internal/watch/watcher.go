package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RefreshFunc recomputes the visible list. It is called once at startup
// and again after every debounced batch of changes.
type RefreshFunc func(ctx context.Context) (*Refresh, error)

// Refresh is the outcome of a single recomputation.
type Refresh struct {
	// Names is the visible list in display order.
	Names []string
	// Alerts counts the visible resources that carry an alert.
	Alerts int
	// Total counts all resources before filtering.
	Total int
}

// Options configures the watch behaviour.
type Options struct {
	// Files are the inputs to watch: the resource source and the
	// persisted options record. A file may not exist yet.
	Files []string

	// Debounce is the quiet period before triggering a refresh.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 300 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts the file watcher and blocks until the context is cancelled
// or a SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, refreshFn RefreshFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if len(opts.Files) == 0 {
		return errors.New("no files to watch")
	}

	targets, dirs, err := resolve(opts.Files)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch parent directories: atomic writes replace the file, which
	// drops a watch placed on the file itself.
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %q: %w", dir, err)
		}
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", strings.Join(opts.Files, ", "), opts.Debounce)

	r := &runner{opts: opts, refresh: refreshFn}
	r.run(sigCtx, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, func(path string) {
		r.run(sigCtx, filepath.Base(path))
	})

	for {
		select {
		case <-sigCtx.Done():
			debouncer.Stop()
			r.printf("\nshutting down watcher\n")

			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				debouncer.Stop()
				return nil
			}

			if !isRelevant(event, targets) {
				continue
			}

			opts.Logger.Debug("change detected",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()))

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				debouncer.Stop()
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// runner serialises refreshes and remembers the previous ordering.
type runner struct {
	opts    Options
	refresh RefreshFunc

	mu    sync.Mutex
	prev  []string
	ready bool
}

func (r *runner) run(ctx context.Context, trigger string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Format("15:04:05")

	result, err := r.refresh(ctx)
	if err != nil {
		fmt.Fprintf(r.opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(r.opts.Out, "[%s] %s → %d of %d resources shown, %d alerting\n",
		now, trigger, len(result.Names), result.Total, result.Alerts)

	if r.ready {
		change, diffErr := OrderDiff(r.prev, result.Names)
		if diffErr != nil {
			r.opts.Logger.Warn("order diff failed", slog.String("error", diffErr.Error()))
		} else {
			fmt.Fprintf(r.opts.Out, "  order: %s\n", change.Summary())

			if !change.Empty() {
				fmt.Fprint(r.opts.Out, indent(change.Unified, "    "))
			}
		}
	}

	r.prev = append([]string(nil), result.Names...)
	r.ready = true
}

func (r *runner) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.opts.Out, format, args...)
}

// resolve returns the absolute target set and the distinct parent
// directories to watch.
func resolve(files []string) (map[string]bool, []string, error) {
	targets := make(map[string]bool, len(files))
	seen := make(map[string]bool, len(files))

	var dirs []string

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving %q: %w", f, err)
		}

		targets[abs] = true

		dir := filepath.Dir(abs)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	return targets, dirs, nil
}

// isRelevant reports whether event can change one of the watched files.
// Sibling files in a watched directory, including editor temporaries and
// atomic-write temp files, never match targets.
func isRelevant(event fsnotify.Event, targets map[string]bool) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	return targets[filepath.Clean(event.Name)]
}

func indent(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")

	var b strings.Builder

	for _, l := range lines {
		if l == "" {
			continue
		}

		b.WriteString(prefix + l)
	}

	return b.String()
}
