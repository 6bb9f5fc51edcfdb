package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)


// ---------------------------------------------------------------------------
// Debouncer
// ---------------------------------------------------------------------------

func TestDebouncer_SingleEvent(t *testing.T) {
	var callCount atomic.Int32
	var lastPath atomic.Value

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		callCount.Add(1)
		lastPath.Store(path)
	})
	defer d.Stop()

	d.Trigger("a.yaml")

	// Wait for debounce to fire.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
	assert.Equal(t, "a.yaml", lastPath.Load())
}

func TestDebouncer_MultipleEventsCoalesced(t *testing.T) {
	var callCount atomic.Int32
	var lastPath atomic.Value

	d := NewDebouncer(100*time.Millisecond, func(path string) {
		callCount.Add(1)
		lastPath.Store(path)
	})
	defer d.Stop()

	// Fire 10 rapid events — should coalesce into 1.
	for i := 0; i < 10; i++ {
		d.Trigger("file.yaml")
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
	assert.Equal(t, "file.yaml", lastPath.Load())
}

func TestDebouncer_LastEventWins(t *testing.T) {
	var lastPath atomic.Value

	d := NewDebouncer(50*time.Millisecond, func(path string) {
		lastPath.Store(path)
	})
	defer d.Stop()

	d.Trigger("first.yaml")
	time.Sleep(10 * time.Millisecond)
	d.Trigger("second.yaml")
	time.Sleep(10 * time.Millisecond)
	d.Trigger("third.yaml")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, "third.yaml", lastPath.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(50*time.Millisecond, func(_ string) {
		callCount.Add(1)
	})

	d.Trigger("a.yaml")
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), callCount.Load())
}

func TestDebouncer_StopWaitsForRunningCallback(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})

	var finished atomic.Bool

	d := NewDebouncer(time.Millisecond, func(_ string) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	})

	d.Trigger("a.yaml")
	<-started
	d.Stop()

	assert.True(t, finished.Load())
}

// ---------------------------------------------------------------------------
// OrderDiff
// ---------------------------------------------------------------------------

func TestOrderDiff_NoChanges(t *testing.T) {
	change, err := OrderDiff([]string{"a", "b"}, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, change.Empty())
	assert.Equal(t, "no changes", change.Summary())
}

func TestOrderDiff_BothEmpty(t *testing.T) {
	change, err := OrderDiff(nil, []string{})
	require.NoError(t, err)
	assert.True(t, change.Empty())
}

func TestOrderDiff_Reordered(t *testing.T) {
	change, err := OrderDiff([]string{"a", "b", "c"}, []string{"c", "a", "b"})
	require.NoError(t, err)

	assert.False(t, change.Empty())
	assert.Empty(t, change.Added)
	assert.Empty(t, change.Removed)
	assert.True(t, change.Reordered)
	assert.Equal(t, "reordered", change.Summary())
	assert.Contains(t, change.Unified, "--- previous")
	assert.Contains(t, change.Unified, "+++ current")
	assert.Contains(t, change.Unified, "+c\n")
	assert.Contains(t, change.Unified, "-c\n")
}

func TestOrderDiff_AddedAndRemoved(t *testing.T) {
	change, err := OrderDiff([]string{"a", "b"}, []string{"b", "c", "d"})
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "d"}, change.Added)
	assert.Equal(t, []string{"a"}, change.Removed)
	assert.False(t, change.Reordered)
	assert.Equal(t, "+2 shown, -1 hidden", change.Summary())
}

// ---------------------------------------------------------------------------
// isRelevant / resolve
// ---------------------------------------------------------------------------

func TestIsRelevant(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "resources.yaml")
	targets := map[string]bool{source: true}

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"target write", source, fsnotify.Write, true},
		{"target create", source, fsnotify.Create, true},
		{"target remove", source, fsnotify.Remove, true},
		{"target rename", source, fsnotify.Rename, true},
		{"unclean target path", filepath.Join(dir, ".", "resources.yaml"), fsnotify.Write, true},
		{"atomic write temp", filepath.Join(dir, ".resource-list-options-123.yaml"), fsnotify.Create, false},
		{"swap file", filepath.Join(dir, "resources.yaml.swp"), fsnotify.Write, false},
		{"sibling file", filepath.Join(dir, "other.yaml"), fsnotify.Write, false},
		{"zero op", source, 0, false},
		{"chmod only", source, fsnotify.Chmod, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := fsnotify.Event{Name: tt.path, Op: tt.op}
			assert.Equal(t, tt.want, isRelevant(event, targets))
		})
	}
}

func TestResolve_DeduplicatesDirectories(t *testing.T) {
	dir := t.TempDir()

	targets, dirs, err := resolve([]string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "sub", "c.yaml"),
	})
	require.NoError(t, err)

	assert.Len(t, targets, 3)
	assert.True(t, targets[filepath.Join(dir, "b.yaml")])
	assert.Equal(t, []string{dir, filepath.Join(dir, "sub")}, dirs)
}

// ---------------------------------------------------------------------------
// Run (integration)
// ---------------------------------------------------------------------------

// syncBuffer is a bytes.Buffer safe for the watcher and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func startRun(t *testing.T, opts Options, fn RefreshFunc) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, fn)
	}()

	return cancel, done
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down in time")
	}
}

func TestRun_GracefulShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreAnyFunction("os/signal.loop"))

	source := filepath.Join(t.TempDir(), "resources.yaml")
	require.NoError(t, os.WriteFile(source, []byte("resources: []\n"), 0o644))

	var runCount atomic.Int32

	out := &syncBuffer{}
	opts := DefaultOptions()
	opts.Files = []string{source}
	opts.Debounce = 20 * time.Millisecond
	opts.Out = out

	cancel, done := startRun(t, opts, func(_ context.Context) (*Refresh, error) {
		runCount.Add(1)
		return &Refresh{Names: []string{"a"}, Total: 1}, nil
	})

	require.Eventually(t, func() bool { return runCount.Load() >= 1 }, time.Second, 10*time.Millisecond)

	cancel()
	waitDone(t, done)

	assert.Contains(t, out.String(), "(initial) → 1 of 1 resources shown, 0 alerting")
	assert.Contains(t, out.String(), "shutting down watcher")
}

func TestRun_FileChangeReportsOrderDiff(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreAnyFunction("os/signal.loop"))

	dir := t.TempDir()
	source := filepath.Join(dir, "resources.yaml")
	require.NoError(t, os.WriteFile(source, []byte("v1\n"), 0o644))

	var runCount atomic.Int32

	out := &syncBuffer{}
	opts := DefaultOptions()
	opts.Files = []string{source}
	opts.Debounce = 20 * time.Millisecond
	opts.Out = out

	cancel, done := startRun(t, opts, func(_ context.Context) (*Refresh, error) {
		if runCount.Add(1) == 1 {
			return &Refresh{Names: []string{"beep", "boop"}, Total: 2}, nil
		}

		return &Refresh{Names: []string{"boop", "beep"}, Alerts: 1, Total: 2}, nil
	})

	require.Eventually(t, func() bool { return runCount.Load() >= 1 }, time.Second, 10*time.Millisecond)

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(source, []byte("v2\n"), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "order: reordered")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	waitDone(t, done)

	assert.Contains(t, out.String(), "resources.yaml → 2 of 2 resources shown, 1 alerting")
	assert.Contains(t, out.String(), "--- previous")
}

func TestRun_RefreshErrorKeepsWatching(t *testing.T) {
	source := filepath.Join(t.TempDir(), "resources.yaml")
	require.NoError(t, os.WriteFile(source, []byte("x"), 0o644))

	var callCount atomic.Int32

	out := &syncBuffer{}
	opts := DefaultOptions()
	opts.Files = []string{source}
	opts.Debounce = 20 * time.Millisecond
	opts.Out = out

	cancel, done := startRun(t, opts, func(_ context.Context) (*Refresh, error) {
		callCount.Add(1)
		return nil, errors.New("broken source")
	})

	require.Eventually(t, func() bool { return callCount.Load() >= 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(source, []byte("y"), 0o644))
	require.Eventually(t, func() bool { return callCount.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	waitDone(t, done)

	assert.Contains(t, out.String(), "ERROR: broken source")
}

func TestRun_NoFiles(t *testing.T) {
	err := Run(context.Background(), DefaultOptions(), func(_ context.Context) (*Refresh, error) {
		return &Refresh{}, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files to watch")
}

func TestRun_MissingDirectory(t *testing.T) {
	opts := DefaultOptions()
	opts.Files = []string{"/nonexistent/reslist/dir/12345/resources.yaml"}

	err := Run(context.Background(), opts, func(_ context.Context) (*Refresh, error) {
		return &Refresh{}, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching directory")
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 300*time.Millisecond, opts.Debounce)
	assert.NotNil(t, opts.Logger)
	assert.NotNil(t, opts.Out)
}
