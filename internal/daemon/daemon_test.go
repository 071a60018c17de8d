package daemon

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/ipc"
	"github.com/1broseidon/framewm/internal/platform"
)

// syncBuffer is a log sink safe for concurrent writers.
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

func testLogger(buf *syncBuffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestWatchdogReportsHungWindows(t *testing.T) {
	var buf syncBuffer
	id := platform.NewWindowID(3, 1)
	windows := []platform.Window{{ID: id, Title: "stall"}}
	wd := NewWatchdog(WatchdogConfig{Logger: testLogger(&buf)}, func() []platform.Window { return windows }, nil)

	wd.CheckNow()
	assert.Empty(t, buf.String())

	windows[0].Hung = true
	wd.CheckNow()
	wd.CheckNow()
	assert.Equal(t, 1, strings.Count(buf.String(), "window not responding"), "reported once")
	assert.Contains(t, buf.String(), "window=3.1")

	windows[0].Hung = false
	wd.CheckNow()
	assert.Contains(t, buf.String(), "window responding again")

	windows[0].Hung = true
	wd.CheckNow()
	windows = nil
	wd.CheckNow()
	assert.Contains(t, buf.String(), "hung window went away")
	assert.Empty(t, wd.hung)
}

func TestWatchdogWarnsOnMemory(t *testing.T) {
	var buf syncBuffer
	used := uint64(0)
	wd := NewWatchdog(WatchdogConfig{MemoryLimit: 1 << 20, Logger: testLogger(&buf)},
		func() []platform.Window { return nil },
		func() uint64 { return used })

	used = 900 << 10
	wd.CheckNow()
	assert.NotContains(t, buf.String(), "nearly exhausted")

	used = 950 << 10
	wd.CheckNow()
	wd.CheckNow()
	assert.Equal(t, 1, strings.Count(buf.String(), "pixel memory nearly exhausted"))
	assert.Contains(t, buf.String(), "limit=\"1.0 MiB\"")

	used = 0
	wd.CheckNow()
	assert.Contains(t, buf.String(), "back to normal")
}

func TestWatchdogSurvivesPanics(t *testing.T) {
	var buf syncBuffer
	wd := NewWatchdog(WatchdogConfig{Logger: testLogger(&buf)}, func() []platform.Window { panic("boom") }, nil)
	assert.NotPanics(t, wd.CheckNow)
	assert.Contains(t, buf.String(), "watchdog panic recovered")
}

func socketPath(t *testing.T) string {
	t.Helper()
	// Unix socket paths are short; t.TempDir can exceed the limit.
	dir, err := os.MkdirTemp("", "fwm")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "d.sock")
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.TickMS = 2
	cfg.Demo.Windows = []string{"pattern", "clock"}
	return cfg
}

func TestRunServesControlSocketUntilShutdown(t *testing.T) {
	var buf syncBuffer
	sock := socketPath(t)
	cfg := testConfig()
	dev := platform.NewMemoryDevice(cfg.Screen.Width, cfg.Screen.Height)

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), Options{
			Config: cfg,
			Device: dev,
			Logger: testLogger(&buf),
			Socket: sock,
		})
	}()

	client := ipc.NewClient(sock)
	require.Eventually(t, func() bool {
		st, err := client.Status()
		return err == nil && st.Windows == 2
	}, 5*time.Second, 10*time.Millisecond)

	st, err := client.Status()
	require.NoError(t, err)
	assert.Equal(t, "headless", st.Backend)
	assert.Equal(t, 640, st.ScreenWidth)
	assert.Equal(t, 480, st.ScreenHeight)
	assert.NotZero(t, st.MemoryInUse)
	assert.Equal(t, uint64(64<<20), st.MemoryLimit)

	list, err := client.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.ElementsMatch(t, []string{"Pattern", "Clock"}, []string{list[0].Title, list[1].Title})

	require.NoError(t, client.Window(ipc.CommandTile, 0, ""))
	assert.ErrorContains(t, client.Reload(), "without a config file")

	require.NoError(t, client.Shutdown())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after SHUTDOWN")
	}
	assert.Greater(t, dev.Flushes(), 0)
	assert.NoFileExists(t, sock)
	assert.Contains(t, buf.String(), "daemon stopped")
}

func TestRunReloadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_ms: 2\ndemo:\n  windows: []\n"), 0o644))
	res, err := config.LoadFromPath(path)
	require.NoError(t, err)

	var buf syncBuffer
	sock := socketPath(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			Config:     res.Config,
			ConfigPath: path,
			Device:     platform.NewMemoryDevice(320, 200),
			Logger:     testLogger(&buf),
			Socket:     sock,
		})
	}()

	client := ipc.NewClient(sock)
	require.Eventually(t, func() bool { return client.Ping() == nil }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("tick_ms: 4\ndemo:\n  windows: []\n"), 0o644))
	require.NoError(t, client.Reload())
	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "tick=4ms")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// closingDevice reports the output closed as soon as it runs.
type closingDevice struct {
	*platform.MemoryDevice
}

func (closingDevice) Run(ctx context.Context) error {
	return platform.ErrDeviceClosed
}

func TestRunStopsWhenDeviceCloses(t *testing.T) {
	cfg := testConfig()
	dev := closingDevice{platform.NewMemoryDevice(cfg.Screen.Width, cfg.Screen.Height)}

	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), Options{Config: cfg, Device: dev}) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after the device closed")
	}
}
