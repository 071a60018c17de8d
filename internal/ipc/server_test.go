package ipc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/framewm/internal/hotkeys"
	"github.com/1broseidon/framewm/internal/platform"
)

type fakeController struct {
	mu        sync.Mutex
	execs     []hotkeys.Command
	targets   []platform.WindowID
	focused   platform.WindowID
	reloads   int
	shutdowns int
	execErr   error
}

func (f *fakeController) Status() StatusData {
	return StatusData{Backend: "headless", ScreenWidth: 640, ScreenHeight: 480, Windows: 1}
}

func (f *fakeController) Windows() []platform.Window {
	return []platform.Window{{
		ID:       platform.NewWindowID(1, 1),
		Title:    "clock",
		Bounds:   platform.Rect{X: 10, Y: 20, Width: 200, Height: 100},
		Selected: true,
	}}
}

func (f *fakeController) Focus(_ context.Context, id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused = id
	return nil
}

func (f *fakeController) Exec(_ context.Context, id platform.WindowID, cmd hotkeys.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, cmd)
	f.targets = append(f.targets, id)
	return f.execErr
}

func (f *fakeController) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func (f *fakeController) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdowns++
}

func startServer(t *testing.T, ctrl Controller) *Client {
	t.Helper()
	// Unix socket paths are length limited; keep it short.
	dir, err := os.MkdirTemp("", "fwm")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "s.sock")

	srv := NewServer(path, ctrl, nil)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return NewClient(path)
}

func TestStatusAndList(t *testing.T) {
	c := startServer(t, &fakeController{})

	st, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, "headless", st.Backend)
	assert.Equal(t, 640, st.ScreenWidth)

	ws, err := c.List()
	require.NoError(t, err)
	require.Len(t, ws, 1)
	assert.Equal(t, WindowInfo{
		ID: uint32(platform.NewWindowID(1, 1)), Title: "clock",
		X: 10, Y: 20, Width: 200, Height: 100, Selected: true,
	}, ws[0])
}

func TestWindowCommands(t *testing.T) {
	f := &fakeController{}
	c := startServer(t, f)

	require.NoError(t, c.Window(CommandSnap, 7, "right-half"))
	require.NoError(t, c.Window(CommandTile, 0, ""))
	require.NoError(t, c.Window(CommandClose, 0, ""))

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []hotkeys.Command{
		{Kind: hotkeys.CommandSnap, Region: "right-half"},
		{Kind: hotkeys.CommandTile},
		{Kind: hotkeys.CommandClose},
	}, f.execs)
	assert.Equal(t, []platform.WindowID{7, platform.NoWindow, platform.NoWindow}, f.targets)
}

func TestBadSnapRegion(t *testing.T) {
	c := startServer(t, &fakeController{})
	err := c.Window(CommandSnap, 0, "middle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown region")
}

func TestExecErrorIsReported(t *testing.T) {
	c := startServer(t, &fakeController{execErr: errors.New("no window selected")})
	err := c.Window(CommandMaximize, 0, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no window selected")
}

func TestFocusReloadShutdown(t *testing.T) {
	f := &fakeController{}
	c := startServer(t, f)

	assert.Error(t, c.Window(CommandFocus, 0, ""), "focus needs an id")
	require.NoError(t, c.Window(CommandFocus, 9, ""))
	require.NoError(t, c.Reload())
	require.NoError(t, c.Shutdown())

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, platform.WindowID(9), f.focused)
	assert.Equal(t, 1, f.reloads)
	assert.Equal(t, 1, f.shutdowns)
}

func TestUnknownCommand(t *testing.T) {
	c := startServer(t, &fakeController{})
	_, err := c.sendRequest(&Request{Command: "DANCE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown command")
}

func TestClientWithoutDaemon(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	err := c.Ping()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is the daemon running")
}

func TestServeStopsWithContext(t *testing.T) {
	dir, err := os.MkdirTemp("", "fwm")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "s.sock")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	srv := NewServer(path, &fakeController{}, nil)
	go func() { done <- srv.Serve(ctx) }()

	require.Eventually(t, func() bool { return NewClient(path).Ping() == nil }, 3*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "socket removed on stop")
}
