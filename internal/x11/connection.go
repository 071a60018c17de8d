package x11

import (
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection is one client connection to an X server.
type Connection struct {
	XUtil   *xgbutil.XUtil
	Root    xproto.Window
	Display string

	closeOnce sync.Once
}

// NewConnection connects to display. An empty name uses $DISPLAY.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to X server %q: %w", displayName(display), err)
	}

	return &Connection{
		XUtil:   xu,
		Root:    xu.RootWin(),
		Display: displayName(display),
	}, nil
}

func displayName(display string) string {
	if display != "" {
		return display
	}
	return os.Getenv("DISPLAY")
}

// ScreenSize returns the size of the default screen in pixels.
func (c *Connection) ScreenSize() (int, int) {
	s := c.XUtil.Screen()
	return int(s.WidthInPixels), int(s.HeightInPixels)
}

// Serve dispatches X events to the registered callbacks until Quit.
func (c *Connection) Serve() {
	xevent.Main(c.XUtil)
}

// Quit makes a running Serve return after the current event.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close disconnects. It is safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.XUtil.Conn().Close()
	})
}
