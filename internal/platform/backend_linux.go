//go:build linux

package platform

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/1broseidon/framewm/internal/x11"
)

// X11Device presents the composited screen in a single X11 window and feeds
// the window's pointer and keyboard events back as raw input.
type X11Device struct {
	conn   *x11.Connection
	canvas *x11.Canvas
	width  int
	height int

	mu    sync.Mutex
	dirty Rect
	sink  InputSink
}

var (
	_ Device      = (*X11Device)(nil)
	_ InputSource = (*X11Device)(nil)
	_ Runner      = (*X11Device)(nil)
)

// NewX11Device connects to display (empty for $DISPLAY) and maps a
// presentation window. A zero width or height picks three quarters of the
// monitor under the pointer.
func NewX11Device(display, title string, width, height int) (*X11Device, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, err
	}

	x, y := 0, 0
	if mon, err := conn.PointerMonitor(); err == nil {
		if width <= 0 || height <= 0 {
			width = mon.Width * 3 / 4
			height = mon.Height * 3 / 4
		}
		x = mon.X + (mon.Width-width)/2
		y = mon.Y + (mon.Height-height)/2
	}
	if width <= 0 || height <= 0 {
		conn.Close()
		return nil, fmt.Errorf("invalid screen size %dx%d", width, height)
	}

	canvas, err := conn.NewCanvas(title, max(x, 0), max(y, 0), width, height)
	if err != nil {
		conn.Close()
		return nil, err
	}

	d := &X11Device{
		conn:   conn,
		canvas: canvas,
		width:  width,
		height: height,
	}
	d.wireInput()
	return d, nil
}

func (d *X11Device) Width() int          { return d.width }
func (d *X11Device) Height() int         { return d.height }
func (d *X11Device) Pitch() int          { return d.width }
func (d *X11Device) Format() PixelFormat { return FormatXRGB8888 }

// WriteSpan stores pixels in the backing image and grows the dirty region.
func (d *X11Device) WriteSpan(x, y int, px []uint32) {
	span := Rect{X: x, Y: y, Width: len(px), Height: 1}.Intersect(Rect{Width: d.width, Height: d.height})
	if span.Empty() {
		return
	}
	d.canvas.SetSpan(x, y, px)
	d.mu.Lock()
	d.dirty = d.dirty.Union(span)
	d.mu.Unlock()
}

// Flush uploads the dirty region to the server.
func (d *X11Device) Flush() error {
	d.mu.Lock()
	dirty := d.dirty
	d.dirty = Rect{}
	d.mu.Unlock()
	if dirty.Empty() {
		return nil
	}
	d.canvas.Present(image.Rect(dirty.X, dirty.Y, dirty.Right(), dirty.Bottom()))
	return nil
}

// Attach routes window input to sink.
func (d *X11Device) Attach(sink InputSink) {
	d.mu.Lock()
	d.sink = sink
	d.mu.Unlock()
}

func (d *X11Device) currentSink() InputSink {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sink
}

func (d *X11Device) wireInput() {
	d.canvas.OnMotion(func(x, y int) {
		if sink := d.currentSink(); sink != nil {
			sink.PointerAt(x, y)
		}
	})
	d.canvas.OnButton(func(button int, down bool) {
		sink := d.currentSink()
		if sink == nil {
			return
		}
		switch button {
		case 1:
			sink.Button(ButtonLeft, down)
		case 2:
			sink.Button(ButtonMiddle, down)
		case 3:
			sink.Button(ButtonRight, down)
		}
	})
	d.canvas.OnKey(func(keycode int, down bool) {
		sink := d.currentSink()
		if sink == nil {
			return
		}
		// X keycodes are evdev codes offset by 8, which match PC set 1
		// scan codes for the base block.
		code := keycode - 8
		if code <= 0 || code >= 0x80 {
			return
		}
		if !down {
			code |= 0x80
		}
		sink.Key(byte(code))
	})
}

// Run drives the X event loop until ctx is cancelled or the window is closed.
func (d *X11Device) Run(ctx context.Context) error {
	closed := make(chan struct{})
	var once sync.Once
	d.canvas.OnClose(func() {
		once.Do(func() { close(closed) })
		d.conn.Quit()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.conn.Serve()
	}()

	select {
	case <-ctx.Done():
		// The loop only notices Quit on its next event; Close unblocks it.
		d.conn.Quit()
		return nil
	case <-closed:
		<-done
		return ErrDeviceClosed
	case <-done:
		return ErrDeviceClosed
	}
}

// SetFullscreen asks the window manager to cover the monitor with the
// presentation window. The composited screen keeps its size.
func (d *X11Device) SetFullscreen(on bool) error {
	return d.canvas.SetFullscreen(on)
}

// Activate raises and focuses the presentation window.
func (d *X11Device) Activate() error {
	return d.canvas.Activate()
}

// Close destroys the presentation window and disconnects.
func (d *X11Device) Close() {
	if d == nil || d.conn == nil {
		return
	}
	d.canvas.Destroy()
	d.conn.Close()
}
