package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const canvasEventMask = xproto.EventMaskExposure |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease |
	xproto.EventMaskStructureNotify

// Canvas is a top-level X window whose contents mirror an xgraphics image.
// Pixels are written into the image and pushed to the server on Present.
type Canvas struct {
	conn   *Connection
	win    *xwindow.Window
	img    *xgraphics.Image
	width  int
	height int
}

// NewCanvas creates and maps a width x height window at (x, y).
func (c *Connection) NewCanvas(title string, x, y, width, height int) (*Canvas, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("generate window id: %w", err)
	}
	win.Create(c.Root, x, y, width, height,
		xproto.CwBackPixel|xproto.CwEventMask,
		0, canvasEventMask)

	if err := ewmh.WmNameSet(c.XUtil, win.Id, title); err != nil {
		// Title is cosmetic; fall back to the ICCCM property.
		_ = icccm.WmNameSet(c.XUtil, win.Id, title)
	}
	if err := icccm.WmProtocolsSet(c.XUtil, win.Id, []string{"WM_DELETE_WINDOW"}); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("set WM_PROTOCOLS: %w", err)
	}

	img := xgraphics.New(c.XUtil, image.Rect(0, 0, width, height))
	if err := img.XSurfaceSet(win.Id); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("attach surface: %w", err)
	}
	img.XDraw()
	win.Map()

	return &Canvas{
		conn:   c,
		win:    win,
		img:    img,
		width:  width,
		height: height,
	}, nil
}

// Size returns the canvas dimensions.
func (cv *Canvas) Size() (int, int) {
	return cv.width, cv.height
}

// SetSpan stores a run of 0x00RRGGBB pixels starting at (x, y).
func (cv *Canvas) SetSpan(x, y int, px []uint32) {
	if y < 0 || y >= cv.height {
		return
	}
	for i, p := range px {
		cx := x + i
		if cx < 0 || cx >= cv.width {
			continue
		}
		cv.img.SetBGRA(cx, y, xgraphics.BGRA{
			B: uint8(p),
			G: uint8(p >> 8),
			R: uint8(p >> 16),
			A: 0xFF,
		})
	}
}

// Present uploads the region r of the image and repaints the window.
func (cv *Canvas) Present(r image.Rectangle) {
	r = r.Intersect(cv.img.Bounds())
	if r.Empty() {
		return
	}
	if sub, ok := cv.img.SubImage(r).(*xgraphics.Image); ok && sub != nil {
		sub.XDraw()
	} else {
		cv.img.XDraw()
	}
	cv.img.XPaint(cv.win.Id)
}

// OnMotion registers a pointer motion callback with window-relative coordinates.
func (cv *Canvas) OnMotion(fn func(x, y int)) {
	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		fn(int(ev.EventX), int(ev.EventY))
	}).Connect(cv.conn.XUtil, cv.win.Id)
}

// OnButton registers a pointer button callback. Button numbers follow X11
// (1 left, 2 middle, 3 right).
func (cv *Canvas) OnButton(fn func(button int, down bool)) {
	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		fn(int(ev.Detail), true)
	}).Connect(cv.conn.XUtil, cv.win.Id)
	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		fn(int(ev.Detail), false)
	}).Connect(cv.conn.XUtil, cv.win.Id)
}

// OnKey registers a key callback receiving raw X keycodes.
func (cv *Canvas) OnKey(fn func(keycode int, down bool)) {
	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		fn(int(ev.Detail), true)
	}).Connect(cv.conn.XUtil, cv.win.Id)
	xevent.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		fn(int(ev.Detail), false)
	}).Connect(cv.conn.XUtil, cv.win.Id)
}

// OnClose registers a callback for the window manager's delete request.
func (cv *Canvas) OnClose(fn func()) {
	cv.win.WMGracefulClose(func(w *xwindow.Window) {
		fn()
	})
}

// Destroy releases the window and its backing pixmap.
func (cv *Canvas) Destroy() {
	cv.img.Destroy()
	cv.win.Destroy()
}
