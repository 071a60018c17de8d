// Package tty presents the composited screen in a terminal. Every cell shows
// two stacked pixels with an upper half block: the foreground colour is the
// top pixel and the background colour the bottom one.
package tty

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/1broseidon/framewm/internal/platform"
)

const halfBlock = '▀'

// Device is a platform.Device backed by a tcell screen.
type Device struct {
	screen tcell.Screen
	width  int
	height int

	mu      sync.Mutex
	pix     []uint32
	dirty   platform.Rect
	sink    platform.InputSink
	buttons tcell.ButtonMask
}

var (
	_ platform.Device      = (*Device)(nil)
	_ platform.InputSource = (*Device)(nil)
	_ platform.Runner      = (*Device)(nil)
)

// Open initialises the controlling terminal and wraps it. A zero width or
// height uses the terminal size.
func Open(width, height int) (*Device, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	return New(screen, width, height), nil
}

// New wraps an initialised screen.
func New(screen tcell.Screen, width, height int) *Device {
	cols, rows := screen.Size()
	if width <= 0 || height <= 0 {
		width, height = cols, rows*2
	}
	screen.EnableMouse()
	screen.HideCursor()
	return &Device{
		screen: screen,
		width:  width,
		height: height,
		pix:    make([]uint32, width*height),
	}
}

func (d *Device) Width() int                   { return d.width }
func (d *Device) Height() int                  { return d.height }
func (d *Device) Pitch() int                   { return d.width }
func (d *Device) Format() platform.PixelFormat { return platform.FormatXRGB8888 }

// WriteSpan stores pixels and grows the dirty region.
func (d *Device) WriteSpan(x, y int, px []uint32) {
	span := platform.Rect{X: x, Y: y, Width: len(px), Height: 1}.Intersect(d.bounds())
	if span.Empty() {
		return
	}
	d.mu.Lock()
	copy(d.pix[y*d.width+span.X:], px[span.X-x:span.X-x+span.Width])
	d.dirty = d.dirty.Union(span)
	d.mu.Unlock()
}

// Flush redraws the cells covering the dirty region.
func (d *Device) Flush() error {
	d.mu.Lock()
	dirty := d.dirty
	d.dirty = platform.Rect{}
	if !dirty.Empty() {
		d.drawLocked(dirty)
	}
	d.mu.Unlock()
	if !dirty.Empty() {
		d.screen.Show()
	}
	return nil
}

func (d *Device) drawLocked(r platform.Rect) {
	cols, rows := d.screen.Size()
	top := r.Y / 2
	bottom := min((r.Bottom()+1)/2, rows)
	right := min(r.Right(), cols)
	for row := top; row < bottom; row++ {
		for x := r.X; x < right; x++ {
			upper := d.pix[2*row*d.width+x]
			var lower uint32
			if 2*row+1 < d.height {
				lower = d.pix[(2*row+1)*d.width+x]
			}
			style := tcell.StyleDefault.Foreground(rgb(upper)).Background(rgb(lower))
			d.screen.SetContent(x, row, halfBlock, nil, style)
		}
	}
}

func rgb(p uint32) tcell.Color {
	return tcell.NewRGBColor(int32(p>>16&0xFF), int32(p>>8&0xFF), int32(p&0xFF))
}

func (d *Device) bounds() platform.Rect {
	return platform.Rect{Width: d.width, Height: d.height}
}

// Attach routes terminal input to sink.
func (d *Device) Attach(sink platform.InputSink) {
	d.mu.Lock()
	d.sink = sink
	d.mu.Unlock()
}

// Run reads terminal events until ctx ends or Ctrl-Q is pressed.
func (d *Device) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = d.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		ev := d.screen.PollEvent()
		if ev == nil {
			return platform.ErrDeviceClosed
		}
		if ctx.Err() != nil {
			return nil
		}
		if key, ok := ev.(*tcell.EventKey); ok && isQuit(key) {
			return platform.ErrDeviceClosed
		}
		d.handle(ev)
	}
}

func (d *Device) handle(ev tcell.Event) {
	d.mu.Lock()
	sink := d.sink
	d.mu.Unlock()

	switch ev := ev.(type) {
	case *tcell.EventResize:
		d.mu.Lock()
		d.dirty = d.bounds()
		d.mu.Unlock()
		d.screen.Sync()
	case *tcell.EventMouse:
		if sink != nil {
			d.mouse(sink, ev)
		}
	case *tcell.EventKey:
		if sink == nil {
			return
		}
		for _, code := range scanCodes(ev) {
			sink.Key(code)
		}
	}
}

var mouseButtons = []struct {
	mask   tcell.ButtonMask
	button platform.Button
}{
	{tcell.Button1, platform.ButtonLeft},
	{tcell.Button2, platform.ButtonRight},
	{tcell.Button3, platform.ButtonMiddle},
}

func (d *Device) mouse(sink platform.InputSink, ev *tcell.EventMouse) {
	x, y := ev.Position()
	sink.PointerAt(x, y*2)

	buttons := ev.Buttons()
	d.mu.Lock()
	prev := d.buttons
	d.buttons = buttons
	d.mu.Unlock()

	for _, b := range mouseButtons {
		now, was := buttons&b.mask != 0, prev&b.mask != 0
		if now != was {
			sink.Button(b.button, now)
		}
	}
}

// Close restores the terminal.
func (d *Device) Close() {
	d.screen.Fini()
}
