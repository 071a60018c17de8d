// Package apps holds the demo applications the daemon starts. Each is a
// window.Handler driven by its own task.
package apps

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/task"
	"github.com/1broseidon/framewm/internal/window"
)

// API is the part of the compositor an application uses.
type API interface {
	CreateSurface(ctx context.Context, title string, rect platform.Rect, h window.Handler, flags window.Flags) (platform.WindowID, error)
	Pump(ctx context.Context, id platform.WindowID) bool
	AddTimer(id platform.WindowID, intervalMS int64) (int, error)
}

// App describes one demo window.
type App struct {
	Title   string
	Rect    platform.Rect
	Flags   window.Flags
	Handler window.Handler
}

// cascade asks the compositor to place the window.
func cascade(width, height int) platform.Rect {
	return platform.Rect{X: -1, Y: -1, Width: width, Height: height}
}

// New builds the demo named kind.
func New(kind string, api API) (*App, error) {
	switch kind {
	case "pattern":
		return &App{Title: "Pattern", Rect: cascade(240, 180), Flags: window.Resizable, Handler: &Pattern{}}, nil
	case "scribble":
		return &App{Title: "Scribble", Rect: cascade(260, 200), Flags: window.Resizable, Handler: NewScribble()}, nil
	case "clock":
		return &App{Title: "Clock", Rect: cascade(200, 60), Flags: window.NoMaximize, Handler: &Clock{api: api}}, nil
	case "stall":
		return &App{Title: "Stall", Rect: cascade(200, 100), Handler: NewStall(api, 8*time.Second, 6*time.Second)}, nil
	default:
		return nil, fmt.Errorf("unknown app %q", kind)
	}
}

// staller is implemented by handlers that want their task to stop pumping
// for a while.
type staller interface {
	takeStall() time.Duration
}

// Run creates the app's window and pumps it every poll until the window is
// destroyed or ctx ends.
func Run(ctx context.Context, api API, app *App, poll time.Duration) error {
	id, err := api.CreateSurface(ctx, app.Title, app.Rect, app.Handler, app.Flags)
	if err != nil {
		return fmt.Errorf("create %s: %w", app.Title, err)
	}
	st, _ := app.Handler.(staller)
	for api.Pump(ctx, id) {
		if st != nil {
			if d := st.takeStall(); d > 0 {
				if err := task.Sleep(ctx, d); err != nil {
					return err
				}
			}
		}
		if err := task.Sleep(ctx, poll); err != nil {
			return err
		}
	}
	return nil
}

// Pattern draws colour bars and redraws them on every resize.
type Pattern struct{}

var patternBars = [...]uint32{
	0xFFFFFF, 0xFFFF00, 0x00FFFF, 0x00FF00,
	0xFF00FF, 0xFF0000, 0x0000FF, 0x000000,
}

func (p *Pattern) Handle(w *window.Window, ev event.Event) {
	switch ev.Kind {
	case event.Create, event.Size:
		w.Draw(func(cv *window.Canvas) {
			width, height := cv.Width(), cv.Height()
			n := len(patternBars)
			for i, col := range patternBars {
				x0, x1 := i*width/n, (i+1)*width/n
				cv.Fill(platform.Rect{X: x0, Width: x1 - x0, Height: height}, col)
			}
		})
	}
}

// Scribble paints with the left button and clears on a right click.
type Scribble struct {
	drawing bool
	paper   uint32
	ink     uint32
}

// NewScribble returns a scribble pad with black ink on white paper.
func NewScribble() *Scribble {
	return &Scribble{paper: 0xFFFFFF, ink: 0x000000}
}

func (s *Scribble) Handle(w *window.Window, ev event.Event) {
	switch ev.Kind {
	case event.Create, event.Size:
		w.Draw(func(cv *window.Canvas) { cv.Clear(s.paper) })
	case event.Click:
		s.drawing = true
		s.dot(w, ev.P1, ev.P2)
	case event.PointerMove:
		if s.drawing {
			s.dot(w, ev.P1, ev.P2)
		}
	case event.ClickRelease, event.KillFocus:
		s.drawing = false
	case event.RightClick:
		w.Draw(func(cv *window.Canvas) { cv.Clear(s.paper) })
	}
}

func (s *Scribble) dot(w *window.Window, x, y int) {
	w.Draw(func(cv *window.Canvas) {
		cv.Fill(platform.Rect{X: x - 1, Y: y - 1, Width: 3, Height: 3}, s.ink)
	})
}

// Clock fills a bar one sixtieth further every second.
type Clock struct {
	api   API
	ticks int
}

const (
	clockBar  = 0x00007F
	clockFace = 0xC0C0C0
)

func (c *Clock) Handle(w *window.Window, ev event.Event) {
	switch ev.Kind {
	case event.Create:
		if _, err := c.api.AddTimer(w.ID(), 1000); err != nil {
			return
		}
		c.draw(w)
	case event.Size:
		c.draw(w)
	case event.Timer:
		c.ticks = (c.ticks + 1) % 60
		c.draw(w)
	}
}

func (c *Clock) draw(w *window.Window) {
	w.Draw(func(cv *window.Canvas) {
		filled := cv.Width() * c.ticks / 60
		cv.Fill(platform.Rect{Width: filled, Height: cv.Height()}, clockBar)
		cv.Fill(platform.Rect{X: filled, Width: cv.Width() - filled, Height: cv.Height()}, clockFace)
	})
}

// Stall stops pumping for stallFor every period, long enough for the
// compositor to flag the window as hung.
type Stall struct {
	api      API
	period   time.Duration
	stallFor time.Duration
	pending  atomic.Bool
}

const (
	stallIdle    = 0x007F00
	stallStalled = 0x7F0000
)

// NewStall returns a Stall app.
func NewStall(api API, period, stallFor time.Duration) *Stall {
	return &Stall{api: api, period: period, stallFor: stallFor}
}

func (s *Stall) Handle(w *window.Window, ev event.Event) {
	switch ev.Kind {
	case event.Create:
		if _, err := s.api.AddTimer(w.ID(), s.period.Milliseconds()); err != nil {
			return
		}
		s.fill(w, stallIdle)
	case event.Size:
		s.fill(w, stallIdle)
	case event.Timer:
		s.pending.Store(true)
		s.fill(w, stallStalled)
	case event.Click:
		s.fill(w, stallIdle)
	}
}

func (s *Stall) fill(w *window.Window, col uint32) {
	w.Draw(func(cv *window.Canvas) { cv.Clear(col) })
}

func (s *Stall) takeStall() time.Duration {
	if s.pending.CompareAndSwap(true, false) {
		return s.stallFor
	}
	return 0
}
