// Package window holds the window arena: generation-counted slots, per-window
// state and buffers, and the back-to-front draw order.
package window

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/framewm/internal/cursor"
	"github.com/1broseidon/framewm/internal/damage"
	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/surface"
	"github.com/1broseidon/framewm/internal/task"
)

var (
	// ErrRegistryFull is returned when every slot is in use.
	ErrRegistryFull = errors.New("window registry full")
	// ErrStale is returned for identities whose slot was freed or reused.
	ErrStale = errors.New("stale window id")
)

// Flags configure window behaviour at creation.
type Flags uint32

const (
	NoClose Flags = 1 << iota
	// Frozen windows take no input. Events other than their own repaint
	// and resize requests, Create, Close and Destroy are discarded and
	// count as handled.
	Frozen
	NoTitle
	NoBorder
	Resizable
	NoMinimize
	NoMaximize
	SysPopup
	NoInitialFocus
	StartMaximized
	StartMinimized
	ExactPosition
)

// Has reports whether every bit of o is set.
func (f Flags) Has(o Flags) bool { return f&o == o }

// Handler is a window's behaviour. Handle runs on the task pumping the
// window; it draws through Window.Draw and issues structural requests through
// the compositor API.
type Handler interface {
	Handle(w *Window, ev event.Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(w *Window, ev event.Event)

func (f HandlerFunc) Handle(w *Window, ev event.Event) { f(w, ev) }

// Timer fires a Timer event every Interval milliseconds.
type Timer struct {
	ID       int
	Interval int64
	Next     int64
}

// Window is one compositor window. Pixels are guarded by the screen lock
// (Lock/Unlock, Draw); the remaining state by a separate mutex. The
// rectangle is written under both, so either one is enough to read it.
type Window struct {
	id      platform.WindowID
	title   string
	flags   Flags
	handler Handler
	clock   task.Clock

	screenLock sync.Mutex
	lockedAt   atomic.Int64 // clock millis + 1 while the screen lock is held
	rect       platform.Rect
	surf       *surface.Surface

	damage  *damage.Tracker
	private *event.Queue
	keys    *event.KeyRing

	lastResponded atomic.Int64
	lastSent      atomic.Int64
	hung          atomic.Bool
	destroyed     atomic.Bool

	mu           sync.Mutex
	owner        *task.Task
	takenOver    bool
	hidden       bool
	minimized    bool
	maximized    bool
	selected     bool
	backup       platform.Rect
	cursor       cursor.Shape
	cursorBackup cursor.Shape
	timers       []Timer
	nextTimerID  int
}

func (w *Window) ID() platform.WindowID { return w.id }
func (w *Window) Title() string         { return w.title }
func (w *Window) Flags() Flags          { return w.flags }
func (w *Window) Handler() Handler      { return w.handler }

// Damage returns the window's dirty-rectangle tracker (window coordinates).
func (w *Window) Damage() *damage.Tracker { return w.damage }

// Private returns the window's private event ring.
func (w *Window) Private() *event.Queue { return w.private }

// Keys returns the window's raw keyboard ring.
func (w *Window) Keys() *event.KeyRing { return w.keys }

// Destroyed reports whether the window's slot has been freed.
func (w *Window) Destroyed() bool { return w.destroyed.Load() }

// Rect returns the window's screen rectangle.
func (w *Window) Rect() platform.Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rect
}

// Geometry returns the screen rectangle. Callers must hold the screen lock.
func (w *Window) Geometry() platform.Rect { return w.rect }

// Lock acquires the screen lock guarding geometry and pixels.
func (w *Window) Lock() {
	w.screenLock.Lock()
	w.lockedAt.Store(task.Millis(w.clock) + 1)
}

// TryLock acquires the screen lock if it is free.
func (w *Window) TryLock() bool {
	if !w.screenLock.TryLock() {
		return false
	}
	w.lockedAt.Store(task.Millis(w.clock) + 1)
	return true
}

// Unlock releases the screen lock.
func (w *Window) Unlock() {
	w.lockedAt.Store(0)
	w.screenLock.Unlock()
}

// LockHeldFor returns how long the screen lock has been held, in
// milliseconds, or 0 when it is free.
func (w *Window) LockHeldFor(now int64) int64 {
	at := w.lockedAt.Load()
	if at == 0 {
		return 0
	}
	return now - (at - 1)
}

// Surface returns the pixel buffer. Callers must hold the screen lock.
func (w *Window) Surface() *surface.Surface { return w.surf }

// SetGeometry replaces rectangle and buffer together and returns the old
// buffer. Callers must hold the screen lock.
func (w *Window) SetGeometry(r platform.Rect, s *surface.Surface) *surface.Surface {
	old := w.surf
	w.mu.Lock()
	w.rect = r
	w.mu.Unlock()
	w.surf = s
	return old
}

// Move changes the position without touching the buffer. Callers must hold
// the screen lock.
func (w *Window) Move(x, y int) {
	w.mu.Lock()
	w.rect.X, w.rect.Y = x, y
	w.mu.Unlock()
}

// Owner returns the task that created the window, or nil once it was adopted
// by the compositor.
func (w *Window) Owner() *task.Task {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.owner
}

// TakeOver detaches the window from its owner; the compositor pumps it from
// now on.
func (w *Window) TakeOver() {
	w.mu.Lock()
	w.owner = nil
	w.takenOver = true
	w.mu.Unlock()
}

// TakenOver reports whether the compositor pumps this window.
func (w *Window) TakenOver() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.takenOver
}

func (w *Window) Hidden() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hidden
}

func (w *Window) SetHidden(v bool) {
	w.mu.Lock()
	w.hidden = v
	w.mu.Unlock()
}

func (w *Window) Selected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected
}

func (w *Window) SetSelected(v bool) {
	w.mu.Lock()
	w.selected = v
	w.mu.Unlock()
}

func (w *Window) Minimized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.minimized
}

func (w *Window) Maximized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maximized
}

// SetMinimized records the minimized state and, when entering it, the
// rectangle to restore to.
func (w *Window) SetMinimized(v bool, backup platform.Rect) {
	w.mu.Lock()
	if v && !w.minimized && !w.maximized {
		w.backup = backup
	}
	w.minimized = v
	w.mu.Unlock()
}

// SetMaximized records the maximized state and, when entering it, the
// rectangle to restore to.
func (w *Window) SetMaximized(v bool, backup platform.Rect) {
	w.mu.Lock()
	if v && !w.maximized && !w.minimized {
		w.backup = backup
	}
	w.maximized = v
	w.mu.Unlock()
}

// Backup returns the rectangle saved before minimizing or maximizing.
func (w *Window) Backup() platform.Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.backup
}

// Hung reports whether the window is flagged unresponsive.
func (w *Window) Hung() bool { return w.hung.Load() }

// MarkHung flags the window, switching its cursor to busy. It returns false
// if the window was already hung.
func (w *Window) MarkHung() bool {
	if !w.hung.CompareAndSwap(false, true) {
		return false
	}
	w.mu.Lock()
	w.cursorBackup = w.cursor
	w.cursor = cursor.Wait
	w.mu.Unlock()
	return true
}

// ClearHung removes the hung flag and restores the cursor. It returns false
// if the window was not hung.
func (w *Window) ClearHung() bool {
	if !w.hung.CompareAndSwap(true, false) {
		return false
	}
	w.mu.Lock()
	w.cursor = w.cursorBackup
	w.mu.Unlock()
	return true
}

// Cursor returns the cursor shown while the pointer is over the window.
func (w *Window) Cursor() cursor.Shape {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursor
}

// SetCursor changes the window cursor; while hung the change is applied on
// recovery.
func (w *Window) SetCursor(s cursor.Shape) {
	w.mu.Lock()
	if w.hung.Load() {
		w.cursorBackup = s
	} else {
		w.cursor = s
	}
	w.mu.Unlock()
}

// Responded records that the window drained its queues at now.
func (w *Window) Responded(now int64) { w.lastResponded.Store(now) }

// LastResponded returns the last drain time in clock milliseconds.
func (w *Window) LastResponded() int64 { return w.lastResponded.Load() }

// Sent records that an event was queued for the window at now.
func (w *Window) Sent(now int64) { w.lastSent.Store(now) }

// LastSent returns when an event was last queued for the window.
func (w *Window) LastSent() int64 { return w.lastSent.Load() }

// AddTimer registers a periodic timer and returns its id.
func (w *Window) AddTimer(now, interval int64) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextTimerID++
	w.timers = append(w.timers, Timer{ID: w.nextTimerID, Interval: interval, Next: now + interval})
	return w.nextTimerID
}

// RemoveTimer cancels a timer and reports whether it existed.
func (w *Window) RemoveTimer(id int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, t := range w.timers {
		if t.ID == id {
			w.timers = append(w.timers[:i], w.timers[i+1:]...)
			return true
		}
	}
	return false
}

// DueTimers returns the ids of timers due at now and schedules their next
// firing.
func (w *Window) DueTimers(now int64) []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	var due []int
	for i := range w.timers {
		t := &w.timers[i]
		if now >= t.Next {
			due = append(due, t.ID)
			t.Next = now + t.Interval
		}
	}
	return due
}

// Info returns a metadata snapshot.
func (w *Window) Info() platform.Window {
	r := w.Rect()
	w.mu.Lock()
	defer w.mu.Unlock()
	return platform.Window{
		ID:        w.id,
		Title:     w.title,
		Bounds:    r,
		Hidden:    w.hidden,
		Minimized: w.minimized,
		Maximized: w.maximized,
		Selected:  w.selected,
		Hung:      w.hung.Load(),
	}
}
