package window

import (
	"fmt"
	"slices"
	"sync"

	"github.com/1broseidon/framewm/internal/damage"
	"github.com/1broseidon/framewm/internal/event"
	"github.com/1broseidon/framewm/internal/occlusion"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/surface"
	"github.com/1broseidon/framewm/internal/task"
)

// DefaultCapacity is the number of window slots.
const DefaultCapacity = 64

// Options size the per-window structures.
type Options struct {
	Capacity     int
	DamageCap    int
	DamageMargin int
	PrivateQueue int
	KeyRing      int
}

// Spec describes a window to allocate.
type Spec struct {
	Title   string
	Rect    platform.Rect
	Flags   Flags
	Handler Handler
	Owner   *task.Task
	Surface *surface.Surface
}

// Registry is the fixed-capacity window arena plus the draw order.
type Registry struct {
	mu    sync.RWMutex
	opts  Options
	clock task.Clock
	slots []*Window
	gens  []uint16
	order []int
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options, clock task.Clock) *Registry {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Capacity > 0xFFFF {
		opts.Capacity = 0xFFFF
	}
	return &Registry{
		opts:  opts,
		clock: clock,
		slots: make([]*Window, opts.Capacity),
		gens:  make([]uint16, opts.Capacity),
	}
}

// Capacity returns the number of slots.
func (r *Registry) Capacity() int { return len(r.slots) }

// Allocate places a new hidden window in the first free slot.
func (r *Registry) Allocate(spec Spec) (*Window, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot := slices.Index(r.slots, nil)
	if slot < 0 {
		return nil, fmt.Errorf("allocate %q: %w", spec.Title, ErrRegistryFull)
	}
	r.gens[slot]++
	if r.gens[slot] == 0 {
		r.gens[slot] = 1
	}

	now := task.Millis(r.clock)
	w := &Window{
		id:      platform.NewWindowID(slot, r.gens[slot]),
		title:   spec.Title,
		flags:   spec.Flags,
		handler: spec.Handler,
		clock:   r.clock,
		rect:    spec.Rect,
		surf:    spec.Surface,
		damage:  damage.NewTracker(r.opts.DamageCap, r.opts.DamageMargin),
		private: event.NewQueue(r.opts.PrivateQueue),
		keys:    event.NewKeyRing(r.opts.KeyRing),
		owner:   spec.Owner,
		hidden:  true,
	}
	w.lastResponded.Store(now)
	r.slots[slot] = w
	return w, nil
}

// Get resolves an identity, rejecting stale generations.
func (r *Registry) Get(id platform.WindowID) (*Window, error) {
	if !id.Valid() {
		return nil, ErrStale
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot := id.Slot()
	if slot >= len(r.slots) || r.slots[slot] == nil || r.slots[slot].id != id {
		return nil, fmt.Errorf("window %s: %w", id, ErrStale)
	}
	return r.slots[slot], nil
}

// AtSlot returns the window occupying slot, if any.
func (r *Registry) AtSlot(slot int) *Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if slot < 0 || slot >= len(r.slots) {
		return nil
	}
	return r.slots[slot]
}

// Free clears the slot of id and removes it from the draw order. The slot's
// generation is kept so the next occupant gets a new identity.
func (r *Registry) Free(id platform.WindowID) (*Window, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := id.Slot()
	if !id.Valid() || slot >= len(r.slots) || r.slots[slot] == nil || r.slots[slot].id != id {
		return nil, fmt.Errorf("free %s: %w", id, ErrStale)
	}
	w := r.slots[slot]
	r.slots[slot] = nil
	r.order = slices.DeleteFunc(r.order, func(s int) bool { return s == slot })
	w.destroyed.Store(true)
	return w, nil
}

// Windows returns the live windows in slot order.
func (r *Registry) Windows() []*Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Window, 0, len(r.slots))
	for _, w := range r.slots {
		if w != nil {
			out = append(out, w)
		}
	}
	return out
}

// Len returns the number of live windows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, w := range r.slots {
		if w != nil {
			n++
		}
	}
	return n
}

// Append puts id at the front of the draw order if it is not there yet.
func (r *Registry) Append(id platform.WindowID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.order, id.Slot()) {
		return
	}
	r.order = append(r.order, id.Slot())
}

// Remove takes id out of the draw order.
func (r *Registry) Remove(id platform.WindowID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = slices.DeleteFunc(r.order, func(s int) bool { return s == id.Slot() })
}

// BringToFront removes id from the draw order and re-appends it.
func (r *Registry) BringToFront(id platform.WindowID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = slices.DeleteFunc(r.order, func(s int) bool { return s == id.Slot() })
	r.order = append(r.order, id.Slot())
}

// DrawOrder returns the windows in draw order, back to front.
func (r *Registry) DrawOrder() []*Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Window, 0, len(r.order))
	for _, slot := range r.order {
		if w := r.slots[slot]; w != nil {
			out = append(out, w)
		}
	}
	return out
}

// Layers returns the visible windows in draw order for an occlusion rebuild.
func (r *Registry) Layers() []occlusion.Layer {
	var layers []occlusion.Layer
	for _, w := range r.DrawOrder() {
		if w.Hidden() {
			continue
		}
		layers = append(layers, occlusion.Layer{Slot: w.id.Slot(), Rect: w.Rect()})
	}
	return layers
}

// Frontmost returns the front-most visible window accepted by keep.
func (r *Registry) Frontmost(keep func(*Window) bool) *Window {
	order := r.DrawOrder()
	for i := len(order) - 1; i >= 0; i-- {
		w := order[i]
		if w.Hidden() {
			continue
		}
		if keep == nil || keep(w) {
			return w
		}
	}
	return nil
}
