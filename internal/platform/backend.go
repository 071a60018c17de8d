package platform

import (
	"context"
	"errors"
	"fmt"
)

// ErrDeviceClosed is returned by Runner.Run when the user closed the output.
var ErrDeviceClosed = errors.New("device closed")

// WindowID identifies a compositor window. The low 16 bits hold the registry
// slot and the high 16 bits its generation, so a recycled slot never matches
// an identity handed out for a previous occupant. The zero value is NoWindow.
type WindowID uint32

// NoWindow is the "none" destination for events and lookups.
const NoWindow WindowID = 0

// NewWindowID packs a slot and generation. Generation 0 is reserved.
func NewWindowID(slot int, gen uint16) WindowID {
	return WindowID(uint32(gen)<<16 | uint32(uint16(slot)))
}

// Slot returns the registry slot index.
func (id WindowID) Slot() int { return int(uint16(id)) }

// Gen returns the generation counter of the slot at allocation time.
func (id WindowID) Gen() uint16 { return uint16(id >> 16) }

// Valid reports whether the identity could refer to a live window.
func (id WindowID) Valid() bool { return id.Gen() != 0 }

func (id WindowID) String() string {
	if !id.Valid() {
		return "none"
	}
	return fmt.Sprintf("%d.%d", id.Slot(), id.Gen())
}

// Display describes the screen and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Window contains metadata and geometry for a compositor window.
type Window struct {
	ID        WindowID
	Title     string
	Bounds    Rect
	Hidden    bool
	Minimized bool
	Maximized bool
	Selected  bool
	Hung      bool
}

// PixelFormat describes the layout of device pixels.
type PixelFormat int

const (
	// FormatXRGB8888 stores 0x00RRGGBB in a uint32; the top byte is ignored.
	FormatXRGB8888 PixelFormat = iota
)

func (f PixelFormat) String() string {
	switch f {
	case FormatXRGB8888:
		return "xrgb8888"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Device is the raw pixel surface the compositor presents to.
type Device interface {
	Width() int
	Height() int
	// Pitch is the number of pixels per device row.
	Pitch() int
	Format() PixelFormat
	// WriteSpan writes a horizontal run of pixels starting at (x, y).
	// Pixels outside the device are ignored.
	WriteSpan(x, y int, px []uint32)
	// Flush makes everything written since the last flush visible.
	Flush() error
}

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonRight
	ButtonMiddle
)

// InputSink receives raw input from a backend.
type InputSink interface {
	// PointerMoved reports a relative pointer motion.
	PointerMoved(dx, dy int)
	// PointerAt reports an absolute pointer position.
	PointerAt(x, y int)
	Button(b Button, down bool)
	// Key reports a raw scan code; the 0x80 bit marks a release.
	Key(code byte)
}

// InputSource is implemented by devices that also produce input.
type InputSource interface {
	Attach(sink InputSink)
}

// Runner is implemented by devices that own an event loop.
type Runner interface {
	Run(ctx context.Context) error
}
