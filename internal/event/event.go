// Package event defines window events and the queues that carry them: the
// shared router ring scanned by every window with its own cursor, a small
// private ring per window and a raw keyboard ring.
package event

import (
	"fmt"

	"github.com/1broseidon/framewm/internal/platform"
)

// Kind identifies what happened.
type Kind uint16

const (
	Null Kind = iota
	Create
	Destroy
	Paint
	Size
	Move
	SetFocus
	KillFocus
	Click
	ClickRelease
	RightClick
	RightClickRelease
	PointerMove
	KeyRaw
	KeyPress
	Close
	Minimize
	Restore
	Maximize
	Timer
	Command

	// Kinds below are only ever queued on a window's private ring.
	RequestRepaint
	RepaintBorder
	RequestResize

	// User is the first kind free for application use.
	User Kind = 0x1000
)

var kindNames = map[Kind]string{
	Null:              "null",
	Create:            "create",
	Destroy:           "destroy",
	Paint:             "paint",
	Size:              "size",
	Move:              "move",
	SetFocus:          "set-focus",
	KillFocus:         "kill-focus",
	Click:             "click",
	ClickRelease:      "click-release",
	RightClick:        "right-click",
	RightClickRelease: "right-click-release",
	PointerMove:       "pointer-move",
	KeyRaw:            "key-raw",
	KeyPress:          "key-press",
	Close:             "close",
	Minimize:          "minimize",
	Restore:           "restore",
	Maximize:          "maximize",
	Timer:             "timer",
	Command:           "command",
	RequestRepaint:    "request-repaint",
	RepaintBorder:     "repaint-border",
	RequestResize:     "request-resize",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	if k >= User {
		return fmt.Sprintf("user+%d", k-User)
	}
	return fmt.Sprintf("kind(%d)", uint16(k))
}

// Private reports whether the kind belongs on a window's private ring.
func (k Kind) Private() bool {
	return k >= RequestRepaint && k <= RequestResize
}

// Event is a single queued notification for a window.
type Event struct {
	Target platform.WindowID
	Kind   Kind
	P1     int
	P2     int
}

func (e Event) String() string {
	return fmt.Sprintf("%s->%s(%d,%d)", e.Kind, e.Target, e.P1, e.P2)
}

// Pack combines two 16-bit signed values into one event parameter, the way
// positions and sizes travel in P1/P2.
func Pack(a, b int) int {
	return int(int32(uint32(uint16(int16(a)))<<16 | uint32(uint16(int16(b)))))
}

// Unpack splits a parameter built by Pack.
func Unpack(p int) (int, int) {
	v := uint32(int32(p))
	return int(int16(v >> 16)), int(int16(v))
}
