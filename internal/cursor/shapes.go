// Package cursor draws the pointer on top of the composited screen without
// ever touching the screen shadow, so it can always be erased by restoring
// from it.
package cursor

import (
	"fmt"

	"github.com/1broseidon/framewm/internal/platform"
)

const (
	// Transparent pixels of a cursor bitmap are not drawn.
	Transparent uint32 = 0xFFFFFFFF
	// SemiTransparent pixels darken whatever is underneath.
	SemiTransparent uint32 = 0xFFFFFFFE
)

// Mode selects how a cursor is rendered.
type Mode int

const (
	// ModeOpaque copies the bitmap in bulk, skipping Transparent runs.
	ModeOpaque Mode = iota
	// ModeTransparent tests every pixel and darkens SemiTransparent ones.
	ModeTransparent
	// ModeResize draws a rubber-band frame instead of a bitmap.
	ModeResize
)

func (m Mode) String() string {
	switch m {
	case ModeOpaque:
		return "opaque"
	case ModeTransparent:
		return "transparent"
	case ModeResize:
		return "resize"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Shape names a built-in cursor.
type Shape int

const (
	Default Shape = iota
	Wait
	Crosshair
	Resize
)

func (s Shape) String() string {
	switch s {
	case Default:
		return "default"
	case Wait:
		return "wait"
	case Crosshair:
		return "crosshair"
	case Resize:
		return "resize"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Descriptor is a cursor image and its hot spot.
type Descriptor struct {
	Width  int
	Height int
	HotX   int
	HotY   int
	Bitmap []uint32
	Mode   Mode
}

// Footprint returns the screen rectangle the cursor covers with its hot spot
// at (x, y).
func (d *Descriptor) Footprint(x, y int) platform.Rect {
	return platform.Rect{X: x - d.HotX, Y: y - d.HotY, Width: d.Width, Height: d.Height}
}

// Solid reports whether every bitmap pixel is drawn as-is, which lets an
// opaque cursor erase only the part of its old footprint the new one does
// not cover.
func (d *Descriptor) Solid() bool {
	if d.Mode != ModeOpaque {
		return false
	}
	for _, p := range d.Bitmap {
		if p == Transparent || p == SemiTransparent {
			return false
		}
	}
	return true
}

// Parse builds a bitmap from rows of characters: 'B' black, 'X' white,
// 'S' semi-transparent, anything else transparent.
func Parse(rows []string) (width, height int, bitmap []uint32) {
	height = len(rows)
	for _, r := range rows {
		width = max(width, len(r))
	}
	bitmap = make([]uint32, width*height)
	for y, r := range rows {
		for x := 0; x < width; x++ {
			p := Transparent
			if x < len(r) {
				switch r[x] {
				case 'B':
					p = 0x000000
				case 'X':
					p = 0xFFFFFF
				case 'S':
					p = SemiTransparent
				}
			}
			bitmap[y*width+x] = p
		}
	}
	return width, height, bitmap
}

func mustParse(mode Mode, hotX, hotY int, rows ...string) *Descriptor {
	w, h, bm := Parse(rows)
	return &Descriptor{Width: w, Height: h, HotX: hotX, HotY: hotY, Bitmap: bm, Mode: mode}
}

var builtin = map[Shape]*Descriptor{
	Default: mustParse(ModeTransparent, 0, 0,
		"B...........",
		"BB..........",
		"BXB.........",
		"BXXB........",
		"BXXXB.......",
		"BXXXXB......",
		"BXXXXXB.....",
		"BXXXXXXB....",
		"BXXXXXXXB...",
		"BXXXXXXXXB..",
		"BXXXXXBBBBB.",
		"BXXBXXBSSSSS",
		"BXBSBXXB....",
		"BBSSBXXBS...",
		"BSS..BXXB...",
		".S...BXXBS..",
		"......BBSS..",
		".......SS...",
	),
	Wait: mustParse(ModeTransparent, 5, 8,
		"BBBBBBBBBBB",
		"BXXXXXXXXXB",
		".BXXXXXXXB.",
		".BXBXBXBXB.",
		"..BXBXBXB..",
		"...BXBXB...",
		"....BXB....",
		".....B.....",
		"....BXB....",
		"...BXXXB...",
		"..BXXBXXB..",
		".BXXBXBXXB.",
		".BXBXBXBXB.",
		"BXBXBXBXBXB",
		"BXXXXXXXXXB",
		"BBBBBBBBBBB",
	),
	Crosshair: mustParse(ModeTransparent, 7, 7,
		".......B.......",
		".......B.......",
		".......B.......",
		".......B.......",
		".......B.......",
		"...............",
		".......X.......",
		"BBBBB.XXX.BBBBB",
		".......X.......",
		"...............",
		".......B.......",
		".......B.......",
		".......B.......",
		".......B.......",
		".......B.......",
	),
	Resize: mustParse(ModeTransparent, 7, 7,
		".......B.......",
		"......BXB......",
		".....BXXXB.....",
		".......X.......",
		".......X.......",
		"..B....X....B..",
		".BX....X....XB.",
		"BXXXXXXXXXXXXXB",
		".BX....X....XB.",
		"..B....X....B..",
		".......X.......",
		".......X.......",
		".....BXXXB.....",
		"......BXB......",
		".......B.......",
	),
}

// Builtin returns the descriptor for a built-in shape, falling back to the
// default arrow.
func Builtin(s Shape) *Descriptor {
	if d, ok := builtin[s]; ok {
		return d
	}
	return builtin[Default]
}
