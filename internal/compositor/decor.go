package compositor

import (
	"context"

	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/surface"
	"github.com/1broseidon/framewm/internal/window"
)

const (
	buttonSize  = window.TitleBarHeight - 4
	buttonInset = 2

	// minimizedWidth is the width of a minimized window's title strip.
	minimizedWidth = 160
)

type titleButton int

const (
	buttonNone titleButton = iota
	buttonClose
	buttonMaximize
	buttonMinimize
)

type buttonRect struct {
	kind titleButton
	rect platform.Rect
}

// titleButtons lays out the title bar buttons right to left, in window
// coordinates.
func titleButtons(flags window.Flags, width int) []buttonRect {
	bar := window.TitleBar(flags, width)
	if bar.Empty() {
		return nil
	}
	var out []buttonRect
	x := bar.Right() - buttonInset
	add := func(kind titleButton) {
		x -= buttonSize
		if x < bar.X+buttonInset {
			return
		}
		out = append(out, buttonRect{kind: kind, rect: platform.Rect{
			X: x, Y: bar.Y + buttonInset, Width: buttonSize, Height: buttonSize,
		}})
		x -= buttonInset
	}
	if !flags.Has(window.NoClose) {
		add(buttonClose)
	}
	if !flags.Has(window.NoMaximize) {
		add(buttonMaximize)
	}
	if !flags.Has(window.NoMinimize) {
		add(buttonMinimize)
	}
	return out
}

func buttonAt(flags window.Flags, width, x, y int) titleButton {
	for _, b := range titleButtons(flags, width) {
		if b.rect.Contains(x, y) {
			return b.kind
		}
	}
	return buttonNone
}

// decorationRects returns the frame strips of a width x height window.
func decorationRects(flags window.Flags, width, height int) []platform.Rect {
	top, left, right, bottom := window.Margins(flags)
	return []platform.Rect{
		{Width: width, Height: top},
		{Y: top, Width: left, Height: height - top},
		{X: width - right, Y: top, Width: right, Height: height - top},
		{Y: height - bottom, Width: width, Height: bottom},
	}
}

// drawDecorations paints border, title bar and buttons into s. The caller
// holds w's screen lock.
func drawDecorations(s *surface.Surface, w *window.Window, theme config.Theme) {
	flags := w.Flags()
	if !flags.Has(window.NoBorder) {
		s.FrameRect(s.Bounds(), window.BorderWidth, uint32(theme.Border))
	}
	bar := window.TitleBar(flags, s.Width())
	if bar.Empty() {
		return
	}
	col := theme.TitleInactive
	switch {
	case w.Hung():
		col = theme.TitleHung
	case w.Selected():
		col = theme.TitleActive
	}
	s.Fill(bar, uint32(col))
	for _, b := range titleButtons(flags, s.Width()) {
		drawButton(s, b, theme)
	}
}

func drawButton(s *surface.Surface, b buttonRect, theme config.Theme) {
	r := b.rect
	face, ink := uint32(theme.Window), uint32(theme.Border)
	s.Fill(r, face)
	s.FrameRect(r, 1, ink)
	glyph := r.Inset(3)
	switch b.kind {
	case buttonClose:
		for i := 0; i < glyph.Width && i < glyph.Height; i++ {
			s.Set(glyph.X+i, glyph.Y+i, ink)
			s.Set(glyph.Right()-1-i, glyph.Y+i, ink)
		}
	case buttonMaximize:
		s.FrameRect(glyph, 1, ink)
		s.Fill(platform.Rect{X: glyph.X, Y: glyph.Y, Width: glyph.Width, Height: 2}, ink)
	case buttonMinimize:
		s.Fill(platform.Rect{X: glyph.X, Y: glyph.Bottom() - 2, Width: glyph.Width, Height: 2}, ink)
	}
}

// decorateNow repaints w's decorations from the compositor task. A window
// whose lock stays busy is skipped; it is repainted on its next Size or
// recovery.
func (c *Compositor) decorateNow(w *window.Window) {
	if !c.lockWindow(w) {
		return
	}
	c.decorateLocked(w)
}

// decorate repaints w's decorations from any task.
func (c *Compositor) decorate(ctx context.Context, w *window.Window) {
	if c.onCompositor(ctx) {
		c.decorateNow(w)
		return
	}
	w.Lock()
	c.decorateLocked(w)
}

// decorateLocked paints and unlocks.
func (c *Compositor) decorateLocked(w *window.Window) {
	s := w.Surface()
	if s == nil {
		w.Unlock()
		return
	}
	drawDecorations(s, w, c.live().theme)
	width, height := s.Width(), s.Height()
	w.Unlock()
	for _, r := range decorationRects(w.Flags(), width, height) {
		w.Damage().Add(r)
	}
}
