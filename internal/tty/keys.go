package tty

import (
	"github.com/gdamore/tcell/v2"

	"github.com/1broseidon/framewm/internal/input"
)

var namedKeys = map[tcell.Key]byte{
	tcell.KeyEscape:     input.KeyEsc,
	tcell.KeyEnter:      input.KeyEnter,
	tcell.KeyTab:        input.KeyTab,
	tcell.KeyBackspace:  input.KeyBackspace,
	tcell.KeyBackspace2: input.KeyBackspace,
	tcell.KeyUp:         input.KeyUp,
	tcell.KeyDown:       input.KeyDown,
	tcell.KeyLeft:       input.KeyLeft,
	tcell.KeyRight:      input.KeyRight,
	tcell.KeyF4:         input.KeyF4,
}

// scanCodes turns one terminal key event into raw press and release codes.
// Terminals report no releases, so every key is released at once, wrapped
// in the presses and releases of the modifiers it carried.
func scanCodes(ev *tcell.EventKey) []byte {
	mods := ev.Modifiers()
	var code byte
	shift := mods&tcell.ModShift != 0

	k := ev.Key()
	switch {
	case k == tcell.KeyRune:
		c, s, ok := input.ScanCodeForRune(ev.Rune())
		if !ok {
			return nil
		}
		code, shift = c, shift || s
	default:
		if c, ok := namedKeys[k]; ok {
			code = c
			break
		}
		if k < tcell.KeyCtrlA || k > tcell.KeyCtrlZ {
			return nil
		}
		c, _, ok := input.ScanCodeForRune(rune('a' + int(k-tcell.KeyCtrlA)))
		if !ok {
			return nil
		}
		code = c
		mods |= tcell.ModCtrl
	}

	var held []byte
	if mods&tcell.ModCtrl != 0 {
		held = append(held, input.KeyCtrl)
	}
	if mods&tcell.ModAlt != 0 {
		held = append(held, input.KeyAlt)
	}
	if shift {
		held = append(held, input.KeyShift)
	}

	out := make([]byte, 0, 2*len(held)+2)
	out = append(out, held...)
	out = append(out, code, code|0x80)
	for i := len(held) - 1; i >= 0; i-- {
		out = append(out, held[i]|0x80)
	}
	return out
}

// isQuit matches Ctrl-Q in either of the forms terminals report it.
func isQuit(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlQ {
		return true
	}
	return ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModCtrl != 0 &&
		(ev.Rune() == 'q' || ev.Rune() == 'Q')
}
