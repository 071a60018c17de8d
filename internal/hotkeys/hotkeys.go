// Package hotkeys binds key sequences to compositor commands.
//
// Sequences use the keybind notation of xgbutil: modifiers and a key name
// joined by '-', for example "Mod1-t" or "Control-Shift-Left". Mod1 is Alt.
// Key names are X keysym names; they are matched against raw PC scan codes
// so the same table works for every backend.
package hotkeys

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/framewm/internal/input"
	"github.com/1broseidon/framewm/internal/tiling"
)

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
)

func (m Modifiers) String() string {
	var parts []string
	if m&ModControl != 0 {
		parts = append(parts, "Control")
	}
	if m&ModAlt != 0 {
		parts = append(parts, "Mod1")
	}
	if m&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	return strings.Join(parts, "-")
}

// Sequence is a modifier set plus one key.
type Sequence struct {
	Mods Modifiers
	Code byte
}

var modNames = map[string]Modifiers{
	"shift":   ModShift,
	"control": ModControl,
	"ctrl":    ModControl,
	"mod1":    ModAlt,
	"alt":     ModAlt,
}

var keyNames = map[string]byte{
	"escape":    input.KeyEsc,
	"backspace": input.KeyBackspace,
	"tab":       input.KeyTab,
	"return":    input.KeyEnter,
	"space":     input.KeySpace,
	"f4":        input.KeyF4,
	"up":        input.KeyUp,
	"left":      input.KeyLeft,
	"right":     input.KeyRight,
	"down":      input.KeyDown,
}

// ParseSequence parses a key sequence such as "Mod1-Shift-t".
func ParseSequence(s string) (Sequence, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return Sequence{}, fmt.Errorf("key sequence %q: missing key", s)
	}
	var seq Sequence
	for _, p := range parts[:len(parts)-1] {
		mod, ok := modNames[strings.ToLower(p)]
		if !ok {
			return Sequence{}, fmt.Errorf("key sequence %q: unknown modifier %q", s, p)
		}
		seq.Mods |= mod
	}

	key := parts[len(parts)-1]
	if code, ok := keyNames[strings.ToLower(key)]; ok {
		seq.Code = code
		return seq, nil
	}
	if r := []rune(key); len(r) == 1 {
		code, shift, ok := input.ScanCodeForRune(r[0])
		if ok {
			seq.Code = code
			if shift {
				seq.Mods |= ModShift
			}
			return seq, nil
		}
	}
	return Sequence{}, fmt.Errorf("key sequence %q: unknown key %q", s, key)
}

// CommandKind names what a binding does.
type CommandKind string

const (
	CommandTile     CommandKind = "tile"
	CommandSnap     CommandKind = "snap"
	CommandClose    CommandKind = "close"
	CommandMaximize CommandKind = "maximize"
	CommandMinimize CommandKind = "minimize"
	CommandRestore  CommandKind = "restore"
	CommandCycle    CommandKind = "cycle"
)

// Command is a parsed binding target. Region is set for snap.
type Command struct {
	Kind   CommandKind
	Region tiling.Region
}

func (c Command) String() string {
	if c.Kind == CommandSnap {
		return string(c.Kind) + " " + string(c.Region)
	}
	return string(c.Kind)
}

// ParseCommand parses "tile", "close", "snap left-half" and so on.
func ParseCommand(s string) (Command, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	cmd := Command{Kind: CommandKind(fields[0])}
	switch cmd.Kind {
	case CommandSnap:
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("command %q: snap takes one region", s)
		}
		region, err := tiling.ParseRegion(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("command %q: %w", s, err)
		}
		cmd.Region = region
	case CommandTile, CommandClose, CommandMaximize, CommandMinimize, CommandRestore, CommandCycle:
		if len(fields) != 1 {
			return Command{}, fmt.Errorf("command %q: %s takes no argument", s, cmd.Kind)
		}
	default:
		return Command{}, fmt.Errorf("unknown command %q", fields[0])
	}
	return cmd, nil
}

// Table maps key sequences to commands.
type Table struct {
	bindings map[Sequence]Command
}

// NewTable parses bindings (sequence -> command). Two sequences that resolve
// to the same keys are rejected.
func NewTable(bindings map[string]string) (*Table, error) {
	t := &Table{bindings: make(map[Sequence]Command, len(bindings))}
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := make(map[Sequence]string, len(bindings))
	for _, k := range keys {
		seq, err := ParseSequence(k)
		if err != nil {
			return nil, err
		}
		cmd, err := ParseCommand(bindings[k])
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", k, err)
		}
		if prev, ok := seen[seq]; ok {
			return nil, fmt.Errorf("bindings %q and %q use the same keys", prev, k)
		}
		seen[seq] = k
		t.bindings[seq] = cmd
	}
	return t, nil
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bindings)
}

// Lookup returns the command bound to a key press with mods held.
func (t *Table) Lookup(mods Modifiers, code byte) (Command, bool) {
	if t == nil {
		return Command{}, false
	}
	cmd, ok := t.bindings[Sequence{Mods: mods, Code: code}]
	return cmd, ok
}

// Track updates the held modifiers for one raw scan code.
func Track(mods Modifiers, code byte) Modifiers {
	var m Modifiers
	switch code &^ 0x80 {
	case input.KeyShift, input.KeyRightShift:
		m = ModShift
	case input.KeyCtrl:
		m = ModControl
	case input.KeyAlt:
		m = ModAlt
	default:
		return mods
	}
	if code&0x80 != 0 {
		return mods &^ m
	}
	return mods | m
}
