package compositor

import (
	"context"
	"errors"
	"fmt"

	"github.com/1broseidon/framewm/internal/hotkeys"
	"github.com/1broseidon/framewm/internal/platform"
)

// ErrNoTarget is returned by Exec when a window command has nothing selected.
var ErrNoTarget = errors.New("no window selected")

// Exec runs a key binding or control command. Window commands act on id, or
// on the selected window when id is NoWindow.
func (c *Compositor) Exec(ctx context.Context, id platform.WindowID, cmd hotkeys.Command) error {
	switch cmd.Kind {
	case hotkeys.CommandTile:
		return c.Tile(ctx)
	case hotkeys.CommandCycle:
		w := c.cycleTarget()
		if w == nil {
			return nil
		}
		return c.Select(ctx, w.ID())
	}

	if id == platform.NoWindow {
		id = c.Selected()
	}
	if id == platform.NoWindow {
		return ErrNoTarget
	}
	switch cmd.Kind {
	case hotkeys.CommandSnap:
		return c.Snap(ctx, id, cmd.Region)
	case hotkeys.CommandClose:
		return c.Close(ctx, id)
	case hotkeys.CommandMaximize:
		return c.Maximize(ctx, id)
	case hotkeys.CommandMinimize:
		return c.Minimize(ctx, id)
	case hotkeys.CommandRestore:
		return c.Restore(ctx, id)
	}
	return fmt.Errorf("unknown command %q", cmd.Kind)
}
