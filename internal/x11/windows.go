package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// _NET_WM_STATE actions.
const (
	stateRemove = 0
	stateAdd    = 1
)

// SetFullscreen asks the window manager to toggle _NET_WM_STATE_FULLSCREEN
// on the canvas window.
func (cv *Canvas) SetFullscreen(on bool) error {
	action := uint32(stateRemove)
	if on {
		action = stateAdd
	}
	state, err := cv.conn.atom("_NET_WM_STATE_FULLSCREEN")
	if err != nil {
		return err
	}
	const sourceIndication = 2 // pager/direct action
	return cv.conn.sendRootMessage(cv.win.Id, "_NET_WM_STATE",
		[]uint32{action, uint32(state), 0, sourceIndication, 0})
}

// Activate raises and focuses the canvas window using _NET_ACTIVE_WINDOW.
func (cv *Canvas) Activate() error {
	const sourceIndication = 2
	return cv.conn.sendRootMessage(cv.win.Id, "_NET_ACTIVE_WINDOW",
		[]uint32{sourceIndication, 0, 0, 0, 0})
}

func (c *Connection) atom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return reply.Atom, nil
}

// sendRootMessage sends an EWMH client message about win to the root window.
// The message is built by hand because the xgbutil ewmh request helpers
// panic on this library version.
func (c *Connection) sendRootMessage(win xproto.Window, msgType string, data []uint32) error {
	typ, err := c.atom(msgType)
	if err != nil {
		return err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
