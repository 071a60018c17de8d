package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/framewm/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandStatus   CommandType = "STATUS"
	CommandList     CommandType = "LIST"
	CommandFocus    CommandType = "FOCUS"
	CommandTile     CommandType = "TILE"
	CommandSnap     CommandType = "SNAP"
	CommandClose    CommandType = "CLOSE"
	CommandMinimize CommandType = "MINIMIZE"
	CommandMaximize CommandType = "MAXIMIZE"
	CommandRestore  CommandType = "RESTORE"
	CommandCycle    CommandType = "CYCLE"
	CommandReload   CommandType = "RELOAD"
	CommandShutdown CommandType = "SHUTDOWN"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// WindowPayload targets a window command. A zero ID means the selected
// window. Region is only read by SNAP.
type WindowPayload struct {
	ID     uint32 `json:"id,omitempty"`
	Region string `json:"region,omitempty"`
}

// StatusData represents the data returned by STATUS
type StatusData struct {
	Backend       string `json:"backend"`
	ScreenWidth   int    `json:"screen_width"`
	ScreenHeight  int    `json:"screen_height"`
	Windows       int    `json:"windows"`
	Hung          int    `json:"hung"`
	Selected      uint32 `json:"selected"`
	MemoryInUse   uint64 `json:"memory_in_use"`
	MemoryPeak    uint64 `json:"memory_peak"`
	MemoryLimit   uint64 `json:"memory_limit"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// WindowInfo is one entry of LIST.
type WindowInfo struct {
	ID        uint32 `json:"id"`
	Title     string `json:"title"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Hidden    bool   `json:"hidden,omitempty"`
	Minimized bool   `json:"minimized,omitempty"`
	Maximized bool   `json:"maximized,omitempty"`
	Selected  bool   `json:"selected,omitempty"`
	Hung      bool   `json:"hung,omitempty"`
}

// WindowsData represents the data returned by LIST
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

func windowInfo(w platform.Window) WindowInfo {
	return WindowInfo{
		ID:        uint32(w.ID),
		Title:     w.Title,
		X:         w.Bounds.X,
		Y:         w.Bounds.Y,
		Width:     w.Bounds.Width,
		Height:    w.Bounds.Height,
		Hidden:    w.Hidden,
		Minimized: w.Minimized,
		Maximized: w.Maximized,
		Selected:  w.Selected,
		Hung:      w.Hung,
	}
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
