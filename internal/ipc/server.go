package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/framewm/internal/hotkeys"
	"github.com/1broseidon/framewm/internal/platform"
)

// requestTimeout bounds how long one command may wait on the compositor.
const requestTimeout = 5 * time.Second

// Controller is what the control socket drives.
type Controller interface {
	Status() StatusData
	Windows() []platform.Window
	Focus(ctx context.Context, id platform.WindowID) error
	Exec(ctx context.Context, id platform.WindowID, cmd hotkeys.Command) error
	Reload() error
	Shutdown()
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	logger       *slog.Logger
	baseCtx      context.Context
	cancel       context.CancelFunc
	conns        sync.WaitGroup
	accepting    chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a server that will listen on socketPath.
func NewServer(socketPath string, ctrl Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		logger:     logger,
		baseCtx:    ctx,
		cancel:     cancel,
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket left by a crashed daemon.
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("control socket listening", "path", s.socketPath)

	s.accepting = make(chan struct{})
	go s.acceptLoop()

	return nil
}

// Serve starts the server and stops it when ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer close(s.accepting)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("control accept failed", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * requestTimeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("control read failed", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("control response not encoded", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Debug("control response not sent", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("control command", "command", req.Command)

	switch req.Command {
	case CommandStatus:
		return ok(s.ctrl.Status())
	case CommandList:
		return s.handleList()
	case CommandReload:
		if err := s.ctrl.Reload(); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
		}
		return ok(nil)
	case CommandShutdown:
		s.ctrl.Shutdown()
		return ok(nil)
	case CommandFocus:
		return s.handleFocus(req.Payload)
	case CommandTile, CommandSnap, CommandClose, CommandMinimize, CommandMaximize, CommandRestore, CommandCycle:
		return s.handleExec(req)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleList() *Response {
	ws := s.ctrl.Windows()
	data := WindowsData{Windows: make([]WindowInfo, 0, len(ws))}
	for _, w := range ws {
		data.Windows = append(data.Windows, windowInfo(w))
	}
	return ok(data)
}

func (s *Server) handleFocus(payload json.RawMessage) *Response {
	p, err := parseWindowPayload(payload)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	if p.ID == 0 {
		return NewErrorResponse("id is required")
	}
	ctx, cancel := context.WithTimeout(s.baseCtx, requestTimeout)
	defer cancel()
	if err := s.ctrl.Focus(ctx, platform.WindowID(p.ID)); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to focus %s: %v", platform.WindowID(p.ID), err))
	}
	return ok(nil)
}

func (s *Server) handleExec(req *Request) *Response {
	p, err := parseWindowPayload(req.Payload)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	text := strings.ToLower(string(req.Command))
	if req.Command == CommandSnap {
		text += " " + p.Region
	}
	cmd, err := hotkeys.ParseCommand(text)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	ctx, cancel := context.WithTimeout(s.baseCtx, requestTimeout)
	defer cancel()
	if err := s.ctrl.Exec(ctx, platform.WindowID(p.ID), cmd); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to %s: %v", cmd, err))
	}
	return ok(nil)
}

func parseWindowPayload(payload json.RawMessage) (WindowPayload, error) {
	var p WindowPayload
	if len(payload) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return p, fmt.Errorf("Invalid window payload: %v", err)
	}
	return p, nil
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop shuts the server down and waits for open connections to finish.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	s.cancel()
	if s.listener != nil {
		s.listener.Close()
		<-s.accepting
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
