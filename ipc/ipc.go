package ipc

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Backend is the narrow surface the IPC endpoint needs from the running
// terminal: the current screen/history contents as text. Everything else
// (the screen model, the parser, the selection engine) stays out of this
// package's concern — the endpoint is a read-mostly collaborator of
// Terminal, not a peer of it.
type Backend interface {
	// History returns the UTF-8 text of the full ring (scrollback plus
	// visible screen), matching Screen.AsText's command-line-dedup
	// contract.
	History() string
}

// CwdProvider answers GET_CWD. Resolving the foreground child process's
// working directory is a pty/process-management concern the core
// explicitly excludes, so it is supplied by the embedder rather than
// computed here.
type CwdProvider interface {
	Cwd() (string, error)
}

// ThemeProvider applies a named theme in response to SET_THEME. Theme
// tables are explicitly out of the core's scope ("color allocation,
// theme tables"); this endpoint only dispatches the request to whatever
// collaborator owns them.
type ThemeProvider interface {
	SetTheme(name string) error
}

// SessionState mirrors the WAITING / RECEIVING / SENDING state machine.
// The endpoint only occupies RECEIVING/SENDING while a connection is being
// served; accept() does not run again until the session returns to
// WAITING, which is how "at most one concurrent client" is enforced.
type SessionState int

const (
	StateWaiting SessionState = iota
	StateReceiving
	StateSending
)

// Server is an abstract-namespace SOCK_SEQPACKET listener. It binds to
// "nst-ipc-<pid>" in the abstract namespace so no filesystem entry needs
// cleanup, accepts one client connection at a time, and rejects peers
// whose effective UID does not match the server's real UID.
type Server struct {
	name    string
	backend Backend
	cwd     CwdProvider
	theme   ThemeProvider
	logger  *log.Logger

	listener *net.UnixListener

	mu       sync.Mutex
	state    SessionState
	snapshot string

	quit chan struct{}
	wg   sync.WaitGroup
}

// Option configures a Server during construction.
type Option func(*Server)

// WithCwdProvider wires GET_CWD to cwd. Absent this option, GET_CWD
// replies with StatusError and no data.
func WithCwdProvider(cwd CwdProvider) Option {
	return func(s *Server) { s.cwd = cwd }
}

// WithThemeProvider wires SET_THEME to theme. Absent this option,
// SET_THEME replies with StatusError.
func WithThemeProvider(theme ThemeProvider) Option {
	return func(s *Server) { s.theme = theme }
}

// WithLogger directs IPC error diagnostics ("IPC error") to l instead of
// the default discard logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Address returns the abstract-namespace socket name a Server for the
// given pid binds to (without the leading '@' Go's net package uses to
// denote the abstract namespace).
func Address(pid int) string {
	return fmt.Sprintf("nst-ipc-%d", pid)
}

// NewServer creates a Server bound to Address(pid) once Start is called.
// backend must not be nil; the optional providers may be, in which case
// the corresponding opcodes fail cleanly.
func NewServer(pid int, backend Backend, opts ...Option) *Server {
	s := &Server{
		name:    Address(pid),
		backend: backend,
		logger:  log.New(io.Discard, "", 0),
		quit:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the abstract-namespace listening socket and begins accepting
// connections in the background. Calling Start twice is an error.
func (s *Server) Start() error {
	if s.listener != nil {
		return errors.New("ipc: server already started")
	}
	addr := &net.UnixAddr{Name: "@" + s.name, Net: "unixpacket"}
	l, err := net.ListenUnix("unixpacket", addr)
	if err != nil {
		return fmt.Errorf("ipc: listen %s: %w", s.name, err)
	}
	s.listener = l
	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Close stops accepting connections, closes any listener, and waits for
// the accept loop (and, transitively, any in-flight session) to return.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	close(s.quit)
	err := s.listener.Close()
	s.wg.Wait()
	return err
}

// acceptLoop serves one connection fully before accepting the next, which
// is the entire mechanism behind "additional connections wait until the
// current session ends": the kernel backlog holds them, nothing
// here does.
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.AcceptUnix()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				s.logger.Printf("ipc: accept error: %v", err)
				return
			}
		}
		s.serve(conn)
	}
}

// serve runs one client session end to end: peer check, receive, process,
// reply, close. Any error at any stage closes the session immediately
// ("IPC error: log, close the session, resume WAITING").
func (s *Server) serve(conn *net.UnixConn) {
	defer conn.Close()

	s.setState(StateReceiving)
	defer s.setState(StateWaiting)

	if !s.checkPeer(conn) {
		return
	}

	op, err := s.receiveOpcode(conn)
	if err != nil {
		s.logger.Printf("ipc: %v", err)
		return
	}

	var themeName string
	if op == OpSetTheme {
		themeName, err = s.receiveThemeName(conn)
		if err != nil {
			s.logger.Printf("ipc: %v", err)
			return
		}
	}

	status, data := s.dispatch(op, themeName)

	s.setState(StateSending)
	if err := s.reply(conn, status, data); err != nil {
		s.logger.Printf("ipc: %v", err)
	}
}

// checkPeer rejects connections whose peer effective UID differs from the
// server's real UID ("Peer check").
func (s *Server) checkPeer(conn *net.UnixConn) bool {
	raw, err := conn.SyscallConn()
	if err != nil {
		s.logger.Printf("ipc: peer check: %v", err)
		return false
	}

	var cred *unix.Ucred
	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		cred, sockErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if ctrlErr != nil || sockErr != nil {
		s.logger.Printf("ipc: peer credentials: %v", errors.Join(ctrlErr, sockErr))
		return false
	}

	if int(cred.Uid) != os.Getuid() {
		s.logger.Printf("ipc: rejecting connection from uid %d", cred.Uid)
		return false
	}
	return true
}

// receiveOpcode reads the client's initial request message. The buffer has
// one byte of room beyond opcodeSize so an over-long message reaches
// decodeOpcode as too long instead of being cut to size.
func (s *Server) receiveOpcode(conn *net.UnixConn) (Opcode, error) {
	buf := make([]byte, opcodeSize+1)
	n, err := conn.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("receive error: %w", err)
	}
	return decodeOpcode(buf[:n])
}

// receiveThemeName reads the second SEQPACKET message that follows an
// OpSetTheme opcode: a null-terminated theme name.
func (s *Server) receiveThemeName(conn *net.UnixConn) (string, error) {
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil {
		return "", fmt.Errorf("receive theme name: %w", err)
	}
	return decodeThemeName(buf[:n]), nil
}

// dispatch executes one opcode against the backend/providers and returns
// the status plus any data to send back. A malformed or unsupported
// request never corrupts endpoint state; it only yields StatusError.
func (s *Server) dispatch(op Opcode, themeName string) (Status, []byte) {
	switch op {
	case OpSnapshotHistory:
		s.mu.Lock()
		s.snapshot = s.backend.History()
		s.mu.Unlock()
		return StatusOK, nil

	case OpGetHistory:
		return StatusOK, []byte(s.backend.History())

	case OpGetSnapshot:
		s.mu.Lock()
		snap := s.snapshot
		s.mu.Unlock()
		return StatusOK, []byte(snap)

	case OpPing:
		return StatusOK, encodeOpcode(OpPing)

	case OpGetCwd:
		if s.cwd == nil {
			return StatusError, nil
		}
		cwd, err := s.cwd.Cwd()
		if err != nil {
			s.logger.Printf("ipc: get cwd: %v", err)
			return StatusError, nil
		}
		return StatusOK, []byte(cwd)

	case OpSetTheme:
		if s.theme == nil {
			return StatusError, nil
		}
		if err := s.theme.SetTheme(themeName); err != nil {
			s.logger.Printf("ipc: set theme %q: %v", themeName, err)
			return StatusError, nil
		}
		return StatusOK, nil

	default:
		s.logger.Printf("ipc: bad request received: %d", op)
		return StatusError, nil
	}
}

// reply sends the 4-byte status followed by data split into MaxChunkSize
// SEQPACKET records ("IPC wire format").
func (s *Server) reply(conn *net.UnixConn, status Status, data []byte) error {
	if _, err := conn.Write(encodeStatus(status)); err != nil {
		return fmt.Errorf("send status: %w", err)
	}
	for _, chunk := range chunks(data) {
		if _, err := conn.Write(chunk); err != nil {
			return fmt.Errorf("send data: %w", err)
		}
	}
	return nil
}

func (s *Server) setState(st SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State reports the endpoint's current session state, mainly for tests.
func (s *Server) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
