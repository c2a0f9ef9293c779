package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"onyxminer/internal/daemon"
	"onyxminer/internal/logging"
	"onyxminer/internal/miner"
)

const (
	// idleTimeout bounds how long a connection may sit between requests.
	idleTimeout = 30 * time.Second
	// writeTimeout bounds a single response write.
	writeTimeout = 10 * time.Second
	// maxRequestBytes bounds one request line.
	maxRequestBytes = 64 * 1024
)

// Server exposes daemon control over a Unix domain socket.
type Server struct {
	path     string
	daemon   *daemon.Daemon
	logger   *slog.Logger
	listener net.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer binds the control socket at the given path. Any stale socket
// file is removed first, and the fresh socket is restricted to the owner.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("restrict socket permissions: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:     path,
		daemon:   d,
		logger:   logging.NewComponentLogger(logger, "ipc"),
		listener: listener,
		ctx:      serverCtx,
		cancel:   cancel,
	}, nil
}

// Serve accepts connections until the context is canceled or Close is
// called. Each connection gets its own handler goroutine.
func (s *Server) Serve() {
	s.logger.Debug("control socket listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "control clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.handle(c)
			}(conn)
		}
	}()
}

// Close stops accepting, waits for in-flight handlers, and removes the
// socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale control socket may confuse future clients"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"))
	}
}

// handle runs one connection's request loop. The connection stays open
// across requests; a malformed request gets an error response and the
// loop keeps going.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxRequestBytes)
	encoder := json.NewEncoder(conn)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return
		}
		if !scanner.Scan() {
			// An oversized line still gets a structured rejection, but the
			// stream cannot be resynced past it, so the connection ends
			// after the response.
			if errors.Is(scanner.Err(), bufio.ErrTooLong) {
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				_ = encoder.Encode(ErrorResponse{
					Code:    CodeDecodeError,
					Message: fmt.Sprintf("request exceeds %d bytes", maxRequestBytes),
				})
			}
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp := s.dispatch(line)

		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return
		}
		if err := encoder.Encode(resp); err != nil {
			s.logger.Debug("write response failed", logging.Error(err))
			return
		}
	}
}

// dispatch decodes one request line and routes it to the daemon. It
// always produces a response value; failures become structured error
// responses rather than dropped connections.
func (s *Server) dispatch(line []byte) any {
	cmd, werr := ParseRequest(line)
	if werr != nil {
		s.logger.Debug("rejected request",
			logging.String("code", werr.Code),
			logging.String("reason", werr.Message))
		return ErrorResponse{Code: werr.Code, Message: werr.Message}
	}

	switch c := cmd.(type) {
	case PingCommand:
		return PingResponse{OK: true, Version: daemon.Version, SessionID: s.daemon.SessionID()}
	case StatusCommand:
		return s.statusResponse()
	case StartCommand:
		if err := s.daemon.StartMiner(s.ctx, c.Mode); err != nil {
			return controlError(err)
		}
		return s.statusResponse()
	case StopCommand:
		if err := s.daemon.StopMiner(s.ctx); err != nil {
			return controlError(err)
		}
		return s.statusResponse()
	case ConfigGetCommand:
		return ConfigResponse{OK: true, Config: configPayload(s.daemon.Config(), s.daemon.ConfigPath())}
	case ConfigSetCommand:
		doc, err := s.daemon.UpdateConfig(c.Patch)
		if err != nil {
			return ErrorResponse{Code: CodeInvalidConfig, Message: err.Error()}
		}
		return ConfigResponse{OK: true, Config: configPayload(doc, s.daemon.ConfigPath())}
	case SystemInfoCommand:
		return SystemInfoResponse{OK: true, System: s.daemon.SystemInfo(s.ctx)}
	default:
		return ErrorResponse{Code: CodeInternal, Message: fmt.Sprintf("unhandled command %q", cmd.commandName())}
	}
}

func (s *Server) statusResponse() StatusResponse {
	snap := s.daemon.Status()
	uptime := int64(snap.Uptime(time.Now()).Seconds())
	return StatusResponse{OK: true, Status: statusPayload(snap, uptime)}
}

// controlError maps controller failures onto wire error codes.
func controlError(err error) ErrorResponse {
	switch {
	case errors.Is(err, miner.ErrAlreadyRunning):
		return ErrorResponse{Code: CodeAlreadyRunning, Message: err.Error()}
	case errors.Is(err, miner.ErrInvalidConfig):
		return ErrorResponse{Code: CodeInvalidConfig, Message: err.Error()}
	case errors.Is(err, miner.ErrSpawn):
		return ErrorResponse{Code: CodeSpawnError, Message: err.Error()}
	case errors.Is(err, miner.ErrStopTimeout):
		return ErrorResponse{Code: CodeTimeout, Message: err.Error()}
	default:
		return ErrorResponse{Code: CodeInternal, Message: err.Error()}
	}
}
