// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queryservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/httpvfs/lib/codec"
	"github.com/bureau-foundation/httpvfs/lib/netutil"
	"github.com/bureau-foundation/httpvfs/lib/query"
	"github.com/bureau-foundation/httpvfs/lib/remotedb"
)

// Action names.
const (
	ActionQuery  = "query"
	ActionStatus = "status"
)

// Database is what the server queries. *remotedb.DB implements it.
type Database interface {
	Query(ctx context.Context, sql string) (*query.Result, error)
	Status() remotedb.Status
}

// Request is the wire format of a request.
type Request struct {
	Action string `cbor:"action"`
	SQL    string `cbor:"sql,omitempty"`
}

// Response is the wire-format envelope of every response.
type Response struct {
	OK    bool             `cbor:"ok"`
	Error string           `cbor:"error,omitempty"`
	Data  codec.RawMessage `cbor:"data,omitempty"`
}

// actionFunc handles one decoded request.
type actionFunc func(ctx context.Context, request Request) (any, error)

// readTimeout is how long the server waits for the request after a
// client connects.
const readTimeout = 30 * time.Second

// writeTimeout bounds writing the response.
const writeTimeout = 10 * time.Second

// maxRequestSize bounds a request. SQL text is small.
const maxRequestSize = 1024 * 1024

// Server serves the query protocol on a Unix socket.
type Server struct {
	socketPath string
	database   Database
	handlers   map[string]actionFunc
	logger     *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once

	// activeConnections tracks in-flight requests so Serve can wait for
	// them on shutdown.
	activeConnections sync.WaitGroup
}

// NewServer creates a server for database that will listen on
// socketPath. If logger is nil, a no-op logger is used.
func NewServer(socketPath string, database Database, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	server := &Server{
		socketPath: socketPath,
		database:   database,
		handlers:   make(map[string]actionFunc),
		logger:     logger,
		ready:      make(chan struct{}),
	}
	server.handlers[ActionQuery] = server.handleQuery
	server.handlers[ActionStatus] = server.handleStatus
	return server
}

// Ready is closed once Serve is accepting connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Serve accepts connections until ctx is cancelled, then waits for
// in-flight requests. A stale socket file at the path is replaced; the
// socket file is removed on return.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	// Unblock Accept when the context is cancelled.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("query socket listening", "path", s.socketPath)
	s.readyOnce.Do(func() { close(s.ready) })

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))

	// CBOR is self-delimiting, so one Decode reads exactly one request.
	var raw codec.RawMessage
	if err := codec.NewDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			// Connected and sent nothing.
			return
		}
		s.writeError(conn, fmt.Sprintf("invalid request: %v", err))
		return
	}

	var request Request
	if err := codec.Unmarshal(raw, &request); err != nil {
		s.writeError(conn, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if request.Action == "" {
		s.writeError(conn, "missing required field: action")
		return
	}

	handler, exists := s.handlers[request.Action]
	if !exists {
		s.writeError(conn, fmt.Sprintf("unknown action %q", request.Action))
		return
	}

	result, err := handler(ctx, request)
	if err != nil {
		s.logger.Debug("action failed", "action", request.Action, "error", err)
		s.writeError(conn, err.Error())
		return
	}

	s.writeSuccess(conn, result)
}

func (s *Server) handleQuery(ctx context.Context, request Request) (any, error) {
	if request.SQL == "" {
		return nil, errors.New("missing required field: sql")
	}
	return s.database.Query(ctx, request.SQL)
}

func (s *Server) handleStatus(_ context.Context, _ Request) (any, error) {
	return s.database.Status(), nil
}

func (s *Server) writeError(conn net.Conn, message string) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := codec.NewEncoder(conn).Encode(Response{OK: false, Error: message})
	s.logWriteFailure(err, "error")
}

func (s *Server) writeSuccess(conn net.Conn, result any) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	response := Response{OK: true}
	if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			s.writeError(conn, fmt.Sprintf("internal: marshaling response: %v", err))
			return
		}
		response.Data = data
	}

	err := codec.NewEncoder(conn).Encode(response)
	s.logWriteFailure(err, "success")
}

// logWriteFailure logs a failed response write. A client that hung up
// early is routine and logged at debug.
func (s *Server) logWriteFailure(err error, kind string) {
	switch {
	case err == nil:
	case netutil.IsExpectedCloseError(err):
		s.logger.Debug("client went away before response", "response", kind, "error", err)
	default:
		s.logger.Warn("failed to write response", "response", kind, "error", err)
	}
}
