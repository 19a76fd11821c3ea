// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queryservice

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/bureau-foundation/httpvfs/lib/codec"
	"github.com/bureau-foundation/httpvfs/lib/query"
	"github.com/bureau-foundation/httpvfs/lib/remotedb"
)

// dialTimeout covers only the connect phase.
const dialTimeout = 5 * time.Second

// responseReadTimeout is how long the client waits for the response
// after writing the request. A query may fetch many pages, so this is
// generous.
const responseReadTimeout = 5 * time.Minute

// maxResponseSize bounds a response. Row counts are bounded separately
// by the worker's max_rows.
const maxResponseSize = 64 * 1024 * 1024

// ServiceError is returned when the server responds with ok=false.
type ServiceError struct {
	Action  string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("query service error on %q: %s", e.Action, e.Message)
}

// Client calls a query socket. Each call opens a new connection.
type Client struct {
	socketPath string
}

// NewClient creates a client for the socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Query runs sql on the worker.
func (c *Client) Query(ctx context.Context, sql string) (*query.Result, error) {
	var result query.Result
	if err := c.call(ctx, Request{Action: ActionQuery, SQL: sql}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status returns the worker's database status.
func (c *Client) Status(ctx context.Context) (remotedb.Status, error) {
	var status remotedb.Status
	err := c.call(ctx, Request{Action: ActionStatus}, &status)
	return status, err
}

func (c *Client) call(ctx context.Context, request Request, result any) error {
	response, err := c.send(ctx, request)
	if err != nil {
		return fmt.Errorf("calling %q on %s: %w", request.Action, c.socketPath, err)
	}

	if !response.OK {
		return &ServiceError{Action: request.Action, Message: response.Error}
	}

	if result != nil && len(response.Data) > 0 {
		if err := codec.Unmarshal(response.Data, result); err != nil {
			return fmt.Errorf("decoding response data for %q: %w", request.Action, err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, request Request) (*Response, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close()

	// Abort the exchange when ctx is cancelled mid-call.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}

	// Half-close so the server's read side sees EOF.
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	conn.SetReadDeadline(time.Now().Add(responseReadTimeout))
	var response Response
	if err := codec.NewDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &response, nil
}
