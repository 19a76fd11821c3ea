// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"time"
)

// Fataler is the part of testing.TB the helpers need.
type Fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive returns the next value from ch, or fails the test if
// none arrives within timeout or ch is closed first.
//
//	err := testutil.RequireReceive(t, done, 5*time.Second, "serve did not return")
func RequireReceive[T any](t Fataler, ch <-chan T, timeout time.Duration, message ...any) T {
	t.Helper()
	timer := time.NewTimer(timeout) //nolint:realclock test hang prevention
	defer timer.Stop()
	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed before a value arrived: %s", describe(message))
		}
		return value
	case <-timer.C:
		t.Fatalf("no value after %v: %s", timeout, describe(message))
	}
	var zero T
	return zero
}

// RequireClosed waits up to timeout for a readiness channel to close.
//
//	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")
func RequireClosed(t Fataler, ch <-chan struct{}, timeout time.Duration, message ...any) {
	t.Helper()
	timer := time.NewTimer(timeout) //nolint:realclock test hang prevention
	defer timer.Stop()
	select {
	case <-ch:
	case <-timer.C:
		t.Fatalf("channel still open after %v: %s", timeout, describe(message))
	}
}

// describe renders the optional trailing message: nothing, a plain
// value, or a format string and its arguments.
func describe(message []any) string {
	switch {
	case len(message) == 0:
		return "(no message)"
	case len(message) == 1:
		return fmt.Sprint(message[0])
	}
	if format, ok := message[0].(string); ok {
		return fmt.Sprintf(format, message[1:]...)
	}
	return fmt.Sprint(message...)
}
