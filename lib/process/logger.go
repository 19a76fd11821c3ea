// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Log formats accepted by NewLogger.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger creates the process logger writing to output at level.
// FormatAuto picks text when output is a terminal and JSON when it is
// piped or redirected.
func NewLogger(output io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	options := &slog.HandlerOptions{Level: level}

	if format == FormatAuto || format == "" {
		format = FormatJSON
		if isTerminal(output) {
			format = FormatText
		}
	}

	switch format {
	case FormatText:
		return slog.New(slog.NewTextHandler(output, options)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(output, options)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
