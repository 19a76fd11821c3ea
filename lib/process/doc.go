// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers: the process
// logger and fatal error reporting for the window before the logger
// exists.
//
// [NewLogger] chooses slog's text handler when the output is a terminal
// and the JSON handler otherwise, unless the format is fixed by
// configuration. [Fatal] is the only place a binary writes raw text to
// stderr.
package process
