// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts wall-clock reads for testability. Production code
// injects Real(); tests inject Fake() and move time explicitly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}
