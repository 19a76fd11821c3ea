// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package enginefs

import (
	"fmt"
	"net/url"

	"modernc.org/sqlite/vfs"
)

// Register installs fsys as an engine VFS and returns the name to pass
// as the vfs URI parameter. Call unregister once every connection using
// the VFS has been closed.
func Register(fsys *FS) (name string, unregister func() error, err error) {
	name, registered, err := vfs.New(fsys)
	if err != nil {
		return "", nil, fmt.Errorf("registering engine VFS: %w", err)
	}
	fsys.logger.Info("engine VFS registered", "vfs", name)
	return name, registered.Close, nil
}

// URI returns the read-only, immutable open URI for database through
// the VFS named vfsName. immutable=1 stops the engine probing for
// journals and taking locks.
func URI(vfsName, database string) string {
	query := url.Values{}
	query.Set("vfs", vfsName)
	query.Set("mode", "ro")
	query.Set("immutable", "1")
	return "file:" + database + "?" + query.Encode()
}
