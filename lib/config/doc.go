// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the httpvfs
// binaries.
//
// Configuration is loaded from a single file named by either the
// HTTPVFS_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search.
//
// The file may contain environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Production defaults are stricter: rows
// per query are capped and logs are JSON.
//
// ${VAR} and ${VAR:-default} patterns are expanded in the socket path
// after loading. No environment variable overrides any other value.
//
// This package depends on no other httpvfs packages.
package config
