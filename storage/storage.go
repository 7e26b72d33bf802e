// Package storage persists the coordinator's records: games, save
// states, cheats and per-game runtime configuration. Records live in a
// single BoltDB file; blobs (state snapshots, previews) live on the
// filesystem and records carry their paths.
package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")
