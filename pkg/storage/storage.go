// Package storage is the flat key/value document store every repository in
// the board persists through. Paths are slash separated; List returns only
// the direct children of a prefix.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned when a requested path does not exist in storage.
var ErrNotFound = errors.New("not found")

// ErrInvalidPath is returned for paths that are empty or escape the root.
var ErrInvalidPath = errors.New("invalid path")

type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// CleanPath normalizes p to a relative slash path and rejects anything that
// would leave the storage root.
func CleanPath(p string) (string, error) {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	c := strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(p)), "/")
	if c == "" {
		return "", ErrInvalidPath
	}
	return c, nil
}

// cleanPrefix is CleanPath for List, where the root itself is allowed.
func cleanPrefix(p string) (string, error) {
	if strings.Trim(p, "/ ") == "" {
		return "", nil
	}
	return CleanPath(p)
}

// isDirectChild reports whether key sits immediately below prefix.
func isDirectChild(prefix, key string) bool {
	rest := key
	if prefix != "" {
		if !strings.HasPrefix(key, prefix+"/") {
			return false
		}
		rest = key[len(prefix)+1:]
	}
	return rest != "" && !strings.Contains(rest, "/")
}
