// Package cache stores archive listings between runs.
//
// Listing a jar means reading its central directory, which dominates the
// classification time of large dependency trees. Since a released artifact
// in the local repository never changes, its listing can be kept on disk
// and reused as long as the file's size and modification time match.
//
// Two implementations are provided: [FileCache] for the CLI and
// [NullCache] when caching is disabled.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value and true on a hit. Expired and corrupt entries
	// are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data; a ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DefaultTTL bounds how long a listing is trusted without re-reading.
const DefaultTTL = 30 * 24 * time.Hour

// DefaultDir returns the per-user cache directory for depscope.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "depscope"), nil
}

// ArchiveKey identifies the listing of the archive at path. Rewriting the
// file changes the key.
func ArchiveKey(path string, info os.FileInfo) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return hashKey("archive", path, info.Size(), info.ModTime().UnixNano())
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
