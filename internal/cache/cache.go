// Package cache is the TTL key-value store that sits in front of the remote
// repository.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Namespace prefixes every key written by this package. Clear only removes
// keys in this namespace.
const Namespace = "cr_"

// Kind identifies the remote operation a cached value came from.
type Kind string

const (
	KindFile Kind = "file"
	KindDir  Kind = "dir"
)

// Store is a key-value cache with per-entry expiry.
// Get reports a miss both for absent and for expired entries.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// Key derives the cache key for an operation on a remote path.
func Key(kind Kind, path string) string {
	sum := sha256.Sum256([]byte(path))
	return Namespace + string(kind) + "_" + hex.EncodeToString(sum[:16])
}

// valid reports whether an entry stored at storedAt is still servable at now.
func valid(now, storedAt time.Time, ttl time.Duration) bool {
	return now.Before(storedAt.Add(ttl))
}
