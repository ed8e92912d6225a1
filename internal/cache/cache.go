// Package cache defines the ephemeral key-value store used for login
// sessions and the existence snapshot, plus its key-derivation scheme.
package cache

import (
	"context"
	"encoding/base64"
	"strconv"
	"time"
)

const (
	userKeyPrefix = "UserCache_"
	miscKeyPrefix = "MiscCache_"

	// UserListKey is the fixed key of the existence snapshot.
	UserListKey = "ExistingUserListCache"
)

// Cache is an ephemeral key-value store with per-key TTL. Expiry is
// delegated to the backend; no eviction loop runs in-process.
type Cache interface {
	// Set stores value under key with the given TTL (zero means no
	// expiry) and returns the key used. An empty key asks Set to derive
	// one: values implementing Keyer supply their own deterministic key,
	// anything else gets a time-based miscellaneous key.
	Set(ctx context.Context, key string, value any, ttl time.Duration) (string, error)

	// Get unmarshals the value stored at key into dest. A missing key
	// yields common.ErrorNotFound; backend failures are reported
	// separately and must not be conflated with a miss.
	Get(ctx context.Context, key string, dest any) error

	// Delete removes key. Deleting an absent key is still a success.
	Delete(ctx context.Context, key string) error
}

// Keyer lets cached values derive their own cache key.
type Keyer interface {
	CacheKey() string
}

// UserKey returns the deterministic per-user cache key. It is
// reconstructable from the username alone, which is what makes logout and
// re-login work without any token persistence.
func UserKey(username string) string {
	return userKeyPrefix + base64.URLEncoding.EncodeToString([]byte(username))
}

// MiscKey returns a time-based key for miscellaneous payloads.
func MiscKey(now time.Time) string {
	return miscKeyPrefix + strconv.FormatInt(now.Unix(), 10)
}

// deriveKey picks a key for a value stored without one.
func deriveKey(value any) string {
	if k, ok := value.(Keyer); ok {
		return k.CacheKey()
	}
	return MiscKey(time.Now())
}
