package models

import "github.com/dmitrijs2005/trainspotter/internal/cache"

// Session is a login session stored in the cache. The cache key doubles as
// the session token and is derived deterministically from the username, so
// each user holds at most one active session.
type Session struct {
	Token           string `json:"-"`
	Username        string `json:"username"`
	LoginTimestamp  int64  `json:"login_timestamp"`
	ExpiryTimestamp int64  `json:"expiry_timestamp"`
}

// CacheKey implements cache.Keyer.
func (s *Session) CacheKey() string {
	return cache.UserKey(s.Username)
}

// UserList is the existence snapshot: the whole known-username list,
// replaced wholesale after every successful signup.
type UserList struct {
	Users     []string `json:"users"`
	Timestamp int64    `json:"timestamp"`
}
