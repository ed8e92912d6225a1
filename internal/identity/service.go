// Package identity implements account creation, credential verification,
// and session issuance, validation, and revocation.
package identity

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/trainspotter/internal/cache"
	"github.com/dmitrijs2005/trainspotter/internal/common"
	"github.com/dmitrijs2005/trainspotter/internal/cryptox"
	"github.com/dmitrijs2005/trainspotter/internal/logging"
	"github.com/dmitrijs2005/trainspotter/internal/models"
	"github.com/dmitrijs2005/trainspotter/internal/partition"
	"github.com/dmitrijs2005/trainspotter/internal/repositories/credentials"
)

// SessionValidity is the fixed, non-renewable session TTL.
const SessionValidity = 7200 * time.Second

// Service orchestrates signup, login, logout, and session validation over
// the credential store and the session cache. All collaborators are
// injected at construction so tests can substitute doubles.
//
// No locking or transactions are used. The signup uniqueness check and the
// subsequent write are not atomic: two concurrent signups for the same
// username can both pass the check, and the second write merges over the
// first. The compound key keeps physical duplicates out, but one of the two
// callers gets a success response for data that was then overwritten. This
// is a known limitation of the check-then-act design, not something the
// service tries to mask.
type Service struct {
	repo     credentials.Repository
	cache    cache.Cache
	existing *ExistingUsers
	logger   logging.Logger
}

func NewService(repo credentials.Repository, c cache.Cache, logger logging.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    c,
		existing: NewExistingUsers(repo, c, logger),
		logger:   logger,
	}
}

// ExistingUsers exposes the existence cache for boundary handlers that need
// the known-username list directly.
func (s *Service) ExistingUsers() *ExistingUsers {
	return s.existing
}

// SignUp registers a new account. Outcomes: the stored record (secret
// fields redacted), common.ErrorValidation, common.ErrorInvalidUsername,
// common.ErrorAlreadyExists, or a store/cache failure.
func (s *Service) SignUp(ctx context.Context, username, password, email string) (*models.Account, error) {
	if username == "" || password == "" {
		return nil, common.ErrorValidation
	}

	users, err := s.existing.Read(ctx)
	if err != nil {
		s.logger.Error(ctx, "uniqueness check failed", "op", "signup_user", "err", err)
		return nil, err
	}
	if slices.Contains(users, username) {
		return nil, fmt.Errorf("%w: username %q", common.ErrorAlreadyExists, username)
	}

	index, err := partition.Of(username)
	if err != nil {
		return nil, err
	}

	salt := cryptox.NewSalt()
	account := &models.Account{
		Username:         username,
		Index:            index,
		Password:         cryptox.HashPassword(password, salt),
		Salt:             salt,
		Email:            email,
		CreatedTimestamp: time.Now().Unix(),
	}

	if err := s.repo.Upsert(ctx, account); err != nil {
		s.logger.Error(ctx, "account write failed", "op", "signup_user", "err", err)
		return nil, err
	}

	// The account is durable at this point; a failed rebuild only delays
	// the snapshot until the next successful signup.
	if err := s.existing.Rebuild(ctx); err != nil {
		s.logger.Error(ctx, "existence snapshot rebuild failed", "op", "signup_user", "err", err)
	}

	return account.Redacted(), nil
}

// Login verifies credentials and issues a session. The session key is
// derived from the username, so a new login overwrites any prior session
// for the same user. Outcomes: the session, common.ErrorValidation,
// common.ErrorInvalidUsername, common.ErrorNotFound,
// common.ErrorUnauthorized, or a store/cache failure.
func (s *Service) Login(ctx context.Context, username, password string) (*models.Session, error) {
	if username == "" || password == "" {
		return nil, common.ErrorValidation
	}

	index, err := partition.Of(username)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.Get(ctx, username, index)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "account lookup failed", "op", "login_user", "err", err)
		return nil, err
	}

	if !cryptox.VerifyPassword(password, account.Salt, account.Password) {
		return nil, common.ErrorUnauthorized
	}

	now := time.Now().Unix()
	session := &models.Session{
		Username:        username,
		LoginTimestamp:  now,
		ExpiryTimestamp: now + int64(SessionValidity.Seconds()),
	}

	key, err := s.cache.Set(ctx, "", session, SessionValidity)
	if err != nil {
		s.logger.Error(ctx, "session write failed", "op", "login_user", "err", err)
		return nil, err
	}
	session.Token = key

	return session, nil
}

// Logout revokes the session stored under token. Revoking an absent
// session is still a success; only a backend failure is an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrorValidation
	}

	if err := s.cache.Delete(ctx, token); err != nil {
		s.logger.Error(ctx, "session delete failed", "op", "logout_user", "err", err)
		return err
	}
	return nil
}

// ValidateSession reports whether token names a live session, optionally
// checking it belongs to expectedUsername. Invalid sessions, including
// backend failures on the read path, yield common.ErrInvalidToken.
//
// Expiry is checked here as well, independent of the backend's TTL
// eviction: a borderline read may observe an entry the backend has not yet
// evicted, in which case the entry is deleted and reported invalid.
func (s *Service) ValidateSession(ctx context.Context, token, expectedUsername string) (*models.Session, error) {
	if token == "" {
		return nil, common.ErrInvalidToken
	}

	var session models.Session
	if err := s.cache.Get(ctx, token, &session); err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "session read failed", "op", "validate_cache", "err", err)
		}
		return nil, common.ErrInvalidToken
	}

	if session.ExpiryTimestamp < time.Now().Unix() {
		if err := s.cache.Delete(ctx, token); err != nil {
			s.logger.Warn(ctx, "expired session cleanup failed", "op", "validate_cache", "err", err)
		}
		return nil, common.ErrInvalidToken
	}

	if expectedUsername != "" && session.Username != expectedUsername {
		return nil, common.ErrInvalidToken
	}

	session.Token = token
	return &session, nil
}
