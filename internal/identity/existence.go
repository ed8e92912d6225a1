package identity

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/trainspotter/internal/cache"
	"github.com/dmitrijs2005/trainspotter/internal/common"
	"github.com/dmitrijs2005/trainspotter/internal/logging"
	"github.com/dmitrijs2005/trainspotter/internal/models"
	"github.com/dmitrijs2005/trainspotter/internal/repositories/credentials"
)

// ExistingUsers maintains the existence snapshot: one denormalized cache
// record listing every known username, so signup uniqueness checks stay
// O(1) instead of scanning the whole store.
//
// The snapshot is eventually consistent. It is rebuilt wholesale after each
// successful signup and never updated incrementally.
type ExistingUsers struct {
	repo   credentials.Repository
	cache  cache.Cache
	logger logging.Logger
}

func NewExistingUsers(repo credentials.Repository, c cache.Cache, logger logging.Logger) *ExistingUsers {
	return &ExistingUsers{repo: repo, cache: c, logger: logger}
}

// Read returns the known-username list. On a cache miss the full set is
// recomputed from the store and returned without writing the snapshot back;
// the read path is fresh-on-miss but intentionally not self-healing, so a
// missing snapshot stays missing until the next Rebuild.
func (e *ExistingUsers) Read(ctx context.Context) ([]string, error) {
	var list models.UserList
	err := e.cache.Get(ctx, cache.UserListKey, &list)
	if err == nil {
		return list.Users, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		// Degrade to a store scan rather than failing the caller.
		e.logger.Warn(ctx, "existence snapshot unavailable, falling back to scan", "op", "existing_users", "err", err)
	}

	accounts, err := e.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]string, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, a.Username)
	}
	return users, nil
}

// Rebuild recomputes the full username set and overwrites the snapshot with
// a fresh timestamp. Cost is O(total accounts); that ceiling is accepted.
func (e *ExistingUsers) Rebuild(ctx context.Context) error {
	accounts, err := e.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	users := make([]string, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, a.Username)
	}

	list := &models.UserList{Users: users, Timestamp: time.Now().Unix()}
	if _, err := e.cache.Set(ctx, cache.UserListKey, list, 0); err != nil {
		return err
	}
	return nil
}
