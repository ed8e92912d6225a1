package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/trainspotter/internal/cache"
	"github.com/dmitrijs2005/trainspotter/internal/common"
	"github.com/dmitrijs2005/trainspotter/internal/logging"
	"github.com/dmitrijs2005/trainspotter/internal/models"
)

// --- fakes ---

type fakeRepo struct {
	mu       sync.Mutex
	accounts map[string]*models.Account // keyed username|index

	upsertErr  error
	getErr     error
	listErr    error
	upsertGate func() // runs before each Upsert, for interleaving tests
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{accounts: make(map[string]*models.Account)}
}

func repoKey(username, index string) string { return username + "|" + index }

func (f *fakeRepo) Upsert(ctx context.Context, account *models.Account) error {
	if f.upsertGate != nil {
		f.upsertGate()
	}
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	k := repoKey(account.Username, account.Index)
	if prev, ok := f.accounts[k]; ok {
		merged := *prev
		merged.Password = account.Password
		merged.Salt = account.Salt
		merged.CreatedTimestamp = account.CreatedTimestamp
		if account.Email != "" {
			merged.Email = account.Email
		}
		f.accounts[k] = &merged
		return nil
	}
	cp := *account
	f.accounts[k] = &cp
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, username, index string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[repoKey(username, index)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]*models.Account, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Account
	for _, a := range f.accounts {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration

	setErr error
	getErr error
	delErr error

	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) (string, error) {
	if f.setErr != nil {
		return "", f.setErr
	}
	if key == "" {
		if k, ok := value.(cache.Keyer); ok {
			key = k.CacheKey()
		} else {
			key = cache.MiscKey(time.Now())
		}
	}
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = b
	f.ttls[key] = ttl
	return key, nil
}

func (f *fakeCache) Get(ctx context.Context, key string, dest any) error {
	if f.getErr != nil {
		return f.getErr
	}
	f.mu.Lock()
	b, ok := f.entries[key]
	f.mu.Unlock()
	if !ok {
		return common.ErrorNotFound
	}
	return json.Unmarshal(b, dest)
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeCache) {
	t.Helper()
	repo := newFakeRepo()
	c := newFakeCache()
	logger := logging.NewSlogLogger(newDiscardSlog())
	return NewService(repo, c, logger), repo, c
}

// --- SignUp ---

func TestSignUp_Success(t *testing.T) {
	s, repo, c := newTestService(t)
	ctx := context.Background()

	account, err := s.SignUp(ctx, "neha", "pw123", "neha@example.com")
	require.NoError(t, err)

	assert.Equal(t, "neha", account.Username)
	assert.Equal(t, "Norman", account.Index)
	assert.Equal(t, "neha@example.com", account.Email)
	assert.NotZero(t, account.CreatedTimestamp)

	// echoed record carries no secret material
	assert.Nil(t, account.Password)
	assert.Nil(t, account.Salt)

	// stored record does
	stored, err := repo.Get(ctx, "neha", "Norman")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Password)
	assert.NotEmpty(t, stored.Salt)

	// snapshot was rebuilt
	var list models.UserList
	require.NoError(t, c.Get(ctx, cache.UserListKey, &list))
	assert.Contains(t, list.Users, "neha")
	assert.NotZero(t, list.Timestamp)
}

func TestSignUp_Validation(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "", "pw", "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.SignUp(ctx, "neha", "", "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestSignUp_InvalidFirstCharacter(t *testing.T) {
	s, _, _ := newTestService(t)

	_, err := s.SignUp(context.Background(), "1337fan", "pw", "")
	assert.ErrorIs(t, err, common.ErrorInvalidUsername)
}

func TestSignUp_Conflict_NoWrite(t *testing.T) {
	s, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "neha", "pw1", "")
	require.NoError(t, err)
	before, err := repo.Get(ctx, "neha", "Norman")
	require.NoError(t, err)

	_, err = s.SignUp(ctx, "neha", "pw2", "")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	after, err := repo.Get(ctx, "neha", "Norman")
	require.NoError(t, err)
	assert.Equal(t, before.Password, after.Password, "conflicting signup must not write")
}

func TestSignUp_StoreError_NoRebuild(t *testing.T) {
	s, repo, c := newTestService(t)
	ctx := context.Background()

	repo.upsertErr = fmt.Errorf("%w: put item: connection refused", common.ErrorStore)
	_, err := s.SignUp(ctx, "neha", "pw", "")
	assert.ErrorIs(t, err, common.ErrorStore)

	var list models.UserList
	err = c.Get(ctx, cache.UserListKey, &list)
	assert.ErrorIs(t, err, common.ErrorNotFound, "failed signup must not rebuild the snapshot")
}

func TestSignUp_RebuildFailureStillSucceeds(t *testing.T) {
	s, _, c := newTestService(t)
	c.setErr = fmt.Errorf("%w: set: broken pipe", common.ErrorCache)

	account, err := s.SignUp(context.Background(), "neha", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, "neha", account.Username)
}

// Two signups for the same username that both pass the uniqueness check
// before either writes: the check-then-act design lets both report success.
// This asserts the documented behavior, not mutual exclusion.
func TestSignUp_ConcurrentDuplicate_BothMayReportSuccess(t *testing.T) {
	s, repo, _ := newTestService(t)
	ctx := context.Background()

	var checked sync.WaitGroup
	checked.Add(2)
	repo.upsertGate = func() {
		// hold each write until both callers have passed the check
		checked.Done()
		checked.Wait()
	}

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := s.SignUp(ctx, "dup", "pw", "")
			errs <- err
		}()
	}

	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	// same compound key, so no physical duplicate exists
	accounts, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

// --- Login ---

func TestLogin_SuccessAfterSignup(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "neha", "pw123", "")
	require.NoError(t, err)

	session, err := s.Login(ctx, "neha", "pw123")
	require.NoError(t, err)

	assert.Equal(t, cache.UserKey("neha"), session.Token)
	assert.Equal(t, "neha", session.Username)
	assert.Equal(t, session.LoginTimestamp+7200, session.ExpiryTimestamp)
}

func TestLogin_WrongPassword_NoSession(t *testing.T) {
	s, _, c := newTestService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "neha", "pw123", "")
	require.NoError(t, err)

	_, err = s.Login(ctx, "neha", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	var sess models.Session
	err = c.Get(ctx, cache.UserKey("neha"), &sess)
	assert.ErrorIs(t, err, common.ErrorNotFound, "failed login must not create a session")
}

func TestLogin_UnknownUser(t *testing.T) {
	s, _, _ := newTestService(t)

	_, err := s.Login(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLogin_Validation(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Login(ctx, "", "pw")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Login(ctx, "neha", "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLogin_StoreErrorDistinctFromNotFound(t *testing.T) {
	s, repo, _ := newTestService(t)

	repo.getErr = fmt.Errorf("%w: get item: timeout", common.ErrorStore)
	_, err := s.Login(context.Background(), "neha", "pw")
	assert.ErrorIs(t, err, common.ErrorStore)
	assert.False(t, errors.Is(err, common.ErrorNotFound))
}

func TestLogin_OverwritesPriorSession(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "neha", "pw123", "")
	require.NoError(t, err)

	first, err := s.Login(ctx, "neha", "pw123")
	require.NoError(t, err)
	second, err := s.Login(ctx, "neha", "pw123")
	require.NoError(t, err)

	// deterministic key: one active session per user
	assert.Equal(t, first.Token, second.Token)

	validated, err := s.ValidateSession(ctx, second.Token, "neha")
	require.NoError(t, err)
	assert.Equal(t, second.LoginTimestamp, validated.LoginTimestamp)
}

// --- Logout ---

func TestLogout_Idempotent(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, s.Logout(ctx, "UserCache_bm9ib2R5"), "deleting an absent token is a success")
}

func TestLogout_EmptyToken(t *testing.T) {
	s, _, _ := newTestService(t)

	err := s.Logout(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLogout_RevokesSession(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "neha", "pw123", "")
	require.NoError(t, err)
	session, err := s.Login(ctx, "neha", "pw123")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, session.Token))

	_, err = s.ValidateSession(ctx, session.Token, "")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestLogout_CacheError(t *testing.T) {
	s, _, c := newTestService(t)
	c.delErr = fmt.Errorf("%w: del: broken pipe", common.ErrorCache)

	err := s.Logout(context.Background(), "UserCache_bmVoYQ==")
	assert.ErrorIs(t, err, common.ErrorCache)
}

// --- ValidateSession ---

func TestValidateSession_FreshToken(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "neha", "pw123", "")
	require.NoError(t, err)
	session, err := s.Login(ctx, "neha", "pw123")
	require.NoError(t, err)

	got, err := s.ValidateSession(ctx, session.Token, "")
	require.NoError(t, err)
	assert.Equal(t, "neha", got.Username)
	assert.Equal(t, session.Token, got.Token)
}

func TestValidateSession_UsernameMismatch(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "neha", "pw123", "")
	require.NoError(t, err)
	session, err := s.Login(ctx, "neha", "pw123")
	require.NoError(t, err)

	_, err = s.ValidateSession(ctx, session.Token, "someoneelse")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestValidateSession_ExpiredEntryDeleted(t *testing.T) {
	s, _, c := newTestService(t)
	ctx := context.Background()

	// entry the backend has not evicted yet, already past expiry
	expired := &models.Session{
		Username:        "neha",
		LoginTimestamp:  time.Now().Unix() - 8000,
		ExpiryTimestamp: time.Now().Unix() - 800,
	}
	token, err := c.Set(ctx, "", expired, 0)
	require.NoError(t, err)

	_, err = s.ValidateSession(ctx, token, "")
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	// lazy cleanup removed the entry
	var sess models.Session
	err = c.Get(ctx, token, &sess)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestValidateSession_AbsentOrEmptyToken(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.ValidateSession(ctx, "", "")
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = s.ValidateSession(ctx, "UserCache_unknown", "")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestValidateSession_CacheFailureReportsInvalid(t *testing.T) {
	s, _, c := newTestService(t)
	c.getErr = fmt.Errorf("%w: get: timeout", common.ErrorCache)

	_, err := s.ValidateSession(context.Background(), "UserCache_bmVoYQ==", "")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
