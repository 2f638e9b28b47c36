package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campaign-access-service/internal/config"
	"campaign-access-service/internal/guard"
	"campaign-access-service/internal/hashing"
	"campaign-access-service/internal/model"
	"campaign-access-service/internal/repository/scylla"
)

type fakeAccountRepo struct {
	accounts  map[string]*model.Account
	lastLogin map[string]time.Time
}

func (f *fakeAccountRepo) GetAccountByLoginID(ctx context.Context, loginID string) (*model.Account, error) {
	if acc, ok := f.accounts[loginID]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, scylla.ErrAccountNotFound
}

func (f *fakeAccountRepo) UpdateLastLogin(ctx context.Context, loginID string, at time.Time) error {
	if f.lastLogin == nil {
		f.lastLogin = make(map[string]time.Time)
	}
	f.lastLogin[loginID] = at
	return nil
}

type fakeProfileRepo struct {
	profiles map[string]model.RawProfile
	saved    map[string]model.RawProfile
}

func (f *fakeProfileRepo) GetProfileConfig(ctx context.Context, accountID string) (model.RawProfile, error) {
	if raw, ok := f.profiles[accountID]; ok {
		return raw, nil
	}
	return model.RawProfile{}, scylla.ErrProfileConfigNotFound
}

func (f *fakeProfileRepo) SaveProfileConfig(ctx context.Context, accountID string, raw model.RawProfile) error {
	if f.saved == nil {
		f.saved = make(map[string]model.RawProfile)
	}
	f.saved[accountID] = raw
	return nil
}

type fakeCampaignRepo struct {
	rows []model.Campaign
}

func (f *fakeCampaignRepo) ListCampaigns(ctx context.Context) ([]model.Campaign, error) {
	return f.rows, nil
}

func (f *fakeCampaignRepo) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	for _, row := range f.rows {
		if row.ID == id {
			copied := row
			return &copied, nil
		}
	}
	return nil, scylla.ErrCampaignNotFound
}

type capturingSink struct {
	mu     sync.Mutex
	events []model.SecurityEvent
}

func (c *capturingSink) PublishSecurityEvent(ctx context.Context, event model.SecurityEvent) error {
	c.Record(event)
	return nil
}

func (c *capturingSink) Record(event model.SecurityEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *capturingSink) typesSeen() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	types := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		types = append(types, ev.EventType)
	}
	return types
}

func testHasher() *hashing.Hasher {
	return hashing.NewHasher(&config.Config{
		Hashing: config.HashingConfig{
			Argon2MemoryCost:  8 * 1024,
			Argon2TimeCost:    1,
			Argon2Parallelism: 1,
		},
	})
}

func fullRawPermissions(allowed bool) map[string]bool {
	perms := make(map[string]bool)
	for _, key := range model.AllColumnKeys() {
		perms[string(key)] = allowed
	}
	return perms
}

type authFixture struct {
	auth     *AuthService
	accounts *fakeAccountRepo
	profiles *fakeProfileRepo
	sink     *capturingSink
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	hasher := testHasher()
	hash, err := hasher.HashPassword("correct horse")
	require.NoError(t, err)

	accounts := &fakeAccountRepo{
		accounts: map[string]*model.Account{
			"alice": {AccountID: "acct-1", LoginID: "alice", PasswordHash: hash, Role: "user"},
		},
	}
	profiles := &fakeProfileRepo{
		profiles: map[string]model.RawProfile{
			"acct-1": {
				Role:              "user",
				ColumnPermissions: fullRawPermissions(true),
				Departments:       []string{"dept-a"},
			},
		},
	}
	sink := &capturingSink{}

	access := NewAccessService(profiles, &fakeCampaignRepo{}, nil, zap.NewNop())
	loginGuard := guard.New(guard.NewMemoryStore(), guard.DefaultPolicy())
	auth := NewAuthService(accounts, access, loginGuard, hasher, sink, sink, zap.NewNop())

	return &authFixture{auth: auth, accounts: accounts, profiles: profiles, sink: sink}
}

func TestLoginSuccess(t *testing.T) {
	fx := newAuthFixture(t)

	result, err := fx.auth.Login(context.Background(), "alice", "correct horse", "10.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "acct-1", result.Account.AccountID)
	assert.Equal(t, model.RoleStandardUser, result.Profile.Role)
	assert.Contains(t, result.Profile.Scope.Departments, "dept-a")
	assert.Contains(t, fx.accounts.lastLogin, "alice")
	assert.Contains(t, fx.sink.typesSeen(), model.EventLoginSucceeded)
}

func TestLoginWrongPassword(t *testing.T) {
	fx := newAuthFixture(t)

	result, err := fx.auth.Login(context.Background(), "alice", "wrong", "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, result)
	assert.Equal(t, 4, fx.auth.RemainingAttempts("alice"))
	assert.Contains(t, fx.sink.typesSeen(), model.EventLoginFailed)
}

func TestLoginUnknownIdentityBurnsAttempts(t *testing.T) {
	fx := newAuthFixture(t)

	_, err := fx.auth.Login(context.Background(), "mallory", "anything", "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 4, fx.auth.RemainingAttempts("mallory"))
}

func TestLoginLocksAfterMaxFailures(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := fx.auth.Login(ctx, "alice", "wrong", "10.0.0.1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// The fifth failure crosses the threshold and reports the lock.
	_, err := fx.auth.Login(ctx, "alice", "wrong", "10.0.0.1")
	require.ErrorIs(t, err, ErrAccountLocked)

	retryAfter, locked := fx.auth.LockStatus("alice")
	assert.True(t, locked)
	assert.Greater(t, retryAfter, 0)
	assert.Contains(t, fx.sink.typesSeen(), model.EventLoginLocked)

	// Even the correct password is refused while locked.
	_, err = fx.auth.Login(ctx, "alice", "correct horse", "10.0.0.1")
	require.ErrorIs(t, err, ErrAccountLocked)
}

func TestLoginSuccessResetsAttempts(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = fx.auth.Login(ctx, "alice", "wrong", "10.0.0.1")
	}
	assert.Equal(t, 2, fx.auth.RemainingAttempts("alice"))

	_, err := fx.auth.Login(ctx, "alice", "correct horse", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 5, fx.auth.RemainingAttempts("alice"))
}

func TestLoginFallsBackToDefaultProfile(t *testing.T) {
	fx := newAuthFixture(t)
	delete(fx.profiles.profiles, "acct-1")

	result, err := fx.auth.Login(context.Background(), "alice", "correct horse", "10.0.0.1")
	require.NoError(t, err)

	for _, key := range model.AllColumnKeys() {
		assert.False(t, result.Profile.ColumnPermissions[key], "column %s", key)
	}
	assert.Empty(t, result.Profile.Scope.Departments)
}

func TestLoginFailsClosedOnInvalidProfile(t *testing.T) {
	fx := newAuthFixture(t)
	fx.profiles.profiles["acct-1"] = model.RawProfile{
		Role:              "user",
		ColumnPermissions: map[string]bool{"campaign": true}, // incomplete map
	}

	result, err := fx.auth.Login(context.Background(), "alice", "correct horse", "10.0.0.1")
	require.ErrorIs(t, err, model.ErrInvalidProfile)
	assert.Nil(t, result)
}
