package usecase

import (
	"testing"
	"time"

	authdomain "cafely-backend/internal/auth/domain"
	authdto "cafely-backend/internal/auth/dto"
	"cafely-backend/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users         map[string]*authdomain.User
	refreshTokens map[string]*authdomain.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:         make(map[string]*authdomain.User),
		refreshTokens: make(map[string]*authdomain.RefreshToken),
	}
}

func (f *fakeUserRepo) Create(user *authdomain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByUsername(username string) (*authdomain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) Update(user *authdomain.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) SetNotificationsEnabled(userID string, enabled bool) error {
	if u, ok := f.users[userID]; ok {
		u.NotificationsEnabled = enabled
	}
	return nil
}

func (f *fakeUserRepo) SearchByUsername(prefix string, limit int) ([]authdomain.User, error) {
	var out []authdomain.User
	for _, u := range f.users {
		if len(out) >= limit {
			break
		}
		if len(u.Username) >= len(prefix) && u.Username[:len(prefix)] == prefix {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SaveRefreshToken(token *authdomain.RefreshToken) error {
	f.refreshTokens[token.Token] = token
	return nil
}

func (f *fakeUserRepo) FindRefreshToken(token string) (*authdomain.RefreshToken, error) {
	return f.refreshTokens[token], nil
}

func (f *fakeUserRepo) DeleteRefreshToken(token string) error {
	delete(f.refreshTokens, token)
	return nil
}

type fakeFCMRepo struct {
	tokens map[string]map[string]string // userID -> token -> deviceInfo
}

func newFakeFCMRepo() *fakeFCMRepo {
	return &fakeFCMRepo{tokens: make(map[string]map[string]string)}
}

func (f *fakeFCMRepo) SaveToken(userID, token, deviceInfo string) error {
	// Token is globally unique; re-registering moves it
	for uid, set := range f.tokens {
		if _, ok := set[token]; ok && uid != userID {
			delete(set, token)
		}
	}
	if f.tokens[userID] == nil {
		f.tokens[userID] = make(map[string]string)
	}
	f.tokens[userID][token] = deviceInfo
	return nil
}

func (f *fakeFCMRepo) GetTokensByUserID(userID string) ([]authdomain.FCMToken, error) {
	var rows []authdomain.FCMToken
	for token := range f.tokens[userID] {
		rows = append(rows, authdomain.FCMToken{UserID: userID, Token: token})
	}
	return rows, nil
}

func (f *fakeFCMRepo) CountByUserID(userID string) (int64, error) {
	return int64(len(f.tokens[userID])), nil
}

func (f *fakeFCMRepo) DeleteToken(userID, token string) error {
	delete(f.tokens[userID], token)
	return nil
}

func (f *fakeFCMRepo) DeleteTokens(userID string, tokens []string) error {
	for _, token := range tokens {
		delete(f.tokens[userID], token)
	}
	return nil
}

func (f *fakeFCMRepo) DeleteTokensByUserID(userID string) error {
	delete(f.tokens, userID)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 7 * 24 * time.Hour,
	}
}

func newTestAuth() (AuthUsecase, *fakeUserRepo, *fakeFCMRepo) {
	userRepo := newFakeUserRepo()
	fcmRepo := newFakeFCMRepo()
	return NewAuthUsecase(userRepo, fcmRepo, testConfig()), userRepo, fcmRepo
}

func registerUser(t *testing.T, uc AuthUsecase, email, username string) *authdomain.User {
	t.Helper()
	resp, err := uc.Register(&authdto.RegisterRequest{
		Email:    email,
		Password: "password123",
		Username: username,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	return resp.User
}

func TestRegisterAndLogin(t *testing.T) {
	uc, _, _ := newTestAuth()

	user := registerUser(t, uc, "alice@example.com", "alice")
	assert.Equal(t, "email", user.Provider)
	assert.False(t, user.NotificationsEnabled, "push is opt-in, not on by signup")

	resp, err := uc.Login(&authdto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	_, err = uc.Login(&authdto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.Error(t, err)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	uc, _, _ := newTestAuth()
	registerUser(t, uc, "alice@example.com", "alice")

	_, err := uc.Register(&authdto.RegisterRequest{
		Email: "alice@example.com", Password: "password123", Username: "alice2",
	})
	assert.Error(t, err)

	_, err = uc.Register(&authdto.RegisterRequest{
		Email: "other@example.com", Password: "password123", Username: "alice",
	})
	assert.Error(t, err)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	uc, _, _ := newTestAuth()
	registerUser(t, uc, "alice@example.com", "alice")

	resp, err := uc.Login(&authdto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	user, err := uc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = uc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestRegisterFCMTokenEnablesNotifications(t *testing.T) {
	uc, userRepo, fcmRepo := newTestAuth()
	user := registerUser(t, uc, "alice@example.com", "alice")

	require.NoError(t, uc.RegisterFCMToken(user.ID, "tok-1", "pixel"))
	assert.True(t, userRepo.users[user.ID].NotificationsEnabled)

	// Re-registering the same token is a no-op on the set
	require.NoError(t, uc.RegisterFCMToken(user.ID, "tok-1", "pixel"))
	count, err := fcmRepo.CountByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, uc.RegisterFCMToken(user.ID, "tok-2", "laptop"))
	count, _ = fcmRepo.CountByUserID(user.ID)
	assert.Equal(t, int64(2), count)
}

func TestUnregisterLastFCMTokenDisablesNotifications(t *testing.T) {
	uc, userRepo, _ := newTestAuth()
	user := registerUser(t, uc, "alice@example.com", "alice")

	require.NoError(t, uc.RegisterFCMToken(user.ID, "tok-1", ""))
	require.NoError(t, uc.RegisterFCMToken(user.ID, "tok-2", ""))

	require.NoError(t, uc.UnregisterFCMToken(user.ID, "tok-1"))
	assert.True(t, userRepo.users[user.ID].NotificationsEnabled, "a device remains registered")

	require.NoError(t, uc.UnregisterFCMToken(user.ID, "tok-2"))
	assert.False(t, userRepo.users[user.ID].NotificationsEnabled, "last device gone, opt out")
}

func TestPruneLeavesOptInFlagAlone(t *testing.T) {
	uc, userRepo, fcmRepo := newTestAuth()
	user := registerUser(t, uc, "alice@example.com", "alice")

	require.NoError(t, uc.RegisterFCMToken(user.ID, "tok-1", ""))

	// The dispatcher prunes dead tokens with DeleteTokens; unlike an explicit
	// unregister this must never flip the user's preference
	require.NoError(t, fcmRepo.DeleteTokens(user.ID, []string{"tok-1"}))
	assert.True(t, userRepo.users[user.ID].NotificationsEnabled)
}

func TestRefreshTokenRotation(t *testing.T) {
	uc, _, _ := newTestAuth()
	registerUser(t, uc, "alice@example.com", "alice")

	login, err := uc.Login(&authdto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	refreshed, err := uc.RefreshToken(login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	require.NoError(t, uc.Logout(refreshed.RefreshToken))
	_, err = uc.RefreshToken(refreshed.RefreshToken)
	assert.Error(t, err, "a revoked refresh token is unusable")
}
