package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"friendsmarket/models"
	"friendsmarket/setup"
	"friendsmarket/util"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.OpenTestDB()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func testConfig() *setup.Config {
	cfg := setup.Defaults()
	cfg.Server.JWTSecret = "test-secret"
	return cfg
}

func TestTokenRoundTrip(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	user := &models.User{Name: "alice", PasswordHash: "x", Balance: 50}
	require.NoError(t, db.Create(user).Error)

	token, err := IssueToken(user, cfg.Server.JWTSecret)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/v0/markets", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	got, httpErr := ValidateTokenAndGetUser(r, db, cfg)
	require.Nil(t, httpErr)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "alice", got.Name)

	_, err = IssueToken(user, "")
	assert.Error(t, err, "issuing without a secret must fail")
}

func TestValidateToken_RejectsBadCredentials(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	user := &models.User{Name: "alice", PasswordHash: "x", Balance: 50}
	require.NoError(t, db.Create(user).Error)

	// No header at all.
	r := httptest.NewRequest(http.MethodGet, "/v0/markets", nil)
	_, httpErr := ValidateTokenAndGetUser(r, db, cfg)
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	// Token signed with a different secret.
	token, err := IssueToken(user, "some-other-secret")
	require.NoError(t, err)
	r = httptest.NewRequest(http.MethodGet, "/v0/markets", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	_, httpErr = ValidateTokenAndGetUser(r, db, cfg)
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	// Valid token for an account that no longer exists.
	ghost := &models.User{Name: "ghost", PasswordHash: "x"}
	token, err = IssueToken(ghost, cfg.Server.JWTSecret)
	require.NoError(t, err)
	r = httptest.NewRequest(http.MethodGet, "/v0/markets", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	_, httpErr = ValidateTokenAndGetUser(r, db, cfg)
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestValidateAdmin(t *testing.T) {
	cfg := setup.Defaults()

	r := httptest.NewRequest(http.MethodPost, "/v0/users", nil)
	r.SetBasicAuth(cfg.Server.AdminUser, cfg.Server.AdminPassword)
	assert.Nil(t, ValidateAdmin(r, cfg))

	r = httptest.NewRequest(http.MethodPost, "/v0/users", nil)
	r.SetBasicAuth(cfg.Server.AdminUser, "wrong")
	httpErr := ValidateAdmin(r, cfg)
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	r = httptest.NewRequest(http.MethodPost, "/v0/users", nil)
	httpErr = ValidateAdmin(r, cfg)
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestBetRateLimiter_BurstThenThrottle(t *testing.T) {
	limiter := NewBetRateLimiter(6) // 0.1/s refill, burst of 5

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow("alice"), "bet %d inside burst", i)
	}
	assert.False(t, limiter.Allow("alice"))

	// Limits are per user.
	assert.True(t, limiter.Allow("bob"))
}
