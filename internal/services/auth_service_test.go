package services

import (
	"testing"
	"time"

	"github.com/amayhq/amayai/internal/config"
	"github.com/amayhq/amayai/internal/google"
	"github.com/amayhq/amayai/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newAuthFixture(t *testing.T, allowedDomain string) *AuthService {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTSessionExpiry:   time.Hour,
		AllowedEmailDomain: allowedDomain,
	}
	return NewAuthService(db, cfg, google.NewClient("id", "secret", "http://localhost/callback"))
}

func TestUpsertCreatesUserOnFirstLogin(t *testing.T) {
	svc := newAuthFixture(t, "")
	expiry := time.Now().Add(time.Hour)

	user, err := svc.upsertFromProfile(
		&google.Userinfo{ID: "g-1", Email: "amay@example.com", Name: "Amay"},
		&oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: expiry},
	)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "amay@example.com", user.Email)
	assert.Equal(t, "at", user.AccessToken)
	assert.Equal(t, "rt", user.RefreshToken)
	assert.WithinDuration(t, expiry, user.TokenExpiry, time.Second)
}

func TestUpsertRefreshesTokensOnReLogin(t *testing.T) {
	svc := newAuthFixture(t, "")

	first, err := svc.upsertFromProfile(
		&google.Userinfo{ID: "g-1", Email: "amay@example.com", Name: "Amay"},
		&oauth2.Token{AccessToken: "at-1", RefreshToken: "rt-1"},
	)
	require.NoError(t, err)

	// Google omits the refresh token on repeat consent; the stored one
	// must survive.
	second, err := svc.upsertFromProfile(
		&google.Userinfo{ID: "g-1", Email: "amay@example.com", Name: "Amay Renamed"},
		&oauth2.Token{AccessToken: "at-2"},
	)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "at-2", second.AccessToken)
	assert.Equal(t, "rt-1", second.RefreshToken)
	assert.Equal(t, "Amay Renamed", second.Name)

	var count int64
	require.NoError(t, svc.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSaveRefreshedTokenUpdatesOwner(t *testing.T) {
	svc := newAuthFixture(t, "")
	user, err := svc.upsertFromProfile(
		&google.Userinfo{ID: "g-1", Email: "amay@example.com", Name: "Amay"},
		&oauth2.Token{AccessToken: "at-stale", RefreshToken: "rt-1"},
	)
	require.NoError(t, err)

	expiry := time.Now().Add(time.Hour)
	svc.SaveRefreshedToken(
		&oauth2.Token{AccessToken: "at-stale", RefreshToken: "rt-1"},
		&oauth2.Token{AccessToken: "at-fresh", Expiry: expiry},
	)

	var stored models.User
	require.NoError(t, svc.db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, "at-fresh", stored.AccessToken)
	assert.Equal(t, "rt-1", stored.RefreshToken)
	assert.WithinDuration(t, expiry, stored.TokenExpiry, time.Second)
}

func TestSaveRefreshedTokenRotatesRefreshToken(t *testing.T) {
	svc := newAuthFixture(t, "")
	user, err := svc.upsertFromProfile(
		&google.Userinfo{ID: "g-1", Email: "amay@example.com", Name: "Amay"},
		&oauth2.Token{AccessToken: "at-stale", RefreshToken: "rt-1"},
	)
	require.NoError(t, err)

	svc.SaveRefreshedToken(
		&oauth2.Token{AccessToken: "at-stale", RefreshToken: "rt-1"},
		&oauth2.Token{AccessToken: "at-fresh", RefreshToken: "rt-2", Expiry: time.Now().Add(time.Hour)},
	)

	var stored models.User
	require.NoError(t, svc.db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, "rt-2", stored.RefreshToken)

	// A hook fired with an empty refresh token has no row to match; it
	// must not touch anything.
	svc.SaveRefreshedToken(
		&oauth2.Token{AccessToken: "at-fresh"},
		&oauth2.Token{AccessToken: "at-other", Expiry: time.Now().Add(time.Hour)},
	)
	require.NoError(t, svc.db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, "at-fresh", stored.AccessToken)
}

func TestUpsertEnforcesDomainAllowlist(t *testing.T) {
	svc := newAuthFixture(t, "example.com")

	_, err := svc.upsertFromProfile(
		&google.Userinfo{ID: "g-1", Email: "intruder@elsewhere.com", Name: "X"},
		&oauth2.Token{AccessToken: "at"},
	)
	assert.ErrorIs(t, err, ErrDomainNotAllowed)

	_, err = svc.upsertFromProfile(
		&google.Userinfo{ID: "g-2", Email: "Amay@Example.COM", Name: "Amay"},
		&oauth2.Token{AccessToken: "at"},
	)
	assert.NoError(t, err)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := newAuthFixture(t, "")
	user, err := svc.upsertFromProfile(
		&google.Userinfo{ID: "g-1", Email: "amay@example.com", Name: "Amay"},
		&oauth2.Token{AccessToken: "at"},
	)
	require.NoError(t, err)

	signed, err := svc.SessionToken(user)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(t *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, user.Email, claims["email"])
}

func TestVerifyStateRejectsTampering(t *testing.T) {
	svc := newAuthFixture(t, "")

	url, err := svc.AuthURL()
	require.NoError(t, err)
	assert.Contains(t, url, "state=")

	assert.Error(t, svc.VerifyState("not-a-jwt"))
	assert.Error(t, svc.VerifyState(""))
}

func TestVerifyStateAcceptsOwnState(t *testing.T) {
	svc := newAuthFixture(t, "")

	state := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(5 * time.Minute).Unix(),
		"jti": uuid.NewString(),
	})
	signed, err := state.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.NoError(t, svc.VerifyState(signed))
}

func TestPreferencesMergePatch(t *testing.T) {
	svc := newAuthFixture(t, "")
	user, err := svc.upsertFromProfile(
		&google.Userinfo{ID: "g-1", Email: "amay@example.com", Name: "Amay"},
		&oauth2.Token{AccessToken: "at"},
	)
	require.NoError(t, err)

	prefs, err := svc.UpdatePreferences(user.ID, map[string]any{
		"emailNotifications": true,
		"digestHour":         float64(8),
	})
	require.NoError(t, err)
	assert.Equal(t, true, prefs["emailNotifications"])

	// A later patch only touches its own keys.
	prefs, err = svc.UpdatePreferences(user.ID, map[string]any{"digestHour": float64(9)})
	require.NoError(t, err)
	assert.Equal(t, true, prefs["emailNotifications"])
	assert.Equal(t, float64(9), prefs["digestHour"])

	stored, err := svc.Preferences(user.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(9), stored["digestHour"])
}

func TestCurrentUserUnknownID(t *testing.T) {
	svc := newAuthFixture(t, "")
	_, err := svc.CurrentUser(uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
