package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amayhq/amayai/internal/config"
	"github.com/amayhq/amayai/internal/google"
	"github.com/amayhq/amayai/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrInvalidState = errors.New("invalid oauth state")

// AuthService drives the Google OAuth flow and the session tokens minted
// from it. Sessions are stateless JWTs; the Google tokens themselves live
// on the user row.
type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	google *google.Client
}

func NewAuthService(db *gorm.DB, cfg *config.Config, g *google.Client) *AuthService {
	return &AuthService{db: db, cfg: cfg, google: g}
}

// AuthURL returns the Google consent-screen redirect with a short-lived
// signed state parameter.
func (s *AuthService) AuthURL() (string, error) {
	state := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(10 * time.Minute).Unix(),
		"jti": uuid.NewString(),
	})
	signed, err := state.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign oauth state: %w", err)
	}
	return s.google.AuthURL(signed), nil
}

// VerifyState checks the state parameter round-tripped through Google.
func (s *AuthService) VerifyState(state string) error {
	token, err := jwt.Parse(state, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidState
	}
	return nil
}

// HandleCallback exchanges the authorization code, enforces the domain
// allowlist, upserts the user by Google id and returns the user with a
// session token.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (*models.User, string, error) {
	tok, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, "", err
	}

	info, err := s.google.Userinfo(ctx, tok)
	if err != nil {
		return nil, "", err
	}

	user, err := s.upsertFromProfile(info, tok)
	if err != nil {
		return nil, "", err
	}

	session, err := s.SessionToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, session, nil
}

// upsertFromProfile enforces the domain allowlist and creates or refreshes
// the user row keyed by Google id. An empty refresh token on re-login keeps
// the stored one.
func (s *AuthService) upsertFromProfile(info *google.Userinfo, tok *oauth2.Token) (*models.User, error) {
	if s.cfg.AllowedEmailDomain != "" &&
		!strings.HasSuffix(strings.ToLower(info.Email), "@"+strings.ToLower(s.cfg.AllowedEmailDomain)) {
		slog.Warn("login rejected by domain allowlist", "email", info.Email)
		return nil, ErrDomainNotAllowed
	}

	var user models.User
	err := s.db.Where("google_id = ?", info.ID).First(&user).Error
	switch {
	case err == nil:
		user.Email = info.Email
		user.Name = info.Name
		user.AccessToken = tok.AccessToken
		user.TokenExpiry = tok.Expiry
		if tok.RefreshToken != "" {
			user.RefreshToken = tok.RefreshToken
		}
		if err := s.db.Save(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			ID:           uuid.New(),
			Email:        info.Email,
			Name:         info.Name,
			GoogleID:     info.ID,
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			TokenExpiry:  tok.Expiry,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("new user registered", "user_id", user.ID, "email", user.Email)
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

// SaveRefreshedToken persists a rotated Google access token back onto the
// user row, matched by the refresh token that produced it. Wired as the
// google client's refresh hook.
func (s *AuthService) SaveRefreshedToken(old, fresh *oauth2.Token) {
	if old.RefreshToken == "" {
		return
	}

	updates := map[string]any{
		"access_token": fresh.AccessToken,
		"token_expiry": fresh.Expiry,
	}
	if fresh.RefreshToken != "" && fresh.RefreshToken != old.RefreshToken {
		updates["refresh_token"] = fresh.RefreshToken
	}

	result := s.db.Model(&models.User{}).
		Where("refresh_token = ?", old.RefreshToken).
		Updates(updates)
	if result.Error != nil {
		slog.Error("failed to persist refreshed google token", "error", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		slog.Warn("refreshed google token matched no user")
	}
}

// SessionToken mints the HS256 session JWT consumed by the protected routes.
func (s *AuthService) SessionToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"name":  user.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTSessionExpiry).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// CurrentUser resolves the session subject to its user row.
func (s *AuthService) CurrentUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// Preferences returns the user's settings document.
func (s *AuthService) Preferences(userID uuid.UUID) (map[string]any, error) {
	user, err := s.CurrentUser(userID)
	if err != nil {
		return nil, err
	}
	return decodePreferences(user)
}

// UpdatePreferences merges the patch into the stored settings document and
// returns the merged result.
func (s *AuthService) UpdatePreferences(userID uuid.UUID, patch map[string]any) (map[string]any, error) {
	user, err := s.CurrentUser(userID)
	if err != nil {
		return nil, err
	}

	prefs, err := decodePreferences(user)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		prefs[k] = v
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.db.Model(user).Update("preferences", datatypes.JSON(raw)).Error; err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return prefs, nil
}

func decodePreferences(user *models.User) (map[string]any, error) {
	prefs := map[string]any{}
	if len(user.Preferences) > 0 {
		if err := json.Unmarshal(user.Preferences, &prefs); err != nil {
			return nil, fmt.Errorf("failed to decode preferences: %w", err)
		}
	}
	return prefs, nil
}
