// Package auth runs the Spotify authorization code flow and issues the JWT
// session tokens the API checks on every request.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sgoulden/vibecheck/internal/cache"
	"github.com/sgoulden/vibecheck/internal/config"
	"github.com/sgoulden/vibecheck/internal/spotify"
	"github.com/sgoulden/vibecheck/internal/store"
	"github.com/sgoulden/vibecheck/pkg/models"
)

var (
	ErrInvalidState   = errors.New("unknown or already used oauth state")
	ErrInvalidSession = errors.New("invalid session token")
)

// Login states live briefly; the user is mid-redirect to Spotify.
const stateTTL = 10 * time.Minute

// Service handles login, the OAuth callback, and session verification.
type Service struct {
	store   store.Store
	cache   cache.Cache
	spotify spotify.Client
	cfg     config.AuthConfig
	logger  *slog.Logger
}

func NewService(s store.Store, c cache.Cache, sp spotify.Client, cfg config.AuthConfig, logger *slog.Logger) *Service {
	return &Service{store: s, cache: c, spotify: sp, cfg: cfg, logger: logger}
}

// LoginURL creates a single-use state nonce and returns the Spotify
// authorization URL carrying it.
func (s *Service) LoginURL(ctx context.Context) (string, error) {
	state, err := randomState()
	if err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	if err := s.cache.SetOAuthState(ctx, state, stateTTL); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return s.spotify.AuthURL(state), nil
}

// HandleCallback completes the OAuth flow: consumes the state, exchanges the
// code, upserts the user with fresh tokens, and mints a session JWT.
func (s *Service) HandleCallback(ctx context.Context, code, state string) (string, *models.User, error) {
	ok, err := s.cache.TakeOAuthState(ctx, state)
	if err != nil {
		return "", nil, fmt.Errorf("take oauth state: %w", err)
	}
	if !ok {
		return "", nil, ErrInvalidState
	}

	tokens, err := s.spotify.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("exchange code: %w", err)
	}

	profile, err := s.spotify.GetCurrentUser(ctx, tokens.AccessToken)
	if err != nil {
		return "", nil, fmt.Errorf("fetch profile: %w", err)
	}

	user, err := s.upsertUser(ctx, profile, tokens)
	if err != nil {
		return "", nil, err
	}

	session, err := s.mintSession(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("mint session: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "spotify_id", user.SpotifyID)
	return session, user, nil
}

func (s *Service) upsertUser(ctx context.Context, profile *spotify.UserProfile, tokens *spotify.TokenInfo) (*models.User, error) {
	expiresAt := time.Now().UTC().Add(time.Duration(tokens.ExpiresIn) * time.Second)

	existing, err := s.store.GetUserBySpotifyID(ctx, profile.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if existing != nil {
		existing.Email = profile.Email
		existing.DisplayName = optional(profile.DisplayName)
		existing.Country = optional(profile.Country)
		existing.ImageURL = profileImage(profile)
		existing.AccessToken = &tokens.AccessToken
		existing.RefreshToken = &tokens.RefreshToken
		existing.TokenExpiresAt = &expiresAt
		if err := s.store.UpdateUser(ctx, existing); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return existing, nil
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:             uuid.New(),
		SpotifyID:      profile.ID,
		Email:          profile.Email,
		DisplayName:    optional(profile.DisplayName),
		Country:        optional(profile.Country),
		ImageURL:       profileImage(profile),
		AccessToken:    &tokens.AccessToken,
		RefreshToken:   &tokens.RefreshToken,
		TokenExpiresAt: &expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		// Two callbacks can race on first login; the winner's row is fine.
		if errors.Is(err, store.ErrDuplicateKey) {
			return s.store.GetUserBySpotifyID(ctx, profile.ID)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// VerifySession parses a session JWT and returns the user ID it was minted for.
func (s *Service) VerifySession(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidSession
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}
	return userID, nil
}

func (s *Service) mintSession(userID uuid.UUID) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func randomState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func profileImage(profile *spotify.UserProfile) *string {
	if len(profile.Images) == 0 || profile.Images[0].URL == "" {
		return nil
	}
	return &profile.Images[0].URL
}
