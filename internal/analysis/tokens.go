package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sgoulden/vibecheck/internal/spotify"
	"github.com/sgoulden/vibecheck/internal/store"
)

// refreshMargin is how close to expiry a token is still treated as expired.
// A token with less runway than this would likely die mid-collection.
const refreshMargin = 5 * time.Minute

// TokenService hands out a Spotify access token that is guaranteed to be
// usable for at least refreshMargin, refreshing and persisting as needed.
type TokenService struct {
	store   store.Store
	spotify spotify.Client
	logger  *slog.Logger
}

func NewTokenService(s store.Store, sp spotify.Client, logger *slog.Logger) *TokenService {
	return &TokenService{store: s, spotify: sp, logger: logger}
}

// EnsureValidToken returns a valid access token for the user, refreshing it
// against Spotify when expired or about to expire.
func (t *TokenService) EnsureValidToken(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := t.store.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if user.AccessToken == nil || *user.AccessToken == "" {
		return "", ErrNoAccessToken
	}

	// No recorded expiry means the token is assumed valid.
	if user.TokenExpiresAt == nil || time.Until(*user.TokenExpiresAt) > refreshMargin {
		return *user.AccessToken, nil
	}

	if user.RefreshToken == nil || *user.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	info, err := t.spotify.RefreshToken(ctx, *user.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(time.Duration(info.ExpiresIn) * time.Second)
	if err := t.store.UpdateUserTokens(ctx, userID, info.AccessToken, info.RefreshToken, expiresAt); err != nil {
		return "", fmt.Errorf("persist refreshed tokens: %w", err)
	}

	t.logger.Debug("refreshed spotify token", "user_id", userID, "expires_at", expiresAt)
	return info.AccessToken, nil
}
