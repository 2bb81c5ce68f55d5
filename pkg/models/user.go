// Package models contains shared data models used across the vibecheck codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account created from a Spotify profile on first login.
// The stored Spotify tokens are refreshed lazily by the analysis pipeline.
type User struct {
	ID             uuid.UUID  `db:"id"               json:"id"`
	SpotifyID      string     `db:"spotify_id"       json:"spotify_id"`
	Email          string     `db:"email"            json:"email"`
	DisplayName    *string    `db:"display_name"     json:"display_name,omitempty"`
	Country        *string    `db:"country"          json:"country,omitempty"`
	ImageURL       *string    `db:"image_url"        json:"image_url,omitempty"`
	AccessToken    *string    `db:"access_token"     json:"-"`
	RefreshToken   *string    `db:"refresh_token"    json:"-"`
	TokenExpiresAt *time.Time `db:"token_expires_at" json:"-"`
	CreatedAt      time.Time  `db:"created_at"       json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"       json:"updated_at"`
}
