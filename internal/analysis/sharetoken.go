package analysis

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/sgoulden/vibecheck/internal/store"
)

const (
	shareTokenLength   = 15
	shareTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// 62^15 tokens make a collision essentially impossible; the retry loop
	// exists so a hit is handled instead of silently overwriting.
	maxTokenAttempts = 10
)

// ShareTokenIssuer mints unguessable public tokens for completed analyses.
type ShareTokenIssuer struct {
	store store.Store
}

func NewShareTokenIssuer(s store.Store) *ShareTokenIssuer {
	return &ShareTokenIssuer{store: s}
}

// Issue generates a share token that does not yet exist in the store.
func (i *ShareTokenIssuer) Issue(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := randomToken()
		if err != nil {
			return "", fmt.Errorf("generate share token: %w", err)
		}
		exists, err := i.store.ShareTokenExists(ctx, token)
		if err != nil {
			return "", fmt.Errorf("check share token uniqueness: %w", err)
		}
		if !exists {
			return token, nil
		}
	}
	return "", fmt.Errorf("exhausted %d share token attempts", maxTokenAttempts)
}

func randomToken() (string, error) {
	buf := make([]byte, shareTokenLength)
	max := big.NewInt(int64(len(shareTokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = shareTokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
