package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sgoulden/vibecheck/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserBySpotifyID(ctx context.Context, spotifyID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdateUserTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error

	CreateAnalysis(ctx context.Context, analysis *models.Analysis) error
	GetAnalysisByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	GetAnalysisByUserID(ctx context.Context, userID uuid.UUID) (*models.Analysis, error)
	GetAnalysisByShareToken(ctx context.Context, shareToken string) (*models.Analysis, error)
	ShareTokenExists(ctx context.Context, shareToken string) (bool, error)
	ResetAnalysisForRetry(ctx context.Context, id uuid.UUID) error
	UpdateAnalysisStatus(ctx context.Context, id uuid.UUID, status string, opts ...AnalysisUpdateOption) error
}

// AnalysisUpdate is the optional payload of an UpdateAnalysisStatus call,
// collected from the variadic options.
type AnalysisUpdate struct {
	ErrorMessage *string
	Result       *models.Verdict
	ShareToken   *string
}

type AnalysisUpdateOption func(*AnalysisUpdate)

// BuildAnalysisUpdate collects options into their combined payload.
func BuildAnalysisUpdate(opts ...AnalysisUpdateOption) AnalysisUpdate {
	var u AnalysisUpdate
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

// WithErrorMessage records the failure reason on a transition to failed.
func WithErrorMessage(msg string) AnalysisUpdateOption {
	return func(u *AnalysisUpdate) {
		u.ErrorMessage = &msg
	}
}

// WithResult writes all result fields on a transition to completed. The
// completeness invariant (all fields set together) is enforced by always
// passing the full verdict plus the share token in one update.
func WithResult(verdict models.Verdict, shareToken string) AnalysisUpdateOption {
	return func(u *AnalysisUpdate) {
		u.Result = &verdict
		u.ShareToken = &shareToken
	}
}
