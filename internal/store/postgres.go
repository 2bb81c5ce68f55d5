package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sgoulden/vibecheck/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

const userColumns = `id, spotify_id, email, display_name, country, image_url,
	access_token, refresh_token, token_expires_at, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.SpotifyID, &u.Email, &u.DisplayName, &u.Country, &u.ImageURL,
		&u.AccessToken, &u.RefreshToken, &u.TokenExpiresAt, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, spotify_id, email, display_name, country, image_url,
		   access_token, refresh_token, token_expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID, user.SpotifyID, user.Email, user.DisplayName, user.Country, user.ImageURL,
		user.AccessToken, user.RefreshToken, user.TokenExpiresAt, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, err
}

func (s *PostgresStore) GetUserBySpotifyID(ctx context.Context, spotifyID string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE spotify_id = $1`, spotifyID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user by spotify id: %w", err)
	}
	return u, err
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET email = $2, display_name = $3, country = $4, image_url = $5,
		   access_token = $6, refresh_token = $7, token_expires_at = $8, updated_at = NOW()
		 WHERE id = $1`,
		user.ID, user.Email, user.DisplayName, user.Country, user.ImageURL,
		user.AccessToken, user.RefreshToken, user.TokenExpiresAt)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateUserTokens(ctx context.Context, id uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET access_token = $2, refresh_token = $3, token_expires_at = $4, updated_at = NOW()
		 WHERE id = $1`,
		id, accessToken, refreshToken, expiresAt)
	if err != nil {
		return fmt.Errorf("update user tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Analyses ---

const analysisColumns = `id, user_id, status, error_message, rating_text, rating_description,
	critical_acclaim_score, music_snob_score, share_token, created_at, started_at, completed_at`

func scanAnalysis(row pgx.Row) (*models.Analysis, error) {
	var a models.Analysis
	err := row.Scan(&a.ID, &a.UserID, &a.Status, &a.ErrorMessage, &a.RatingText, &a.RatingDescription,
		&a.CriticalAcclaimScore, &a.MusicSnobScore, &a.ShareToken, &a.CreatedAt, &a.StartedAt, &a.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) CreateAnalysis(ctx context.Context, analysis *models.Analysis) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, user_id, status, created_at) VALUES ($1, $2, $3, $4)`,
		analysis.ID, analysis.UserID, analysis.Status, analysis.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create analysis: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAnalysisByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	a, err := scanAnalysis(s.pool.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get analysis by id: %w", err)
	}
	return a, err
}

func (s *PostgresStore) GetAnalysisByUserID(ctx context.Context, userID uuid.UUID) (*models.Analysis, error) {
	a, err := scanAnalysis(s.pool.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE user_id = $1`, userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get analysis by user: %w", err)
	}
	return a, err
}

func (s *PostgresStore) GetAnalysisByShareToken(ctx context.Context, shareToken string) (*models.Analysis, error) {
	a, err := scanAnalysis(s.pool.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE share_token = $1`, shareToken))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get analysis by share token: %w", err)
	}
	return a, err
}

func (s *PostgresStore) ShareTokenExists(ctx context.Context, shareToken string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM analyses WHERE share_token = $1)`, shareToken).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check share token: %w", err)
	}
	return exists, nil
}

// ResetAnalysisForRetry moves a failed analysis back to pending so its owner
// can run again. Only failed rows are eligible.
func (s *PostgresStore) ResetAnalysisForRetry(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET status = $2, error_message = NULL, started_at = NULL, completed_at = NULL
		 WHERE id = $1 AND status = $3`,
		id, models.AnalysisStatusPending, models.AnalysisStatusFailed)
	if err != nil {
		return fmt.Errorf("reset analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// processing -> processing is allowed so a re-dispatched run can take over a
// row left behind by a crashed attempt.
var validTransitions = map[string][]string{
	models.AnalysisStatusPending:    {models.AnalysisStatusProcessing},
	models.AnalysisStatusProcessing: {models.AnalysisStatusProcessing, models.AnalysisStatusCompleted, models.AnalysisStatusFailed},
}

func (s *PostgresStore) UpdateAnalysisStatus(ctx context.Context, id uuid.UUID, status string, opts ...AnalysisUpdateOption) error {
	update := BuildAnalysisUpdate(opts...)

	// Fetch current status
	var currentStatus string
	err := s.pool.QueryRow(ctx, `SELECT status FROM analyses WHERE id = $1`, id).Scan(&currentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get analysis status: %w", err)
	}

	// Validate transition
	allowed := validTransitions[currentStatus]
	valid := false
	for _, a := range allowed {
		if a == status {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid analysis status transition: %s -> %s", currentStatus, status)
	}

	now := time.Now().UTC()
	query := `UPDATE analyses SET status = $2`
	args := []any{id, status}
	argIdx := 3

	if status == models.AnalysisStatusProcessing && currentStatus == models.AnalysisStatusPending {
		query += fmt.Sprintf(", started_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if status == models.AnalysisStatusCompleted || status == models.AnalysisStatusFailed {
		query += fmt.Sprintf(", completed_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if status == models.AnalysisStatusCompleted {
		// Completion clears any stale error from a previous failed run.
		query += ", error_message = NULL"
	}
	if update.ErrorMessage != nil {
		query += fmt.Sprintf(", error_message = $%d", argIdx)
		args = append(args, *update.ErrorMessage)
		argIdx++
	}
	if update.Result != nil {
		query += fmt.Sprintf(
			", rating_text = $%d, rating_description = $%d, critical_acclaim_score = $%d, music_snob_score = $%d, share_token = $%d",
			argIdx, argIdx+1, argIdx+2, argIdx+3, argIdx+4)
		args = append(args,
			update.Result.RatingText, update.Result.RatingDescription,
			update.Result.CriticalAcclaimScore, update.Result.MusicSnobScore,
			*update.ShareToken)
		argIdx += 5
	}

	query += " WHERE id = $1"

	_, err = s.pool.Exec(ctx, query, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update analysis status: %w", err)
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
