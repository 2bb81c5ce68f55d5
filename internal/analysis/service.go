// Package analysis runs the taste analysis pipeline: a per-user background
// job that collects Spotify listening data, summarises it, asks an AI
// provider for a verdict (falling back to rules when it misbehaves), and
// persists a publicly shareable result.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sgoulden/vibecheck/internal/cache"
	"github.com/sgoulden/vibecheck/internal/store"
	"github.com/sgoulden/vibecheck/pkg/models"
)

const statusCacheTTL = 30 * time.Minute

// TokenProvider yields a usable Spotify access token for a user.
type TokenProvider interface {
	EnsureValidToken(ctx context.Context, userID uuid.UUID) (string, error)
}

// DataCollector gathers a user's listening data. It degrades rather than
// fails: sub-fetch errors become empty slots.
type DataCollector interface {
	Collect(ctx context.Context, accessToken string) *models.MusicData
}

// ShareTokenSource mints unique public tokens.
type ShareTokenSource interface {
	Issue(ctx context.Context) (string, error)
}

// BeginResult is what the begin operation returns to the caller.
type BeginResult struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
	Status     string    `json:"status"`
}

// Result is a completed analysis as seen by its owner.
type Result struct {
	RatingText           string    `json:"rating_text"`
	RatingDescription    string    `json:"rating_description"`
	CriticalAcclaimScore float64   `json:"critical_acclaim_score"`
	MusicSnobScore       float64   `json:"music_snob_score"`
	ShareToken           string    `json:"share_token"`
	AnalyzedAt           time.Time `json:"analyzed_at"`
}

// PublicResult is a completed analysis as seen through a share link. It
// carries no share token and nothing identifying the owner.
type PublicResult struct {
	RatingText           string    `json:"rating_text"`
	RatingDescription    string    `json:"rating_description"`
	CriticalAcclaimScore float64   `json:"critical_acclaim_score"`
	MusicSnobScore       float64   `json:"music_snob_score"`
	AnalyzedAt           time.Time `json:"analyzed_at"`
}

// Service orchestrates analysis jobs. At most one analysis row exists per
// user, enforced by a database constraint; begin is idempotent against it.
type Service struct {
	store      store.Store
	cache      cache.Cache
	tokens     TokenProvider
	collector  DataCollector
	shareToken ShareTokenSource
	provider   models.TasteProvider
	timeout    time.Duration
	logger     *slog.Logger
}

func NewService(
	st store.Store,
	ca cache.Cache,
	tokens TokenProvider,
	collector DataCollector,
	shareToken ShareTokenSource,
	provider models.TasteProvider,
	timeout time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:      st,
		cache:      ca,
		tokens:     tokens,
		collector:  collector,
		shareToken: shareToken,
		provider:   provider,
		timeout:    timeout,
		logger:     logger,
	}
}

// Begin starts an analysis for the user, or reports the one already there.
// A failed analysis is reset and run again; pending, processing, and
// completed ones are returned untouched. The pipeline itself runs in a
// background goroutine; the caller gets the job identity immediately.
func (s *Service) Begin(ctx context.Context, userID uuid.UUID) (*BeginResult, error) {
	existing, err := s.store.GetAnalysisByUserID(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup analysis: %w", err)
	}

	if existing != nil {
		if existing.Status != models.AnalysisStatusFailed {
			s.logger.Info("returning existing analysis", "user_id", userID, "analysis_id", existing.ID, "status", existing.Status)
			return &BeginResult{AnalysisID: existing.ID, Status: existing.Status}, nil
		}

		// Failed runs are retryable: back to pending and dispatch again.
		if err := s.store.ResetAnalysisForRetry(ctx, existing.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Lost a race with another begin; report whatever won.
				current, gerr := s.store.GetAnalysisByUserID(ctx, userID)
				if gerr != nil {
					return nil, fmt.Errorf("lookup analysis after reset race: %w", gerr)
				}
				return &BeginResult{AnalysisID: current.ID, Status: current.Status}, nil
			}
			return nil, fmt.Errorf("reset analysis: %w", err)
		}

		_ = s.cache.SetAnalysisStatus(ctx, userID, models.AnalysisStatusPending, statusCacheTTL)
		s.logger.Info("retrying failed analysis", "user_id", userID, "analysis_id", existing.ID)
		go s.run(existing.ID, userID)
		return &BeginResult{AnalysisID: existing.ID, Status: models.AnalysisStatusPending}, nil
	}

	analysis := &models.Analysis{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    models.AnalysisStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateAnalysis(ctx, analysis); err != nil {
		// Two begins can race on first creation; the winner's row stands.
		if errors.Is(err, store.ErrDuplicateKey) {
			winner, gerr := s.store.GetAnalysisByUserID(ctx, userID)
			if gerr != nil {
				return nil, fmt.Errorf("lookup analysis after create race: %w", gerr)
			}
			return &BeginResult{AnalysisID: winner.ID, Status: winner.Status}, nil
		}
		return nil, fmt.Errorf("create analysis: %w", err)
	}

	_ = s.cache.SetAnalysisStatus(ctx, userID, models.AnalysisStatusPending, statusCacheTTL)
	s.logger.Info("created analysis", "user_id", userID, "analysis_id", analysis.ID)
	go s.run(analysis.ID, userID)

	return &BeginResult{AnalysisID: analysis.ID, Status: models.AnalysisStatusPending}, nil
}

// run executes the pipeline in the background. It recovers from panics and
// always leaves the job in a terminal state, except when even recording the
// failure fails, which is logged and abandoned.
func (s *Service) run(analysisID, userID uuid.UUID) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in analysis pipeline", "analysis_id", analysisID, "panic", r)
			s.fail(ctx, analysisID, userID, fmt.Sprintf("panic: %v", r))
		}
	}()

	analysis, err := s.store.GetAnalysisByID(ctx, analysisID)
	if err != nil {
		s.logger.Error("analysis vanished before execution", "analysis_id", analysisID, "error", err)
		return
	}
	if analysis.IsTerminal() {
		s.logger.Warn("analysis already terminal, skipping", "analysis_id", analysisID, "status", analysis.Status)
		return
	}

	if err := s.store.UpdateAnalysisStatus(ctx, analysisID, models.AnalysisStatusProcessing); err != nil {
		s.logger.Error("failed to mark analysis processing", "analysis_id", analysisID, "error", err)
		return
	}
	_ = s.cache.SetAnalysisStatus(ctx, userID, models.AnalysisStatusProcessing, statusCacheTTL)
	s.logger.Info("analysis started", "analysis_id", analysisID, "user_id", userID)

	accessToken, err := s.tokens.EnsureValidToken(ctx, userID)
	if err != nil {
		s.fail(ctx, analysisID, userID, fmt.Sprintf("acquiring token: %v", err))
		return
	}

	data := s.collector.Collect(ctx, accessToken)
	summary := Summarize(data)

	verdict := s.verdict(ctx, summary)

	shareToken, err := s.shareToken.Issue(ctx)
	if err != nil {
		s.fail(ctx, analysisID, userID, fmt.Sprintf("issuing share token: %v", err))
		return
	}

	if err := s.store.UpdateAnalysisStatus(ctx, analysisID, models.AnalysisStatusCompleted,
		store.WithResult(verdict, shareToken)); err != nil {
		s.fail(ctx, analysisID, userID, fmt.Sprintf("storing result: %v", err))
		return
	}
	_ = s.cache.SetAnalysisStatus(ctx, userID, models.AnalysisStatusCompleted, statusCacheTTL)

	s.logger.Info("analysis completed", "analysis_id", analysisID, "user_id", userID,
		"rating", verdict.RatingText, "share_token", shareToken)
}

// verdict asks the AI provider for a take on the summary, falling back to the
// rule engine when there is nothing to analyze or the provider fails. An AI
// failure alone never fails the job.
func (s *Service) verdict(ctx context.Context, summary models.TasteSummary) models.Verdict {
	if !summary.HasListeningData() {
		s.logger.Info("no listening data, using fallback verdict")
		return Decide(summary)
	}

	inferCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	verdict, err := s.provider.Roast(inferCtx, summary)
	if err != nil {
		s.logger.Warn("ai inference failed, using fallback verdict", "provider", s.provider.Name(), "error", err)
		return Decide(summary)
	}
	return verdict
}

// fail records a failure. A secondary failure while recording is logged
// only; there is nothing sensible left to do with it.
func (s *Service) fail(ctx context.Context, analysisID, userID uuid.UUID, message string) {
	s.logger.Error("analysis failed", "analysis_id", analysisID, "user_id", userID, "reason", message)
	if err := s.store.UpdateAnalysisStatus(ctx, analysisID, models.AnalysisStatusFailed,
		store.WithErrorMessage(message)); err != nil {
		s.logger.Error("failed to record analysis failure", "analysis_id", analysisID, "error", err)
		return
	}
	_ = s.cache.SetAnalysisStatus(ctx, userID, models.AnalysisStatusFailed, statusCacheTTL)
}

// Poll returns the current state of the user's analysis.
func (s *Service) Poll(ctx context.Context, userID uuid.UUID) (*models.Analysis, error) {
	analysis, err := s.store.GetAnalysisByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// GetResult returns the completed result for its owner. It refuses rows that
// are not completed, and flags completed rows with missing fields as an
// integrity failure rather than serving them.
func (s *Service) GetResult(ctx context.Context, userID uuid.UUID) (*Result, error) {
	analysis, err := s.store.GetAnalysisByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if analysis.Status != models.AnalysisStatusCompleted {
		return nil, fmt.Errorf("%w: current status %s", ErrNotCompleted, analysis.Status)
	}
	if !analysis.HasCompleteResult() {
		return nil, ErrIncompleteResult
	}

	return &Result{
		RatingText:           *analysis.RatingText,
		RatingDescription:    *analysis.RatingDescription,
		CriticalAcclaimScore: *analysis.CriticalAcclaimScore,
		MusicSnobScore:       *analysis.MusicSnobScore,
		ShareToken:           *analysis.ShareToken,
		AnalyzedAt:           analyzedAt(analysis),
	}, nil
}

// GetPublicResult resolves a share token. Unknown tokens and tokens pointing
// at anything not fully completed are indistinguishable to the caller, so a
// share link never leaks job state.
func (s *Service) GetPublicResult(ctx context.Context, shareToken string) (*PublicResult, error) {
	analysis, err := s.store.GetAnalysisByShareToken(ctx, shareToken)
	if err != nil {
		return nil, err
	}
	if analysis.Status != models.AnalysisStatusCompleted || !analysis.HasCompleteResult() {
		s.logger.Warn("incomplete analysis behind share token", "analysis_id", analysis.ID)
		return nil, store.ErrNotFound
	}

	return &PublicResult{
		RatingText:           *analysis.RatingText,
		RatingDescription:    *analysis.RatingDescription,
		CriticalAcclaimScore: *analysis.CriticalAcclaimScore,
		MusicSnobScore:       *analysis.MusicSnobScore,
		AnalyzedAt:           analyzedAt(analysis),
	}, nil
}

func analyzedAt(analysis *models.Analysis) time.Time {
	if analysis.CompletedAt != nil {
		return *analysis.CompletedAt
	}
	return analysis.CreatedAt
}
