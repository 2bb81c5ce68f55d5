package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AnalysisStatusPending    = "pending"
	AnalysisStatusProcessing = "processing"
	AnalysisStatusCompleted  = "completed"
	AnalysisStatusFailed     = "failed"
)

// Analysis tracks one async taste-analysis job. There is at most one row per
// user, enforced by a unique constraint on user_id. The API returns the
// analysis id on POST /api/v1/music/analysis/begin; the client polls
// GET /api/v1/music/analysis/status until status is completed or failed.
//
// Result fields (rating text/description, both scores, share token) are all
// nil until the job completes and all non-nil afterwards. Scores are on a
// -1.0..1.0 scale.
type Analysis struct {
	ID                   uuid.UUID  `db:"id"                     json:"id"`
	UserID               uuid.UUID  `db:"user_id"                json:"user_id"`
	Status               string     `db:"status"                 json:"status"`
	ErrorMessage         *string    `db:"error_message"          json:"error_message,omitempty"`
	RatingText           *string    `db:"rating_text"            json:"rating_text,omitempty"`
	RatingDescription    *string    `db:"rating_description"     json:"rating_description,omitempty"`
	CriticalAcclaimScore *float64   `db:"critical_acclaim_score" json:"critical_acclaim_score,omitempty"`
	MusicSnobScore       *float64   `db:"music_snob_score"       json:"music_snob_score,omitempty"`
	ShareToken           *string    `db:"share_token"            json:"share_token,omitempty"`
	CreatedAt            time.Time  `db:"created_at"             json:"created_at"`
	StartedAt            *time.Time `db:"started_at"             json:"started_at,omitempty"`
	CompletedAt          *time.Time `db:"completed_at"           json:"completed_at,omitempty"`
}

// IsTerminal reports whether the analysis reached a final state.
func (a *Analysis) IsTerminal() bool {
	return a.Status == AnalysisStatusCompleted || a.Status == AnalysisStatusFailed
}

// HasCompleteResult reports whether every result field is populated.
// A completed analysis with a missing field indicates a bug upstream.
func (a *Analysis) HasCompleteResult() bool {
	return a.RatingText != nil &&
		a.RatingDescription != nil &&
		a.CriticalAcclaimScore != nil &&
		a.MusicSnobScore != nil &&
		a.ShareToken != nil
}
