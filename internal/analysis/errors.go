package analysis

import "errors"

var (
	// ErrNotCompleted is returned when a result is requested for an analysis
	// that has not reached the completed state.
	ErrNotCompleted = errors.New("analysis not completed")

	// ErrIncompleteResult means a completed row is missing result fields.
	// That should be impossible given how results are written; surfacing it
	// loudly beats serving a half-empty verdict.
	ErrIncompleteResult = errors.New("analysis marked completed but missing result data")

	ErrNoAccessToken  = errors.New("user has no access token")
	ErrNoRefreshToken = errors.New("user has no refresh token")
)
