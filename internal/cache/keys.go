package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func AnalysisStatusKey(userID uuid.UUID) string {
	return fmt.Sprintf("analysis:status:%s", userID)
}

func OAuthStateKey(state string) string {
	return fmt.Sprintf("oauth:state:%s", state)
}

func RateLimitKey(userID uuid.UUID) string {
	return fmt.Sprintf("ratelimit:%s", userID)
}
