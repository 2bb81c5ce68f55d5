// Package mock provides a canned taste provider for tests and local
// development without an AI backend.
package mock

import (
	"context"

	"github.com/sgoulden/vibecheck/pkg/models"
)

// MockProvider satisfies models.TasteProvider for testing.
type MockProvider struct {
	Name_     string
	RoastFunc func(ctx context.Context, summary models.TasteSummary) (models.Verdict, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Roast(ctx context.Context, summary models.TasteSummary) (models.Verdict, error) {
	if m.RoastFunc != nil {
		return m.RoastFunc(ctx, summary)
	}
	return models.Verdict{}, nil
}

// NewMockProvider returns a MockProvider with a sensible default verdict.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		RoastFunc: func(_ context.Context, summary models.TasteSummary) (models.Verdict, error) {
			return models.Verdict{
				RatingText:           "CERTIFIED MOCK LISTENER",
				RatingDescription:    "This verdict came from the mock provider, which has never heard a song in its life and still has opinions about yours.",
				CriticalAcclaimScore: summary.MainstreamScore*2 - 1,
				MusicSnobScore:       0.1,
			}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock",
		RoastFunc: func(_ context.Context, _ models.TasteSummary) (models.Verdict, error) {
			return models.Verdict{}, err
		},
	}
}

var _ models.TasteProvider = (*MockProvider)(nil)
