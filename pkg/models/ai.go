package models

import "context"

// Verdict is the structured output of a taste analysis, whether it came from
// an AI provider or the fallback rule engine. Scores are clamped to
// [-1.0, 1.0]: critical acclaim runs underground (-1) to mainstream (+1),
// music snob runs roasting (-1) to praising (+1).
type Verdict struct {
	RatingText           string  `json:"rating_text"`
	RatingDescription    string  `json:"rating_description"`
	CriticalAcclaimScore float64 `json:"critical_acclaim_score"`
	MusicSnobScore       float64 `json:"music_snob_score"`
}

// TasteProvider is the core interface all AI integrations must implement.
// Never call a specific provider directly; always inject this interface.
type TasteProvider interface {
	// Roast turns a taste summary into a structured verdict.
	Roast(ctx context.Context, summary TasteSummary) (Verdict, error)
	// Name returns the provider identifier (e.g., "deepseek", "openai").
	Name() string
}
