package roast

import (
	"errors"
	"strings"
	"testing"

	"github.com/sgoulden/vibecheck/pkg/models"
)

func TestParseVerdict_Valid(t *testing.T) {
	content := `{
		"rating_text": "CHAOTIC GOBLIN",
		"rating_description": "A playlist held together by vibes and nothing else.",
		"critical_acclaim_score": 0.25,
		"music_snob_score": -0.4
	}`

	verdict, err := ParseVerdict(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.RatingText != "CHAOTIC GOBLIN" {
		t.Errorf("unexpected rating: %q", verdict.RatingText)
	}
	if verdict.CriticalAcclaimScore != 0.25 || verdict.MusicSnobScore != -0.4 {
		t.Errorf("unexpected scores: (%.2f, %.2f)", verdict.CriticalAcclaimScore, verdict.MusicSnobScore)
	}
}

func TestParseVerdict_Empty(t *testing.T) {
	_, err := ParseVerdict("")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got: %v", err)
	}
}

func TestParseVerdict_NotJSON(t *testing.T) {
	_, err := ParseVerdict("I refuse to answer in JSON today.")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got: %v", err)
	}
}

func TestParseVerdict_MissingFields(t *testing.T) {
	cases := map[string]string{
		"rating_text":            `{"rating_description":"d","critical_acclaim_score":0,"music_snob_score":0}`,
		"rating_description":     `{"rating_text":"T","critical_acclaim_score":0,"music_snob_score":0}`,
		"critical_acclaim_score": `{"rating_text":"T","rating_description":"d","music_snob_score":0}`,
		"music_snob_score":       `{"rating_text":"T","rating_description":"d","critical_acclaim_score":0}`,
	}

	for field, content := range cases {
		_, err := ParseVerdict(content)
		if !errors.Is(err, ErrInvalidResponse) {
			t.Errorf("%s: expected ErrInvalidResponse, got: %v", field, err)
		}
		if err == nil || !strings.Contains(err.Error(), field) {
			t.Errorf("%s: error should name the missing field, got: %v", field, err)
		}
	}
}

func TestParseVerdict_ZeroScoresArePresent(t *testing.T) {
	// An explicit 0.0 is a valid score, not a missing field.
	content := `{"rating_text":"T","rating_description":"d","critical_acclaim_score":0.0,"music_snob_score":0.0}`
	verdict, err := ParseVerdict(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.CriticalAcclaimScore != 0 || verdict.MusicSnobScore != 0 {
		t.Errorf("unexpected scores: %+v", verdict)
	}
}

func TestParseVerdict_ClampsScores(t *testing.T) {
	content := `{"rating_text":"T","rating_description":"d","critical_acclaim_score":3.5,"music_snob_score":-12}`
	verdict, err := ParseVerdict(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.CriticalAcclaimScore != 1.0 {
		t.Errorf("expected clamp to 1.0, got %.2f", verdict.CriticalAcclaimScore)
	}
	if verdict.MusicSnobScore != -1.0 {
		t.Errorf("expected clamp to -1.0, got %.2f", verdict.MusicSnobScore)
	}
}

func TestFirstChoice_NoChoices(t *testing.T) {
	_, err := FirstChoice(ChatResponse{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got: %v", err)
	}
}

func TestBuildRequest(t *testing.T) {
	summary := models.TasteSummary{
		UniqueTracks: 12,
		Windows:      map[string]models.WindowStats{},
	}
	req := BuildRequest("deepseek-chat", summary)

	if req.Model != "deepseek-chat" {
		t.Errorf("unexpected model: %s", req.Model)
	}
	if req.ResponseFormat.Type != "json_object" {
		t.Errorf("unexpected response format: %s", req.ResponseFormat.Type)
	}
	if req.MaxTokens != MaxTokens || req.Temperature != Temperature {
		t.Errorf("unexpected limits: %d tokens, %.1f temperature", req.MaxTokens, req.Temperature)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Errorf("unexpected message roles: %+v", req.Messages)
	}
}

func TestUserPrompt_EmbedsSummary(t *testing.T) {
	summary := models.TasteSummary{
		UniqueTracks:        42,
		UniqueArtists:       17,
		RecentlyPlayedCount: 9,
		Genres:              []string{"neofolk", "witch house"},
		PopularityAvg:       33.4,
		PopularityMin:       5,
		PopularityMax:       88,
		Windows: map[string]models.WindowStats{
			models.RangeShortTerm: {
				TrackCount:  20,
				ArtistCount: 15,
				TopArtists:  []models.ArtistDigest{{Name: "Cryogenic Owl"}},
				TopTracks:   []models.TrackDigest{{Name: "Glacier", Artist: "Cryogenic Owl"}},
			},
		},
	}

	prompt := UserPrompt(summary)

	for _, want := range []string{
		"Total unique tracks: 42",
		"Total unique artists: 17",
		"Recently played tracks: 9",
		"neofolk, witch house",
		"33.4/100",
		"Range: 5-88",
		"Last 4 weeks: 20 tracks, 15 artists",
		"Cryogenic Owl",
		"Glacier by Cryogenic Owl",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestUserPrompt_NoGenres(t *testing.T) {
	summary := models.TasteSummary{Windows: map[string]models.WindowStats{}}
	prompt := UserPrompt(summary)
	if !strings.Contains(prompt, "No clear genres detected") {
		t.Error("prompt should flag an empty genre set")
	}
}
