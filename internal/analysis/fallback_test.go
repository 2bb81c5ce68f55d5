package analysis

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sgoulden/vibecheck/pkg/models"
)

func summaryWithData(popularityAvg float64, genres ...string) models.TasteSummary {
	return models.TasteSummary{
		Windows: map[string]models.WindowStats{
			models.RangeShortTerm: {TrackCount: 10},
		},
		PopularityAvg:  popularityAvg,
		Genres:         genres,
		GenreDiversity: len(genres),
		UniqueTracks:   10,
	}
}

func TestDecide_NoData(t *testing.T) {
	verdict := Decide(models.TasteSummary{Windows: map[string]models.WindowStats{}})

	if verdict.RatingText != "MYSTERIOUS LISTENER" {
		t.Errorf("expected MYSTERIOUS LISTENER, got %q", verdict.RatingText)
	}
	if verdict.CriticalAcclaimScore != 0 || verdict.MusicSnobScore != 0 {
		t.Errorf("no-data verdict must carry neutral scores, got (%.1f, %.1f)",
			verdict.CriticalAcclaimScore, verdict.MusicSnobScore)
	}
}

func TestDecide_BasicMainstream(t *testing.T) {
	verdict := Decide(summaryWithData(85, "pop", "dance pop"))

	if verdict.RatingText != "BASIC MAINSTREAM" {
		t.Errorf("expected BASIC MAINSTREAM, got %q", verdict.RatingText)
	}
	if verdict.CriticalAcclaimScore != 0.7 || verdict.MusicSnobScore != -0.3 {
		t.Errorf("unexpected scores: (%.1f, %.1f)", verdict.CriticalAcclaimScore, verdict.MusicSnobScore)
	}
	if !strings.Contains(verdict.RatingDescription, "85") {
		t.Errorf("description should cite the popularity figure: %s", verdict.RatingDescription)
	}
}

func TestDecide_PopularTaste(t *testing.T) {
	verdict := Decide(summaryWithData(75, "rock", "metal"))

	if verdict.RatingText != "POPULAR TASTE" {
		t.Errorf("expected POPULAR TASTE, got %q", verdict.RatingText)
	}
	if verdict.CriticalAcclaimScore != 0.5 || verdict.MusicSnobScore != 0.2 {
		t.Errorf("unexpected scores: (%.1f, %.1f)", verdict.CriticalAcclaimScore, verdict.MusicSnobScore)
	}
}

func TestDecide_PretentiousHipster(t *testing.T) {
	verdict := Decide(summaryWithData(15, "noise", "drone"))

	if verdict.RatingText != "PRETENTIOUS HIPSTER" {
		t.Errorf("expected PRETENTIOUS HIPSTER, got %q", verdict.RatingText)
	}
	if verdict.CriticalAcclaimScore != -0.8 || verdict.MusicSnobScore != -0.6 {
		t.Errorf("unexpected scores: (%.1f, %.1f)", verdict.CriticalAcclaimScore, verdict.MusicSnobScore)
	}
}

func TestDecide_UndergroundExplorer(t *testing.T) {
	verdict := Decide(summaryWithData(20, "bedroom pop", "lo-fi"))

	if verdict.RatingText != "UNDERGROUND EXPLORER" {
		t.Errorf("expected UNDERGROUND EXPLORER, got %q", verdict.RatingText)
	}
	if verdict.CriticalAcclaimScore != -0.5 || verdict.MusicSnobScore != 0.4 {
		t.Errorf("unexpected scores: (%.1f, %.1f)", verdict.CriticalAcclaimScore, verdict.MusicSnobScore)
	}
}

func TestDecide_PartyAnimal(t *testing.T) {
	summary := summaryWithData(50, "house", "edm", "techno", "electro")
	summary.AvgEnergy = 0.85
	summary.AvgDanceability = 0.9

	verdict := Decide(summary)
	if verdict.RatingText != "PARTY ANIMAL" {
		t.Errorf("expected PARTY ANIMAL, got %q", verdict.RatingText)
	}
}

func TestDecide_EmoSadboy(t *testing.T) {
	summary := summaryWithData(50, "emo", "midwest emo", "sadcore", "slowcore")
	summary.AvgValence = 0.15
	summary.AvgEnergy = 0.4

	verdict := Decide(summary)
	if verdict.RatingText != "EMO SADBOY" {
		t.Errorf("expected EMO SADBOY, got %q", verdict.RatingText)
	}
}

func TestDecide_GenreHopper(t *testing.T) {
	genres := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	summary := summaryWithData(50, genres...)
	summary.AvgValence = 0.5

	verdict := Decide(summary)
	if verdict.RatingText != "GENRE HOPPER" {
		t.Errorf("expected GENRE HOPPER, got %q", verdict.RatingText)
	}
	if verdict.CriticalAcclaimScore != 0.1 || verdict.MusicSnobScore != 0.8 {
		t.Errorf("unexpected scores: (%.1f, %.1f)", verdict.CriticalAcclaimScore, verdict.MusicSnobScore)
	}
	if !strings.Contains(verdict.RatingDescription, "12") {
		t.Errorf("description should cite the genre count: %s", verdict.RatingDescription)
	}
}

func TestDecide_OneTrackMind(t *testing.T) {
	summary := summaryWithData(50, "country")
	summary.AvgValence = 0.5

	verdict := Decide(summary)
	if verdict.RatingText != "ONE-TRACK MIND" {
		t.Errorf("expected ONE-TRACK MIND, got %q", verdict.RatingText)
	}
}

func TestDecide_BalancedListener(t *testing.T) {
	summary := summaryWithData(50, "rock", "indie", "folk", "jazz")
	summary.AvgValence = 0.5

	verdict := Decide(summary)
	if verdict.RatingText != "BALANCED LISTENER" {
		t.Errorf("expected BALANCED LISTENER, got %q", verdict.RatingText)
	}
	if verdict.CriticalAcclaimScore != 0.0 || verdict.MusicSnobScore != 0.1 {
		t.Errorf("unexpected scores: (%.1f, %.1f)", verdict.CriticalAcclaimScore, verdict.MusicSnobScore)
	}
}

func TestDecide_BalancedListenerSumsWindowTracks(t *testing.T) {
	// A track repeated across windows is counted once per window in the
	// interpolated total, so the pooled count beats the unique count.
	summary := summaryWithData(50, "rock", "indie", "folk", "jazz")
	summary.AvgValence = 0.5
	summary.Windows = map[string]models.WindowStats{
		models.RangeShortTerm:  {TrackCount: 10},
		models.RangeMediumTerm: {TrackCount: 10},
		models.RangeLongTerm:   {TrackCount: 5},
	}
	summary.UniqueTracks = 12

	verdict := Decide(summary)
	if !strings.Contains(verdict.RatingDescription, "25 tracks tracked") {
		t.Errorf("description should interpolate the pooled window total, got: %s", verdict.RatingDescription)
	}
}

func TestDecide_BoundariesAreMidRange(t *testing.T) {
	// Exactly 70 and exactly 30 fall in the mid-range branch, not the
	// mainstream/underground ones.
	for _, avg := range []float64{30, 70} {
		summary := summaryWithData(avg, "rock", "indie", "folk", "jazz")
		summary.AvgValence = 0.5
		verdict := Decide(summary)
		if verdict.RatingText != "BALANCED LISTENER" {
			t.Errorf("avg %.0f: expected BALANCED LISTENER, got %q", avg, verdict.RatingText)
		}
	}
}

func TestDecide_Deterministic(t *testing.T) {
	summary := summaryWithData(55, "rock", "indie", "folk", "jazz")
	summary.AvgEnergy = 0.6
	summary.AvgValence = 0.5

	first := Decide(summary)
	second := Decide(summary)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical summaries must yield identical verdicts")
	}
}
