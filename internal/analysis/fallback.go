package analysis

import (
	"fmt"
	"strings"

	"github.com/sgoulden/vibecheck/pkg/models"
)

// Popularity thresholds splitting mainstream, mid-range, and underground taste.
const (
	mainstreamThreshold  = 70.0
	undergroundThreshold = 30.0

	highDiversity = 10
	lowDiversity  = 3

	highEnergy = 0.7
	lowValence = 0.3
)

var experimentalGenres = []string{"experimental", "noise", "avant-garde"}

// Decide produces a verdict from listening statistics alone, in the same
// shape the AI path produces, so callers never care which branch ran. It is
// deterministic and cannot fail.
func Decide(summary models.TasteSummary) models.Verdict {
	if !summary.HasListeningData() {
		return models.Verdict{
			RatingText:           "MYSTERIOUS LISTENER",
			RatingDescription:    "Your music taste is so unique that even Spotify doesn't know what to make of it. Either you're incredibly private about your listening habits, or you're the type of person who listens to music on vinyl exclusively. We respect the mystery.",
			CriticalAcclaimScore: 0.0,
			MusicSnobScore:       0.0,
		}
	}

	switch {
	case summary.PopularityAvg > mainstreamThreshold:
		return mainstreamVerdict(summary)
	case summary.PopularityAvg < undergroundThreshold:
		return undergroundVerdict(summary)
	default:
		return midRangeVerdict(summary)
	}
}

func mainstreamVerdict(summary models.TasteSummary) models.Verdict {
	if hasGenre(summary.Genres, "pop") || hasGenreContaining(summary.Genres, "mainstream") {
		return models.Verdict{
			RatingText:           "BASIC MAINSTREAM",
			RatingDescription:    fmt.Sprintf("You're basically a walking Billboard Hot 100 playlist. Your music taste is so mainstream that Spotify's algorithm probably uses you as a baseline for 'popular music.' With an average track popularity of %.0f, you're the human equivalent of a radio station that only plays the hits.", summary.PopularityAvg),
			CriticalAcclaimScore: 0.7,
			MusicSnobScore:       -0.3,
		}
	}
	return models.Verdict{
		RatingText:           "POPULAR TASTE",
		RatingDescription:    fmt.Sprintf("You like what's popular, but at least you have some variety. Your %.0f average popularity score suggests you're not completely hopeless, just... predictable. You're the person who discovers new music when it hits the top 40.", summary.PopularityAvg),
		CriticalAcclaimScore: 0.5,
		MusicSnobScore:       0.2,
	}
}

func undergroundVerdict(summary models.TasteSummary) models.Verdict {
	for _, g := range experimentalGenres {
		if hasGenre(summary.Genres, g) {
			return models.Verdict{
				RatingText:           "PRETENTIOUS HIPSTER",
				RatingDescription:    fmt.Sprintf("Oh look, someone who thinks music peaked in an abandoned warehouse in Berlin. Your average popularity of %.0f screams 'I liked them before they were cool' energy. You probably own vinyl records that sound like construction equipment and call it 'art.'", summary.PopularityAvg),
				CriticalAcclaimScore: -0.8,
				MusicSnobScore:       -0.6,
			}
		}
	}
	return models.Verdict{
		RatingText:           "UNDERGROUND EXPLORER",
		RatingDescription:    fmt.Sprintf("You've got good taste in finding hidden gems with your %.0f average popularity. You're like a musical archaeologist, digging up artists that deserve more recognition. Respect for not following the crowd.", summary.PopularityAvg),
		CriticalAcclaimScore: -0.5,
		MusicSnobScore:       0.4,
	}
}

func midRangeVerdict(summary models.TasteSummary) models.Verdict {
	switch {
	case summary.AvgEnergy > highEnergy && summary.AvgDanceability > highEnergy:
		return models.Verdict{
			RatingText:           "PARTY ANIMAL",
			RatingDescription:    fmt.Sprintf("With an energy level of %.2f and danceability of %.2f, your playlists sound like a pre-game that never ends. You don't listen to music so much as you use it as a cardio machine. Your neighbors know every drop by heart, whether they want to or not.", summary.AvgEnergy, summary.AvgDanceability),
			CriticalAcclaimScore: 0.3,
			MusicSnobScore:       0.5,
		}
	case summary.AvgValence > 0 && summary.AvgValence < lowValence:
		return models.Verdict{
			RatingText:           "EMO SADBOY",
			RatingDescription:    fmt.Sprintf("A happiness factor of %.2f. That's not a music taste, that's a cry for help set to minor chords. Your playlists are the soundtrack to staring out of rain-streaked windows, and honestly, we hope someone checks on you occasionally.", summary.AvgValence),
			CriticalAcclaimScore: -0.1,
			MusicSnobScore:       -0.5,
		}
	case summary.GenreDiversity > highDiversity:
		return models.Verdict{
			RatingText:           "GENRE HOPPER",
			RatingDescription:    fmt.Sprintf("You listen to %d different genres like you're trying to collect them all. Your music taste has more variety than a buffet restaurant. Are you having an identity crisis or just really indecisive?", summary.GenreDiversity),
			CriticalAcclaimScore: 0.1,
			MusicSnobScore:       0.8,
		}
	case summary.GenreDiversity < lowDiversity:
		return models.Verdict{
			RatingText:           "ONE-TRACK MIND",
			RatingDescription:    fmt.Sprintf("With only %d genres in your rotation, you've found your lane and you're sticking to it. You're either incredibly focused or incredibly boring. We're leaning towards the latter.", summary.GenreDiversity),
			CriticalAcclaimScore: -0.2,
			MusicSnobScore:       -0.4,
		}
	default:
		// The track total counts every window, so repeats across windows count again.
		totalTracks := 0
		for _, w := range summary.Windows {
			totalTracks += w.TrackCount
		}
		return models.Verdict{
			RatingText:           "BALANCED LISTENER",
			RatingDescription:    fmt.Sprintf("You listen to %d genres with %d tracks tracked. You're remarkably... balanced. Not too mainstream, not too hipster. You're the musical equivalent of vanilla ice cream - perfectly fine, but where's the excitement?", summary.GenreDiversity, totalTracks),
			CriticalAcclaimScore: 0.0,
			MusicSnobScore:       0.1,
		}
	}
}

func hasGenre(genres []string, target string) bool {
	for _, g := range genres {
		if g == target {
			return true
		}
	}
	return false
}

func hasGenreContaining(genres []string, fragment string) bool {
	for _, g := range genres {
		if strings.Contains(strings.ToLower(g), fragment) {
			return true
		}
	}
	return false
}
