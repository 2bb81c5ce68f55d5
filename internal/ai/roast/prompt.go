// Package roast holds the provider-independent pieces of taste inference:
// prompt construction, the chat-completions wire format, and response
// parsing. Providers differ only in endpoint and credentials.
package roast

import (
	"fmt"
	"strings"

	"github.com/sgoulden/vibecheck/pkg/models"
)

var windowLabels = map[string]string{
	models.RangeShortTerm:  "Last 4 weeks",
	models.RangeMediumTerm: "Last 6 months",
	models.RangeLongTerm:   "All time",
}

// SystemPrompt is the fixed persona and output contract sent with every
// inference request.
func SystemPrompt() string {
	return `You are a witty, sarcastic music critic AI that analyzes people's Spotify listening habits and roasts their music taste. Your job is to provide brutally honest, humorous commentary about their musical preferences.

You will receive detailed music data and must return a JSON response with exactly these fields:
- rating_text: A short, punchy label (2-4 words, ALL CAPS) that captures their music taste (e.g., "BASIC MAINSTREAM", "PRETENTIOUS HIPSTER", "CHAOTIC GOBLIN")
- rating_description: A longer paragraph (100-200 words) with witty, sarcastic analysis of their taste
- critical_acclaim_score: Float from -1.0 (alternative/underground) to 1.0 (mainstream/popular)
- music_snob_score: Float from -1.0 (negative/roasting) to 1.0 (positive/praising)

Your analysis should consider:
- Genre diversity and obscurity
- Popularity patterns (mainstream vs underground)
- Audio features (energy, mood, danceability)
- Listening consistency across time periods
- Artist/track repetition patterns

Be creative, funny, and slightly mean but not genuinely hurtful. Reference specific musical elements when possible.

EXAMPLE JSON OUTPUT:
{
    "rating_text": "NOSTALGIC MILLENNIAL",
    "rating_description": "Your Spotify looks like a 2010s time capsule that someone accidentally left in a coffee shop. You're still emotionally attached to bands that peaked when skinny jeans were cool, and your 'discover weekly' is just Spotify gently suggesting you might want to try something from this decade.",
    "critical_acclaim_score": 0.2,
    "music_snob_score": -0.3
}`
}

// UserPrompt renders the taste summary as the natural-language payload of an
// inference request.
func UserPrompt(summary models.TasteSummary) string {
	var b strings.Builder

	b.WriteString("Analyze this person's music taste and roast them accordingly. Return your analysis in JSON format.\n\n")
	b.WriteString("MUSIC DATA SUMMARY:\n")
	fmt.Fprintf(&b, "- Total unique tracks: %d\n", summary.UniqueTracks)
	fmt.Fprintf(&b, "- Total unique artists: %d\n", summary.UniqueArtists)
	fmt.Fprintf(&b, "- Recently played tracks: %d\n", summary.RecentlyPlayedCount)

	b.WriteString("\nGENRES: ")
	if len(summary.Genres) > 0 {
		b.WriteString(strings.Join(capped(summary.Genres, 10), ", "))
	} else {
		b.WriteString("No clear genres detected")
	}
	b.WriteString("\n")

	b.WriteString("\nPOPULARITY STATS:\n")
	fmt.Fprintf(&b, "- Average track popularity: %.1f/100\n", summary.PopularityAvg)
	fmt.Fprintf(&b, "- Range: %d-%d\n", summary.PopularityMin, summary.PopularityMax)

	b.WriteString("\nAUDIO CHARACTERISTICS:\n")
	fmt.Fprintf(&b, "- Energy level: %.2f (0=chill, 1=intense)\n", summary.AvgEnergy)
	fmt.Fprintf(&b, "- Happiness factor: %.2f (0=sad, 1=happy)\n", summary.AvgValence)
	fmt.Fprintf(&b, "- Danceability: %.2f (0=not danceable, 1=very danceable)\n", summary.AvgDanceability)
	fmt.Fprintf(&b, "- Acousticness: %.2f (0=electronic, 1=acoustic)\n", summary.AvgAcousticness)

	b.WriteString("\nLISTENING PATTERNS BY TIME PERIOD:")
	for _, timeRange := range models.TimeRanges {
		stats := summary.Windows[timeRange]
		fmt.Fprintf(&b, "\n%s: %d tracks, %d artists", windowLabels[timeRange], stats.TrackCount, stats.ArtistCount)
	}

	b.WriteString("\n\nTOP ARTISTS BY TIME PERIOD:")
	for _, timeRange := range models.TimeRanges {
		names := artistNames(summary.Windows[timeRange].TopArtists, 3)
		if len(names) > 0 {
			fmt.Fprintf(&b, "\n%s: %s", windowLabels[timeRange], strings.Join(names, ", "))
		}
	}

	b.WriteString("\n\nTOP TRACKS BY TIME PERIOD:")
	for _, timeRange := range models.TimeRanges {
		lines := trackLines(summary.Windows[timeRange].TopTracks, 2)
		if len(lines) > 0 {
			fmt.Fprintf(&b, "\n%s: %s", windowLabels[timeRange], strings.Join(lines, "; "))
		}
	}

	b.WriteString("\n\nBased on this data, provide a witty, sarcastic analysis of their music taste in JSON format.")
	return b.String()
}

func capped(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func artistNames(artists []models.ArtistDigest, n int) []string {
	names := make([]string, 0, n)
	for _, a := range artists {
		if len(names) == n {
			break
		}
		names = append(names, a.Name)
	}
	return names
}

func trackLines(tracks []models.TrackDigest, n int) []string {
	lines := make([]string, 0, n)
	for _, t := range tracks {
		if len(lines) == n {
			break
		}
		lines = append(lines, fmt.Sprintf("%s by %s", t.Name, t.Artist))
	}
	return lines
}
