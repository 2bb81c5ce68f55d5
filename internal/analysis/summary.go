package analysis

import (
	"sort"

	"github.com/sgoulden/vibecheck/pkg/models"
)

const (
	digestSize   = 5
	maxGenres    = 20
	totalWindows = 3
)

// Summarize reduces a collected dataset to the statistics the AI prompt and
// the fallback rules work from. It is a pure function: no I/O, no clock, and
// identical input always yields identical output.
func Summarize(data *models.MusicData) models.TasteSummary {
	summary := models.TasteSummary{
		Windows:             make(map[string]models.WindowStats, totalWindows),
		RecentlyPlayedCount: len(data.RecentlyPlayed),
		PopularityMin:       100,
	}

	trackIDs := make(map[string]bool)
	artistIDs := make(map[string]bool)
	artistWindows := make(map[string]int)
	genreSet := make(map[string]bool)
	var popularities []int

	for _, timeRange := range models.TimeRanges {
		tracks := data.TopTracks[timeRange]
		artists := data.TopArtists[timeRange]

		stats := models.WindowStats{
			TrackCount:  len(tracks),
			ArtistCount: len(artists),
			TopArtists:  artistDigests(artists),
			TopTracks:   trackDigests(tracks),
		}
		summary.Windows[timeRange] = stats

		for _, track := range tracks {
			trackIDs[track.ID] = true
			popularities = append(popularities, track.Popularity)
		}
		for _, artist := range artists {
			if !artistIDs[artist.ID] {
				artistIDs[artist.ID] = true
			}
			artistWindows[artist.ID]++
			for _, g := range artist.Genres {
				genreSet[g] = true
			}
		}
	}

	summary.UniqueTracks = len(trackIDs)
	summary.UniqueArtists = len(artistIDs)
	summary.GenreDiversity = len(genreSet)
	summary.Genres = cappedGenres(genreSet)

	if len(popularities) > 0 {
		total := 0
		for _, p := range popularities {
			total += p
			if p < summary.PopularityMin {
				summary.PopularityMin = p
			}
			if p > summary.PopularityMax {
				summary.PopularityMax = p
			}
		}
		summary.PopularityAvg = float64(total) / float64(len(popularities))
	} else {
		summary.PopularityMin = 0
	}
	summary.MainstreamScore = summary.PopularityAvg / 100

	if len(artistIDs) > 0 {
		repeaters := 0
		for _, count := range artistWindows {
			if count > 1 {
				repeaters++
			}
		}
		summary.ArtistLoyalty = float64(repeaters) / float64(len(artistIDs))
	}

	summarizeFeatures(&summary, data.AudioFeatures)
	return summary
}

func summarizeFeatures(summary *models.TasteSummary, features []*models.AudioFeatures) {
	var energy, valence, dance, acoustic, instrumental, speech float64
	n := 0
	for _, f := range features {
		if f == nil {
			continue
		}
		energy += f.Energy
		valence += f.Valence
		dance += f.Danceability
		acoustic += f.Acousticness
		instrumental += f.Instrumentalness
		speech += f.Speechiness
		n++
	}
	if n == 0 {
		return
	}
	d := float64(n)
	summary.AvgEnergy = energy / d
	summary.AvgValence = valence / d
	summary.AvgDanceability = dance / d
	summary.AvgAcousticness = acoustic / d
	summary.AvgInstrumentalness = instrumental / d
	summary.AvgSpeechiness = speech / d
}

func artistDigests(artists []models.Artist) []models.ArtistDigest {
	n := min(digestSize, len(artists))
	digests := make([]models.ArtistDigest, 0, n)
	for _, a := range artists[:n] {
		digests = append(digests, models.ArtistDigest{Name: a.Name, Genres: a.Genres})
	}
	return digests
}

func trackDigests(tracks []models.Track) []models.TrackDigest {
	n := min(digestSize, len(tracks))
	digests := make([]models.TrackDigest, 0, n)
	for _, t := range tracks[:n] {
		primary := ""
		if len(t.Artists) > 0 {
			primary = t.Artists[0]
		}
		digests = append(digests, models.TrackDigest{Name: t.Name, Artist: primary, Popularity: t.Popularity})
	}
	return digests
}

// cappedGenres returns the genre set sorted, capped at maxGenres. Sorting
// keeps the output deterministic regardless of map iteration order.
func cappedGenres(set map[string]bool) []string {
	genres := make([]string, 0, len(set))
	for g := range set {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	if len(genres) > maxGenres {
		genres = genres[:maxGenres]
	}
	return genres
}
