package models

// ArtistDigest is the compact artist form embedded in AI prompts.
type ArtistDigest struct {
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// TrackDigest is the compact track form embedded in AI prompts.
type TrackDigest struct {
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Popularity int    `json:"popularity"`
}

// WindowStats summarises one time range of the collected dataset.
type WindowStats struct {
	TrackCount  int
	ArtistCount int
	TopArtists  []ArtistDigest
	TopTracks   []TrackDigest
}

// TasteSummary is the compact statistical reduction of a MusicData set.
// It is transient: computed once per analysis run, handed to the AI provider
// or the fallback rule engine, and never persisted.
type TasteSummary struct {
	UniqueTracks        int
	UniqueArtists       int
	Genres              []string
	PopularityAvg       float64
	PopularityMin       int
	PopularityMax       int
	Windows             map[string]WindowStats
	RecentlyPlayedCount int

	AvgEnergy           float64
	AvgValence          float64
	AvgDanceability     float64
	AvgAcousticness     float64
	AvgInstrumentalness float64
	AvgSpeechiness      float64

	// GenreDiversity is the distinct genre count before the prompt cap.
	GenreDiversity int
	// MainstreamScore is PopularityAvg / 100.
	MainstreamScore float64
	// ArtistLoyalty is the fraction of distinct artists appearing in more
	// than one time range.
	ArtistLoyalty float64
}

// HasListeningData reports whether any window or the recently-played list
// contained at least one track.
func (s TasteSummary) HasListeningData() bool {
	for _, w := range s.Windows {
		if w.TrackCount > 0 {
			return true
		}
	}
	return s.RecentlyPlayedCount > 0
}
