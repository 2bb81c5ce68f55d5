package models

import "time"

// Spotify top-item time ranges.
const (
	RangeShortTerm  = "short_term"
	RangeMediumTerm = "medium_term"
	RangeLongTerm   = "long_term"
)

// TimeRanges lists every window the collector fetches, shortest first.
var TimeRanges = []string{RangeShortTerm, RangeMediumTerm, RangeLongTerm}

// Artist is a Spotify artist as returned by the top-items endpoint.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

// Track is a Spotify track. Artists holds the artist names in billing
// order; the primary artist comes first. Popularity is 0-100.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Popularity int      `json:"popularity"`
}

// PlayHistoryItem is one entry from the recently-played endpoint.
type PlayHistoryItem struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"played_at"`
}

// AudioFeatures holds Spotify's per-track feature vector. All values are 0-1.
type AudioFeatures struct {
	ID               string  `json:"id"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Speechiness      float64 `json:"speechiness"`
}

// MusicData is the raw dataset one collection run produces. Maps are keyed by
// time range. Slots for failed sub-fetches hold empty slices, never nil maps,
// so downstream code can iterate without nil checks. AudioFeatures may contain
// nil entries for tracks Spotify has no features for.
type MusicData struct {
	TopTracks      map[string][]Track
	TopArtists     map[string][]Artist
	RecentlyPlayed []PlayHistoryItem
	AudioFeatures  []*AudioFeatures
}

// NewMusicData returns a MusicData with every slot initialised empty.
func NewMusicData() *MusicData {
	d := &MusicData{
		TopTracks:      make(map[string][]Track, len(TimeRanges)),
		TopArtists:     make(map[string][]Artist, len(TimeRanges)),
		RecentlyPlayed: []PlayHistoryItem{},
		AudioFeatures:  []*AudioFeatures{},
	}
	for _, tr := range TimeRanges {
		d.TopTracks[tr] = []Track{}
		d.TopArtists[tr] = []Artist{}
	}
	return d
}
