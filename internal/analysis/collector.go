package analysis

import (
	"context"
	"log/slog"

	"github.com/sgoulden/vibecheck/internal/spotify"
	"github.com/sgoulden/vibecheck/pkg/models"
)

const (
	topItemLimit       = 50
	recentlyPlayedSize = 50
)

// Collector gathers a user's listening data from Spotify. Every sub-fetch
// degrades to an empty slot on failure, so partial upstream outages still
// yield an analyzable dataset. Collect itself never returns an error.
type Collector struct {
	spotify spotify.Client
	logger  *slog.Logger
}

func NewCollector(sp spotify.Client, logger *slog.Logger) *Collector {
	return &Collector{spotify: sp, logger: logger}
}

// Collect fetches top tracks and artists for all three time ranges, the
// recently played history, and audio features for every distinct track seen.
// The feature fetch runs last: it needs the full set of track IDs.
func (c *Collector) Collect(ctx context.Context, accessToken string) *models.MusicData {
	data := models.NewMusicData()

	for _, timeRange := range models.TimeRanges {
		tracks, err := c.spotify.GetTopTracks(ctx, accessToken, timeRange, topItemLimit)
		if err != nil {
			c.logger.Warn("top tracks fetch failed, continuing without", "time_range", timeRange, "error", err)
			tracks = []models.Track{}
		}
		data.TopTracks[timeRange] = tracks

		artists, err := c.spotify.GetTopArtists(ctx, accessToken, timeRange, topItemLimit)
		if err != nil {
			c.logger.Warn("top artists fetch failed, continuing without", "time_range", timeRange, "error", err)
			artists = []models.Artist{}
		}
		data.TopArtists[timeRange] = artists
	}

	recent, err := c.spotify.GetRecentlyPlayed(ctx, accessToken, recentlyPlayedSize)
	if err != nil {
		c.logger.Warn("recently played fetch failed, continuing without", "error", err)
		recent = []models.PlayHistoryItem{}
	}
	data.RecentlyPlayed = recent

	trackIDs := distinctTrackIDs(data)
	if len(trackIDs) > 0 {
		features, err := c.spotify.GetAudioFeatures(ctx, accessToken, trackIDs)
		if err != nil {
			c.logger.Warn("audio features fetch failed, continuing without", "track_count", len(trackIDs), "error", err)
			features = []*models.AudioFeatures{}
		}
		data.AudioFeatures = features
	}

	return data
}

// distinctTrackIDs returns the union of track IDs across top tracks and the
// recently played history, in first-seen order.
func distinctTrackIDs(data *models.MusicData) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, timeRange := range models.TimeRanges {
		for _, track := range data.TopTracks[timeRange] {
			add(track.ID)
		}
	}
	for _, item := range data.RecentlyPlayed {
		add(item.Track.ID)
	}
	return ids
}
