// Package spotify wraps the Spotify Web API and accounts service. It covers
// the authorization code flow, token refresh, and the listening data reads
// the taste analysis needs.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sgoulden/vibecheck/internal/config"
	"github.com/sgoulden/vibecheck/pkg/models"
)

var (
	ErrUpstreamAuth = errors.New("spotify rejected credentials")
	ErrForbidden    = errors.New("spotify denied access")
	ErrRateLimited  = errors.New("spotify rate limit exceeded")
	ErrUnavailable  = errors.New("spotify unavailable")
)

const (
	defaultAPIBaseURL  = "https://api.spotify.com/v1"
	defaultAccountsURL = "https://accounts.spotify.com"

	// Spotify caps top-item and recently-played pages at 50, and the
	// audio-features endpoint at 100 IDs per call.
	maxItemLimit     = 50
	featureBatchSize = 100

	oauthScopes = "user-read-email user-read-private user-top-read user-read-recently-played"
)

// TokenInfo is the token set returned by the accounts service.
type TokenInfo struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// UserProfile is the Spotify account behind a token.
type UserProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Images      []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// Client is the Spotify API interface. All upstream calls go through here.
type Client interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*TokenInfo, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenInfo, error)
	GetCurrentUser(ctx context.Context, accessToken string) (*UserProfile, error)
	GetTopTracks(ctx context.Context, accessToken, timeRange string, limit int) ([]models.Track, error)
	GetTopArtists(ctx context.Context, accessToken, timeRange string, limit int) ([]models.Artist, error)
	GetRecentlyPlayed(ctx context.Context, accessToken string, limit int) ([]models.PlayHistoryItem, error)
	GetAudioFeatures(ctx context.Context, accessToken string, trackIDs []string) ([]*models.AudioFeatures, error)
}

// HTTPClient implements Client against the real Spotify endpoints using resty.
type HTTPClient struct {
	// APIBaseURL and AccountsURL are overridable for tests.
	APIBaseURL  string
	AccountsURL string

	clientID     string
	clientSecret string
	redirectURI  string
	http         *resty.Client
}

// NewHTTPClient creates a Spotify client from config. Transient upstream
// failures are retried with backoff, honoring Retry-After on 429s.
func NewHTTPClient(cfg config.SpotifyConfig) *HTTPClient {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == 429 || r.StatusCode() >= 500
		}).
		SetRetryAfter(func(c *resty.Client, r *resty.Response) (time.Duration, error) {
			if secs := r.Header().Get("Retry-After"); secs != "" {
				if n, err := strconv.Atoi(secs); err == nil {
					return time.Duration(n) * time.Second, nil
				}
			}
			return 0, nil
		})

	return &HTTPClient{
		APIBaseURL:   defaultAPIBaseURL,
		AccountsURL:  defaultAccountsURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		http:         client,
	}
}

// AuthURL builds the authorization URL the user is redirected to.
func (c *HTTPClient) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.redirectURI)
	q.Set("scope", oauthScopes)
	q.Set("state", state)
	return c.AccountsURL + "/authorize?" + q.Encode()
}

// ExchangeCode trades an authorization code for a token set.
func (c *HTTPClient) ExchangeCode(ctx context.Context, code string) (*TokenInfo, error) {
	return c.tokenRequest(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.redirectURI},
	})
}

// RefreshToken obtains a fresh access token. Spotify may omit the refresh
// token from the response, in which case the old one stays valid and is
// carried forward.
func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenInfo, error) {
	info, err := c.tokenRequest(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
	if err != nil {
		return nil, err
	}
	if info.RefreshToken == "" {
		info.RefreshToken = refreshToken
	}
	return info, nil
}

func (c *HTTPClient) tokenRequest(ctx context.Context, form url.Values) (*TokenInfo, error) {
	var info TokenInfo
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(form.Encode()).
		SetResult(&info).
		Post(c.AccountsURL + "/api/token")
	if err != nil {
		return nil, fmt.Errorf("spotify token request: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	if info.AccessToken == "" {
		return nil, fmt.Errorf("spotify token response missing access_token: %w", ErrUnavailable)
	}
	return &info, nil
}

// GetCurrentUser fetches the profile of the token's owner.
func (c *HTTPClient) GetCurrentUser(ctx context.Context, accessToken string) (*UserProfile, error) {
	var profile UserProfile
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&profile).
		Get(c.APIBaseURL + "/me")
	if err != nil {
		return nil, fmt.Errorf("spotify get current user: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	return &profile, nil
}

type topTracksResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
		Popularity int `json:"popularity"`
	} `json:"items"`
}

// GetTopTracks fetches the user's top tracks for a time range. Limit is
// clamped to the API maximum of 50.
func (c *HTTPClient) GetTopTracks(ctx context.Context, accessToken, timeRange string, limit int) ([]models.Track, error) {
	var body topTracksResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"time_range": timeRange,
			"limit":      strconv.Itoa(clampLimit(limit)),
		}).
		SetResult(&body).
		Get(c.APIBaseURL + "/me/top/tracks")
	if err != nil {
		return nil, fmt.Errorf("spotify top tracks: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}

	tracks := make([]models.Track, 0, len(body.Items))
	for _, item := range body.Items {
		artists := make([]string, 0, len(item.Artists))
		for _, a := range item.Artists {
			artists = append(artists, a.Name)
		}
		tracks = append(tracks, models.Track{
			ID:         item.ID,
			Name:       item.Name,
			Artists:    artists,
			Popularity: item.Popularity,
		})
	}
	return tracks, nil
}

type topArtistsResponse struct {
	Items []struct {
		ID         string   `json:"id"`
		Name       string   `json:"name"`
		Genres     []string `json:"genres"`
		Popularity int      `json:"popularity"`
	} `json:"items"`
}

// GetTopArtists fetches the user's top artists for a time range.
func (c *HTTPClient) GetTopArtists(ctx context.Context, accessToken, timeRange string, limit int) ([]models.Artist, error) {
	var body topArtistsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"time_range": timeRange,
			"limit":      strconv.Itoa(clampLimit(limit)),
		}).
		SetResult(&body).
		Get(c.APIBaseURL + "/me/top/artists")
	if err != nil {
		return nil, fmt.Errorf("spotify top artists: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}

	artists := make([]models.Artist, 0, len(body.Items))
	for _, item := range body.Items {
		artists = append(artists, models.Artist{
			ID:         item.ID,
			Name:       item.Name,
			Genres:     item.Genres,
			Popularity: item.Popularity,
		})
	}
	return artists, nil
}

type recentlyPlayedResponse struct {
	Items []struct {
		Track struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Popularity int `json:"popularity"`
		} `json:"track"`
		PlayedAt time.Time `json:"played_at"`
	} `json:"items"`
}

// GetRecentlyPlayed fetches the user's listening history, newest first.
func (c *HTTPClient) GetRecentlyPlayed(ctx context.Context, accessToken string, limit int) ([]models.PlayHistoryItem, error) {
	var body recentlyPlayedResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("limit", strconv.Itoa(clampLimit(limit))).
		SetResult(&body).
		Get(c.APIBaseURL + "/me/player/recently-played")
	if err != nil {
		return nil, fmt.Errorf("spotify recently played: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}

	items := make([]models.PlayHistoryItem, 0, len(body.Items))
	for _, item := range body.Items {
		artists := make([]string, 0, len(item.Track.Artists))
		for _, a := range item.Track.Artists {
			artists = append(artists, a.Name)
		}
		items = append(items, models.PlayHistoryItem{
			Track: models.Track{
				ID:         item.Track.ID,
				Name:       item.Track.Name,
				Artists:    artists,
				Popularity: item.Track.Popularity,
			},
			PlayedAt: item.PlayedAt,
		})
	}
	return items, nil
}

type audioFeaturesResponse struct {
	AudioFeatures []*models.AudioFeatures `json:"audio_features"`
}

// GetAudioFeatures fetches audio features in batches of 100 track IDs. The
// API returns null entries for tracks it has no features for; those are
// dropped.
func (c *HTTPClient) GetAudioFeatures(ctx context.Context, accessToken string, trackIDs []string) ([]*models.AudioFeatures, error) {
	features := make([]*models.AudioFeatures, 0, len(trackIDs))
	for start := 0; start < len(trackIDs); start += featureBatchSize {
		end := start + featureBatchSize
		if end > len(trackIDs) {
			end = len(trackIDs)
		}

		var body audioFeaturesResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(accessToken).
			SetQueryParam("ids", strings.Join(trackIDs[start:end], ",")).
			SetResult(&body).
			Get(c.APIBaseURL + "/audio-features")
		if err != nil {
			return nil, fmt.Errorf("spotify audio features: %w", err)
		}
		if resp.IsError() {
			return nil, statusError(resp)
		}

		for _, f := range body.AudioFeatures {
			if f != nil {
				features = append(features, f)
			}
		}
	}
	return features, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxItemLimit {
		return maxItemLimit
	}
	return limit
}

func statusError(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == 401:
		return fmt.Errorf("spotify returned 401: %w", ErrUpstreamAuth)
	case resp.StatusCode() == 403:
		return fmt.Errorf("spotify returned 403: %w", ErrForbidden)
	case resp.StatusCode() == 429:
		return fmt.Errorf("spotify returned 429: %w", ErrRateLimited)
	default:
		return fmt.Errorf("spotify returned %d: %w", resp.StatusCode(), ErrUnavailable)
	}
}

var _ Client = (*HTTPClient)(nil)
