// Package spotify implements the analysis and playlist providers over the
// Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/himanishpuri/PlaylistDNA/pkg/logger"
	"github.com/himanishpuri/PlaylistDNA/pkg/models"
)

// Largest pages the playlist-items and user-playlists endpoints return.
const (
	PageSize     = 100
	UserPageSize = 50
)

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

type Config struct {
	ClientID     string
	ClientSecret string
	Timeout      time.Duration // Per-request timeout of the HTTP client
	Retry        RetryConfig
	Logger       Logger
}

func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
		Retry:   DefaultRetryConfig(),
	}
}

// api is the subset of *spotify.Client the providers call.
type api interface {
	GetAudioAnalysis(ctx context.Context, id spotify.ID) (*spotify.AudioAnalysis, error)
	GetPlaylistItems(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error)
	GetPlaylistsForUser(ctx context.Context, userID string, opts ...spotify.RequestOption) (*spotify.SimplePlaylistPage, error)
}

// Client serves analyses and playlists from the Web API.
type Client struct {
	api   api
	retry RetryConfig
	log   Logger
	sleep func(context.Context, time.Duration) error
}

// NewClientCredentials authenticates with the client-credentials flow. The
// token source refreshes the app token on expiry.
func NewClientCredentials(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify client id and secret are required")
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	if _, err := cc.Token(ctx); err != nil {
		return nil, models.NewPipelineError(models.KindUpstreamUnavailable, "", "client credentials token", err)
	}
	hc := cc.Client(ctx)
	hc.Timeout = cfg.Timeout
	return NewFromHTTP(hc, cfg), nil
}

// NewFromToken builds a client from a user token obtained through Authorize.
func NewFromToken(ctx context.Context, auth *spotifyauth.Authenticator, tok *oauth2.Token, cfg Config) *Client {
	hc := auth.Client(ctx, tok)
	hc.Timeout = cfg.Timeout
	return NewFromHTTP(hc, cfg)
}

// NewFromHTTP wraps an already authorised HTTP client.
func NewFromHTTP(hc *http.Client, cfg Config) *Client {
	return newClient(spotify.New(hc, spotify.WithRetry(true)), cfg)
}

func newClient(a api, cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	return &Client{api: a, retry: cfg.Retry, log: log, sleep: sleepCtx}
}

// GetAnalysis fetches the audio analysis of a track.
func (c *Client) GetAnalysis(ctx context.Context, trackID string) (*models.TrackAnalysis, error) {
	var raw *spotify.AudioAnalysis
	err := c.do(ctx, "audio analysis "+trackID, func() error {
		var err error
		raw, err = c.api.GetAudioAnalysis(ctx, spotify.ID(trackID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return convertAnalysis(trackID, raw)
}

// PlaylistTracks pages through a playlist and returns its tracks. Local files,
// episodes and removed tracks have no ID and are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]models.TrackRef, error) {
	var out []models.TrackRef
	for offset := 0; ; {
		var page *spotify.PlaylistItemPage
		err := c.do(ctx, fmt.Sprintf("playlist %s items @%d", playlistID, offset), func() error {
			var err error
			page, err = c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(PageSize), spotify.Offset(offset))
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if ref, ok := convertItem(item); ok {
				out = append(out, ref)
			}
		}
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= int(page.Total) {
			break
		}
	}
	c.log.Debugf("playlist %s: %d tracks", playlistID, len(out))
	return out, nil
}

// UserPlaylists pages through the public playlists of user.
func (c *Client) UserPlaylists(ctx context.Context, user string) ([]models.Playlist, error) {
	var out []models.Playlist
	for offset := 0; ; {
		var page *spotify.SimplePlaylistPage
		err := c.do(ctx, fmt.Sprintf("playlists of %s @%d", user, offset), func() error {
			var err error
			page, err = c.api.GetPlaylistsForUser(ctx, user, spotify.Limit(UserPageSize), spotify.Offset(offset))
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, p := range page.Playlists {
			out = append(out, convertPlaylist(p))
		}
		offset += len(page.Playlists)
		if len(page.Playlists) == 0 || offset >= int(page.Total) {
			break
		}
	}
	return out, nil
}
