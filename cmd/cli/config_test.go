package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/analysis"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/sampling"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/spotify"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	tv := viper.New()
	tv.SetEnvPrefix(envPrefix)
	tv.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	tv.AutomaticEnv()
	setDefaults(tv)
	return tv
}

func TestLoadConfigDefaults(t *testing.T) {
	c, err := loadConfig(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, "playlistdna.sqlite3", c.DBPath)
	assert.Equal(t, "client", c.Spotify.Auth)
	assert.Equal(t, analysis.DefaultFilterConfig(), c.Filter)
	assert.Equal(t, sampling.DefaultConfig(), c.Sampling)
	assert.Equal(t, -1.0, c.Scale.A)
	assert.Equal(t, 1.0, c.Scale.B)
	assert.Equal(t, 30*time.Second, c.HTTP.Timeout)
	assert.Equal(t, 3, c.Retry.Attempts)
	assert.Equal(t, time.Second, c.Retry.Delay)
	assert.True(t, c.Dedupe)
	assert.Equal(t, 5, c.TopSections)

	opts, err := c.serviceOptions()
	require.NoError(t, err)
	assert.NotEmpty(t, opts)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlistdna.yaml")
	yml := `
data_dir: /srv/datasets
spotify:
  client_id: abc
  auth: user
filter:
  min_confidence: 0.6
sampling:
  num_segments: 60
  num_bins: 6
scale:
  a: 0
  b: 1
http:
  timeout: 5s
layout: pitches,timbre
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("PLAYLISTDNA_SAMPLING_SEED", "42")
	t.Setenv("PLAYLISTDNA_RETRY_ATTEMPTS", "7")

	tv := newTestViper(t)
	tv.SetConfigFile(path)
	require.NoError(t, tv.ReadInConfig())

	c, err := loadConfig(tv)
	require.NoError(t, err)

	assert.Equal(t, "/srv/datasets", c.DataDir)
	assert.Equal(t, "abc", c.Spotify.ClientID)
	assert.Equal(t, "user", c.Spotify.Auth)
	assert.Equal(t, 0.6, c.Filter.MinConfidence)
	assert.Equal(t, analysis.DefaultFilterConfig().MinDuration, c.Filter.MinDuration)
	assert.Equal(t, sampling.Config{NumSegments: 60, NumBins: 6, Seed: 42}, c.Sampling)
	assert.Equal(t, 0.0, c.Scale.A)
	assert.Equal(t, 5*time.Second, c.HTTP.Timeout)
	assert.Equal(t, 7, c.Retry.Attempts)
	assert.Equal(t, "pitches,timbre", c.Layout)

	sc := c.spotifyClientConfig()
	assert.Equal(t, 5*time.Second, sc.Timeout)
	assert.Equal(t, 7, sc.Retry.Attempts)
}

func TestServiceOptionsRejectsBadValues(t *testing.T) {
	c, err := loadConfig(newTestViper(t))
	require.NoError(t, err)

	bad := *c
	bad.Layout = "timbre,loudness"
	_, err = bad.serviceOptions()
	assert.Error(t, err)

	bad = *c
	bad.Kinds = "segments,chorus"
	_, err = bad.serviceOptions()
	assert.Error(t, err)
}

func TestAnalysisSource(t *testing.T) {
	c, err := loadConfig(newTestViper(t))
	require.NoError(t, err)

	_, direct := c.analysisSource(nil).(*spotify.Client)
	assert.True(t, direct)

	c.Paths.AnalysisCache = t.TempDir()
	cached, ok := c.analysisSource(nil).(*analysis.Cached)
	require.True(t, ok)
	assert.Equal(t, c.Paths.AnalysisCache, cached.Dir.Dir)
}

func TestUnknownAuthFlow(t *testing.T) {
	c, err := loadConfig(newTestViper(t))
	require.NoError(t, err)
	c.Spotify.Auth = "device"

	_, err = c.newSpotifyClient(context.Background())
	assert.ErrorContains(t, err, "unknown spotify.auth")
}

func TestExplicitSelections(t *testing.T) {
	sels, err := explicitSelections(
		[]string{
			"37i9dQZF1DXcBWIGoYBM5M",
			"spotify:playlist:37i9dQZF1DWXRqgorJj26U",
			"https://open.spotify.com/playlist/37i9dQZF1DX4sWSpwq3LiO?si=abc",
		},
		[]string{"pop", "rock"},
	)
	require.NoError(t, err)
	require.Len(t, sels, 3)

	assert.Equal(t, "37i9dQZF1DXcBWIGoYBM5M", sels[0].Playlist.ID)
	assert.Equal(t, "pop", sels[0].Label)
	assert.Equal(t, "37i9dQZF1DWXRqgorJj26U", sels[1].Playlist.ID)
	assert.Equal(t, "rock", sels[1].Label)
	assert.Equal(t, "37i9dQZF1DX4sWSpwq3LiO", sels[2].Playlist.ID)
	assert.Empty(t, sels[2].Label)

	_, err = explicitSelections([]string{"spotify:track:4uLU6hMCjMI75M1A2tKUQC"}, nil)
	assert.Error(t, err)

	_, err = explicitSelections([]string{"37i9dQZF1DXcBWIGoYBM5M"}, []string{"a", "b"})
	assert.Error(t, err)

	_, err = explicitSelections([]string{"not an id"}, nil)
	assert.Error(t, err)
}

func TestFlagValue(t *testing.T) {
	assert.Equal(t, "a,b", flagValue([]any{"a", "b"}))
	assert.Equal(t, "x,y", flagValue([]string{"x", "y"}))
	assert.Equal(t, "0.5", flagValue(0.5))
	assert.Equal(t, "50", flagValue(50))
}
