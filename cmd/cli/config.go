package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/himanishpuri/PlaylistDNA/pkg/logger"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/analysis"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/dataset"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/features"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/normalize"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/sampling"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/spotify"
)

const envPrefix = "PLAYLISTDNA"

type spotifyConfig struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	RedirectURL  string   `mapstructure:"redirect_url"`
	Auth         string   `mapstructure:"auth"` // "client" or "user"
	Scopes       []string `mapstructure:"scopes"`
}

type httpConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type retryConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Delay    time.Duration `mapstructure:"delay"`
	MaxDelay time.Duration `mapstructure:"max_delay"`
}

type pathsConfig struct {
	AnalysisCache string `mapstructure:"analysis_cache"`
}

type appConfig struct {
	LogLevel    string                `mapstructure:"log_level"`
	DataDir     string                `mapstructure:"data_dir"`
	DBPath      string                `mapstructure:"db"`
	Spotify     spotifyConfig         `mapstructure:"spotify"`
	HTTP        httpConfig            `mapstructure:"http"`
	Retry       retryConfig           `mapstructure:"retry"`
	Paths       pathsConfig           `mapstructure:"paths"`
	Filter      analysis.FilterConfig `mapstructure:"filter"`
	Sampling    sampling.Config       `mapstructure:"sampling"`
	Scale       normalize.Range       `mapstructure:"scale"`
	Layout      string                `mapstructure:"layout"`
	Kinds       string                `mapstructure:"kinds"`
	Dedupe      bool                  `mapstructure:"dedupe"`
	TopSections int                   `mapstructure:"top_sections"`
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("data_dir", "data")
	v.SetDefault("db", "playlistdna.sqlite3")

	v.SetDefault("spotify.auth", "client")
	v.SetDefault("spotify.redirect_url", "http://127.0.0.1:8888/callback")

	v.SetDefault("http.timeout", "30s")
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", "1s")
	v.SetDefault("retry.max_delay", "10s")
	v.SetDefault("paths.analysis_cache", "")

	f := analysis.DefaultFilterConfig()
	v.SetDefault("filter.min_confidence", f.MinConfidence)
	v.SetDefault("filter.min_duration", f.MinDuration)
	v.SetDefault("filter.step", f.Step)
	v.SetDefault("filter.min_segments", f.MinSegments)
	v.SetDefault("filter.floor", f.Floor)

	s := sampling.DefaultConfig()
	v.SetDefault("sampling.num_segments", s.NumSegments)
	v.SetDefault("sampling.num_bins", s.NumBins)
	v.SetDefault("sampling.seed", s.Seed)

	r := normalize.DefaultRange()
	v.SetDefault("scale.a", r.A)
	v.SetDefault("scale.b", r.B)

	v.SetDefault("layout", features.DefaultLayout().String())
	v.SetDefault("kinds", "tempo,segments,sections")
	v.SetDefault("dedupe", true)
	v.SetDefault("top_sections", 5)
}

func loadConfig(v *viper.Viper) (*appConfig, error) {
	var cfg appConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	return &cfg, nil
}

// serviceOptions turns the configuration into service options. Providers are
// added by the commands that need them.
func (c *appConfig) serviceOptions() ([]playlistdna.Option, error) {
	layout, err := features.ParseLayout(c.Layout)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	kinds, err := dataset.ParseKinds(c.Kinds)
	if err != nil {
		return nil, fmt.Errorf("kinds: %w", err)
	}
	return []playlistdna.Option{
		playlistdna.WithDataDir(c.DataDir),
		playlistdna.WithDBPath(c.DBPath),
		playlistdna.WithLogger(logger.GetLogger()),
		playlistdna.WithFilter(c.Filter),
		playlistdna.WithSampling(c.Sampling),
		playlistdna.WithScaleRange(c.Scale),
		playlistdna.WithLayout(layout),
		playlistdna.WithKinds(kinds...),
		playlistdna.WithDedupe(c.Dedupe),
		playlistdna.WithTopSections(c.TopSections),
	}, nil
}

func (c *appConfig) spotifyClientConfig() spotify.Config {
	return spotify.Config{
		ClientID:     c.Spotify.ClientID,
		ClientSecret: c.Spotify.ClientSecret,
		Timeout:      c.HTTP.Timeout,
		Retry: spotify.RetryConfig{
			Attempts:  c.Retry.Attempts,
			BaseDelay: c.Retry.Delay,
			MaxDelay:  c.Retry.MaxDelay,
		},
		Logger: logger.GetLogger(),
	}
}

// newSpotifyClient authenticates with the configured flow.
func (c *appConfig) newSpotifyClient(ctx context.Context) (*spotify.Client, error) {
	switch c.Spotify.Auth {
	case "", "client":
		return spotify.NewClientCredentials(ctx, c.spotifyClientConfig())
	case "user":
		u := spotify.UserAuth{
			ClientID:     c.Spotify.ClientID,
			ClientSecret: c.Spotify.ClientSecret,
			RedirectURL:  c.Spotify.RedirectURL,
			Scopes:       c.Spotify.Scopes,
		}
		return spotify.NewUserClient(ctx, u, c.spotifyClientConfig(), func(url string) {
			fmt.Printf("\n🔑 Open this URL to authorise access:\n   %s\n\n", url)
		})
	default:
		return nil, fmt.Errorf("unknown spotify.auth %q (want client or user)", c.Spotify.Auth)
	}
}

// analysisSource wraps the client with the on-disk cache when one is configured.
func (c *appConfig) analysisSource(client *spotify.Client) playlistdna.AnalysisProvider {
	if c.Paths.AnalysisCache == "" {
		return client
	}
	return &analysis.Cached{Dir: analysis.NewDirProvider(c.Paths.AnalysisCache), Upstream: client}
}

func newService(opts ...playlistdna.Option) (playlistdna.Service, error) {
	base, err := cfg.serviceOptions()
	if err != nil {
		return nil, err
	}
	return playlistdna.NewService(append(base, opts...)...)
}
