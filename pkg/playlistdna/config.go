package playlistdna

import (
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/analysis"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/dataset"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/features"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/normalize"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/sampling"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/storage"
)

type Config struct {
	DataDir     string
	DBPath      string
	Logger      Logger
	Storage     Storage
	Analysis    AnalysisProvider
	Playlists   PlaylistProvider
	Filter      analysis.FilterConfig
	Sampling    sampling.Config
	Range       normalize.Range
	Layout      features.Layout
	Kinds       []dataset.Kind
	Dedupe      bool
	TopSections int
}

type Option func(*Config)

func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.DataDir = dir
	}
}

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(s Storage) Option {
	return func(c *Config) {
		c.Storage = s
	}
}

func WithAnalysisProvider(p AnalysisProvider) Option {
	return func(c *Config) {
		c.Analysis = p
	}
}

func WithPlaylistProvider(p PlaylistProvider) Option {
	return func(c *Config) {
		c.Playlists = p
	}
}

func WithFilter(f analysis.FilterConfig) Option {
	return func(c *Config) {
		c.Filter = f
	}
}

func WithSampling(s sampling.Config) Option {
	return func(c *Config) {
		c.Sampling = s
	}
}

func WithScaleRange(r normalize.Range) Option {
	return func(c *Config) {
		c.Range = r
	}
}

func WithLayout(l features.Layout) Option {
	return func(c *Config) {
		c.Layout = l
	}
}

func WithKinds(kinds ...dataset.Kind) Option {
	return func(c *Config) {
		c.Kinds = kinds
	}
}

func WithDedupe(dedupe bool) Option {
	return func(c *Config) {
		c.Dedupe = dedupe
	}
}

func WithTopSections(n int) Option {
	return func(c *Config) {
		c.TopSections = n
	}
}

func defaultConfig() *Config {
	return &Config{
		DataDir:     "data",
		DBPath:      storage.DefaultDBFile,
		Filter:      analysis.DefaultFilterConfig(),
		Sampling:    sampling.DefaultConfig(),
		Range:       normalize.DefaultRange(),
		Layout:      features.DefaultLayout(),
		Kinds:       dataset.DefaultKinds(),
		Dedupe:      true,
		TopSections: 5,
	}
}
