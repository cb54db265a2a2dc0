package playlistdna

import (
	"context"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/features"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/normalize"
)

type Service interface {
	ListPlaylists(ctx context.Context, users, keywords, exclude []string) ([]models.Playlist, error)
	Collect(ctx context.Context, selections []PlaylistSelection) (*CollectReport, error)
	Transform(ctx context.Context, dataDir string, bounds *normalize.Bounds) (*features.Result, error)
	Stats(ctx context.Context, dataDir string) ([]TrackStats, error)
	GetRun(runID string) (*models.Run, error)
	ListRuns() ([]models.Run, error)
	ListTracks(runID string) ([]models.TrackRecord, error)
	CountTracks(runID string) (int, error)
	DeleteRun(runID string) error
	PurgeRun(runID string) (*PurgeReport, error)
	Close() error
}

type Storage interface {
	RegisterRun(dataDir string) (string, error)
	StoreTracks(records []models.TrackRecord) error
	GetRun(runID string) (*models.Run, error)
	ListRuns() ([]models.Run, error)
	ListTracks(runID, playlist string) ([]models.TrackRecord, error)
	CountTracks(runID string) (int, error)
	DeleteRun(runID string) error
	Close() error
}

// AnalysisProvider returns the audio analysis of a track.
type AnalysisProvider interface {
	GetAnalysis(ctx context.Context, trackID string) (*models.TrackAnalysis, error)
}

// PlaylistProvider lists playlists and their tracks.
type PlaylistProvider interface {
	UserPlaylists(ctx context.Context, user string) ([]models.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.TrackRef, error)
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
