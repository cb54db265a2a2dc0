package playlistdna

import (
	"github.com/himanishpuri/PlaylistDNA/pkg/models"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/features"
)

// PlaylistSelection is a playlist to collect and the label its tracks get.
type PlaylistSelection struct {
	Playlist models.Playlist
	Label    string // Directory name; defaults to the sanitised playlist name
}

// SkippedTrack is a track left out of a run and the reason.
type SkippedTrack struct {
	Playlist string // Label
	TrackID  string
	Name     string
	Reason   error
}

// CollectReport summarises a collection run.
type CollectReport struct {
	RunID   string
	DataDir string
	Labels  []string             // Labels written, in selection order
	Tracks  []models.TrackRecord // Persisted tracks
	Skipped []SkippedTrack
	Fetched int // Tracks listed by the playlists before deduplication
}

// PurgeReport lists the playlist directories a purge removed and those it
// kept because another run still uses them.
type PurgeReport struct {
	RunID   string
	DataDir string
	Removed []string
	Kept    []string
}

// TrackStats holds the summary statistics of one persisted track.
type TrackStats struct {
	Playlist string
	Stem     string
	Segments *features.TimbreStats
	Sections []features.SectionRow
}
