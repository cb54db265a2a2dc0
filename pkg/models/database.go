package models

import "time"

// Run is a single collection run registered in the catalog.
type Run struct {
	ID        string // UUID of the run
	DataDir   string // Dataset root the run wrote to
	StartedAt time.Time
}

// TrackRecord is the catalog entry of one persisted track.
type TrackRecord struct {
	RunID         string
	Playlist      string  // Playlist label (directory name)
	TrackID       string  // Upstream track ID
	Name          string  // Track name
	Artists       string  // Comma-joined artist names
	FileStem      string  // Sanitised file stem inside the playlist directory
	RawSegments   int     // Segments in the upstream analysis
	KeptSegments  int     // Segments kept by the filter
	MinConfidence float64 // Confidence threshold the filter settled on
	MinDuration   float64 // Duration threshold the filter settled on
	Relaxations   int     // Number of times the thresholds were lowered
	CreatedAt     time.Time
}
