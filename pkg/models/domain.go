package models

import (
	"fmt"
	"strings"
)

// VectorLen is the length of every pitch and timbre vector in an analysis.
const VectorLen = 12

// Marker is a timed interval of a track analysis (beats, bars).
type Marker struct {
	Start      float64 // Start time in seconds
	Duration   float64 // Duration in seconds
	Confidence float64 // Detection confidence in [0, 1]
}

// Segment is a short, roughly uniform slice of audio with its feature vectors.
type Segment struct {
	Start       float64   // Start time in seconds
	StartMinute string    // Start time formatted as mm:ss:cc
	Duration    float64   // Duration in seconds
	Confidence  float64   // Segmentation confidence in [0, 1]
	Pitches     []float64 // Pitch-class energy, VectorLen elements
	Timbre      []float64 // Timbre descriptor, VectorLen elements
}

// Clone returns a deep copy of the segment.
func (s Segment) Clone() Segment {
	out := s
	out.Pitches = append([]float64(nil), s.Pitches...)
	out.Timbre = append([]float64(nil), s.Timbre...)
	return out
}

// Section is a large structural part of a track (verse, chorus, ...).
type Section struct {
	Marker
	Loudness                float64
	Tempo                   float64
	TempoConfidence         float64
	Key                     int // Pitch class 0-11, -1 when no key was detected
	KeyConfidence           float64
	Mode                    int // 1 major, 0 minor
	ModeConfidence          float64
	TimeSignature           int
	TimeSignatureConfidence float64
}

// End returns the end time of the section in seconds.
func (s Section) End() float64 {
	return s.Start + s.Duration
}

// TrackOverview holds the scalar, whole-track analysis fields.
type TrackOverview struct {
	Duration        float64
	Loudness        float64
	Tempo           float64
	TempoConfidence float64
	Key             int
	Mode            int
	TimeSignature   int
}

// TrackAnalysis is the full audio analysis of a single track.
type TrackAnalysis struct {
	TrackID  string
	Track    TrackOverview
	Beats    []Marker
	Bars     []Marker
	Segments []Segment
	Sections []Section
}

// Validate reports a MissingField error when any segment lacks a full pitch or timbre vector.
func (a *TrackAnalysis) Validate() error {
	if a == nil {
		return NewPipelineError(KindMissingField, "", "analysis is nil", nil)
	}
	for i, seg := range a.Segments {
		if len(seg.Pitches) != VectorLen {
			return NewPipelineError(KindMissingField, a.TrackID,
				fmt.Sprintf("segment %d has %d pitches, want %d", i, len(seg.Pitches), VectorLen), nil)
		}
		if len(seg.Timbre) != VectorLen {
			return NewPipelineError(KindMissingField, a.TrackID,
				fmt.Sprintf("segment %d has %d timbre values, want %d", i, len(seg.Timbre), VectorLen), nil)
		}
	}
	return nil
}

// Playlist describes a playlist as listed by the upstream service.
type Playlist struct {
	ID          string // Upstream playlist ID
	Name        string // Display name
	Description string // Free-text description
	Owner       string // Owner user ID
	TrackTotal  int    // Number of items reported by the service
}

// TrackRef identifies a track inside a playlist.
type TrackRef struct {
	ID      string
	Name    string
	Artists []string
}

// ArtistNames joins the artist names the way they appear in file stems.
func (t TrackRef) ArtistNames() string {
	return strings.Join(t.Artists, ", ")
}
