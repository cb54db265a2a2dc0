package spotify

import (
	"github.com/zmb3/spotify/v2"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
)

func convertAnalysis(trackID string, a *spotify.AudioAnalysis) (*models.TrackAnalysis, error) {
	if a == nil {
		return nil, models.NewPipelineError(models.KindUpstreamUnavailable, trackID, "empty analysis response", nil)
	}
	if len(a.Segments) == 0 {
		return nil, models.NewPipelineError(models.KindMissingField, trackID, "analysis has no segments", nil)
	}

	out := &models.TrackAnalysis{
		TrackID: trackID,
		Track: models.TrackOverview{
			Duration:        a.Track.Duration,
			Loudness:        a.Track.Loudness,
			Tempo:           a.Track.Tempo,
			TempoConfidence: a.Track.TempoConfidence,
			Key:             int(a.Track.Key),
			Mode:            int(a.Track.Mode),
			TimeSignature:   int(a.Track.TimeSignature),
		},
		Beats:    convertMarkers(a.Beats),
		Bars:     convertMarkers(a.Bars),
		Segments: make([]models.Segment, len(a.Segments)),
		Sections: make([]models.Section, len(a.Sections)),
	}
	for i, s := range a.Segments {
		out.Segments[i] = models.Segment{
			Start:      s.Start,
			Duration:   s.Duration,
			Confidence: s.Confidence,
			Pitches:    s.Pitches,
			Timbre:     s.Timbre,
		}
	}
	for i, s := range a.Sections {
		out.Sections[i] = models.Section{
			Marker:                  models.Marker{Start: s.Start, Duration: s.Duration, Confidence: s.Confidence},
			Loudness:                s.Loudness,
			Tempo:                   s.Tempo,
			TempoConfidence:         s.TempoConfidence,
			Key:                     int(s.Key),
			KeyConfidence:           s.KeyConfidence,
			Mode:                    int(s.Mode),
			ModeConfidence:          s.ModeConfidence,
			TimeSignature:           int(s.TimeSignature),
			TimeSignatureConfidence: s.TimeSignatureConfidence,
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func convertMarkers(ms []spotify.Marker) []models.Marker {
	out := make([]models.Marker, len(ms))
	for i, m := range ms {
		out[i] = models.Marker{Start: m.Start, Duration: m.Duration, Confidence: m.Confidence}
	}
	return out
}

func convertItem(item spotify.PlaylistItem) (models.TrackRef, bool) {
	t := item.Track.Track
	if t == nil || t.ID == "" || item.IsLocal {
		return models.TrackRef{}, false
	}
	ref := models.TrackRef{ID: string(t.ID), Name: t.Name}
	for _, a := range t.Artists {
		ref.Artists = append(ref.Artists, a.Name)
	}
	return ref, true
}

func convertPlaylist(p spotify.SimplePlaylist) models.Playlist {
	return models.Playlist{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Owner:       p.Owner.ID,
		TrackTotal:  int(p.Tracks.Total),
	}
}
