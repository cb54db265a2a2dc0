package analysis

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
)

// Wire records of the audio-analysis response. Required scalars are pointers so
// an absent key is told apart from a zero value.

type analysisRecord struct {
	Track    *overviewRecord `json:"track"`
	Beats    []markerRecord  `json:"beats"`
	Bars     []markerRecord  `json:"bars"`
	Segments []segmentRecord `json:"segments"`
	Sections []sectionRecord `json:"sections"`
}

type overviewRecord struct {
	Duration        float64  `json:"duration"`
	Loudness        float64  `json:"loudness"`
	Tempo           *float64 `json:"tempo"`
	TempoConfidence float64  `json:"tempo_confidence"`
	Key             int      `json:"key"`
	Mode            int      `json:"mode"`
	TimeSignature   int      `json:"time_signature"`
}

type markerRecord struct {
	Start      *float64 `json:"start"`
	Duration   *float64 `json:"duration"`
	Confidence float64  `json:"confidence"`
}

type segmentRecord struct {
	Start      *float64  `json:"start"`
	Duration   *float64  `json:"duration"`
	Confidence *float64  `json:"confidence"`
	Pitches    []float64 `json:"pitches"`
	Timbre     []float64 `json:"timbre"`
}

type sectionRecord struct {
	Start                   *float64 `json:"start"`
	Duration                *float64 `json:"duration"`
	Confidence              float64  `json:"confidence"`
	Loudness                float64  `json:"loudness"`
	Tempo                   float64  `json:"tempo"`
	TempoConfidence         float64  `json:"tempo_confidence"`
	Key                     int      `json:"key"`
	KeyConfidence           float64  `json:"key_confidence"`
	Mode                    int      `json:"mode"`
	ModeConfidence          float64  `json:"mode_confidence"`
	TimeSignature           int      `json:"time_signature"`
	TimeSignatureConfidence float64  `json:"time_signature_confidence"`
}

func missing(trackID, field string) error {
	return models.NewPipelineError(models.KindMissingField, trackID, "missing "+field, nil)
}

// Decode reads an audio-analysis JSON document into a validated TrackAnalysis.
// Malformed JSON is reported as UpstreamUnavailable, absent attributes as MissingField.
func Decode(trackID string, r io.Reader) (*models.TrackAnalysis, error) {
	var rec analysisRecord
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, models.NewPipelineError(models.KindUpstreamUnavailable, trackID, "malformed analysis JSON", err)
	}
	return rec.toModel(trackID)
}

func (rec *analysisRecord) toModel(trackID string) (*models.TrackAnalysis, error) {
	if rec.Track == nil {
		return nil, missing(trackID, "track")
	}
	if rec.Track.Tempo == nil {
		return nil, missing(trackID, "track.tempo")
	}
	if rec.Segments == nil {
		return nil, missing(trackID, "segments")
	}

	out := &models.TrackAnalysis{
		TrackID: trackID,
		Track: models.TrackOverview{
			Duration:        rec.Track.Duration,
			Loudness:        rec.Track.Loudness,
			Tempo:           *rec.Track.Tempo,
			TempoConfidence: rec.Track.TempoConfidence,
			Key:             rec.Track.Key,
			Mode:            rec.Track.Mode,
			TimeSignature:   rec.Track.TimeSignature,
		},
	}

	var err error
	if out.Beats, err = toMarkers(trackID, "beats", rec.Beats); err != nil {
		return nil, err
	}
	if out.Bars, err = toMarkers(trackID, "bars", rec.Bars); err != nil {
		return nil, err
	}

	out.Segments = make([]models.Segment, 0, len(rec.Segments))
	for i, s := range rec.Segments {
		switch {
		case s.Start == nil:
			return nil, missing(trackID, fmt.Sprintf("segments[%d].start", i))
		case s.Duration == nil:
			return nil, missing(trackID, fmt.Sprintf("segments[%d].duration", i))
		case s.Confidence == nil:
			return nil, missing(trackID, fmt.Sprintf("segments[%d].confidence", i))
		}
		out.Segments = append(out.Segments, models.Segment{
			Start:      *s.Start,
			Duration:   *s.Duration,
			Confidence: *s.Confidence,
			Pitches:    s.Pitches,
			Timbre:     s.Timbre,
		})
	}

	out.Sections = make([]models.Section, 0, len(rec.Sections))
	for i, s := range rec.Sections {
		if s.Start == nil || s.Duration == nil {
			return nil, missing(trackID, fmt.Sprintf("sections[%d].start/duration", i))
		}
		out.Sections = append(out.Sections, models.Section{
			Marker:                  models.Marker{Start: *s.Start, Duration: *s.Duration, Confidence: s.Confidence},
			Loudness:                s.Loudness,
			Tempo:                   s.Tempo,
			TempoConfidence:         s.TempoConfidence,
			Key:                     s.Key,
			KeyConfidence:           s.KeyConfidence,
			Mode:                    s.Mode,
			ModeConfidence:          s.ModeConfidence,
			TimeSignature:           s.TimeSignature,
			TimeSignatureConfidence: s.TimeSignatureConfidence,
		})
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func toMarkers(trackID, field string, recs []markerRecord) ([]models.Marker, error) {
	out := make([]models.Marker, 0, len(recs))
	for i, m := range recs {
		if m.Start == nil || m.Duration == nil {
			return nil, missing(trackID, fmt.Sprintf("%s[%d].start/duration", field, i))
		}
		out = append(out, models.Marker{Start: *m.Start, Duration: *m.Duration, Confidence: m.Confidence})
	}
	return out, nil
}

// Encode writes a TrackAnalysis in the same JSON shape Decode reads.
func Encode(w io.Writer, a *models.TrackAnalysis) error {
	tempo := a.Track.Tempo
	rec := analysisRecord{
		Track: &overviewRecord{
			Duration:        a.Track.Duration,
			Loudness:        a.Track.Loudness,
			Tempo:           &tempo,
			TempoConfidence: a.Track.TempoConfidence,
			Key:             a.Track.Key,
			Mode:            a.Track.Mode,
			TimeSignature:   a.Track.TimeSignature,
		},
		Beats:    fromMarkers(a.Beats),
		Bars:     fromMarkers(a.Bars),
		Segments: make([]segmentRecord, len(a.Segments)),
		Sections: make([]sectionRecord, len(a.Sections)),
	}
	for i := range a.Segments {
		s := &a.Segments[i]
		rec.Segments[i] = segmentRecord{
			Start:      &s.Start,
			Duration:   &s.Duration,
			Confidence: &s.Confidence,
			Pitches:    s.Pitches,
			Timbre:     s.Timbre,
		}
	}
	for i := range a.Sections {
		s := &a.Sections[i]
		rec.Sections[i] = sectionRecord{
			Start:                   &s.Start,
			Duration:                &s.Duration,
			Confidence:              s.Confidence,
			Loudness:                s.Loudness,
			Tempo:                   s.Tempo,
			TempoConfidence:         s.TempoConfidence,
			Key:                     s.Key,
			KeyConfidence:           s.KeyConfidence,
			Mode:                    s.Mode,
			ModeConfidence:          s.ModeConfidence,
			TimeSignature:           s.TimeSignature,
			TimeSignatureConfidence: s.TimeSignatureConfidence,
		}
	}
	return json.NewEncoder(w).Encode(rec)
}

func fromMarkers(ms []models.Marker) []markerRecord {
	out := make([]markerRecord, len(ms))
	for i := range ms {
		m := &ms[i]
		out[i] = markerRecord{Start: &m.Start, Duration: &m.Duration, Confidence: m.Confidence}
	}
	return out
}

// WriteFile saves a TrackAnalysis as JSON at path.
func WriteFile(path string, a *models.TrackAnalysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := Encode(w, a); err != nil {
		f.Close()
		return fmt.Errorf("encoding analysis %s: %w", a.TrackID, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
