package dataset

import "github.com/himanishpuri/PlaylistDNA/pkg/models"

// Parquet row shapes, one per analysis kind.

type TempoRow struct {
	Tempo           float64 `parquet:"tempo"`
	TempoConfidence float64 `parquet:"tempo_confidence"`
	Duration        float64 `parquet:"duration"`
	Loudness        float64 `parquet:"loudness"`
	Key             int64   `parquet:"key"`
	Mode            int64   `parquet:"mode"`
	TimeSignature   int64   `parquet:"time_signature"`
}

type SegmentRow struct {
	Start       float64   `parquet:"start"`
	StartMinute string    `parquet:"start_minute"`
	Duration    float64   `parquet:"duration"`
	Confidence  float64   `parquet:"confidence"`
	Pitches     []float64 `parquet:"pitches,list"`
	Timbre      []float64 `parquet:"timbre,list"`
}

type SectionRow struct {
	Start                   float64 `parquet:"start"`
	Duration                float64 `parquet:"duration"`
	Confidence              float64 `parquet:"confidence"`
	Loudness                float64 `parquet:"loudness"`
	Tempo                   float64 `parquet:"tempo"`
	TempoConfidence         float64 `parquet:"tempo_confidence"`
	Key                     int64   `parquet:"key"`
	KeyConfidence           float64 `parquet:"key_confidence"`
	Mode                    int64   `parquet:"mode"`
	ModeConfidence          float64 `parquet:"mode_confidence"`
	TimeSignature           int64   `parquet:"time_signature"`
	TimeSignatureConfidence float64 `parquet:"time_signature_confidence"`
}

type MarkerRow struct {
	Start      float64 `parquet:"start"`
	Duration   float64 `parquet:"duration"`
	Confidence float64 `parquet:"confidence"`
}

func tempoRow(t models.TrackOverview) TempoRow {
	return TempoRow{
		Tempo:           t.Tempo,
		TempoConfidence: t.TempoConfidence,
		Duration:        t.Duration,
		Loudness:        t.Loudness,
		Key:             int64(t.Key),
		Mode:            int64(t.Mode),
		TimeSignature:   int64(t.TimeSignature),
	}
}

func (r TempoRow) model() models.TrackOverview {
	return models.TrackOverview{
		Duration:        r.Duration,
		Loudness:        r.Loudness,
		Tempo:           r.Tempo,
		TempoConfidence: r.TempoConfidence,
		Key:             int(r.Key),
		Mode:            int(r.Mode),
		TimeSignature:   int(r.TimeSignature),
	}
}

func segmentRows(segs []models.Segment) []SegmentRow {
	out := make([]SegmentRow, len(segs))
	for i, s := range segs {
		out[i] = SegmentRow{
			Start:       s.Start,
			StartMinute: s.StartMinute,
			Duration:    s.Duration,
			Confidence:  s.Confidence,
			Pitches:     s.Pitches,
			Timbre:      s.Timbre,
		}
	}
	return out
}

func segmentModels(rows []SegmentRow) []models.Segment {
	out := make([]models.Segment, len(rows))
	for i, r := range rows {
		out[i] = models.Segment{
			Start:       r.Start,
			StartMinute: r.StartMinute,
			Duration:    r.Duration,
			Confidence:  r.Confidence,
			Pitches:     r.Pitches,
			Timbre:      r.Timbre,
		}
	}
	return out
}

func sectionRows(secs []models.Section) []SectionRow {
	out := make([]SectionRow, len(secs))
	for i, s := range secs {
		out[i] = SectionRow{
			Start:                   s.Start,
			Duration:                s.Duration,
			Confidence:              s.Confidence,
			Loudness:                s.Loudness,
			Tempo:                   s.Tempo,
			TempoConfidence:         s.TempoConfidence,
			Key:                     int64(s.Key),
			KeyConfidence:           s.KeyConfidence,
			Mode:                    int64(s.Mode),
			ModeConfidence:          s.ModeConfidence,
			TimeSignature:           int64(s.TimeSignature),
			TimeSignatureConfidence: s.TimeSignatureConfidence,
		}
	}
	return out
}

func sectionModels(rows []SectionRow) []models.Section {
	out := make([]models.Section, len(rows))
	for i, r := range rows {
		out[i] = models.Section{
			Marker:                  models.Marker{Start: r.Start, Duration: r.Duration, Confidence: r.Confidence},
			Loudness:                r.Loudness,
			Tempo:                   r.Tempo,
			TempoConfidence:         r.TempoConfidence,
			Key:                     int(r.Key),
			KeyConfidence:           r.KeyConfidence,
			Mode:                    int(r.Mode),
			ModeConfidence:          r.ModeConfidence,
			TimeSignature:           int(r.TimeSignature),
			TimeSignatureConfidence: r.TimeSignatureConfidence,
		}
	}
	return out
}

func markerRows(ms []models.Marker) []MarkerRow {
	out := make([]MarkerRow, len(ms))
	for i, m := range ms {
		out[i] = MarkerRow(m)
	}
	return out
}

func markerModels(rows []MarkerRow) []models.Marker {
	out := make([]models.Marker, len(rows))
	for i, r := range rows {
		out[i] = models.Marker(r)
	}
	return out
}
