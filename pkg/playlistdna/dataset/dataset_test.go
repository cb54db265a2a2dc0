package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/analysis"
)

func sampleTrack(stem string, n int) Track {
	t := Track{
		Stem:     stem,
		Tempo:    &models.TrackOverview{Tempo: 120.5, Duration: 200, Key: 3, Mode: 1, TimeSignature: 4},
		Sections: []models.Section{{Marker: models.Marker{Start: 0, Duration: 30}, Key: 2, Loudness: -5}},
		Beats:    []models.Marker{{Start: 0.1, Duration: 0.5, Confidence: 0.7}},
		Bars:     []models.Marker{{Start: 0.1, Duration: 2, Confidence: 0.4}},
	}
	for i := 0; i < n; i++ {
		s := models.Segment{
			Start:       float64(i),
			StartMinute: analysis.FormatStart(float64(i)),
			Duration:    0.5,
			Confidence:  0.9,
			Pitches:     make([]float64, models.VectorLen),
			Timbre:      make([]float64, models.VectorLen),
		}
		for d := range s.Timbre {
			s.Timbre[d] = float64(i*d) - 10
			s.Pitches[d] = float64(d) / 11
		}
		t.Segments = append(t.Segments, s)
	}
	return t
}

func TestWriteReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, AllKinds())
	require.NoError(t, err)

	require.NoError(t, w.WriteTrack("rock", sampleTrack("zeta-Art", 5)))
	require.NoError(t, w.WriteTrack("rock", sampleTrack("alpha-Bee", 3)))
	require.NoError(t, w.WriteTrack("jazz", sampleTrack("blue-Mil", 4)))

	assert.FileExists(t, Path(root, "rock", "alpha-Bee", KindSections))

	pls, err := Read(root, Options{Kinds: AllKinds()})
	require.NoError(t, err)
	require.Len(t, pls, 2)
	assert.Equal(t, "jazz", pls[0].Label)
	assert.Equal(t, "rock", pls[1].Label)
	require.Len(t, pls[1].Tracks, 2)
	assert.Equal(t, "alpha-Bee", pls[1].Tracks[0].Stem)

	want := sampleTrack("alpha-Bee", 3)
	got := pls[1].Tracks[0]
	assert.Equal(t, want.Tempo, got.Tempo)
	assert.Equal(t, want.Segments, got.Segments)
	assert.Equal(t, want.Sections, got.Sections)
	assert.Equal(t, want.Beats, got.Beats)
	assert.Equal(t, want.Bars, got.Bars)
}

func TestReadSegmentsOnlyAndLabels(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultKinds(), w.Kinds)
	require.NoError(t, w.WriteTrack("a", sampleTrack("one", 2)))
	require.NoError(t, w.WriteTrack("b", sampleTrack("two", 2)))

	pls, err := Read(root, Options{Labels: []string{"b"}})
	require.NoError(t, err)
	require.Len(t, pls, 1)
	assert.Nil(t, pls[0].Tracks[0].Tempo)
	assert.Len(t, pls[0].Tracks[0].Segments, 2)
}

func TestReadMissingKind(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, []Kind{KindSegments})
	require.NoError(t, err)
	require.NoError(t, w.WriteTrack("a", sampleTrack("one", 2)))

	_, err = Read(root, Options{Kinds: []Kind{KindSegments, KindTempo}})
	assert.ErrorIs(t, err, models.ErrMissingField)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, DefaultKinds())
	require.NoError(t, err)

	bad := sampleTrack("x", 1)
	bad.Tempo = nil
	assert.ErrorIs(t, w.WriteTrack("a", bad), models.ErrMissingField)
	assert.Error(t, w.WriteTrack("", sampleTrack("x", 1)))

	require.NoError(t, w.WriteTrack("a", sampleTrack("y", 1)))
	entries, err := os.ReadDir(filepath.Join(root, "a"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, '.', rune(e.Name()[0]), e.Name())
	}
}

func TestParseKinds(t *testing.T) {
	ks, err := ParseKinds("tempo, Segments,bars")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindTempo, KindSegments, KindBars}, ks)

	_, err = ParseKinds("tempo,loudness")
	assert.Error(t, err)
	_, err = ParseKinds(" ")
	assert.Error(t, err)
}

func TestManifest(t *testing.T) {
	root := t.TempDir()
	m := &Manifest{
		Kinds:  DefaultKinds(),
		Filter: analysis.DefaultFilterConfig(),
	}
	m.AddRun(ManifestRun{
		RunID:     "run-1",
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Playlists: []string{"rock"},
	})
	require.NoError(t, WriteManifest(root, m))
	got, err := ReadManifest(root)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestUpdateManifestMergesRuns(t *testing.T) {
	root := t.TempDir()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, UpdateManifest(root, func(m *Manifest) {
		m.AddRun(ManifestRun{RunID: "run-1", CreatedAt: day, Playlists: []string{"rock", "jazz"}})
	}))
	require.NoError(t, UpdateManifest(root, func(m *Manifest) {
		m.AddRun(ManifestRun{RunID: "run-2", CreatedAt: day.Add(time.Hour), Playlists: []string{"pop", "rock"}})
	}))

	m, err := ReadManifest(root)
	require.NoError(t, err)
	assert.Equal(t, "run-2", m.RunID)
	assert.Equal(t, []string{"jazz", "pop", "rock"}, m.Playlists)
	require.Len(t, m.Runs, 2)

	require.NoError(t, UpdateManifest(root, func(m *Manifest) { m.RemoveRun("run-1") }))
	m, err = ReadManifest(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"pop", "rock"}, m.Playlists)
	require.Len(t, m.Runs, 1)
	assert.Equal(t, "run-2", m.Runs[0].RunID)
}

func TestReadOptionalKinds(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root, []Kind{KindTempo, KindSegments})
	require.NoError(t, err)
	require.NoError(t, w.WriteTrack("a", sampleTrack("bare", 4)))
	full, err := NewWriter(root, DefaultKinds())
	require.NoError(t, err)
	require.NoError(t, full.WriteTrack("a", sampleTrack("full", 4)))

	pls, err := Read(root, Options{Kinds: []Kind{KindSegments}, Optional: []Kind{KindSections}})
	require.NoError(t, err)
	require.Len(t, pls[0].Tracks, 2)
	assert.Equal(t, "bare", pls[0].Tracks[0].Stem)
	assert.Empty(t, pls[0].Tracks[0].Sections)
	assert.Len(t, pls[0].Tracks[1].Sections, 1)
	assert.Len(t, pls[0].Tracks[0].Segments, 4)
}
