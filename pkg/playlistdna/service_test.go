package playlistdna

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/PlaylistDNA/pkg/logger"
	"github.com/himanishpuri/PlaylistDNA/pkg/models"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/dataset"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/features"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/normalize"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/sampling"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/storage"
)

type fakeAnalyses map[string]*models.TrackAnalysis

func (f fakeAnalyses) GetAnalysis(ctx context.Context, id string) (*models.TrackAnalysis, error) {
	switch id {
	case "broken":
		return nil, models.NewPipelineError(models.KindMissingField, id, "missing track.tempo", nil)
	case "down":
		return nil, models.NewPipelineError(models.KindUpstreamUnavailable, id, "503", nil)
	}
	a, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("unexpected track %s", id)
	}
	return a, nil
}

type fakePlaylists struct {
	byUser map[string][]models.Playlist
	byID   map[string][]models.TrackRef
}

func (f *fakePlaylists) UserPlaylists(ctx context.Context, user string) ([]models.Playlist, error) {
	return f.byUser[user], nil
}

func (f *fakePlaylists) PlaylistTracks(ctx context.Context, id string) ([]models.TrackRef, error) {
	return f.byID[id], nil
}

func makeAnalysis(rng *rand.Rand, id string, n int) *models.TrackAnalysis {
	a := &models.TrackAnalysis{
		TrackID: id,
		Track:   models.TrackOverview{Tempo: 100 + rng.Float64()*40, Duration: float64(n) * 0.3},
		Sections: []models.Section{
			{Marker: models.Marker{Start: 0, Duration: 60}, Key: 1},
			{Marker: models.Marker{Start: 60, Duration: 60}, Key: 4},
			{Marker: models.Marker{Start: 120, Duration: 100}, Key: 9},
		},
	}
	for i := 0; i < n; i++ {
		s := models.Segment{
			Start:      float64(i) * 0.3,
			Duration:   0.3,
			Confidence: 0.9,
			Pitches:    make([]float64, models.VectorLen),
			Timbre:     make([]float64, models.VectorLen),
		}
		for d := range s.Timbre {
			s.Pitches[d] = rng.Float64()
			s.Timbre[d] = rng.NormFloat64() * 40
		}
		a.Segments = append(a.Segments, s)
	}
	return a
}

func quietLogger() Logger {
	cfg := logger.DefaultConfig()
	cfg.Output = io.Discard
	return logger.New(cfg)
}

func newTestService(t *testing.T, opts ...Option) (Service, string) {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	analyses := fakeAnalyses{
		"t1": makeAnalysis(rng, "t1", 600),
		"t2": makeAnalysis(rng, "t2", 50),
		"t5": makeAnalysis(rng, "t5", 400),
	}
	pls := &fakePlaylists{
		byUser: map[string][]models.Playlist{
			"alice": {
				{ID: "p1", Name: "Rock Hits", TrackTotal: 4},
				{ID: "p3", Name: "Rock Karaoke", TrackTotal: 90},
			},
			"bob": {{ID: "p2", Name: "Late Jazz", Description: "smooth", TrackTotal: 1}},
		},
		byID: map[string][]models.TrackRef{
			"p1": {
				{ID: "t1", Name: "Thunder", Artists: []string{"AC/DC"}},
				{ID: "t2", Name: "Short One", Artists: []string{"Band"}},
				{ID: "t3", Name: "thunder", Artists: []string{"ac/dc"}},
				{ID: "broken", Name: "Broken", Artists: []string{"Band"}},
			},
			"p2": {{ID: "t5", Name: "Blue", Artists: []string{"Miles"}}},
			"p4": {{ID: "down", Name: "Down", Artists: []string{"X"}}},
		},
	}

	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	base := []Option{
		WithDataDir(dataDir),
		WithDBPath(filepath.Join(dir, "catalog.sqlite3")),
		WithLogger(quietLogger()),
		WithAnalysisProvider(analyses),
		WithPlaylistProvider(pls),
	}
	svc, err := NewService(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, dataDir
}

func TestListPlaylists(t *testing.T) {
	svc, _ := newTestService(t)
	got, err := svc.ListPlaylists(context.Background(), []string{"alice", "bob"}, []string{"rock", "jazz"}, []string{"karaoke"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Rock Hits", got[0].Name)
	assert.Equal(t, "Late Jazz", got[1].Name)
}

func TestCollectTransformStats(t *testing.T) {
	svc, dataDir := newTestService(t, WithKinds(dataset.AllKinds()...))
	ctx := context.Background()

	report, err := svc.Collect(ctx, []PlaylistSelection{
		{Playlist: models.Playlist{ID: "p1", Name: "Rock Hits"}},
		{Playlist: models.Playlist{ID: "p2", Name: "Late Jazz"}, Label: "jazz"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rock Hits", "jazz"}, report.Labels)
	assert.Equal(t, 5, report.Fetched)
	require.Len(t, report.Tracks, 2)
	require.Len(t, report.Skipped, 2)
	assert.ErrorIs(t, report.Skipped[0].Reason, models.ErrInsufficientPopulation)
	assert.ErrorIs(t, report.Skipped[1].Reason, models.ErrMissingField)
	assert.Equal(t, "Thunder-ACD", report.Tracks[0].FileStem)

	assert.FileExists(t, dataset.Path(dataDir, "Rock Hits", report.Tracks[0].FileStem, dataset.KindSegments))
	m, err := dataset.ReadManifest(dataDir)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, m.RunID)

	recs, err := svc.ListTracks(report.RunID)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	res, err := svc.Transform(ctx, dataDir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rock Hits", "jazz"}, res.Categories)
	assert.Equal(t, 50*27, res.Width)
	require.Len(t, res.Arrays, 2)
	assert.Len(t, res.Arrays[1], res.Width)

	path := filepath.Join(t.TempDir(), "bounds.yaml")
	require.NoError(t, res.Bounds.Save(path))
	b, err := normalize.LoadBounds(path)
	require.NoError(t, err)
	again, err := svc.Transform(ctx, dataDir, b)
	require.NoError(t, err)
	assert.Equal(t, res.Arrays, again.Arrays)

	stats, err := svc.Stats(ctx, dataDir)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Len(t, stats[0].Sections, 5)
	assert.Len(t, stats[0].Segments.Mean, models.VectorLen)

	runs, err := svc.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NoError(t, svc.DeleteRun(report.RunID))
	recs, err = svc.ListTracks(report.RunID)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCollectAbortsOnUpstreamFailure(t *testing.T) {
	svc, _ := newTestService(t)
	report, err := svc.Collect(context.Background(), []PlaylistSelection{
		{Playlist: models.Playlist{ID: "p2", Name: "Jazz"}},
		{Playlist: models.Playlist{ID: "p4", Name: "Down"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
	require.NotNil(t, report)
	assert.Len(t, report.Tracks, 1)
	assert.Equal(t, []string{"Jazz"}, report.Labels)
}

func TestNewServiceRejectsBadConfig(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "c.sqlite3")
	_, err := NewService(WithDBPath(dbPath), WithLayout(features.Layout{Fields: []features.Field{"bogus"}}))
	assert.Error(t, err)

	_, err = NewService(WithDBPath(dbPath), WithSampling(sampling.Config{NumSegments: 2, NumBins: 5}))
	assert.Error(t, err)
}

func TestStatsWithDefaultKinds(t *testing.T) {
	svc, dataDir := newTestService(t)
	ctx := context.Background()

	_, err := svc.Collect(ctx, []PlaylistSelection{
		{Playlist: models.Playlist{ID: "p1", Name: "Rock Hits"}},
		{Playlist: models.Playlist{ID: "p2", Name: "Late Jazz"}},
	})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, dataDir)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Late Jazz", stats[0].Playlist)
	assert.Len(t, stats[1].Sections, 5)
}

func TestStatsSkipsTracksWithoutSections(t *testing.T) {
	svc, dataDir := newTestService(t, WithKinds(dataset.KindTempo, dataset.KindSegments))
	ctx := context.Background()

	report, err := svc.Collect(ctx, []PlaylistSelection{{Playlist: models.Playlist{ID: "p2", Name: "Late Jazz"}}})
	require.NoError(t, err)
	require.Len(t, report.Tracks, 1)

	stats, err := svc.Stats(ctx, dataDir)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestManifestAccumulatesRuns(t *testing.T) {
	svc, dataDir := newTestService(t)
	ctx := context.Background()

	first, err := svc.Collect(ctx, []PlaylistSelection{{Playlist: models.Playlist{ID: "p1"}, Label: "rock"}})
	require.NoError(t, err)
	second, err := svc.Collect(ctx, []PlaylistSelection{{Playlist: models.Playlist{ID: "p2"}, Label: "jazz"}})
	require.NoError(t, err)

	m, err := dataset.ReadManifest(dataDir)
	require.NoError(t, err)
	assert.Equal(t, second.RunID, m.RunID)
	assert.Equal(t, []string{"jazz", "rock"}, m.Playlists)
	require.Len(t, m.Runs, 2)
	assert.Equal(t, first.RunID, m.Runs[0].RunID)
	assert.Equal(t, []string{"rock"}, m.Runs[0].Playlists)
}

func TestPurgeRunKeepsSharedDirectories(t *testing.T) {
	svc, dataDir := newTestService(t)
	ctx := context.Background()

	collect := func(id, label string) string {
		r, err := svc.Collect(ctx, []PlaylistSelection{{Playlist: models.Playlist{ID: id}, Label: label}})
		require.NoError(t, err)
		return r.RunID
	}
	rockRun := collect("p1", "rock")
	jazzRun := collect("p2", "jazz")
	jazzAgain := collect("p2", "jazz")

	n, err := svc.CountTracks(jazzAgain)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	report, err := svc.PurgeRun(rockRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"rock"}, report.Removed)
	assert.Empty(t, report.Kept)
	assert.NoDirExists(t, filepath.Join(dataDir, "rock"))
	assert.DirExists(t, filepath.Join(dataDir, "jazz"))

	report, err = svc.PurgeRun(jazzRun)
	require.NoError(t, err)
	assert.Empty(t, report.Removed)
	assert.Equal(t, []string{"jazz"}, report.Kept)
	entries, err := os.ReadDir(filepath.Join(dataDir, "jazz"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	_, err = svc.GetRun(rockRun)
	assert.ErrorIs(t, err, storage.ErrRunNotFound)
	_, err = svc.PurgeRun(rockRun)
	assert.ErrorIs(t, err, storage.ErrRunNotFound)

	run, err := svc.GetRun(jazzAgain)
	require.NoError(t, err)
	assert.Equal(t, dataDir, run.DataDir)

	m, err := dataset.ReadManifest(dataDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"jazz"}, m.Playlists)
	require.Len(t, m.Runs, 1)
	assert.Equal(t, jazzAgain, m.Runs[0].RunID)
}
