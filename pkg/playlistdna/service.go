package playlistdna

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/himanishpuri/PlaylistDNA/pkg/logger"
	"github.com/himanishpuri/PlaylistDNA/pkg/models"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/analysis"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/dataset"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/features"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/normalize"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/playlists"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/sampling"
	"github.com/himanishpuri/PlaylistDNA/pkg/utils"
)

// playlistService is the default implementation of the Service interface.
type playlistService struct {
	storage Storage
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Set default logger if none provided
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if err := cfg.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	if err := cfg.Sampling.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sampling config: %w", err)
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &playlistService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

// ListPlaylists gathers the playlists of users, keeps those matching the
// keywords and orders them by track count.
func (s *playlistService) ListPlaylists(ctx context.Context, users, keywords, exclude []string) ([]models.Playlist, error) {
	if s.config.Playlists == nil {
		return nil, errors.New("no playlist provider configured")
	}
	var all []models.Playlist
	for _, u := range users {
		pls, err := s.config.Playlists.UserPlaylists(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("listing playlists of %s: %w", u, err)
		}
		s.log.Debugf("User %s has %d playlists", u, len(pls))
		all = append(all, pls...)
	}
	selected := playlists.FilterByKeyword(playlists.DedupeByID(all), keywords, exclude)
	playlists.SortByTrackCount(selected)
	s.log.Infof("Selected %d of %d playlists", len(selected), len(all))
	return selected, nil
}

// skippable reports per-track failures that leave the rest of the run valid.
func skippable(err error) bool {
	return errors.Is(err, models.ErrInsufficientPopulation) || errors.Is(err, models.ErrMissingField)
}

func labelFor(sel PlaylistSelection) string {
	if sel.Label != "" {
		return sel.Label
	}
	if l := utils.SanitizeName(sel.Playlist.Name); l != "" {
		return l
	}
	return sel.Playlist.ID
}

// Collect fetches, filters and persists the tracks of every selected playlist.
// Tracks failing with InsufficientPopulation or MissingField are skipped;
// any other failure aborts the run and returns the partial report.
func (s *playlistService) Collect(ctx context.Context, selections []PlaylistSelection) (*CollectReport, error) {
	if s.config.Playlists == nil || s.config.Analysis == nil {
		return nil, errors.New("collect needs a playlist and an analysis provider")
	}
	writer, err := dataset.NewWriter(s.config.DataDir, s.config.Kinds)
	if err != nil {
		return nil, err
	}
	runID, err := s.storage.RegisterRun(s.config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to register run: %w", err)
	}
	s.log.Infof("Run %s: collecting %d playlists into %s", runID, len(selections), s.config.DataDir)

	report := &CollectReport{RunID: runID, DataDir: s.config.DataDir}
	for _, sel := range selections {
		label := labelFor(sel)
		records, err := s.collectPlaylist(ctx, runID, label, sel.Playlist, writer, report)
		if len(records) > 0 {
			if serr := s.storage.StoreTracks(records); serr != nil {
				return report, fmt.Errorf("failed to catalog %s: %w", label, serr)
			}
			report.Tracks = append(report.Tracks, records...)
		}
		if err != nil {
			return report, fmt.Errorf("playlist %s: %w", label, err)
		}
		report.Labels = append(report.Labels, label)
		s.log.Infof("Playlist %s: %d tracks stored", label, len(records))
	}

	err = dataset.UpdateManifest(s.config.DataDir, func(m *dataset.Manifest) {
		m.Kinds = writer.Kinds
		m.Filter = s.config.Filter
		m.AddRun(dataset.ManifestRun{RunID: runID, CreatedAt: time.Now().UTC(), Playlists: report.Labels})
	})
	if err != nil {
		return report, err
	}

	s.log.Infof("Run %s done: %d tracks stored, %d skipped", runID, len(report.Tracks), len(report.Skipped))
	return report, nil
}

func (s *playlistService) collectPlaylist(ctx context.Context, runID, label string, pl models.Playlist,
	writer *dataset.Writer, report *CollectReport) ([]models.TrackRecord, error) {
	tracks, err := s.config.Playlists.PlaylistTracks(ctx, pl.ID)
	if err != nil {
		return nil, err
	}
	report.Fetched += len(tracks)
	if s.config.Dedupe {
		tracks = playlists.DedupeTracks(tracks)
	}

	var records []models.TrackRecord
	for _, t := range tracks {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		rec, err := s.collectTrack(ctx, runID, label, t, writer)
		if err != nil {
			if !skippable(err) {
				return records, fmt.Errorf("track %s: %w", t.ID, err)
			}
			s.log.Warnf("Skipping %q (%s): %v", t.Name, t.ID, err)
			report.Skipped = append(report.Skipped, SkippedTrack{Playlist: label, TrackID: t.ID, Name: t.Name, Reason: err})
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (s *playlistService) collectTrack(ctx context.Context, runID, label string, t models.TrackRef,
	writer *dataset.Writer) (*models.TrackRecord, error) {
	a, err := s.config.Analysis.GetAnalysis(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	res, err := analysis.FilterSegments(a.Segments, s.config.Filter)
	if err != nil {
		return nil, err
	}
	if res.Relaxations > 0 {
		s.log.Debugf("%s: thresholds relaxed %d times to %.2f/%.2f", t.ID, res.Relaxations, res.MinConfidence, res.MinDuration)
	}

	stem := utils.TrackStem(t.Name, t.ArtistNames())
	tempo := a.Track
	err = writer.WriteTrack(label, dataset.Track{
		Stem:     stem,
		Tempo:    &tempo,
		Segments: res.Segments,
		Sections: a.Sections,
		Beats:    a.Beats,
		Bars:     a.Bars,
	})
	if err != nil {
		return nil, err
	}
	return &models.TrackRecord{
		RunID:         runID,
		Playlist:      label,
		TrackID:       t.ID,
		Name:          t.Name,
		Artists:       t.ArtistNames(),
		FileStem:      stem,
		RawSegments:   len(a.Segments),
		KeptSegments:  len(res.Segments),
		MinConfidence: res.MinConfidence,
		MinDuration:   res.MinDuration,
		Relaxations:   res.Relaxations,
	}, nil
}

// Transform reads the dataset under dataDir and builds the model input. When
// bounds is nil population bounds are computed from the sampled segments.
func (s *playlistService) Transform(ctx context.Context, dataDir string, bounds *normalize.Bounds) (*features.Result, error) {
	pls, err := dataset.Read(dataDir, dataset.Options{Kinds: []dataset.Kind{dataset.KindSegments}})
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tracks []features.Track
	for _, pl := range pls {
		for _, t := range pl.Tracks {
			tracks = append(tracks, features.Track{Name: t.Stem, Label: pl.Label, Segments: t.Segments})
		}
	}
	s.log.Infof("Transforming %d tracks from %d playlists", len(tracks), len(pls))
	if m, err := dataset.ReadManifest(dataDir); err == nil {
		s.log.Infof("Dataset from %d run(s), segments kept above confidence %.2f and duration %.2fs before relaxation",
			len(m.Runs), m.Filter.MinConfidence, m.Filter.MinDuration)
	} else {
		s.log.Debugf("No manifest for %s: %v", dataDir, err)
	}

	if s.config.Sampling.Uneven() {
		s.log.Warnf("%d segments do not split evenly into %d bins; drawing %d per bin",
			s.config.Sampling.NumSegments, s.config.Sampling.NumBins, s.config.Sampling.PerBin())
	}
	sampler, err := sampling.New(s.config.Sampling)
	if err != nil {
		return nil, err
	}
	tr, err := features.NewTransformer(sampler, s.config.Range, s.config.Layout)
	if err != nil {
		return nil, err
	}
	res, err := tr.Transform(tracks, bounds)
	if err != nil {
		return nil, fmt.Errorf("transform failed: %w", err)
	}
	s.log.Infof("Built %d arrays of width %d over %d labels", len(res.Arrays), res.Width, len(res.Categories))
	return res, nil
}

// Stats computes timbre moments and top-section summaries of every track.
// Tracks with too little data, or stored without a sections table, are logged
// and left out.
func (s *playlistService) Stats(ctx context.Context, dataDir string) ([]TrackStats, error) {
	pls, err := dataset.Read(dataDir, dataset.Options{
		Kinds:    []dataset.Kind{dataset.KindSegments},
		Optional: []dataset.Kind{dataset.KindSections},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	var out []TrackStats
	for _, pl := range pls {
		for _, t := range pl.Tracks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			seg, err := features.SegmentStats(t.Segments)
			if err == nil {
				var sec []features.SectionRow
				sec, err = features.SectionStats(t.Segments, t.Sections, s.config.TopSections)
				if err == nil {
					out = append(out, TrackStats{Playlist: pl.Label, Stem: t.Stem, Segments: seg, Sections: sec})
					continue
				}
			}
			if !skippable(err) {
				return nil, fmt.Errorf("%s/%s: %w", pl.Label, t.Stem, err)
			}
			s.log.Warnf("No stats for %s/%s: %v", pl.Label, t.Stem, err)
		}
	}
	return out, nil
}

func (s *playlistService) ListRuns() ([]models.Run, error) {
	return s.storage.ListRuns()
}

func (s *playlistService) ListTracks(runID string) ([]models.TrackRecord, error) {
	return s.storage.ListTracks(runID, "")
}

func (s *playlistService) DeleteRun(runID string) error {
	return s.storage.DeleteRun(runID)
}

func (s *playlistService) Close() error {
	return s.storage.Close()
}

func (s *playlistService) GetRun(runID string) (*models.Run, error) {
	return s.storage.GetRun(runID)
}

func (s *playlistService) CountTracks(runID string) (int, error) {
	return s.storage.CountTracks(runID)
}

// PurgeRun deletes a run from the catalog together with the playlist
// directories it wrote. A directory that another run of the same dataset root
// also wrote into is kept.
func (s *playlistService) PurgeRun(runID string) (*PurgeReport, error) {
	run, err := s.storage.GetRun(runID)
	if err != nil {
		return nil, err
	}
	records, err := s.storage.ListTracks(runID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	shared, err := s.sharedLabels(run)
	if err != nil {
		return nil, err
	}
	if err := s.storage.DeleteRun(runID); err != nil {
		return nil, err
	}

	report := &PurgeReport{RunID: runID, DataDir: run.DataDir}
	seen := make(map[string]bool)
	for _, rec := range records {
		label := rec.Playlist
		if seen[label] {
			continue
		}
		seen[label] = true
		if shared[label] {
			report.Kept = append(report.Kept, label)
			continue
		}
		if err := utils.DeleteDir(filepath.Join(run.DataDir, label)); err != nil {
			return report, fmt.Errorf("failed to remove %s: %w", label, err)
		}
		report.Removed = append(report.Removed, label)
	}

	if _, err := os.Stat(filepath.Join(run.DataDir, dataset.ManifestName)); err == nil {
		err = dataset.UpdateManifest(run.DataDir, func(m *dataset.Manifest) { m.RemoveRun(runID) })
		if err != nil {
			return report, err
		}
	}
	s.log.Infof("Purged run %s: removed %d playlist directories, kept %d shared", runID, len(report.Removed), len(report.Kept))
	return report, nil
}

// sharedLabels returns the labels other runs wrote under the same root as run.
func (s *playlistService) sharedLabels(run *models.Run) (map[string]bool, error) {
	runs, err := s.storage.ListRuns()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	shared := make(map[string]bool)
	for _, other := range runs {
		if other.ID == run.ID || filepath.Clean(other.DataDir) != filepath.Clean(run.DataDir) {
			continue
		}
		recs, err := s.storage.ListTracks(other.ID, "")
		if err != nil {
			return nil, fmt.Errorf("failed to list tracks of %s: %w", other.ID, err)
		}
		for _, r := range recs {
			shared[r.Playlist] = true
		}
	}
	return shared, nil
}
