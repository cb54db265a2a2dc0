package playlistdna

import (
	"github.com/himanishpuri/PlaylistDNA/pkg/models"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/storage"
)

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite catalog.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) RegisterRun(dataDir string) (string, error) {
	return s.db.RegisterRun(dataDir)
}

func (s *storageAdapter) StoreTracks(records []models.TrackRecord) error {
	return s.db.StoreTracks(records)
}

func (s *storageAdapter) GetRun(runID string) (*models.Run, error) {
	return s.db.GetRun(runID)
}

func (s *storageAdapter) ListRuns() ([]models.Run, error) {
	return s.db.ListRuns()
}

func (s *storageAdapter) ListTracks(runID, playlist string) ([]models.TrackRecord, error) {
	return s.db.ListTracks(runID, playlist)
}

func (s *storageAdapter) CountTracks(runID string) (int, error) {
	return s.db.CountTracks(runID)
}

func (s *storageAdapter) DeleteRun(runID string) error {
	return s.db.DeleteRun(runID)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}
