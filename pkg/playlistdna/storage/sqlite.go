package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
	"github.com/himanishpuri/PlaylistDNA/pkg/utils"
)

// DefaultDBFile is the catalog path used when none is configured.
const DefaultDBFile = "playlistdna.sqlite3"
const errDBClientNil = "db client is nil"

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Run struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	DataDir   string `json:"data_dir"`
	StartedAt time.Time
}

type Track struct {
	ID            uint    `gorm:"primaryKey;autoIncrement"`
	RunID         string  `gorm:"type:varchar(36);uniqueIndex:idx_track_unique,priority:1;index:idx_run" json:"run_id"`
	Playlist      string  `gorm:"uniqueIndex:idx_track_unique,priority:2;index:idx_playlist" json:"playlist"`
	TrackID       string  `gorm:"uniqueIndex:idx_track_unique,priority:3" json:"track_id"`
	Name          string  `json:"name"`
	Artists       string  `json:"artists"`
	FileStem      string  `json:"file_stem"`
	RawSegments   int     `json:"raw_segments"`
	KeptSegments  int     `json:"kept_segments"`
	MinConfidence float64 `json:"min_confidence"`
	MinDuration   float64 `json:"min_duration"`
	Relaxations   int     `json:"relaxations"`
	CreatedAt     time.Time
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// The catalog is written by one sequential run.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Run{}, &Track{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *DBClient) ready() error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return nil
}

// RegisterRun records a new collection run writing to dataDir and returns its ID.
func (c *DBClient) RegisterRun(dataDir string) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	run := Run{ID: utils.GenerateUUID(), DataDir: dataDir, StartedAt: time.Now().UTC()}
	if err := c.DB.Create(&run).Error; err != nil {
		return "", fmt.Errorf("creating run: %w", err)
	}
	return run.ID, nil
}

func (c *DBClient) GetRun(runID string) (*models.Run, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var run Run
	if err := c.DB.Where("id = ?", runID).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return &models.Run{ID: run.ID, DataDir: run.DataDir, StartedAt: run.StartedAt}, nil
}

// ListRuns returns all runs, newest first.
func (c *DBClient) ListRuns() ([]models.Run, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var rows []Run
	if err := c.DB.Order("started_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	out := make([]models.Run, len(rows))
	for i, r := range rows {
		out[i] = models.Run{ID: r.ID, DataDir: r.DataDir, StartedAt: r.StartedAt}
	}
	return out, nil
}

// StoreTracks inserts catalog rows. A row repeating (run, playlist, track) is ignored.
func (c *DBClient) StoreTracks(records []models.TrackRecord) error {
	if err := c.ready(); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	rows := make([]Track, len(records))
	for i, r := range records {
		rows[i] = Track{
			RunID:         r.RunID,
			Playlist:      r.Playlist,
			TrackID:       r.TrackID,
			Name:          r.Name,
			Artists:       r.Artists,
			FileStem:      r.FileStem,
			RawSegments:   r.RawSegments,
			KeptSegments:  r.KeptSegments,
			MinConfidence: r.MinConfidence,
			MinDuration:   r.MinDuration,
			Relaxations:   r.Relaxations,
		}
	}
	err := c.DB.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, 200).Error
	if err != nil {
		return fmt.Errorf("batch insert tracks: %w", err)
	}
	return nil
}

// ListTracks returns the tracks of a run, optionally limited to one playlist,
// ordered by playlist then file stem.
func (c *DBClient) ListTracks(runID, playlist string) ([]models.TrackRecord, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	q := c.DB.Where("run_id = ?", runID)
	if playlist != "" {
		q = q.Where("playlist = ?", playlist)
	}
	var rows []Track
	if err := q.Order("playlist, file_stem").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}
	out := make([]models.TrackRecord, len(rows))
	for i, r := range rows {
		out[i] = models.TrackRecord{
			RunID:         r.RunID,
			Playlist:      r.Playlist,
			TrackID:       r.TrackID,
			Name:          r.Name,
			Artists:       r.Artists,
			FileStem:      r.FileStem,
			RawSegments:   r.RawSegments,
			KeptSegments:  r.KeptSegments,
			MinConfidence: r.MinConfidence,
			MinDuration:   r.MinDuration,
			Relaxations:   r.Relaxations,
			CreatedAt:     r.CreatedAt,
		}
	}
	return out, nil
}

func (c *DBClient) CountTracks(runID string) (int, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	var count int64
	if err := c.DB.Model(&Track{}).Where("run_id = ?", runID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting tracks: %w", err)
	}
	return int(count), nil
}

// DeleteRun removes a run and its tracks in one transaction.
func (c *DBClient) DeleteRun(runID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", runID).Delete(&Track{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", runID).Delete(&Run{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil
	})
}
