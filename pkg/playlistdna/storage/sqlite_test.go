package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
	"github.com/himanishpuri/PlaylistDNA/pkg/utils"
)

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) (*DBClient, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_catalog.sqlite3")

	client, err := NewDBClientWithPath(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test DB client: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	return client, dbPath
}

func record(runID, playlist, trackID string) models.TrackRecord {
	return models.TrackRecord{
		RunID:         runID,
		Playlist:      playlist,
		TrackID:       trackID,
		Name:          "Song " + trackID,
		Artists:       "Someone",
		FileStem:      "Song " + trackID + "-Som",
		RawSegments:   700,
		KeptSegments:  310,
		MinConfidence: 0.5,
		MinDuration:   0.25,
	}
}

func TestDBFileCreated(t *testing.T) {
	client, dbPath := setupTestDB(t)

	if client.DB == nil || client.db == nil {
		t.Fatal("Expected non-nil DB handles")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
}

func TestNewDBClientWithCustomPath(t *testing.T) {
	customPath := filepath.Join(t.TempDir(), "subdir", "custom.db")

	client, err := NewDBClientWithPath(customPath)
	if err != nil {
		t.Fatalf("Failed to create DB with custom path: %v", err)
	}
	defer client.Close()

	if _, err := os.Stat(customPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at custom path %s", customPath)
	}
}

func TestRegisterRun(t *testing.T) {
	client, _ := setupTestDB(t)

	runID, err := client.RegisterRun("/data/run1")
	if err != nil {
		t.Fatalf("RegisterRun failed: %v", err)
	}
	if !utils.IsUUID(runID) {
		t.Errorf("Expected a UUID run id, got %q", runID)
	}

	run, err := client.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.DataDir != "/data/run1" {
		t.Errorf("Expected data dir /data/run1, got %s", run.DataDir)
	}

	if _, err := client.GetRun("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}

	if _, err := client.RegisterRun("/data/run2"); err != nil {
		t.Fatalf("RegisterRun failed: %v", err)
	}
	runs, err := client.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("Expected 2 runs, got %d", len(runs))
	}
}

func TestStoreTracksIgnoresDuplicates(t *testing.T) {
	client, _ := setupTestDB(t)
	runID, err := client.RegisterRun("/data")
	if err != nil {
		t.Fatalf("RegisterRun failed: %v", err)
	}

	first := []models.TrackRecord{record(runID, "rock", "a"), record(runID, "rock", "b"), record(runID, "jazz", "a")}
	if err := client.StoreTracks(first); err != nil {
		t.Fatalf("StoreTracks failed: %v", err)
	}
	if err := client.StoreTracks([]models.TrackRecord{record(runID, "rock", "a")}); err != nil {
		t.Fatalf("StoreTracks with duplicate failed: %v", err)
	}

	count, err := client.CountTracks(runID)
	if err != nil {
		t.Fatalf("CountTracks failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 tracks, got %d", count)
	}

	rock, err := client.ListTracks(runID, "rock")
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if len(rock) != 2 {
		t.Fatalf("Expected 2 rock tracks, got %d", len(rock))
	}
	if rock[0].TrackID != "a" || rock[0].KeptSegments != 310 {
		t.Errorf("Unexpected first record: %+v", rock[0])
	}

	all, err := client.ListTracks(runID, "")
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if all[0].Playlist != "jazz" {
		t.Errorf("Expected tracks ordered by playlist, got %s first", all[0].Playlist)
	}
}

func TestDeleteRun(t *testing.T) {
	client, _ := setupTestDB(t)
	runID, _ := client.RegisterRun("/data")
	other, _ := client.RegisterRun("/other")

	if err := client.StoreTracks([]models.TrackRecord{record(runID, "rock", "a"), record(other, "rock", "a")}); err != nil {
		t.Fatalf("StoreTracks failed: %v", err)
	}
	if err := client.DeleteRun(runID); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}

	if n, _ := client.CountTracks(runID); n != 0 {
		t.Errorf("Expected 0 tracks after delete, got %d", n)
	}
	if n, _ := client.CountTracks(other); n != 1 {
		t.Errorf("Expected other run untouched, got %d tracks", n)
	}
	if err := client.DeleteRun(runID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound on second delete, got %v", err)
	}
}

func TestNilClient(t *testing.T) {
	var c *DBClient
	if err := c.Close(); err != nil {
		t.Errorf("Close on nil client returned %v", err)
	}
	if _, err := c.RegisterRun("/x"); err == nil {
		t.Error("Expected error from nil client")
	}
}
