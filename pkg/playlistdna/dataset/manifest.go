package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/analysis"
)

// ManifestName is the file describing a dataset root.
const ManifestName = "dataset.yaml"

// Manifest describes every run that wrote into a dataset root. RunID,
// CreatedAt, Kinds and Filter are those of the latest run; Playlists is the
// union of the labels of all recorded runs.
type Manifest struct {
	RunID     string                `yaml:"run_id"`
	CreatedAt time.Time             `yaml:"created_at"`
	Kinds     []Kind                `yaml:"kinds"`
	Filter    analysis.FilterConfig `yaml:"filter"`
	Playlists []string              `yaml:"playlists"`
	Runs      []ManifestRun         `yaml:"runs"`
}

// ManifestRun is the entry of one collection run.
type ManifestRun struct {
	RunID     string    `yaml:"run_id"`
	CreatedAt time.Time `yaml:"created_at"`
	Playlists []string  `yaml:"playlists"`
}

// AddRun records r, replacing an entry with the same run ID.
func (m *Manifest) AddRun(r ManifestRun) {
	m.RemoveRun(r.RunID)
	m.Runs = append(m.Runs, r)
	m.RunID = r.RunID
	m.CreatedAt = r.CreatedAt
	m.index()
}

// RemoveRun drops the entry of runID.
func (m *Manifest) RemoveRun(runID string) {
	kept := m.Runs[:0]
	for _, r := range m.Runs {
		if r.RunID != runID {
			kept = append(kept, r)
		}
	}
	m.Runs = kept
	m.index()
}

func (m *Manifest) index() {
	seen := make(map[string]bool)
	m.Playlists = m.Playlists[:0]
	for _, r := range m.Runs {
		for _, l := range r.Playlists {
			if !seen[l] {
				seen[l] = true
				m.Playlists = append(m.Playlists, l)
			}
		}
	}
	sort.Strings(m.Playlists)
}

func WriteManifest(root string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, ManifestName), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

func ReadManifest(root string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// UpdateManifest applies fn to the manifest of root, starting from an empty
// one when none exists yet, and writes the result back.
func UpdateManifest(root string, fn func(*Manifest)) error {
	m, err := ReadManifest(root)
	if errors.Is(err, fs.ErrNotExist) {
		m, err = &Manifest{}, nil
	}
	if err != nil {
		return err
	}
	fn(m)
	return WriteManifest(root, m)
}
