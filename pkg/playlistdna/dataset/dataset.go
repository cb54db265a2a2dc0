// Package dataset persists collected analyses as one directory per playlist
// label holding one Parquet file per track and analysis kind, and reads them back.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
	"github.com/himanishpuri/PlaylistDNA/pkg/utils"
)

// Kind is one analysis table persisted per track.
type Kind string

const (
	KindTempo    Kind = "tempo"
	KindSegments Kind = "segments"
	KindSections Kind = "sections"
	KindBeats    Kind = "beats"
	KindBars     Kind = "bars"
)

const fileExt = ".parquet"

func AllKinds() []Kind {
	return []Kind{KindTempo, KindSegments, KindSections, KindBeats, KindBars}
}

// DefaultKinds are the tables Collect writes unless configured otherwise:
// enough for both Transform and Stats.
func DefaultKinds() []Kind {
	return []Kind{KindTempo, KindSegments, KindSections}
}

// ParseKinds reads a comma separated kind list.
func ParseKinds(s string) ([]Kind, error) {
	var out []Kind
	for _, part := range strings.Split(s, ",") {
		k := Kind(strings.ToLower(strings.TrimSpace(part)))
		if k == "" {
			continue
		}
		if !k.valid() {
			return nil, fmt.Errorf("unknown analysis kind %q", k)
		}
		out = append(out, k)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no analysis kinds in %q", s)
	}
	return out, nil
}

func (k Kind) valid() bool {
	for _, a := range AllKinds() {
		if k == a {
			return true
		}
	}
	return false
}

func (k Kind) suffix() string { return "_" + string(k) + fileExt }

// Path returns <root>/<label>/<stem>_<kind>.parquet.
func Path(root, label, stem string, k Kind) string {
	return filepath.Join(root, label, stem+k.suffix())
}

// Track is the persisted form of one track. Segments holds the filtered set.
type Track struct {
	Stem     string
	Tempo    *models.TrackOverview
	Segments []models.Segment
	Sections []models.Section
	Beats    []models.Marker
	Bars     []models.Marker
}

// Playlist groups the tracks stored under one label directory.
type Playlist struct {
	Label  string
	Tracks []Track
}

// Writer stores tracks under Root.
type Writer struct {
	Root  string
	Kinds []Kind
}

func NewWriter(root string, kinds []Kind) (*Writer, error) {
	if len(kinds) == 0 {
		kinds = DefaultKinds()
	}
	for _, k := range kinds {
		if !k.valid() {
			return nil, fmt.Errorf("unknown analysis kind %q", k)
		}
	}
	if err := utils.MakeDir(root); err != nil {
		return nil, fmt.Errorf("creating dataset root: %w", err)
	}
	return &Writer{Root: root, Kinds: kinds}, nil
}

// WriteTrack writes the enabled kinds of a track under label. Each file is
// written to a temporary sibling and renamed into place.
func (w *Writer) WriteTrack(label string, t Track) error {
	if label == "" || t.Stem == "" {
		return fmt.Errorf("track needs a label and a stem")
	}
	if err := utils.MakeDir(filepath.Join(w.Root, label)); err != nil {
		return fmt.Errorf("creating playlist directory: %w", err)
	}
	for _, k := range w.Kinds {
		path := Path(w.Root, label, t.Stem, k)
		if err := writeKind(path, k, t); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

func writeKind(path string, k Kind, t Track) error {
	tmp := utils.TempPath(path)
	var err error
	switch k {
	case KindTempo:
		if t.Tempo == nil {
			return models.NewPipelineError(models.KindMissingField, t.Stem, "no tempo to write", nil)
		}
		err = parquet.WriteFile(tmp, []TempoRow{tempoRow(*t.Tempo)})
	case KindSegments:
		err = parquet.WriteFile(tmp, segmentRows(t.Segments))
	case KindSections:
		err = parquet.WriteFile(tmp, sectionRows(t.Sections))
	case KindBeats:
		err = parquet.WriteFile(tmp, markerRows(t.Beats))
	case KindBars:
		err = parquet.WriteFile(tmp, markerRows(t.Bars))
	default:
		return fmt.Errorf("unknown analysis kind %q", k)
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return utils.MoveFile(tmp, path)
}

func readKind(path string, k Kind, t *Track) error {
	switch k {
	case KindTempo:
		rows, err := parquet.ReadFile[TempoRow](path)
		if err != nil {
			return err
		}
		if len(rows) != 1 {
			return models.NewPipelineError(models.KindMissingField, t.Stem,
				fmt.Sprintf("tempo table has %d rows", len(rows)), nil)
		}
		ov := rows[0].model()
		t.Tempo = &ov
	case KindSegments:
		rows, err := parquet.ReadFile[SegmentRow](path)
		if err != nil {
			return err
		}
		t.Segments = segmentModels(rows)
	case KindSections:
		rows, err := parquet.ReadFile[SectionRow](path)
		if err != nil {
			return err
		}
		t.Sections = sectionModels(rows)
	case KindBeats:
		rows, err := parquet.ReadFile[MarkerRow](path)
		if err != nil {
			return err
		}
		t.Beats = markerModels(rows)
	case KindBars:
		rows, err := parquet.ReadFile[MarkerRow](path)
		if err != nil {
			return err
		}
		t.Bars = markerModels(rows)
	default:
		return fmt.Errorf("unknown analysis kind %q", k)
	}
	return nil
}

// Options selects what Read loads.
type Options struct {
	Kinds    []Kind   // Required tables; defaults to segments only
	Optional []Kind   // Tables read when present and left empty otherwise
	Labels   []string // Restrict to these playlist directories
}

// Read loads every playlist directory under root, in label order, with tracks
// in stem order. A track is any stem with a file of one of the requested
// kinds; a stem missing another required kind is a MissingField error.
func Read(root string, opts Options) ([]Playlist, error) {
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = []Kind{KindSegments}
	}
	labels := opts.Labels
	if len(labels) == 0 {
		var err error
		if labels, err = utils.ListDirs(root); err != nil {
			return nil, err
		}
	}
	sort.Strings(labels)

	var out []Playlist
	for _, label := range labels {
		pl, err := readPlaylist(root, label, kinds, opts.Optional)
		if err != nil {
			return nil, err
		}
		out = append(out, pl)
	}
	return out, nil
}

func readPlaylist(root, label string, kinds, optional []Kind) (Playlist, error) {
	dir := filepath.Join(root, label)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Playlist{}, fmt.Errorf("reading playlist %s: %w", label, err)
	}
	stems := make(map[string]bool)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		for _, k := range kinds {
			if stem, ok := strings.CutSuffix(name, k.suffix()); ok && stem != "" {
				stems[stem] = true
			}
		}
	}

	pl := Playlist{Label: label}
	for stem := range stems {
		t := Track{Stem: stem}
		for _, k := range kinds {
			path := Path(root, label, stem, k)
			if _, err := os.Stat(path); err != nil {
				return Playlist{}, models.NewPipelineError(models.KindMissingField, stem,
					fmt.Sprintf("no %s table in %s", k, label), err)
			}
			if err := readKind(path, k, &t); err != nil {
				return Playlist{}, fmt.Errorf("reading %s: %w", path, err)
			}
		}
		for _, k := range optional {
			path := Path(root, label, stem, k)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := readKind(path, k, &t); err != nil {
				return Playlist{}, fmt.Errorf("reading %s: %w", path, err)
			}
		}
		pl.Tracks = append(pl.Tracks, t)
	}
	sort.Slice(pl.Tracks, func(i, j int) bool { return pl.Tracks[i].Stem < pl.Tracks[j].Stem })
	return pl, nil
}
