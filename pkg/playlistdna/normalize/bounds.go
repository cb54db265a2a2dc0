// Package normalize computes dataset-wide timbre bounds and min-max scales
// timbre vectors into a target range.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
)

// Bounds holds per-dimension minima and maxima of timbre vectors.
type Bounds struct {
	Min []float64 `yaml:"min"`
	Max []float64 `yaml:"max"`
}

func emptyBounds() *Bounds {
	b := &Bounds{Min: make([]float64, models.VectorLen), Max: make([]float64, models.VectorLen)}
	for i := range b.Min {
		b.Min[i] = math.Inf(1)
		b.Max[i] = math.Inf(-1)
	}
	return b
}

// Validate checks that both vectors have VectorLen finite entries with Max >= Min.
func (b *Bounds) Validate() error {
	if b == nil {
		return errors.New("nil bounds")
	}
	if len(b.Min) != models.VectorLen || len(b.Max) != models.VectorLen {
		return fmt.Errorf("bounds have %d/%d dimensions, want %d", len(b.Min), len(b.Max), models.VectorLen)
	}
	for i := range b.Min {
		if math.IsInf(b.Min[i], 0) || math.IsNaN(b.Min[i]) || math.IsInf(b.Max[i], 0) || math.IsNaN(b.Max[i]) {
			return fmt.Errorf("dimension %d is not finite", i)
		}
		if b.Max[i] < b.Min[i] {
			return fmt.Errorf("dimension %d: max %g < min %g", i, b.Max[i], b.Min[i])
		}
	}
	return nil
}

// Contains reports whether every element of v lies within the bounds.
func (b *Bounds) Contains(v []float64) bool {
	if len(v) != len(b.Min) {
		return false
	}
	for i, x := range v {
		if x < b.Min[i] || x > b.Max[i] {
			return false
		}
	}
	return true
}

// TrackBounds returns the elementwise min and max of the segments' timbre vectors.
func TrackBounds(segments []models.Segment) (*Bounds, error) {
	if len(segments) == 0 {
		return nil, models.NewPipelineError(models.KindInsufficientPopulation, "", "no segments to bound", nil)
	}
	b := emptyBounds()
	for i, s := range segments {
		if len(s.Timbre) != models.VectorLen {
			return nil, models.NewPipelineError(models.KindMissingField, "",
				fmt.Sprintf("segment %d has %d timbre values", i, len(s.Timbre)), nil)
		}
		for d, x := range s.Timbre {
			b.Min[d] = math.Min(b.Min[d], x)
			b.Max[d] = math.Max(b.Max[d], x)
		}
	}
	return b, nil
}

// PopulationBounds aggregates per-track bounds: the minimum of the minima and
// the maximum of the maxima.
func PopulationBounds(perTrack []*Bounds) (*Bounds, error) {
	if len(perTrack) == 0 {
		return nil, models.NewPipelineError(models.KindInsufficientPopulation, "", "no tracks to bound", nil)
	}
	out := emptyBounds()
	col := make([]float64, len(perTrack))
	for d := 0; d < models.VectorLen; d++ {
		for i, tb := range perTrack {
			col[i] = tb.Min[d]
		}
		out.Min[d] = floats.Min(col)
		for i, tb := range perTrack {
			col[i] = tb.Max[d]
		}
		out.Max[d] = floats.Max(col)
	}
	return out, nil
}

// Compute runs both phases over the sampled segment sets of a dataset.
func Compute(tracks [][]models.Segment) (*Bounds, error) {
	perTrack := make([]*Bounds, 0, len(tracks))
	for i, segs := range tracks {
		b, err := TrackBounds(segs)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		perTrack = append(perTrack, b)
	}
	return PopulationBounds(perTrack)
}

// Save writes the bounds as YAML.
func (b *Bounds) Save(path string) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshalling bounds: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing bounds %s: %w", path, err)
	}
	return nil
}

// LoadBounds reads bounds written by Save.
func LoadBounds(path string) (*Bounds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bounds %s: %w", path, err)
	}
	var b Bounds
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing bounds %s: %w", path, err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("bounds %s: %w", path, err)
	}
	return &b, nil
}
