package features

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/labels"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/normalize"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/sampling"
)

// Track is one filtered track of a dataset.
type Track struct {
	Name     string // File stem
	Label    string // Playlist label
	Segments []models.Segment
}

// Result holds the model input of one transform run. Row i of every field
// belongs to the same track.
type Result struct {
	Names      []string
	Labels     []string
	Arrays     [][]float64
	Bounds     *normalize.Bounds
	Width      int
	Categories []string
	OneHot     *mat.Dense
}

// LabelIndex returns the one-hot column of track i.
func (r *Result) LabelIndex(i int) int {
	for j, v := range mat.Row(nil, i, r.OneHot) {
		if v == 1 {
			return j
		}
	}
	return -1
}

// Transformer samples, scales and flattens a dataset.
type Transformer struct {
	Sampler *sampling.Sampler
	Range   normalize.Range
	Layout  Layout
}

func NewTransformer(s *sampling.Sampler, r normalize.Range, l Layout) (*Transformer, error) {
	if s == nil {
		return nil, errors.New("nil sampler")
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &Transformer{Sampler: s, Range: r, Layout: l}, nil
}

// Transform samples every track, computes population bounds over the sampled
// sets unless bounds is given, scales timbre, flattens and one-hot encodes labels.
func (t *Transformer) Transform(tracks []Track, bounds *normalize.Bounds) (*Result, error) {
	if len(tracks) == 0 {
		return nil, models.NewPipelineError(models.KindInsufficientPopulation, "", "empty dataset", nil)
	}

	sampled := make([][]models.Segment, len(tracks))
	for i, tr := range tracks {
		s, err := t.Sampler.Sample(tr.Segments)
		if err != nil {
			return nil, withTrack(err, tr.Name)
		}
		sampled[i] = s
	}

	if bounds == nil {
		b, err := normalize.Compute(sampled)
		if err != nil {
			return nil, fmt.Errorf("computing population bounds: %w", err)
		}
		bounds = b
	} else if err := bounds.Validate(); err != nil {
		return nil, fmt.Errorf("supplied bounds: %w", err)
	}

	res := &Result{
		Names:  make([]string, len(tracks)),
		Labels: make([]string, len(tracks)),
		Bounds: bounds,
	}
	scaled := make([][]models.Segment, len(tracks))
	for i, tr := range tracks {
		s, err := normalize.ScaleSegments(sampled[i], bounds, t.Range)
		if err != nil {
			return nil, withTrack(err, tr.Name)
		}
		scaled[i] = s
		res.Names[i] = tr.Name
		res.Labels[i] = tr.Label
	}

	arrays, err := FlattenAll(scaled, t.Layout)
	if err != nil {
		return nil, err
	}
	res.Arrays = arrays
	res.Width = len(arrays[0])

	oneHot, cats, err := labels.Encode(res.Labels)
	if err != nil {
		return nil, fmt.Errorf("encoding labels: %w", err)
	}
	res.OneHot, res.Categories = oneHot, cats
	return res, nil
}

func withTrack(err error, track string) error {
	return fmt.Errorf("track %s: %w", track, err)
}
