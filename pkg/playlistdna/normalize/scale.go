package normalize

import (
	"fmt"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
)

// Range is the target interval [A, B] of Scale.
type Range struct {
	A float64 `yaml:"a" mapstructure:"a"`
	B float64 `yaml:"b" mapstructure:"b"`
}

func DefaultRange() Range { return Range{A: -1, B: 1} }

func (r Range) validate() error {
	if r.B <= r.A {
		return fmt.Errorf("invalid scale range [%g, %g]", r.A, r.B)
	}
	return nil
}

func check(x []float64, b *Bounds, r Range) error {
	if err := r.validate(); err != nil {
		return err
	}
	if len(x) != len(b.Min) || len(x) != len(b.Max) {
		return models.NewPipelineError(models.KindMissingField, "",
			fmt.Sprintf("vector has %d elements, bounds have %d", len(x), len(b.Min)), nil)
	}
	for i := range b.Min {
		if b.Max[i] == b.Min[i] {
			return models.NewPipelineError(models.KindDegenerateBounds, "",
				fmt.Sprintf("dimension %d has min = max = %g", i, b.Min[i]), nil)
		}
	}
	return nil
}

// Scale maps x into r: a + (x - min) * (b - a) / (max - min), elementwise.
// A dimension with max == min is a DegenerateBounds error.
func Scale(x []float64, b *Bounds, r Range) ([]float64, error) {
	if err := check(x, b, r); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = r.A + (v-b.Min[i])*(r.B-r.A)/(b.Max[i]-b.Min[i])
	}
	return out, nil
}

// Inverse undoes Scale with the same bounds and range.
func Inverse(y []float64, b *Bounds, r Range) ([]float64, error) {
	if err := check(y, b, r); err != nil {
		return nil, err
	}
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = b.Min[i] + (v-r.A)*(b.Max[i]-b.Min[i])/(r.B-r.A)
	}
	return out, nil
}

// ScaleSegments returns copies of segments with scaled timbre. Pitches are copied unchanged.
func ScaleSegments(segments []models.Segment, b *Bounds, r Range) ([]models.Segment, error) {
	out := make([]models.Segment, len(segments))
	for i, s := range segments {
		scaled, err := Scale(s.Timbre, b, r)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		c := s.Clone()
		c.Timbre = scaled
		out[i] = c
	}
	return out, nil
}
