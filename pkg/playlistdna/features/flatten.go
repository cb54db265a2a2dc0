// Package features turns sampled, scaled segments into fixed-width numeric
// arrays and summary statistics.
package features

import (
	"fmt"
	"strings"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
)

// Field is one per-segment column group of a feature row.
type Field string

const (
	FieldStart      Field = "start"
	FieldDuration   Field = "duration"
	FieldConfidence Field = "confidence"
	FieldPitches    Field = "pitches"
	FieldTimbre     Field = "timbre"
)

func (f Field) width() int {
	switch f {
	case FieldPitches, FieldTimbre:
		return models.VectorLen
	case FieldStart, FieldDuration, FieldConfidence:
		return 1
	default:
		return 0
	}
}

// Layout selects, in order, the fields written for each segment.
type Layout struct {
	Fields []Field
}

func DefaultLayout() Layout {
	return Layout{Fields: []Field{FieldStart, FieldDuration, FieldConfidence, FieldPitches, FieldTimbre}}
}

// ParseLayout reads a comma separated field list such as "pitches,timbre".
func ParseLayout(s string) (Layout, error) {
	var l Layout
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		l.Fields = append(l.Fields, Field(part))
	}
	return l, l.Validate()
}

func (l Layout) Validate() error {
	if len(l.Fields) == 0 {
		return fmt.Errorf("layout has no fields")
	}
	seen := make(map[Field]bool, len(l.Fields))
	for _, f := range l.Fields {
		if f.width() == 0 {
			return fmt.Errorf("unknown field %q", f)
		}
		if seen[f] {
			return fmt.Errorf("field %q listed twice", f)
		}
		seen[f] = true
	}
	return nil
}

// RowWidth is the number of values written per segment.
func (l Layout) RowWidth() int {
	w := 0
	for _, f := range l.Fields {
		w += f.width()
	}
	return w
}

func (l Layout) String() string {
	parts := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		parts[i] = string(f)
	}
	return strings.Join(parts, ",")
}

// Flatten concatenates the layout's fields of every segment, in segment order.
func Flatten(segments []models.Segment, l Layout) ([]float64, error) {
	out := make([]float64, 0, len(segments)*l.RowWidth())
	for i, s := range segments {
		for _, f := range l.Fields {
			switch f {
			case FieldStart:
				out = append(out, s.Start)
			case FieldDuration:
				out = append(out, s.Duration)
			case FieldConfidence:
				out = append(out, s.Confidence)
			case FieldPitches, FieldTimbre:
				v := s.Pitches
				if f == FieldTimbre {
					v = s.Timbre
				}
				if len(v) != models.VectorLen {
					return nil, models.NewPipelineError(models.KindMissingField, "",
						fmt.Sprintf("segment %d: %s has %d values", i, f, len(v)), nil)
				}
				out = append(out, v...)
			default:
				return nil, fmt.Errorf("unknown field %q", f)
			}
		}
	}
	return out, nil
}

// FlattenAll flattens every track and checks that all arrays share one length.
func FlattenAll(tracks [][]models.Segment, l Layout) ([][]float64, error) {
	out := make([][]float64, len(tracks))
	for i, segs := range tracks {
		arr, err := Flatten(segs, l)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		if i > 0 && len(arr) != len(out[0]) {
			return nil, fmt.Errorf("track %d: array length %d differs from %d", i, len(arr), len(out[0]))
		}
		out[i] = arr
	}
	return out, nil
}
