package features

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
)

// TimbreStats summarises each timbre dimension over a track's segments.
type TimbreStats struct {
	Min      []float64
	Max      []float64
	Mean     []float64
	Std      []float64 // Sample standard deviation
	Skew     []float64
	Kurtosis []float64 // Excess kurtosis
}

// minStatSegments is the smallest population for which excess kurtosis is defined.
const minStatSegments = 4

// SegmentStats computes per-dimension moments of the timbre vectors. A constant
// dimension reports zero skewness and kurtosis.
func SegmentStats(segments []models.Segment) (*TimbreStats, error) {
	if len(segments) < minStatSegments {
		return nil, models.NewPipelineError(models.KindInsufficientPopulation, "",
			fmt.Sprintf("%d segments, need %d for statistics", len(segments), minStatSegments), nil)
	}
	st := &TimbreStats{
		Min:      make([]float64, models.VectorLen),
		Max:      make([]float64, models.VectorLen),
		Mean:     make([]float64, models.VectorLen),
		Std:      make([]float64, models.VectorLen),
		Skew:     make([]float64, models.VectorLen),
		Kurtosis: make([]float64, models.VectorLen),
	}
	col := make([]float64, len(segments))
	for d := 0; d < models.VectorLen; d++ {
		for i, s := range segments {
			if len(s.Timbre) != models.VectorLen {
				return nil, models.NewPipelineError(models.KindMissingField, "",
					fmt.Sprintf("segment %d has %d timbre values", i, len(s.Timbre)), nil)
			}
			col[i] = s.Timbre[d]
		}
		st.Min[d] = floats.Min(col)
		st.Max[d] = floats.Max(col)
		st.Mean[d], st.Std[d] = stat.MeanStdDev(col, nil)
		if st.Std[d] > 0 {
			st.Skew[d] = stat.Skew(col, nil)
			st.Kurtosis[d] = stat.ExKurtosis(col, nil)
		}
	}
	return st, nil
}

// SectionRow describes one of a track's longest sections.
type SectionRow struct {
	Start     float64
	Duration  float64
	Loudness  float64
	Key       int       // -1 when no key was detected
	KeyOneHot []float64 // VectorLen columns, all zero for Key -1
	Timbre    []float64 // Mean timbre of the segments starting inside the section
	Imputed   bool      // Timbre is the mean of the populated sections
	Padded    bool      // Row inserted to reach the requested count
}

func keyOneHot(key int) []float64 {
	v := make([]float64, models.VectorLen)
	if key >= 0 && key < models.VectorLen {
		v[key] = 1
	}
	return v
}

// SectionStats returns top rows: the top longest sections in time order with
// their mean segment timbre, loudness and one-hot key. Sections without
// segments get the mean timbre of the others. Tracks with fewer sections are
// padded at the middle with the average row, copying the middle section's key
// and loudness.
func SectionStats(segments []models.Segment, sections []models.Section, top int) ([]SectionRow, error) {
	if top <= 0 {
		return nil, fmt.Errorf("section count must be positive, got %d", top)
	}
	if len(sections) == 0 {
		return nil, models.NewPipelineError(models.KindMissingField, "", "track has no sections", nil)
	}

	longest := make([]int, len(sections))
	for i := range longest {
		longest[i] = i
	}
	sort.SliceStable(longest, func(a, b int) bool {
		return sections[longest[a]].Duration > sections[longest[b]].Duration
	})
	if len(longest) > top {
		longest = longest[:top]
	}
	sort.Ints(longest)

	rows := make([]SectionRow, 0, top)
	var populated [][]float64
	for _, i := range longest {
		sec := sections[i]
		row := SectionRow{
			Start:     sec.Start,
			Duration:  sec.Duration,
			Loudness:  sec.Loudness,
			Key:       sec.Key,
			KeyOneHot: keyOneHot(sec.Key),
		}
		if mean, ok := meanTimbre(segments, sec.Start, sec.End()); ok {
			row.Timbre = mean
			populated = append(populated, mean)
		}
		rows = append(rows, row)
	}
	if len(populated) == 0 {
		return nil, models.NewPipelineError(models.KindInsufficientPopulation, "",
			"no segment starts inside the longest sections", nil)
	}

	avg := meanOf(populated)
	for i := range rows {
		if rows[i].Timbre == nil {
			rows[i].Timbre = append([]float64(nil), avg...)
			rows[i].Imputed = true
		}
	}

	if missing := top - len(rows); missing > 0 {
		all := make([][]float64, len(rows))
		for i, r := range rows {
			all[i] = r.Timbre
		}
		rowAvg := meanOf(all)
		mid := len(rows) / 2
		filler := rows[mid]
		pad := make([]SectionRow, missing)
		for j := range pad {
			pad[j] = SectionRow{
				Start:     filler.Start,
				Duration:  filler.Duration,
				Loudness:  filler.Loudness,
				Key:       filler.Key,
				KeyOneHot: keyOneHot(filler.Key),
				Timbre:    append([]float64(nil), rowAvg...),
				Padded:    true,
			}
		}
		rows = append(rows[:mid], append(pad, rows[mid:]...)...)
	}
	return rows, nil
}

func meanTimbre(segments []models.Segment, start, end float64) ([]float64, bool) {
	sum := make([]float64, models.VectorLen)
	n := 0
	for _, s := range segments {
		if s.Start >= start && s.Start < end && len(s.Timbre) == models.VectorLen {
			floats.Add(sum, s.Timbre)
			n++
		}
	}
	if n == 0 {
		return nil, false
	}
	floats.Scale(1/float64(n), sum)
	return sum, true
}

func meanOf(vs [][]float64) []float64 {
	out := make([]float64, models.VectorLen)
	for _, v := range vs {
		floats.Add(out, v)
	}
	floats.Scale(1/float64(len(vs)), out)
	return out
}
