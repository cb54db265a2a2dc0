package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
)

// FilterConfig controls segment selection and threshold relaxation.
type FilterConfig struct {
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"` // Keep segments with confidence strictly above this
	MinDuration   float64 `yaml:"min_duration" mapstructure:"min_duration"`     // Keep segments with duration strictly above this (seconds)
	Step          float64 `yaml:"step" mapstructure:"step"`                     // Amount both thresholds drop per relaxation
	MinSegments   int     `yaml:"min_segments" mapstructure:"min_segments"`     // Required number of surviving segments
	Floor         float64 `yaml:"floor" mapstructure:"floor"`                   // Thresholds are never lowered below this
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinConfidence: 0.5,
		MinDuration:   0.25,
		Step:          0.05,
		MinSegments:   100,
		Floor:         0,
	}
}

func (c FilterConfig) validate() error {
	if c.Step <= 0 {
		return errors.New("filter step must be positive")
	}
	if c.MinSegments <= 0 {
		return errors.New("filter min segments must be positive")
	}
	return nil
}

// FilterResult is the filtered segment set and the thresholds that produced it.
type FilterResult struct {
	Segments      []models.Segment
	MinConfidence float64
	MinDuration   float64
	Relaxations   int
}

// ErrTooFewSegments is returned when the thresholds reach the floor without
// leaving enough segments. It matches models.ErrInsufficientPopulation.
var ErrTooFewSegments = models.NewPipelineError(models.KindInsufficientPopulation, "",
	"too few segments survive the confidence/duration filter", nil)

// FilterSegments keeps the segments whose confidence and duration exceed the
// configured thresholds. While fewer than MinSegments survive, both thresholds
// drop by Step (never below Floor) and the original sequence is filtered again.
func FilterSegments(segments []models.Segment, cfg FilterConfig) (*FilterResult, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(segments) < cfg.MinSegments {
		return nil, fmt.Errorf("%d segments, need %d: %w", len(segments), cfg.MinSegments, ErrTooFewSegments)
	}

	conf, dur := cfg.MinConfidence, cfg.MinDuration
	relaxations := 0
	for {
		kept := selectSegments(segments, conf, dur)
		if len(kept) >= cfg.MinSegments {
			return &FilterResult{
				Segments:      kept,
				MinConfidence: conf,
				MinDuration:   dur,
				Relaxations:   relaxations,
			}, nil
		}
		if conf <= cfg.Floor && dur <= cfg.Floor {
			return nil, fmt.Errorf("%d of %d segments left at floor %.2f: %w",
				len(kept), len(segments), cfg.Floor, ErrTooFewSegments)
		}
		conf = lower(conf, cfg.Step, cfg.Floor)
		dur = lower(dur, cfg.Step, cfg.Floor)
		relaxations++
	}
}

// lower drops v by step, clamped at floor. Values already at or below the floor stay put.
func lower(v, step, floor float64) float64 {
	if v <= floor {
		return v
	}
	return math.Max(v-step, floor)
}

func selectSegments(segments []models.Segment, minConf, minDur float64) []models.Segment {
	kept := make([]models.Segment, 0, len(segments))
	for _, s := range segments {
		if s.Confidence > minConf && s.Duration > minDur {
			c := s.Clone()
			c.StartMinute = FormatStart(s.Start)
			kept = append(kept, c)
		}
	}
	return kept
}

// FormatStart renders a start time in seconds as mm:ss:cc (cc = centiseconds).
func FormatStart(secs float64) string {
	if math.IsNaN(secs) || secs < 0 {
		return ""
	}
	total := int(math.Round(secs * 100))
	whole := total / 100
	return fmt.Sprintf("%02d:%02d:%02d", whole/60, whole%60, total%100)
}
