// Package sampling draws a fixed-size, chronologically ordered subset of a
// track's segments by stratifying the sequence into contiguous bins.
package sampling

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
)

type Config struct {
	NumSegments int   `yaml:"num_segments" mapstructure:"num_segments"` // Total segments drawn per track
	NumBins     int   `yaml:"num_bins" mapstructure:"num_bins"`         // Number of contiguous bins
	Seed        int64 `yaml:"seed" mapstructure:"seed"`                 // Seed of the pseudo-random source
}

func DefaultConfig() Config {
	return Config{NumSegments: 50, NumBins: 5, Seed: 1}
}

// PerBin is the number of segments drawn from each bin.
func (c Config) PerBin() int {
	if c.NumBins <= 0 {
		return 0
	}
	return c.NumSegments / c.NumBins
}

// Total is the number of segments a track yields, NumBins * PerBin.
func (c Config) Total() int {
	return c.PerBin() * c.NumBins
}

// Uneven reports whether NumSegments is not a multiple of NumBins. Such a
// configuration still samples PerBin segments per bin, so Total < NumSegments.
func (c Config) Uneven() bool {
	return c.NumBins > 0 && c.NumSegments%c.NumBins != 0
}

func (c Config) Validate() error {
	if c.NumBins <= 0 {
		return errors.New("number of bins must be positive")
	}
	if c.NumSegments < c.NumBins {
		return fmt.Errorf("cannot draw %d segments from %d bins", c.NumSegments, c.NumBins)
	}
	return nil
}

// Sampler draws stratified samples. It is not safe for concurrent use.
type Sampler struct {
	cfg Config
	rng *rand.Rand
}

func New(cfg Config) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// NewWithRand uses rng instead of a source seeded from cfg.Seed.
func NewWithRand(cfg Config, rng *rand.Rand) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("nil random source")
	}
	return &Sampler{cfg: cfg, rng: rng}, nil
}

func (s *Sampler) Config() Config { return s.cfg }

// Indices returns the sorted positions to keep from a sequence of length n.
// The sequence is split into NumBins bins of n/NumBins positions; trailing
// positions beyond NumBins*(n/NumBins) belong to no bin.
func (s *Sampler) Indices(n int) ([]int, error) {
	perBin := s.cfg.PerBin()
	binSize := n / s.cfg.NumBins
	if binSize < perBin {
		return nil, models.NewPipelineError(models.KindInsufficientPopulation, "",
			fmt.Sprintf("bin of %d segments cannot supply %d samples", binSize, perBin), nil)
	}

	idx := make([]int, 0, perBin*s.cfg.NumBins)
	for b := 0; b < s.cfg.NumBins; b++ {
		lo := b * binSize
		for _, off := range s.rng.Perm(binSize)[:perBin] {
			idx = append(idx, lo+off)
		}
	}
	sort.Ints(idx)
	return idx, nil
}

// Sample returns the stratified subset of segments in their original order.
// The returned segments share vector storage with the input.
func (s *Sampler) Sample(segments []models.Segment) ([]models.Segment, error) {
	idx, err := s.Indices(len(segments))
	if err != nil {
		return nil, err
	}
	out := make([]models.Segment, len(idx))
	for i, j := range idx {
		out[i] = segments[j]
	}
	return out, nil
}
