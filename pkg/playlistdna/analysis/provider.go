package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/himanishpuri/PlaylistDNA/pkg/models"
)

// DirProvider serves analyses stored as <Dir>/<trackID>.json, the layout
// written by Put.
type DirProvider struct {
	Dir string
}

func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{Dir: dir}
}

// Path returns the file holding the analysis of trackID.
func (p *DirProvider) Path(trackID string) string {
	return filepath.Join(p.Dir, trackID+".json")
}

// GetAnalysis reads and decodes the stored analysis of trackID.
func (p *DirProvider) GetAnalysis(ctx context.Context, trackID string) (*models.TrackAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(p.Path(trackID))
	if err != nil {
		return nil, models.NewPipelineError(models.KindUpstreamUnavailable, trackID, "analysis file unavailable", err)
	}
	defer f.Close()
	return Decode(trackID, f)
}

// Has reports whether an analysis for trackID is stored.
func (p *DirProvider) Has(trackID string) bool {
	_, err := os.Stat(p.Path(trackID))
	return err == nil
}

// Put stores a. The directory is created on demand.
func (p *DirProvider) Put(a *models.TrackAnalysis) error {
	if a == nil || a.TrackID == "" {
		return errors.New("analysis without track ID")
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("creating analysis cache: %w", err)
	}
	return WriteFile(p.Path(a.TrackID), a)
}

// Source is anything that returns track analyses.
type Source interface {
	GetAnalysis(ctx context.Context, trackID string) (*models.TrackAnalysis, error)
}

// Cached serves analyses from Dir when present and stores what it fetches
// from Upstream there.
type Cached struct {
	Dir      *DirProvider
	Upstream Source
}

func (c *Cached) GetAnalysis(ctx context.Context, trackID string) (*models.TrackAnalysis, error) {
	if c.Dir.Has(trackID) {
		return c.Dir.GetAnalysis(ctx, trackID)
	}
	a, err := c.Upstream.GetAnalysis(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if err := c.Dir.Put(a); err != nil {
		return nil, fmt.Errorf("caching analysis: %w", err)
	}
	return a, nil
}
