package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/himanishpuri/PlaylistDNA/pkg/logger"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/dataset"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/normalize"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Sample, normalise and flatten the dataset into a feature matrix",
	Long: `Reads every persisted track, draws a stratified sample of its segments, scales
the timbre vectors with population bounds and flattens the sample into one
fixed-width array. Arrays and one-hot labels are written to a Parquet file.

Bounds computed from the training data are saved so a later run (for example
on held-out playlists) can reuse them with --bounds.`,
	Example: `  playlistdna transform
  playlistdna transform --data-dir holdout --bounds data/bounds.yaml --out holdout.parquet`,
	RunE: runTransform,
}

func init() {
	f := transformCmd.Flags()
	f.String("out", "", "feature file (default <data-dir>/features.parquet)")
	f.String("bounds", "", "reuse bounds from this YAML file instead of computing them")
	f.String("bounds-out", "", "where computed bounds are saved (default <data-dir>/bounds.yaml)")
	f.Int("segments", 50, "segments sampled per track")
	f.Int("bins", 5, "contiguous bins segments are drawn from")
	f.Int64("seed", 1, "seed of the sampler")
}

func runTransform(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()

	out, _ := cmd.Flags().GetString("out")
	boundsIn, _ := cmd.Flags().GetString("bounds")
	boundsOut, _ := cmd.Flags().GetString("bounds-out")
	if out == "" {
		out = filepath.Join(cfg.DataDir, "features.parquet")
	}
	if boundsOut == "" {
		boundsOut = filepath.Join(cfg.DataDir, "bounds.yaml")
	}

	var bounds *normalize.Bounds
	if boundsIn != "" {
		b, err := normalize.LoadBounds(boundsIn)
		if err != nil {
			return err
		}
		bounds = b
		log.Infof("Loaded bounds from %s", boundsIn)
	}

	fmt.Println("🔧 Initializing service...")
	svc, err := newService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
	defer cancel()

	fmt.Printf("🧮 Transforming %s...\n", cfg.DataDir)
	res, err := svc.Transform(ctx, cfg.DataDir, bounds)
	if err != nil {
		return err
	}

	if err := dataset.WriteFeatures(out, res); err != nil {
		return err
	}
	if bounds == nil {
		if err := res.Bounds.Save(boundsOut); err != nil {
			return err
		}
	}

	fmt.Println("\n✅ Feature matrix written")
	fmt.Printf("   Tracks:  %s\n", humanize.Comma(int64(len(res.Arrays))))
	fmt.Printf("   Width:   %d\n", res.Width)
	fmt.Printf("   Labels:  %v\n", res.Categories)
	fmt.Printf("   Output:  %s\n", out)
	if bounds == nil {
		fmt.Printf("   Bounds:  %s\n", boundsOut)
	}
	log.Infof("Wrote %d feature rows to %s", len(res.Arrays), out)
	return nil
}
