package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/himanishpuri/PlaylistDNA/pkg/logger"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/analysis"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the timbre and top sections of every persisted track",
	Example: `  playlistdna stats
  playlistdna stats --top-sections 3 --out stats.yaml`,
	RunE: runStats,
}

func init() {
	f := statsCmd.Flags()
	f.Int("top-sections", 5, "longest sections summarised per track")
	f.String("out", "", "write the full statistics as YAML to this file")
	f.Bool("sections", false, "print the section rows of each track")
}

func runStats(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()

	out, _ := cmd.Flags().GetString("out")
	showSections, _ := cmd.Flags().GetBool("sections")

	svc, err := newService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
	defer cancel()

	stats, err := svc.Stats(ctx, cfg.DataDir)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Println("\n📭 No tracks with enough data for statistics")
		return nil
	}

	fmt.Printf("\n📊 Statistics for %d track(s):\n\n", len(stats))
	for i, st := range stats {
		fmt.Printf("%d. [%s] %s\n", i+1, st.Playlist, st.Stem)
		fmt.Printf("   Loudness timbre: mean %.2f | std %.2f | skew %.2f | kurtosis %.2f\n",
			st.Segments.Mean[0], st.Segments.Std[0], st.Segments.Skew[0], st.Segments.Kurtosis[0])
		if showSections {
			for _, sec := range st.Sections {
				flag := ""
				switch {
				case sec.Padded:
					flag = " (padded)"
				case sec.Imputed:
					flag = " (imputed)"
				}
				fmt.Printf("   Section %s +%.1fs | loudness %.1f dB | key %d%s\n",
					analysis.FormatStart(sec.Start), sec.Duration, sec.Loudness, sec.Key, flag)
			}
		}
		fmt.Println()
	}

	if out != "" {
		data, err := yaml.Marshal(stats)
		if err != nil {
			return fmt.Errorf("marshalling stats: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Printf("💾 Statistics written to %s\n", out)
	}
	log.Infof("Computed statistics for %d tracks", len(stats))
	return nil
}
