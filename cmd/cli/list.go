package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/himanishpuri/PlaylistDNA/pkg/logger"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna"
	"github.com/himanishpuri/PlaylistDNA/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List collection runs, the tracks of one run, or delete a run",
	Example: `  playlistdna list
  playlistdna list --run 0f8fad5b-d9cb-469f-a165-70867728950e
  playlistdna list --delete 0f8fad5b-d9cb-469f-a165-70867728950e`,
	RunE: runList,
}

func init() {
	f := listCmd.Flags()
	f.String("run", "", "list the tracks of this run")
	f.String("delete", "", "remove this run from the catalog")
	f.Bool("purge", false, "with --delete, also remove the playlist directories only this run wrote")
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()

	runID, _ := cmd.Flags().GetString("run")
	deleteID, _ := cmd.Flags().GetString("delete")
	purge, _ := cmd.Flags().GetBool("purge")
	for _, id := range []string{runID, deleteID} {
		if id != "" && !utils.IsUUID(id) {
			return fmt.Errorf("invalid run ID %q", id)
		}
	}

	svc, err := newService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	switch {
	case deleteID != "":
		return deleteRun(svc, deleteID, purge)
	case runID != "":
		return listTracks(svc, runID)
	}

	runs, err := svc.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("\n📭 No runs in catalog")
		log.Info("No runs in catalog")
		return nil
	}

	fmt.Printf("\n📚 Found %d run(s):\n\n", len(runs))
	for i, r := range runs {
		count, err := svc.CountTracks(r.ID)
		if err != nil {
			return fmt.Errorf("failed to count tracks of %s: %w", r.ID, err)
		}
		fmt.Printf("%d. %s (%s)\n", i+1, r.ID, humanize.Time(r.StartedAt))
		fmt.Printf("   Data:   %s", r.DataDir)
		if size, err := utils.DirSize(r.DataDir); err == nil {
			fmt.Printf(" (%s)", humanize.Bytes(uint64(size)))
		}
		fmt.Println()
		fmt.Printf("   Tracks: %s\n", humanize.Comma(int64(count)))
		fmt.Println()
	}
	log.Infof("Listed %d runs", len(runs))
	return nil
}

func listTracks(svc playlistdna.Service, runID string) error {
	run, err := svc.GetRun(runID)
	if err != nil {
		return err
	}
	tracks, err := svc.ListTracks(run.ID)
	if err != nil {
		return fmt.Errorf("failed to list tracks: %w", err)
	}
	if len(tracks) == 0 {
		fmt.Printf("\n📭 No tracks for run %s\n", runID)
		return nil
	}

	fmt.Printf("\n🎵 %d track(s) in run %s:\n\n", len(tracks), runID)
	for i, t := range tracks {
		fmt.Printf("%d. [%s] \"%s\" by %s\n", i+1, t.Playlist, t.Name, t.Artists)
		fmt.Printf("   Segments: %d of %d kept | confidence ≥ %.2f | duration ≥ %.2fs",
			t.KeptSegments, t.RawSegments, t.MinConfidence, t.MinDuration)
		if t.Relaxations > 0 {
			fmt.Printf(" | relaxed %d×", t.Relaxations)
		}
		fmt.Println()
		fmt.Printf("   File:     %s\n", t.FileStem)
		fmt.Println()
	}
	return nil
}

func deleteRun(svc playlistdna.Service, runID string, purge bool) error {
	log := logger.GetLogger()

	if !purge {
		if err := svc.DeleteRun(runID); err != nil {
			return fmt.Errorf("failed to delete run: %w", err)
		}
		fmt.Printf("\n✅ Deleted run %s from the catalog\n", runID)
		log.Infof("Deleted run %s", runID)
		return nil
	}

	report, err := svc.PurgeRun(runID)
	if report != nil {
		fmt.Printf("\n✅ Deleted run %s from the catalog\n", runID)
		for _, label := range report.Removed {
			fmt.Printf("🗑️  Removed %s\n", filepath.Join(report.DataDir, label))
		}
		for _, label := range report.Kept {
			fmt.Printf("📁 Kept %s (used by another run)\n", filepath.Join(report.DataDir, label))
		}
	}
	if err != nil {
		return fmt.Errorf("failed to purge run: %w", err)
	}
	return nil
}
