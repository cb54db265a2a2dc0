package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/himanishpuri/PlaylistDNA/pkg/logger"
	"github.com/himanishpuri/PlaylistDNA/pkg/models"
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna"
	"github.com/himanishpuri/PlaylistDNA/pkg/utils"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch, filter and persist the audio analysis of playlist tracks",
	Example: `  playlistdna collect --playlist 37i9dQZF1DXcBWIGoYBM5M --label pop
  playlistdna collect --playlist https://open.spotify.com/playlist/37i9dQZF1DWXRqgorJj26U --label rock
  playlistdna collect --user spotify --keyword jazz --limit 3 --analysis-cache cache/`,
	RunE: runCollect,
}

func init() {
	f := collectCmd.Flags()
	f.StringSlice("playlist", nil, "playlist ID, URI or URL to collect (repeatable)")
	f.StringSlice("label", nil, "label of each --playlist, in order (default: playlist ID)")
	f.StringSlice("user", nil, "select playlists of these users instead of --playlist")
	f.StringSlice("keyword", nil, "keep user playlists whose name contains one of these words or phrases")
	f.StringSlice("exclude", nil, "drop user playlists whose name contains one of these words")
	f.Int("start", 0, "index of the first selected user playlist")
	f.Int("limit", 0, "number of user playlists collected (0 for all)")
	f.String("analysis-cache", "", "directory caching fetched analyses as JSON")
	f.String("auth", "client", "Spotify auth flow (client or user)")
	f.Float64("min-confidence", 0.5, "initial segment confidence threshold")
	f.Float64("min-duration", 0.25, "initial segment duration threshold in seconds")
}

// explicitSelections turns --playlist/--label into selections.
func explicitSelections(refs, labels []string) ([]playlistdna.PlaylistSelection, error) {
	if len(labels) > len(refs) {
		return nil, fmt.Errorf("%d labels given for %d playlists", len(labels), len(refs))
	}
	sels := make([]playlistdna.PlaylistSelection, 0, len(refs))
	for i, ref := range refs {
		kind, id, err := utils.ExtractSpotifyID(ref)
		if err != nil {
			return nil, err
		}
		if kind != "" && kind != "playlist" {
			return nil, fmt.Errorf("%s is a %s, not a playlist", ref, kind)
		}
		sel := playlistdna.PlaylistSelection{Playlist: models.Playlist{ID: id}}
		if i < len(labels) {
			sel.Label = labels[i]
		}
		sels = append(sels, sel)
	}
	return sels, nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()

	refs, _ := cmd.Flags().GetStringSlice("playlist")
	labels, _ := cmd.Flags().GetStringSlice("label")
	users, _ := cmd.Flags().GetStringSlice("user")
	if len(refs) == 0 && len(users) == 0 {
		return fmt.Errorf("either --playlist or --user is required")
	}
	if len(refs) > 0 && len(users) > 0 {
		return fmt.Errorf("cannot combine --playlist and --user")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Hour)
	defer cancel()

	client, err := cfg.newSpotifyClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	fmt.Println("🔧 Initializing service...")
	svc, err := newService(
		playlistdna.WithPlaylistProvider(client),
		playlistdna.WithAnalysisProvider(cfg.analysisSource(client)),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	var sels []playlistdna.PlaylistSelection
	if len(refs) > 0 {
		if sels, err = explicitSelections(refs, labels); err != nil {
			return err
		}
	} else {
		pls, err := selectPlaylists(ctx, cmd, svc)
		if err != nil {
			return err
		}
		for _, p := range pls {
			sels = append(sels, playlistdna.PlaylistSelection{Playlist: p})
		}
	}
	if len(sels) == 0 {
		fmt.Println("\n📭 No playlists selected")
		return nil
	}

	fmt.Printf("🎵 Collecting %d playlist(s) into %s...\n", len(sels), cfg.DataDir)
	fmt.Println("   This may take a while for large playlists")

	report, err := svc.Collect(ctx, sels)
	if report != nil {
		printCollectReport(report)
	}
	if err != nil {
		log.Errorf("Collect failed: %v", err)
		return fmt.Errorf("collection aborted: %w", err)
	}
	return nil
}

func printCollectReport(r *playlistdna.CollectReport) {
	fmt.Println("\n✅ Collection finished")
	fmt.Printf("   Run:      %s\n", r.RunID)
	fmt.Printf("   Labels:   %d\n", len(r.Labels))
	fmt.Printf("   Fetched:  %s tracks\n", humanize.Comma(int64(r.Fetched)))
	fmt.Printf("   Stored:   %s tracks\n", humanize.Comma(int64(len(r.Tracks))))
	fmt.Printf("   Skipped:  %s tracks\n", humanize.Comma(int64(len(r.Skipped))))
	if size, err := utils.DirSize(r.DataDir); err == nil {
		fmt.Printf("   Dataset:  %s (%s)\n", r.DataDir, humanize.Bytes(uint64(size)))
	}

	if len(r.Skipped) > 0 {
		fmt.Println("\n⚠️  Skipped tracks:")
		for _, s := range r.Skipped {
			fmt.Printf("   [%s] %s (%s): %v\n", s.Playlist, s.Name, s.TrackID, s.Reason)
		}
	}
}
