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
	"github.com/himanishpuri/PlaylistDNA/pkg/playlistdna/playlists"
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List the public playlists of users, filtered by keyword",
	Example: `  playlistdna playlists --user spotify --keyword rock --exclude karaoke
  playlistdna playlists --user spotify --user filtr --keyword "chill vibes" --limit 20`,
	RunE: runPlaylists,
}

func init() {
	f := playlistsCmd.Flags()
	f.StringSlice("user", nil, "Spotify user whose playlists are searched (repeatable)")
	f.StringSlice("keyword", nil, "keep playlists whose name contains one of these words or phrases")
	f.StringSlice("exclude", nil, "drop playlists whose name contains one of these words")
	f.Int("start", 0, "index of the first playlist shown")
	f.Int("limit", 0, "maximum number of playlists shown (0 for all)")
}

// selectPlaylists resolves the users/keyword flags of cmd into a ranked playlist list.
func selectPlaylists(ctx context.Context, cmd *cobra.Command, svc playlistdna.Service) ([]models.Playlist, error) {
	users, _ := cmd.Flags().GetStringSlice("user")
	keywords, _ := cmd.Flags().GetStringSlice("keyword")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	start, _ := cmd.Flags().GetInt("start")
	limit, _ := cmd.Flags().GetInt("limit")

	if len(users) == 0 {
		return nil, fmt.Errorf("at least one --user is required")
	}
	pls, err := svc.ListPlaylists(ctx, users, keywords, exclude)
	if err != nil {
		return nil, err
	}
	return playlists.Range(pls, start, limit), nil
}

func runPlaylists(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	client, err := cfg.newSpotifyClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	fmt.Println("🔧 Initializing service...")
	svc, err := newService(playlistdna.WithPlaylistProvider(client))
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	fmt.Println("🔍 Searching playlists...")
	pls, err := selectPlaylists(ctx, cmd, svc)
	if err != nil {
		return err
	}

	if len(pls) == 0 {
		fmt.Println("\n📭 No playlists matched")
		log.Info("No playlists matched")
		return nil
	}

	fmt.Printf("\n📚 Found %d playlist(s):\n\n", len(pls))
	for i, p := range pls {
		fmt.Printf("%d. \"%s\" by %s\n", i+1, p.Name, p.Owner)
		fmt.Printf("   Tracks: %s | ID: %s\n", humanize.Comma(int64(p.TrackTotal)), p.ID)
		fmt.Println()
	}
	log.Infof("Listed %d playlists", len(pls))
	return nil
}
