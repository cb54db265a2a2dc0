package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/himanishpuri/PlaylistDNA/pkg/logger"
)

var (
	configFile string
	quiet      bool

	v   = viper.New()
	cfg *appConfig
)

var rootCmd = &cobra.Command{
	Use:   "playlistdna",
	Short: "Build audio-analysis datasets from Spotify playlists",
	Long: `PlaylistDNA collects the audio analysis of every track in a set of playlists,
filters and persists the segments per playlist, and turns the result into a
fixed-width, normalised feature matrix with one-hot playlist labels.

Typical flow:
  playlistdna playlists --user spotify --keyword rock
  playlistdna collect --user spotify --keyword rock --count 3
  playlistdna transform --out features.parquet
  playlistdna list`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is ./playlistdna.yaml or $HOME/.config/playlistdna/playlistdna.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("data-dir", "data", "dataset root directory")
	rootCmd.PersistentFlags().String("db", "playlistdna.sqlite3", "path to the SQLite catalog")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "do not print the banner")

	v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	v.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(playlistsCmd, collectCmd, transformCmd, statsCmd, listCmd)
}

// initConfig reads in the config file and environment variables.
func initConfig() {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "playlistdna"))
		}
		v.SetConfigName("playlistdna")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err == nil {
		logger.Debugf("Using config file: %s", v.ConfigFileUsed())
	} else if configFile != "" {
		fmt.Fprintf(os.Stderr, "❌ Failed to read config %s: %v\n", configFile, err)
		os.Exit(1)
	}
}

// initializeConfig binds the command's flags and decodes the configuration.
func initializeConfig(cmd *cobra.Command) error {
	if err := bindFlags(cmd, v); err != nil {
		return err
	}
	c, err := loadConfig(v)
	if err != nil {
		return err
	}
	cfg = c
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if !quiet {
		printBanner()
	}
	return nil
}

// bindFlags applies config values to unset flags of cmd. Flags named in
// flagKeys bind to the nested configuration key instead of their own name.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := f.Name
		if k, ok := flagKeys[f.Name]; ok {
			key = k
		}
		if !f.Changed && v.IsSet(key) {
			val := v.Get(key)
			if err := cmd.Flags().Set(f.Name, flagValue(val)); err != nil {
				lastErr = err
			}
		}
		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

// flagKeys maps command flags onto nested configuration keys.
var flagKeys = map[string]string{
	"analysis-cache": "paths.analysis_cache",
	"auth":           "spotify.auth",
	"segments":       "sampling.num_segments",
	"bins":           "sampling.num_bins",
	"seed":           "sampling.seed",
	"min-confidence": "filter.min_confidence",
	"min-duration":   "filter.min_duration",
	"top-sections":   "top_sections",
}

func flagValue(val any) string {
	switch x := val.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(x, ",")
	default:
		return fmt.Sprintf("%v", val)
	}
}
