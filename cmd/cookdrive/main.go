package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cooklabs/cookdrive/internal/config"
	"github.com/cooklabs/cookdrive/internal/version"
)

var (
	home, _            = os.UserHomeDir()
	defaultSessionPath = filepath.Join(home, ".cookdrive", "session.json")
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:           "cookdrive",
	Short:         "Deploy a Cooklang recipe repo to the drive and keep it curated",
	Version:       version.Detailed(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("repo", "r", ".", "Recipe repository directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("session", defaultSessionPath, "Session state file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print detailed version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.AppName, version.Detailed())
		},
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cobra.OnInitialize(setupLogging)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red("ERROR"), err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if v, _ := rootCmd.PersistentFlags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

// loadConfig assembles the effective configuration for a command: repo-local
// .env first, then COOKDRIVE_* environment, then flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	repoDir, _ := cmd.Flags().GetString("repo")

	if err := config.LoadDotenv(repoDir); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("COOKDRIVE")
	v.AutomaticEnv()
	v.SetDefault("drive_url", config.DefaultDriveURL)
	v.SetDefault("remote_folder", config.DefaultRemoteFolder)
	v.SetDefault("marker_file", config.DefaultMarkerFile)

	cfg := &config.Config{
		RepoDir:      repoDir,
		AppleID:      v.GetString("apple_id"),
		DriveURL:     v.GetString("drive_url"),
		RemoteFolder: v.GetString("remote_folder"),
		MarkerFile:   v.GetString("marker_file"),
		Whitelist:    config.SplitFolderList(v.GetString("whitelist")),
	}
	cfg.ApplyEnvFallbacks()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func sessionPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("session")
	return path
}
