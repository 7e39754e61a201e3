package main

import (
	"errors"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/cooklabs/cookdrive/internal/deploy"
	"github.com/cooklabs/cookdrive/internal/drivesdk"
	"github.com/cooklabs/cookdrive/internal/gitrev"
)

const lockFileName = ".cookdrive.lock"

var errDeployRunning = errors.New("another deploy is already running for this repo")

func init() {
	rootCmd.AddCommand(newDeployCmd())
}

func newDeployCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Sync the whitelisted recipe folders to the drive",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// there must be exactly one writer of the remote tree
			lock := flock.New(filepath.Join(cfg.RepoDir, lockFileName))
			locked, err := lock.TryLock()
			if err != nil {
				return err
			}
			if !locked {
				return errDeployRunning
			}
			defer lock.Unlock()

			repo, err := gitrev.Open(cfg.RepoDir)
			if err != nil {
				return err
			}

			sdk := drivesdk.New(cfg.DriveURL)
			state, err := drivesdk.LoadState(sessionPath(cmd))
			if err != nil {
				return err
			}

			session, err := sdk.Login(ctx, cfg.AppleID, state)
			if err != nil {
				return err
			}
			if session.Requires2FA() {
				return errors.New("interactive verification required, run `cookdrive login` first")
			}

			driveRoot, err := sdk.Root(ctx)
			if err != nil {
				return err
			}

			engine := deploy.NewEngine(cfg, repo, osfs.New(cfg.RepoDir))
			return engine.Run(ctx, deploy.WrapNode(driveRoot))
		},
	}
}
