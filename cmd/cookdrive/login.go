package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cooklabs/cookdrive/internal/drivesdk"
)

func init() {
	rootCmd.AddCommand(newLoginCmd())
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the drive and trust this session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(cmd)
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
				fmt.Print("Enter the code you received on one of your approved devices: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				code := strings.TrimSpace(line)

				if err := session.Validate2FA(ctx, code); err != nil {
					return fmt.Errorf("failed to verify security code: %w", err)
				}

				if err := session.Trust(ctx); err != nil {
					// not fatal: the code will just be asked again in a few weeks
					slog.Warn("could not trust session", "error", err)
				}
			}

			if err := drivesdk.SaveState(sessionPath(cmd), session.State()); err != nil {
				return err
			}

			fmt.Printf("%s %s\n", green("Logged in as"), cfg.AppleID)
			return nil
		},
	}
}
