package cmd

import (
	"fmt"

	"github.com/smazurov/lumenode/internal/logging"
	"github.com/smazurov/lumenode/internal/updater"
	"github.com/spf13/cobra"
)

// CreateUpdateCmd creates the self-update command.
func CreateUpdateCmd() *cobra.Command {
	var checkOnly bool
	var prerelease bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update lumenode to the latest release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})

			u, err := updater.New("smazurov/lumenode", prerelease)
			if err != nil {
				return err
			}

			release, err := u.Check(cmd.Context())
			if err != nil {
				return err
			}
			if !release.Available {
				fmt.Printf("Already up to date (%s)\n", release.CurrentVersion)
				return nil
			}

			fmt.Printf("Update available: %s -> %s\n", release.CurrentVersion, release.LatestVersion)
			if release.URL != "" {
				fmt.Printf("Release notes: %s\n", release.URL)
			}
			if checkOnly {
				return nil
			}

			if err := u.Apply(cmd.Context(), release); err != nil {
				return err
			}
			fmt.Printf("Updated to %s\n", release.LatestVersion)
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Check for updates without applying")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prerelease versions")
	return cmd
}
