package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/dixieflatline76/UltimateThumb/config"
	"github.com/dixieflatline76/UltimateThumb/util"
)

func newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version and Go runtime version, optionally checking for a newer release.`,
		Args:  cobra.NoArgs,
		// The version needs no configuration.
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s version %s\n", config.AppName, config.AppVersion)
			fmt.Fprintf(w, "  go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)

			if !check {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			result, err := util.CheckForUpdates(ctx, nil, config.AppVersion)
			if err != nil {
				return err
			}
			if result.UpdateAvailable {
				fmt.Fprintf(w, "Update available: %s (%s)\n", result.LatestVersion, result.ReleaseURL)
			} else {
				fmt.Fprintf(w, "Up to date (latest release %s)\n", result.LatestVersion)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
