package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dixieflatline76/UltimateThumb/config"
	"github.com/dixieflatline76/UltimateThumb/util/log"
)

// cli holds the state shared by the commands of one invocation.
type cli struct {
	cfgFile string
	debug   bool
	cfg     *config.Config
	logOut  io.Closer
}

// Execute builds the command tree and runs it.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "ultimatethumb",
		Short: "Thumbnail planning, naming and rendering",
		Long: `ultimatethumb computes thumbnail sizes for source images, gives every
thumbnail a content addressed name and renders the files on demand.

Example usage:
  ultimatethumb serve                               # Serve thumbnails over HTTP
  ultimatethumb plan photo.jpg "100x100,200x200"    # Show the thumbnails of a size list
  ultimatethumb generate photo.jpg 300x -o crop=N   # Render thumbnails ahead of time
  ultimatethumb resolve <hash>/photo.jpg            # Show what a name stands for`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.logOut != nil {
				return c.logOut.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: defaults and ULTIMATETHUMB_* environment only)")
	rootCmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "debug output")

	rootCmd.AddCommand(
		newServeCmd(c),
		newNameCmd(c),
		newResolveCmd(c),
		newPlanCmd(c),
		newOptionsCmd(c),
		newGenerateCmd(c),
		newVersionCmd(),
	)
	return rootCmd
}

// initConfig loads the configuration and sets up logging.
func (c *cli) initConfig() error {
	var err error
	c.cfg, err = config.Load(c.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	c.logOut, err = log.Setup(log.Options{
		File:       c.cfg.Log.File,
		MaxSizeMB:  c.cfg.Log.MaxSizeMB,
		MaxBackups: c.cfg.Log.MaxBackups,
		MaxAgeDays: c.cfg.Log.MaxAgeDays,
		Compress:   c.cfg.Log.Compress,
		Debug:      c.cfg.Log.Debug || c.debug,
	})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}

	log.Debugf("configuration loaded: storage=%s registry=%s renderer=%s",
		c.cfg.Storage.Root, c.cfg.Registry.Backend, c.cfg.Render.Engine)
	return nil
}
