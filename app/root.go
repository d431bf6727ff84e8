// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/lamaindor/salon-cms/internal/config"
	"github.com/lamaindor/salon-cms/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "salon-cms",
	Short: "salon-cms manages the content of a beauty salon storefront",
	Long: `salon-cms serves the admin and storefront API of a beauty salon website.
It keeps services, gallery, reviews and settings in a bounded local store,
syncs them to a hosted backend and can act as that backend itself.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var (
	configPath string // Path to the configuration directory
	cfg        config.Config
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Path to the configuration directory")
}

// loadConfig reads the configuration and sets up logging.
func loadConfig() error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
