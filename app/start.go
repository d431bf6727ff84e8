package app

import (
	"github.com/spf13/cobra"

	"github.com/lamaindor/salon-cms/internal/daemon"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")
	startCmd.Flags().BoolVar(&noHydrate, "no-hydrate", false, "Do not overwrite the local state from the hosted backend at boot")

	rootCmd.AddCommand(startCmd)
}

var (
	devMode   bool
	noHydrate bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the salon-cms web service",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if err := loadConfig(); err != nil {
				return err
			}

			if devMode {
				cfg.DevMode = true
			}

			if noHydrate {
				cfg.Remote.Hydrate = false
			}

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return daemon.New(&cfg).Start()
		},
	}
)
