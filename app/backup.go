package app

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lamaindor/salon-cms/internal/backup"
	"github.com/lamaindor/salon-cms/internal/daemon"
)

func init() { //nolint: gochecknoinits
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "File to write, defaults to salon-backup-<date>.json")
	importCmd.Flags().StringVarP(&importPath, "file", "f", "", "Export document to restore")
	importCmd.Flags().BoolVar(&importPush, "push", false, "Push the restored state to the hosted backend")
	_ = importCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(exportCmd, importCmd)
}

var (
	exportPath string
	importPath string
	importPush bool

	exportCmd = &cobra.Command{
		Use:     "export",
		Short:   "Write the local state as an export document",
		PreRunE: func(_ *cobra.Command, _ []string) error { return loadConfig() },
		RunE: func(_ *cobra.Command, _ []string) error {
			st, _, err := daemon.OpenSite(context.Background(), &cfg, false)
			if err != nil {
				return err
			}

			now := time.Now()

			data, err := st.Export(now).Marshal()
			if err != nil {
				return err
			}

			path := exportPath
			if path == "" {
				path = backup.FileName(now)
			}

			if err = os.WriteFile(path, data, 0o640); err != nil { //nolint:mnd
				return err
			}

			log.Info().Str("path", path).Msg("export written")

			return nil
		},
	}

	importCmd = &cobra.Command{
		Use:     "import",
		Short:   "Replace the local state with an export document",
		PreRunE: func(_ *cobra.Command, _ []string) error { return loadConfig() },
		RunE: func(_ *cobra.Command, _ []string) error {
			doc, err := backup.ReadFile(importPath)
			if err != nil {
				return err
			}

			st, syncer, err := daemon.OpenSite(context.Background(), &cfg, false)
			if err != nil {
				return err
			}

			if err = st.ImportState(doc); err != nil {
				return err
			}

			syncer.Wait()

			log.Info().
				Int("services", len(doc.Services)).
				Int("gallery", len(doc.Gallery)).
				Int("reviews", len(doc.Reviews)).
				Msg("backup imported")

			if !importPush {
				return nil
			}

			if cfg.Admin.Password == "" {
				return errors.New("pushing needs the plain admin password in the config")
			}

			st.SetSecret(cfg.Admin.Password)

			if res := st.SyncNow(); !res.OK() {
				return errors.New("push failed: " + string(res.Status) + " " + res.Message)
			}

			log.Info().Msg("restored state pushed")

			return nil
		},
	}
)
