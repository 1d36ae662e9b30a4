package main

import (
	"fmt"

	"github.com/openshelf/ingest/internal/config"
	"github.com/openshelf/ingest/internal/store"
	"github.com/openshelf/ingest/pkg/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the catalog db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
		logger := log.InitLog(log.Level(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()

		db, err := store.InitDB(cfg)
		if err != nil {
			return fmt.Errorf("initializing catalog store: %w", err)
		}

		st := store.NewStore(db)
		defer st.Close()

		if err := st.InitialMigration(); err != nil {
			return fmt.Errorf("running initial migration: %w", err)
		}
		return nil
	},
}
