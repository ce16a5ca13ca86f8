package main

import (
	"errors"

	"gnap-as/internal/config"
	"gnap-as/internal/router"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSweepCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one expiry sweep over grants, tokens and interactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if cfg.DatabaseDSN == "" {
				return errors.New("sweep needs a database: set --dsn or GNAP_DATABASE_DSN")
			}

			log := newLogger(cfg)
			defer syncLogger(log)

			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			app, err := router.NewRouter(router.Options{Config: cfg, Logger: log, DB: db})
			if err != nil {
				return err
			}

			res, err := app.Cleanup.RunOnce(cmd.Context())
			cmd.Printf("Expired %d grant(s), deleted %d token(s) and %d interaction(s).\n", res.Grants, res.Tokens, res.Interactions)
			return err
		},
	}
}
