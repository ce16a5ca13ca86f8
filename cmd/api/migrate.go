package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	pg "gnap-as/internal/adapters/storage/postgres"
	"gnap-as/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMigrateCommand(v *viper.Viper) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the embedded schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up [steps]",
		Short: "Run schema migrations up",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, hasSteps, err := parseStepsArg(args)
			if err != nil {
				return err
			}
			return withMigrator(cmd, v, func(m *pg.Migrator) error {
				if err := m.Up(steps); err != nil {
					return fmt.Errorf("apply migrations: %w", err)
				}
				if hasSteps {
					cmd.Printf("Applied up to %d migration step(s).\n", steps)
				} else {
					cmd.Println("Applied all pending migrations.")
				}
				return printVersion(cmd, m)
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down <steps>",
		Short: "Rollback schema migrations down by step count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _, err := parseStepsArg(args)
			if err != nil {
				return err
			}
			return withMigrator(cmd, v, func(m *pg.Migrator) error {
				if err := m.Down(steps); err != nil {
					return fmt.Errorf("rollback migrations: %w", err)
				}
				cmd.Printf("Rolled back up to %d migration step(s).\n", steps)
				return printVersion(cmd, m)
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Force-set migration version (-1 for nil version)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseForceVersionArg(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, v, func(m *pg.Migrator) error {
				if err := m.Force(version); err != nil {
					return fmt.Errorf("force migration version: %w", err)
				}
				cmd.Printf("Forced migration version to %d.\n", version)
				return nil
			})
		},
	})

	return migrateCmd
}

func withMigrator(cmd *cobra.Command, v *viper.Viper, fn func(m *pg.Migrator) error) error {
	dsn := strings.TrimSpace(v.GetString(config.KeyDatabaseDSN))
	if dsn == "" {
		return errors.New("missing database DSN: set --dsn or GNAP_DATABASE_DSN")
	}

	m, err := pg.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			cmd.PrintErrf("warning: failed to close migration runner cleanly: %v\n", closeErr)
		}
	}()
	return fn(m)
}

func printVersion(cmd *cobra.Command, m *pg.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	cmd.Printf("Schema version %d (dirty=%t).\n", version, dirty)
	return nil
}

func parseStepsArg(args []string) (int, bool, error) {
	if len(args) == 0 {
		return 0, false, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || steps <= 0 {
		return 0, false, fmt.Errorf("invalid migration steps %q: expected a positive integer", args[0])
	}
	return steps, true, nil
}

func parseForceVersionArg(arg string) (int, error) {
	version, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || version < -1 {
		return 0, fmt.Errorf("invalid force version %q: expected an integer >= -1", arg)
	}
	return version, nil
}
