package main

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/binder/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "BINDER_DB_DSN"

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the drive catalog schema",
		Long: `Apply or revert the drive catalog migrations.

The connection comes from --dsn, then BINDER_DB_DSN, then the [database]
section of the configuration.`,
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", "", "postgres:// connection URL")

	withMigrator := func(cmd *cobra.Command, fn func(m *migrate.Migrate) error) error {
		url, err := resolveDSN(dsn, opts.configPath)
		if err != nil {
			return err
		}

		source, err := iofs.New(migrations, "migrations")
		if err != nil {
			return fmt.Errorf("failed to create migration source: %w", err)
		}

		m, err := migrate.NewWithSourceInstance("iofs", source, url)
		if err != nil {
			return fmt.Errorf("failed to create migrator: %w", err)
		}
		defer m.Close()

		return fn(m)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(m *migrate.Migrate) error {
					if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return fmt.Errorf("failed to run up migrations: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), "migrations applied successfully")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert all migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(m *migrate.Migrate) error {
					if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return fmt.Errorf("failed to run down migrations: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), "migrations reverted successfully")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, func(m *migrate.Migrate) error {
					v, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						fmt.Fprintln(cmd.OutOrStdout(), "version: none")
						return nil
					}
					if err != nil {
						return fmt.Errorf("failed to get version: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %v\n", v, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Force the recorded version after a failed migration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return withMigrator(cmd, func(m *migrate.Migrate) error {
					if err := m.Force(v); err != nil {
						return fmt.Errorf("failed to force version: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "forced to version %d\n", v)
					return nil
				})
			},
		},
	)
	return cmd
}

// resolveDSN picks the migration connection. The config file is only read
// when no explicit DSN is given; storage settings are not required here.
func resolveDSN(flag, configPath string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg, err := config.LoadDatabase(configPath)
	if err != nil {
		return "", fmt.Errorf("config load failed: %w", err)
	}
	return cfg.URL(), nil
}
