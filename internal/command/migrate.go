package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/catalogapi/internal/adapter/driven/sqlite"
)

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "manage the catalog database schema",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd, func(db *sqliteadapter.DB) error {
					if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
						return err
					}
					return printVersion(cmd, db)
				})
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "roll back migrations, one step by default",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("invalid steps %q: %w", args[0], err)
					}
					steps = n
				}
				return withDB(cmd, func(db *sqliteadapter.DB) error {
					if err := sqliteadapter.RollbackMigrations(db.Writer, steps); err != nil {
						return err
					}
					return printVersion(cmd, db)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd, func(db *sqliteadapter.DB) error {
					return printVersion(cmd, db)
				})
			},
		},
	)

	return cmd
}

func withDB(cmd *cobra.Command, fn func(db *sqliteadapter.DB) error) (err error) {
	cfg, err := configFrom(cmd.Context())
	if err != nil {
		return err
	}
	db, err := openDB(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return fn(db)
}

func printVersion(cmd *cobra.Command, db *sqliteadapter.DB) error {
	v, err := sqliteadapter.CurrentVersion(db.Writer)
	if err != nil {
		return err
	}
	dirty := ""
	if v.Dirty {
		dirty = " (dirty)"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d%s\n", v.Version, dirty)
	return err
}
