package main

import (
	"errors"
	"fmt"

	"ariga.io/atlas/sql/migrate"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Maintain a versioned migration directory",
	}
	cmd.AddCommand(
		newMigrateStatusCmd(),
		newMigrateHashCmd(),
	)
	return cmd
}

// newMigrateStatusCmd builds the status command, which lists the
// migration files of a directory and verifies its checksum file.
func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [dir]",
		Short: "List migrations and verify the directory checksum",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := localDir(args)
			if err != nil {
				return err
			}
			files, err := dir.Files()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range files {
				fmt.Fprintf(out, "  %s  %s\n", f.Version(), f.Desc())
			}
			if err := migrate.Validate(dir); err != nil {
				switch {
				case errors.Is(err, migrate.ErrChecksumNotFound):
					return errors.New(`checksum file missing, run "scribe migrate hash"`)
				case errors.Is(err, migrate.ErrChecksumMismatch):
					return errors.New(`checksum mismatch, inspect the directory and run "scribe migrate hash"`)
				}
				return err
			}
			color.New(color.FgGreen).Fprintf(out, "✓ %d migrations, checksum ok\n", len(files))
			return nil
		},
	}
}

// newMigrateHashCmd builds the hash command, which recomputes the
// checksum file after manual edits to the directory.
func newMigrateHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash [dir]",
		Short: "Recompute the directory checksum file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := localDir(args)
			if err != nil {
				return err
			}
			sum, err := dir.Checksum()
			if err != nil {
				return err
			}
			if err := migrate.WriteSumFile(dir, sum); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ wrote %s\n", migrate.HashFileName)
			return nil
		},
	}
}

func localDir(args []string) (*migrate.LocalDir, error) {
	path := "migrations"
	if len(args) > 0 {
		path = args[0]
	}
	return migrate.NewLocalDir(path)
}
