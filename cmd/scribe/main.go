// Command scribe is the command-line front end of the statement
// compiler: it generates migration scripts and schema constants from a
// YAML schema file and maintains versioned migration directories.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/scribe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scribe",
		Short:   "SQL schema and statement toolkit",
		Long:    "Scribe compiles YAML schema files into migration scripts and\nGo schema constants, and maintains versioned migration directories.",
		Version: scribe.Version,
		// Errors surface once, colored, in main.
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.AddCommand(
		newGenerateCmd(),
		newMigrateCmd(),
		newVersionCmd(),
	)
	return cmd
}
