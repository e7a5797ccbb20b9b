// Command binder assembles per-category PDF binders from files kept in a
// drive: per student from a roster, per folder, or from an explicit list.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	json       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "binder",
		Short: "Merge stored PDF files into per-category binders",
		Long: `binder matches files in a drive by name and concatenates each group into
a single PDF.

Configuration is read from binder.toml (or --config), overlaid by
binder.<BINDER_ENV>.toml, and overridden by BINDER_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the config file (default ./binder.toml)")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print results as JSON")

	root.AddCommand(
		newMergeCmd(opts),
		newFindCmd(opts),
		newFilesCmd(opts),
		newFoldersCmd(opts),
		newMigrateCmd(opts),
	)
	return root
}
