package main

import (
	"github.com/spf13/cobra"

	"github.com/JaimeStill/binder/internal/drive"
	"github.com/JaimeStill/binder/internal/infrastructure"
)

func newFoldersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Manage folders in the drive",
	}
	cmd.AddCommand(newFoldersCreateCmd(opts), newFoldersListCmd(opts))
	return cmd
}

func newFoldersCreateCmd(opts *rootOptions) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(infra *infrastructure.Infrastructure) error {
				c, err := infra.Drive.CreateContainer(cmd.Context(), parentID, args[0])
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), c)
				}
				return writeContainers(cmd.OutOrStdout(), []drive.Container{*c})
			})
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "parent folder (default: root)")
	return cmd
}

func newFoldersListCmd(opts *rootOptions) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the subfolders of a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(infra *infrastructure.Infrastructure) error {
				containers, err := infra.Drive.ListSubcontainers(cmd.Context(), parentID)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), containers)
				}
				return writeContainers(cmd.OutOrStdout(), containers)
			})
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "parent folder (default: root)")
	return cmd
}
