package main

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/binder/internal/drive"
	"github.com/JaimeStill/binder/internal/infrastructure"
)

func newFilesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage files in the drive",
	}
	cmd.AddCommand(newFilesUploadCmd(opts), newFilesListCmd(opts))
	return cmd
}

func newFilesUploadCmd(opts *rootOptions) *cobra.Command {
	var containerID string

	cmd := &cobra.Command{
		Use:   "upload PATH...",
		Short: "Upload local files into a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(infra *infrastructure.Infrastructure) error {
				created := make([]drive.File, 0, len(args))
				for _, path := range args {
					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("read %s: %w", path, err)
					}

					f, err := infra.Drive.CreateFile(cmd.Context(), containerID, filepath.Base(path), detectType(path, data), data)
					if err != nil {
						return fmt.Errorf("upload %s: %w", path, err)
					}
					created = append(created, *f)
				}

				if opts.json {
					return writeJSON(cmd.OutOrStdout(), created)
				}
				return writeFiles(cmd.OutOrStdout(), created)
			})
		},
	}

	cmd.Flags().StringVar(&containerID, "container", "", "destination folder (default: root)")
	return cmd
}

func newFilesListCmd(opts *rootOptions) *cobra.Command {
	var containerID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the files of a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(infra *infrastructure.Infrastructure) error {
				files, err := infra.Drive.ListFiles(cmd.Context(), containerID)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), files)
				}
				return writeFiles(cmd.OutOrStdout(), files)
			})
		},
	}

	cmd.Flags().StringVar(&containerID, "container", "", "folder to list (default: root)")
	return cmd
}

// detectType prefers the extension and falls back to content sniffing.
func detectType(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		if base, _, err := mime.ParseMediaType(t); err == nil {
			return base
		}
		return t
	}
	base, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return base
}
