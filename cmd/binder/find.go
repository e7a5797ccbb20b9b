package main

import (
	"github.com/spf13/cobra"

	"github.com/JaimeStill/binder/internal/infrastructure"
	"github.com/JaimeStill/binder/internal/matcher"
)

func newFindCmd(opts *rootOptions) *cobra.Command {
	var (
		containerID string
		mode        string
		mimeTypes   []string
		recursive   bool
	)

	cmd := &cobra.Command{
		Use:   "find SUBSTRING...",
		Short: "List files whose names match",
		Long: `List the files of a folder matching any of the given substrings, in the
order a merge would use them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := matcher.ParseMode(mode)
			if err != nil {
				return err
			}

			rule := matcher.Rule{
				Substrings: args,
				Mode:       m,
				MIMETypes:  mimeTypes,
				Recursive:  recursive,
			}
			if err := rule.Validate(); err != nil {
				return err
			}

			return run(cmd, opts, func(infra *infrastructure.Infrastructure) error {
				if _, err := infra.Drive.GetContainer(cmd.Context(), containerID); err != nil {
					return err
				}

				files := infra.Matcher().Find(cmd.Context(), containerID, rule)
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), files)
				}
				return writeFiles(cmd.OutOrStdout(), files)
			})
		},
	}

	cmd.Flags().StringVar(&containerID, "container", "", "folder to search (default: root)")
	cmd.Flags().StringVar(&mode, "mode", "prefix", "match mode: prefix, suffix or contains")
	cmd.Flags().StringSliceVar(&mimeTypes, "mime", nil, "restrict to these MIME types")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "search subfolders")
	return cmd
}
