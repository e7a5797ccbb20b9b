package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/binder/internal/coordinator"
	"github.com/JaimeStill/binder/internal/drive"
	"github.com/JaimeStill/binder/internal/infrastructure"
	"github.com/JaimeStill/binder/internal/merger"
	"github.com/JaimeStill/binder/internal/sheet"
)

func newMergeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge files into per-category PDFs",
		Long: `Merge matched files into one PDF per category.

Available subcommands:
  students - Run every student of a roster
  folder   - Run one source folder
  files    - Merge an explicit list of file ids`,
	}

	cmd.AddCommand(
		newMergeStudentsCmd(opts),
		newMergeFolderCmd(opts),
		newMergeFilesCmd(opts),
	)
	return cmd
}

func newMergeStudentsCmd(opts *rootOptions) *cobra.Command {
	var (
		studentsPath string
		groupsPath   string
		parentID     string
		headerRows   int
		recursive    bool
	)

	cmd := &cobra.Command{
		Use:   "students",
		Short: "Merge every student's files from a roster",
		Long: `Merge each roster student's files into a destination folder.

The roster columns are display name, external user id, source folder id and
an optional destination folder name. The grouping table holds one category
per column: a label in the first row and name prefixes below it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := sheet.Load(studentsPath)
			if err != nil {
				return fmt.Errorf("load students: %w", err)
			}
			groups, err := sheet.Load(groupsPath)
			if err != nil {
				return fmt.Errorf("load groups: %w", err)
			}

			return run(cmd, opts, func(infra *infrastructure.Infrastructure) error {
				mc := infra.Config.Merger
				if !cmd.Flags().Changed("header-rows") {
					headerRows = mc.HeaderRowCount()
				}
				if !cmd.Flags().Changed("recursive") {
					recursive = mc.RecursiveSearch()
				}

				reports, err := infra.Coordinator().RunAll(cmd.Context(), coordinator.Run{
					Students:  coordinator.ParseStudents(rows, headerRows),
					Groups:    groups,
					ParentID:  parentID,
					Recursive: recursive,
				})
				if err != nil {
					return err
				}

				if opts.json {
					return writeJSON(cmd.OutOrStdout(), reports)
				}
				return writeReports(cmd.OutOrStdout(), reports)
			})
		},
	}

	cmd.Flags().StringVar(&studentsPath, "students", "", "roster sheet (.csv or .yaml)")
	cmd.Flags().StringVar(&groupsPath, "groups", "", "grouping table (.csv or .yaml)")
	cmd.Flags().StringVar(&parentID, "parent", "", "folder that receives each student's destination folder (default: the student's source folder)")
	cmd.Flags().IntVar(&headerRows, "header-rows", coordinator.DefaultHeaderRows, "leading roster rows to skip")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "search source subfolders")
	_ = cmd.MarkFlagRequired("students")
	_ = cmd.MarkFlagRequired("groups")
	return cmd
}

func newMergeFolderCmd(opts *rootOptions) *cobra.Command {
	var (
		sourceID   string
		groupsPath string
		destID     string
		recursive  bool
	)

	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Merge one folder's files by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := sheet.Load(groupsPath)
			if err != nil {
				return fmt.Errorf("load groups: %w", err)
			}

			return run(cmd, opts, func(infra *infrastructure.Infrastructure) error {
				if !cmd.Flags().Changed("recursive") {
					recursive = infra.Config.Merger.RecursiveSearch()
				}
				if _, err := infra.Drive.GetContainer(cmd.Context(), sourceID); err != nil {
					return fmt.Errorf("source %s: %w", sourceID, err)
				}

				outcomes, err := infra.Grouper().Run(cmd.Context(), sourceID, groups, destID, recursive)
				if err != nil {
					return err
				}

				if opts.json {
					return writeJSON(cmd.OutOrStdout(), outcomes)
				}
				return writeOutcomes(cmd.OutOrStdout(), outcomes)
			})
		},
	}

	cmd.Flags().StringVar(&sourceID, "source", "", "folder holding the files to merge")
	cmd.Flags().StringVar(&groupsPath, "groups", "", "grouping table (.csv or .yaml)")
	cmd.Flags().StringVar(&destID, "dest", "", "folder receiving the merged files (default: root)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "search source subfolders")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("groups")
	return cmd
}

func newMergeFilesCmd(opts *rootOptions) *cobra.Command {
	var (
		outName string
		destID  string
	)

	cmd := &cobra.Command{
		Use:   "files FILE_ID...",
		Short: "Merge files, in the order given, into one PDF",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([]drive.File, len(args))
			for i, id := range args {
				inputs[i] = drive.File{ID: id}
			}

			return run(cmd, opts, func(infra *infrastructure.Infrastructure) error {
				res := infra.Merger().Merge(cmd.Context(), merger.Job{
					Inputs:        inputs,
					OutputName:    outName,
					DestinationID: destID,
				})

				if opts.json {
					if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
						return err
					}
				} else if err := writeResult(cmd.OutOrStdout(), res); err != nil {
					return err
				}

				if res.Failed() {
					return res.Err
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&outName, "out", "", "output file name")
	cmd.Flags().StringVar(&destID, "dest", "", "folder receiving the output (default: root)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
