package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/JaimeStill/binder/internal/coordinator"
	"github.com/JaimeStill/binder/internal/drive"
	"github.com/JaimeStill/binder/internal/grouping"
	"github.com/JaimeStill/binder/internal/merger"
	"github.com/JaimeStill/binder/pkg/formatting"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func status(r merger.Result) string {
	switch {
	case r.Success:
		return "merged"
	case r.Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

func output(r merger.Result) string {
	if r.Output == nil {
		return "-"
	}
	return r.Output.ID
}

func writeReports(w io.Writer, reports []coordinator.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tSTUDENT\tCATEGORY\tSTATUS\tPAGES\tOUTPUT\tMESSAGE")

	for _, r := range reports {
		if r.Err != nil || len(r.Outcomes) == 0 {
			fmt.Fprintf(tw, "%d\t%s\t-\tfailed\t-\t-\t%s\n", r.Student.Row, r.Student.Label(), r.Message)
			continue
		}
		for _, o := range r.Outcomes {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
				r.Student.Row, r.Student.Label(), o.Label, status(o.Result), o.Result.PageCount, output(o.Result), o.Result.Message)
		}
	}

	s := coordinator.Summarize(reports)
	fmt.Fprintf(tw, "\n%d students (%d failed): %d merged, %d skipped, %d failed\n",
		s.Students, s.Failed, s.Merged, s.Skipped, s.Counts.Failed)
	return tw.Flush()
}

func writeOutcomes(w io.Writer, outcomes []grouping.Outcome) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSTATUS\tPAGES\tOUTPUT\tMESSAGE")
	for _, o := range outcomes {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", o.Label, status(o.Result), o.Result.PageCount, output(o.Result), o.Result.Message)
	}
	return tw.Flush()
}

func writeResult(w io.Writer, r merger.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "status\t%s\n", status(r))
	fmt.Fprintf(tw, "output\t%s\n", output(r))
	if r.PageCount > 0 {
		fmt.Fprintf(tw, "pages\t%d\n", r.PageCount)
	}
	fmt.Fprintf(tw, "message\t%s\n", r.Message)
	for _, iss := range r.InvalidInputs {
		fmt.Fprintf(tw, "invalid\t%s %s: %s\n", iss.FileID, iss.Name, iss.Reason)
	}
	for _, iss := range r.FailedInputs {
		fmt.Fprintf(tw, "failed\t%s %s: %s\n", iss.FileID, iss.Name, iss.Reason)
	}
	return tw.Flush()
}

func writeFiles(w io.Writer, files []drive.File) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tCONTAINER")
	for _, f := range files {
		container := f.ContainerID
		if container == "" {
			container = drive.Root.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, f.MIMEType, formatting.FormatBytes(f.SizeBytes, 1), container)
	}
	return tw.Flush()
}

func writeContainers(w io.Writer, containers []drive.Container) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED")
	for _, c := range containers {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
