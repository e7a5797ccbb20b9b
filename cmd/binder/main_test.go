package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/binder/internal/coordinator"
	"github.com/JaimeStill/binder/internal/grouping"
	"github.com/JaimeStill/binder/internal/merger"
)

func TestCommandTree(t *testing.T) {
	root := newRootCmd()

	paths := [][]string{
		{"merge", "students"},
		{"merge", "folder"},
		{"merge", "files"},
		{"find"},
		{"files", "upload"},
		{"files", "list"},
		{"folders", "create"},
		{"folders", "list"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"migrate", "force"},
	}

	for _, p := range paths {
		cmd, _, err := root.Find(p)
		if err != nil {
			t.Errorf("Find(%v) error = %v", p, err)
			continue
		}
		if cmd.Name() != p[len(p)-1] {
			t.Errorf("Find(%v) = %s", p, cmd.Name())
		}
	}
}

func TestMergeStudentsRequiresFlags(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"merge", "students"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "required flag") {
		t.Errorf("Execute() error = %v, want required flag error", err)
	}
}

func TestFindRejectsUnknownMode(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"find", "--mode", "regex", "Essay"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "unknown match mode") {
		t.Errorf("Execute() error = %v, want unknown match mode", err)
	}
}

func TestResolveDSN(t *testing.T) {
	t.Setenv(envDSN, "postgres://env")

	got, err := resolveDSN("postgres://flag", "")
	if err != nil || got != "postgres://flag" {
		t.Errorf("resolveDSN(flag) = %q, %v", got, err)
	}

	got, err = resolveDSN("", "")
	if err != nil || got != "postgres://env" {
		t.Errorf("resolveDSN(env) = %q, %v", got, err)
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		path string
		data []byte
		want string
	}{
		{"essay.pdf", nil, "application/pdf"},
		{"notes.txt", nil, "text/plain"},
		{"scan", []byte("%PDF-1.4\n"), "application/pdf"},
	}

	for _, tt := range tests {
		if got := detectType(tt.path, tt.data); got != tt.want {
			t.Errorf("detectType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWriteReports(t *testing.T) {
	reports := []coordinator.Report{
		{
			Student: coordinator.Student{Row: 3, DisplayName: "Ada"},
			Outcomes: []grouping.Outcome{
				{Label: "Essays", Result: merger.Result{Success: true, PageCount: 4, Message: "merged 2 of 2 files (4 pages)"}},
				{Label: "Labs", Result: merger.Result{Skipped: true, Message: "skipped: Labs.pdf already exists"}},
			},
		},
		{
			Student: coordinator.Student{Row: 4, DisplayName: "Grace"},
			Err:     coordinator.ErrNoSourceID,
			Message: coordinator.ErrNoSourceID.Error(),
		},
	}

	var buf bytes.Buffer
	if err := writeReports(&buf, reports); err != nil {
		t.Fatalf("writeReports() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Essays", "merged", "skipped", "no folder id", "2 students (1 failed): 1 merged, 1 skipped, 0 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteResultIssues(t *testing.T) {
	res := merger.Failure(errors.New("no valid files to merge"))
	res.InvalidInputs = []merger.Issue{{FileID: "f1", Name: "a.docx", Reason: "unsupported type"}}

	var buf bytes.Buffer
	if err := writeResult(&buf, res); err != nil {
		t.Fatalf("writeResult() error = %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "failed") || !strings.Contains(out, "a.docx: unsupported type") {
		t.Errorf("writeResult() output = %q", out)
	}
}
