package grouping

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/JaimeStill/binder/internal/drive"
	"github.com/JaimeStill/binder/internal/matcher"
	"github.com/JaimeStill/binder/internal/merger"
	"github.com/JaimeStill/binder/internal/pdftest"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		name   string
		table  [][]string
		labels []string
		subs   [][]string
	}{
		{
			name:   "empty",
			table:  nil,
			labels: nil,
		},
		{
			name: "columns",
			table: [][]string{
				{"Essays", "Labs"},
				{"Essay", "Lab 1"},
				{"", "Lab 2"},
			},
			labels: []string{"Essays", "Labs"},
			subs:   [][]string{{"Essay"}, {"Lab 1", "Lab 2"}},
		},
		{
			name: "blank label skipped",
			table: [][]string{
				{"", " Labs "},
				{"Essay", " Lab "},
			},
			labels: []string{"Labs"},
			subs:   [][]string{{"Lab"}},
		},
		{
			name: "label without substrings skipped",
			table: [][]string{
				{"Essays", "Quizzes", "Labs"},
				{"Essay", "", "Lab"},
			},
			labels: []string{"Essays", "Labs"},
			subs:   [][]string{{"Essay"}, {"Lab"}},
		},
		{
			name: "ragged rows",
			table: [][]string{
				{"A", "B", "C"},
				{"a1"},
				{"a2", "", "c1"},
			},
			labels: []string{"A", "C"},
			subs:   [][]string{{"a1", "a2"}, {"c1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cats, err := ParseTable(tt.table, true)
			if err != nil {
				t.Fatalf("ParseTable() error = %v", err)
			}
			if len(cats) != len(tt.labels) {
				t.Fatalf("ParseTable() returned %d categories, want %d", len(cats), len(tt.labels))
			}
			for i, c := range cats {
				if c.Label != tt.labels[i] {
					t.Errorf("category %d label = %q, want %q", i, c.Label, tt.labels[i])
				}
				if !slices.Equal(c.Rule.Substrings, tt.subs[i]) {
					t.Errorf("category %d substrings = %v, want %v", i, c.Rule.Substrings, tt.subs[i])
				}
				if c.Rule.Mode != matcher.Prefix || !c.Rule.Recursive {
					t.Errorf("category %d rule = %+v, want recursive prefix", i, c.Rule)
				}
				if !slices.Equal(c.Rule.MIMETypes, []string{drive.MIMEPDF}) {
					t.Errorf("category %d MIMETypes = %v", i, c.Rule.MIMETypes)
				}
			}
		})
	}
}

func TestParseTableDuplicateLabel(t *testing.T) {
	_, err := ParseTable([][]string{
		{"Labs", "Essays", " Labs"},
		{"Lab", "Essay", "Lab"},
	}, false)
	if !errors.Is(err, ErrDuplicateLabel) {
		t.Errorf("ParseTable() error = %v, want %v", err, ErrDuplicateLabel)
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	mem := drive.NewMemory()
	src, _ := mem.CreateContainer(ctx, "", "Student")
	dest, _ := mem.CreateContainer(ctx, "", "Merged")

	add := func(name string, widths ...int) {
		if _, err := mem.CreateFile(ctx, src.ID, name, drive.MIMEPDF, pdftest.Build(widths...)); err != nil {
			t.Fatalf("CreateFile(%s) error = %v", name, err)
		}
	}
	add("Essay draft.pdf", 300)
	add("Lab 1.pdf", 401, 402)
	add("Lab 2.pdf", 403)
	if _, err := mem.CreateFile(ctx, src.ID, "Lab notes.txt", "text/plain", []byte("x")); err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}

	logger := discard()
	g := New(matcher.New(mem, logger), merger.New(mem, merger.DefaultConfig(), logger), logger)

	outcomes, err := g.Run(ctx, src.ID, [][]string{
		{"Labs", "Essays", "Quizzes"},
		{"Lab 2", "Essay", "Quiz"},
		{"Lab", "", ""},
	}, dest.ID, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(outcomes) != 3 {
		t.Fatalf("Run() returned %d outcomes, want 3", len(outcomes))
	}

	labs := outcomes[0]
	if labs.Label != "Labs" || !labs.Result.Success {
		t.Fatalf("Labs outcome = %+v, want success", labs)
	}
	if labs.Result.Output.Name != "Labs.pdf" {
		t.Errorf("Labs output name = %q, want Labs.pdf", labs.Result.Output.Name)
	}
	data, err := mem.Download(ctx, labs.Result.Output.ID)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if got, want := pdftest.Widths(t, data), []int{403, 401, 402}; !slices.Equal(got, want) {
		t.Errorf("Labs page widths = %v, want %v", got, want)
	}

	essays := outcomes[1]
	if !essays.Result.Success || essays.Result.Output.Name != "Essays.pdf" {
		t.Errorf("Essays outcome = %+v, want Essays.pdf", essays.Result)
	}

	quizzes := outcomes[2]
	if quizzes.Result.Success || !errors.Is(quizzes.Result.Err, ErrNoMatches) {
		t.Errorf("Quizzes outcome = %+v, want %v", quizzes.Result, ErrNoMatches)
	}
}

func TestRunDuplicateLabelFails(t *testing.T) {
	mem := drive.NewMemory()
	logger := discard()
	g := New(matcher.New(mem, logger), merger.New(mem, merger.DefaultConfig(), logger), logger)

	_, err := g.Run(context.Background(), "", [][]string{{"A", "A"}, {"x", "y"}}, "", false)
	if !errors.Is(err, ErrDuplicateLabel) {
		t.Errorf("Run() error = %v, want %v", err, ErrDuplicateLabel)
	}
}

func TestRunIgnoresDestinationFiles(t *testing.T) {
	ctx := context.Background()
	mem := drive.NewMemory()
	src, _ := mem.CreateContainer(ctx, "", "Student")
	dest, _ := mem.CreateContainer(ctx, src.ID, "Merged")

	for i, name := range []string{"Lab 1.pdf", "Lab 2.pdf"} {
		if _, err := mem.CreateFile(ctx, src.ID, name, drive.MIMEPDF, pdftest.Build(500+i)); err != nil {
			t.Fatalf("CreateFile() error = %v", err)
		}
	}

	logger := discard()
	cfg := merger.DefaultConfig()
	cfg.Collision = drive.PolicyReplace
	g := New(matcher.New(mem, logger), merger.New(mem, cfg, logger), logger)
	table := [][]string{{"Lab"}, {"Lab"}}

	for run := range 2 {
		outcomes, err := g.Run(ctx, src.ID, table, dest.ID, true)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		res := outcomes[0].Result
		if !res.Success {
			t.Fatalf("run %d result = %+v, want success", run, res)
		}
		data, err := mem.Download(ctx, res.Output.ID)
		if err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if got, want := pdftest.Widths(t, data), []int{500, 501}; !slices.Equal(got, want) {
			t.Errorf("run %d page widths = %v, want %v", run, got, want)
		}
	}
}
