// Package grouping turns a column-oriented grouping table into categories
// and produces one merged document per category.
package grouping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/JaimeStill/binder/internal/drive"
	"github.com/JaimeStill/binder/internal/matcher"
	"github.com/JaimeStill/binder/internal/merger"
)

var (
	// ErrDuplicateLabel indicates two columns share a label; their outputs
	// would overwrite each other.
	ErrDuplicateLabel = errors.New("duplicate category label")
	// ErrNoMatches marks a category whose rule selected no files.
	ErrNoMatches = errors.New("no files matched")
)

// Category is one grouping table column: a label naming the output file and
// the rule selecting its inputs.
type Category struct {
	Label string
	Rule  matcher.Rule
}

// OutputName is the file name the category is merged into.
func (c Category) OutputName() string {
	return c.Label + ".pdf"
}

// Outcome pairs a category label with its merge result.
type Outcome struct {
	Label  string        `json:"label"`
	Result merger.Result `json:"result"`
}

// ParseTable reads categories from table. Row 0 holds labels and the rows
// below hold substrings; blank cells are ignored and rows may be ragged.
// Columns without a label, or without any substring, are skipped.
func ParseTable(table [][]string, recursive bool) ([]Category, error) {
	cats, _, err := parse(table, recursive)
	return cats, err
}

func parse(table [][]string, recursive bool) (cats []Category, empty []string, err error) {
	if len(table) == 0 {
		return nil, nil, nil
	}

	seen := make(map[string]int)
	for col, cell := range table[0] {
		label := strings.TrimSpace(cell)
		if label == "" {
			continue
		}
		if prev, ok := seen[label]; ok {
			return nil, nil, fmt.Errorf("%w: %q in columns %d and %d", ErrDuplicateLabel, label, prev+1, col+1)
		}
		seen[label] = col

		var subs []string
		for _, row := range table[1:] {
			if col >= len(row) {
				continue
			}
			if s := strings.TrimSpace(row[col]); s != "" {
				subs = append(subs, s)
			}
		}

		if len(subs) == 0 {
			empty = append(empty, label)
			continue
		}

		cats = append(cats, Category{
			Label: label,
			Rule: matcher.Rule{
				Substrings: subs,
				Mode:       matcher.Prefix,
				MIMETypes:  []string{drive.MIMEPDF},
				Recursive:  recursive,
			},
		})
	}
	return cats, empty, nil
}

// Grouper runs categories against a source container.
type Grouper struct {
	matcher *matcher.Matcher
	merger  *merger.Merger
	logger  *slog.Logger
}

// New creates a Grouper that resolves files with m and merges them with mg.
func New(m *matcher.Matcher, mg *merger.Merger, logger *slog.Logger) *Grouper {
	return &Grouper{
		matcher: m,
		merger:  mg,
		logger:  logger.With("system", "grouping"),
	}
}

// Parse is ParseTable with skipped columns logged.
func (g *Grouper) Parse(table [][]string, recursive bool) ([]Category, error) {
	cats, empty, err := parse(table, recursive)
	if err != nil {
		return nil, err
	}
	for _, label := range empty {
		g.logger.Warn("category has no substrings, skipping", "label", label)
	}
	return cats, nil
}

// Run parses table and merges each category found in sourceID into
// destinationID. Outcomes follow column order.
func (g *Grouper) Run(ctx context.Context, sourceID string, table [][]string, destinationID string, recursive bool) ([]Outcome, error) {
	cats, err := g.Parse(table, recursive)
	if err != nil {
		return nil, err
	}
	return g.RunCategories(ctx, sourceID, cats, destinationID), nil
}

// RunCategories merges each category in order. A category matching no files
// yields a failed result rather than being omitted. Files already in
// destinationID are never inputs, so earlier outputs are not merged into
// later ones.
func (g *Grouper) RunCategories(ctx context.Context, sourceID string, cats []Category, destinationID string) []Outcome {
	outcomes := make([]Outcome, 0, len(cats))

	for _, cat := range cats {
		files := slices.DeleteFunc(g.matcher.Find(ctx, sourceID, cat.Rule), func(f drive.File) bool {
			return f.ContainerID == destinationID
		})

		var res merger.Result
		if len(files) == 0 {
			res = merger.Failure(fmt.Errorf("%w: %s", ErrNoMatches, strings.Join(cat.Rule.Substrings, ", ")))
			g.logger.Info("category matched nothing", "label", cat.Label, "source_id", sourceID)
		} else {
			res = g.merger.Merge(ctx, merger.Job{
				Inputs:        files,
				OutputName:    cat.OutputName(),
				DestinationID: destinationID,
			})
		}

		outcomes = append(outcomes, Outcome{Label: cat.Label, Result: res})
	}
	return outcomes
}
