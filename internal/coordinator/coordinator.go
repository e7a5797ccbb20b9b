// Package coordinator runs category merges for every student of a roster,
// each into its own destination container.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/binder/internal/drive"
	"github.com/JaimeStill/binder/internal/grouping"
)

// DefaultDestinationName names a student's destination container when the
// roster row does not.
const DefaultDestinationName = "Merged Documents"

// Config holds coordinator defaults. DestinationName names a student's
// destination container when the roster row leaves it blank.
type Config struct {
	DestinationName string
}

// Run is one invocation over a roster. Destination containers are created
// under ParentID, or inside each student's source container when ParentID
// is empty.
type Run struct {
	Students  []Student
	Groups    [][]string
	ParentID  string
	Recursive bool
}

// Coordinator runs a Grouper once per student.
type Coordinator struct {
	drive   drive.System
	grouper *grouping.Grouper
	cfg     Config
	logger  *slog.Logger
}

// New creates a Coordinator over sys. An empty cfg.DestinationName falls back
// to DefaultDestinationName.
func New(sys drive.System, g *grouping.Grouper, cfg Config, logger *slog.Logger) *Coordinator {
	if cfg.DestinationName == "" {
		cfg.DestinationName = DefaultDestinationName
	}
	return &Coordinator{
		drive:   sys,
		grouper: g,
		cfg:     cfg,
		logger:  logger.With("system", "coordinator"),
	}
}

// RunAll processes run.Students in order and returns one report each.
// Only an unusable grouping table is returned as an error; every other
// failure is confined to the affected student's report.
func (c *Coordinator) RunAll(ctx context.Context, run Run) ([]Report, error) {
	cats, err := c.grouper.Parse(run.Groups, run.Recursive)
	if err != nil {
		return nil, fmt.Errorf("parse grouping table: %w", err)
	}
	if len(cats) == 0 {
		return nil, ErrNoCategories
	}

	c.logger.Info("run starting",
		"students", len(run.Students),
		"categories", len(cats),
		"parent_id", run.ParentID,
		"recursive", run.Recursive,
	)

	reports := make([]Report, 0, len(run.Students))
	for _, s := range run.Students {
		if err := ctx.Err(); err != nil {
			reports = append(reports, Report{Student: s}.fail(err))
			continue
		}
		reports = append(reports, c.runStudent(ctx, s, cats, run.ParentID))
	}

	sum := Summarize(reports)
	c.logger.Info("run complete",
		"students", sum.Students,
		"students_failed", sum.Failed,
		"merged", sum.Merged,
		"skipped", sum.Skipped,
		"failed", sum.Counts.Failed,
	)
	return reports, nil
}

func (c *Coordinator) runStudent(ctx context.Context, s Student, cats []grouping.Category, parentID string) (rep Report) {
	rep.Student = s
	logger := c.logger.With("student", s.Label(), "row", s.Row)

	defer func() {
		if r := recover(); r != nil {
			rep = rep.fail(fmt.Errorf("%w: %v", ErrPanic, r))
			logger.Error("student failed", "error", rep.Err)
		}
	}()

	if s.SourceID == "" {
		logger.Warn("student skipped", "error", ErrNoSourceID)
		return rep.fail(ErrNoSourceID)
	}

	if _, err := c.drive.GetContainer(ctx, s.SourceID); err != nil {
		logger.Error("source unavailable", "source_id", s.SourceID, "error", err)
		return rep.fail(fmt.Errorf("resolve source %s: %w", s.SourceID, err))
	}

	name := s.DestinationName
	if name == "" {
		name = c.cfg.DestinationName
	}

	parent := parentID
	if parent == "" {
		parent = s.SourceID
	}

	dest, err := c.destination(ctx, parent, name)
	if err != nil {
		logger.Error("destination unavailable", "name", name, "error", err)
		return rep.fail(err)
	}
	rep.DestinationID = dest.ID

	rep.Outcomes = c.grouper.RunCategories(ctx, s.SourceID, cats, dest.ID)
	rep = rep.summarize()

	logger.Info("student complete", "destination_id", dest.ID, "result", rep.Message)
	return rep
}

// destination reuses the first container named name under parentID or
// creates one.
func (c *Coordinator) destination(ctx context.Context, parentID, name string) (*drive.Container, error) {
	existing, err := c.drive.FindContainers(ctx, parentID, name)
	if err != nil {
		return nil, fmt.Errorf("find destination %q: %w", name, err)
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}

	created, err := c.drive.CreateContainer(ctx, parentID, name)
	if err != nil {
		return nil, fmt.Errorf("create destination %q: %w", name, err)
	}
	return created, nil
}
