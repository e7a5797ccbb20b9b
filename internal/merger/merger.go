// Package merger concatenates the pages of stored PDF files into a single
// new file in a destination container.
package merger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/binder/internal/drive"
	"github.com/JaimeStill/binder/pkg/formatting"
)

// Defaults applied by New when a Config field is unset.
const (
	DefaultBatchSize        = 5
	DefaultBatchMaxBytes    = 64 << 20
	DefaultFetchConcurrency = 4
)

// Config tunes merge execution.
// Inputs are concatenated in batches of at most BatchSize files and
// BatchMaxBytes bytes; intermediate batches are stored as temporary files.
type Config struct {
	BatchSize        int
	BatchMaxBytes    int64
	FetchConcurrency int
	Collision        drive.Policy
}

// DefaultConfig returns the configuration binder runs with when none is given.
func DefaultConfig() Config {
	return Config{
		BatchSize:        DefaultBatchSize,
		BatchMaxBytes:    DefaultBatchMaxBytes,
		FetchConcurrency: DefaultFetchConcurrency,
		Collision:        drive.PolicySkip,
	}
}

// Merger executes Jobs against a drive.
type Merger struct {
	drive  drive.System
	cfg    Config
	logger *slog.Logger
}

// New creates a Merger over sys. Unset or out-of-range Config fields take
// their defaults.
func New(sys drive.System, cfg Config, logger *slog.Logger) *Merger {
	if cfg.BatchSize < 2 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchMaxBytes < 0 {
		cfg.BatchMaxBytes = 0
	}
	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = DefaultFetchConcurrency
	}
	return &Merger{
		drive:  sys,
		cfg:    cfg,
		logger: logger.With("system", "merger"),
	}
}

// Config returns the effective configuration.
func (m *Merger) Config() Config {
	return m.cfg
}

// Merge validates job's inputs and writes their concatenated pages to
// job.OutputName in job.DestinationID. A single valid input is copied as is.
// Merge never returns an error; failures are reported on the Result.
func (m *Merger) Merge(ctx context.Context, job Job) Result {
	logger := m.logger.With("output", job.OutputName, "destination_id", job.DestinationID)

	valid, invalid := m.validate(ctx, job.Inputs)
	res := Result{InvalidInputs: invalid}
	for _, iss := range invalid {
		logger.Warn("input rejected", "file_id", iss.FileID, "name", iss.Name, "reason", iss.Reason)
	}

	if len(valid) == 0 {
		return res.fail(ErrNoValidFiles)
	}

	col, err := drive.CheckCollision(ctx, m.drive, job.DestinationID, job.OutputName, m.cfg.Collision)
	if err != nil {
		return res.fail(err)
	}
	if col.Skip {
		logger.Info("output exists, skipping")
		res.Skipped = true
		res.Message = fmt.Sprintf("skipped: %s already exists", job.OutputName)
		return res
	}

	if len(valid) == 1 {
		return m.copySingle(ctx, logger, res, col, valid[0], job)
	}

	asm, err := m.assemble(ctx, valid, job.DestinationID)
	res.FailedInputs = asm.failed
	for _, iss := range asm.failed {
		logger.Warn("input failed", "file_id", iss.FileID, "name", iss.Name, "reason", iss.Reason)
	}
	if err != nil {
		return res.fail(err)
	}

	if err := col.Resolve(ctx, m.drive); err != nil {
		return res.fail(err)
	}

	out, err := m.drive.CreateFile(ctx, job.DestinationID, job.OutputName, drive.MIMEPDF, asm.data)
	if err != nil {
		return res.fail(fmt.Errorf("write output: %w", err))
	}

	merged := len(valid) - len(asm.failed)
	res.Success = true
	res.Output = out
	res.PageCount = asm.pages
	res.Message = fmt.Sprintf("merged %d of %d files (%d pages)", merged, len(valid), asm.pages)

	logger.Info("merge complete",
		"output_id", out.ID,
		"files", merged,
		"pages", asm.pages,
		"size", formatting.FormatBytes(out.SizeBytes, 1),
	)
	return res
}

func (m *Merger) copySingle(ctx context.Context, logger *slog.Logger, res Result, col drive.Collision, f drive.File, job Job) Result {
	if err := col.Resolve(ctx, m.drive); err != nil {
		return res.fail(err)
	}

	out, err := m.drive.CopyFile(ctx, f.ID, job.DestinationID, job.OutputName)
	if err != nil {
		return res.fail(fmt.Errorf("copy %s: %w", f.Name, err))
	}

	res.Success = true
	res.Output = out
	res.PageCount = m.pageCount(ctx, logger, out.ID)
	res.Message = fmt.Sprintf("copied %s", f.Name)
	logger.Info("single input copied", "source_id", f.ID, "output_id", out.ID, "pages", res.PageCount)
	return res
}

// pageCount reports the pages of a stored file, or 0 when it cannot be
// read. Copies are not decoded before writing, so this is informational.
func (m *Merger) pageCount(ctx context.Context, logger *slog.Logger, id string) int {
	data, err := m.drive.Download(ctx, id)
	if err != nil {
		logger.Debug("page count unavailable", "file_id", id, "error", err)
		return 0
	}
	n, err := countPages(data)
	if err != nil {
		logger.Debug("page count unavailable", "file_id", id, "error", err)
		return 0
	}
	return n
}

// validate re-resolves every input by id so stale or forged descriptors are
// judged against the stored file.
func (m *Merger) validate(ctx context.Context, inputs []drive.File) (valid []drive.File, invalid []Issue) {
	for _, in := range inputs {
		if in.ID == "" {
			invalid = append(invalid, issue(in, "missing file id"))
			continue
		}

		f, err := m.drive.GetFile(ctx, in.ID)
		if err != nil {
			invalid = append(invalid, issue(in, "lookup failed: %v", err))
			continue
		}

		switch {
		case f.Trashed:
			invalid = append(invalid, issue(*f, "file is trashed"))
		case f.MIMEType != drive.MIMEPDF:
			invalid = append(invalid, issue(*f, "unsupported type %s", f.MIMEType))
		default:
			valid = append(valid, *f)
		}
	}
	return valid, invalid
}
