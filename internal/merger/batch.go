package merger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/binder/internal/drive"
	"github.com/JaimeStill/binder/pkg/formatting"
)

// assembly is the in-memory product of concatenating a set of files.
type assembly struct {
	data   []byte
	pages  int
	failed []Issue
}

// assemble concatenates files in order. Large inputs are reduced in batches:
// each multi-file batch is concatenated and stored as a temporary file in
// destID, then the batch outputs are assembled in turn. Temporaries are
// deleted before assemble returns, whatever the outcome.
func (m *Merger) assemble(ctx context.Context, files []drive.File, destID string) (assembly, error) {
	var asm assembly
	batches := m.plan(files)
	if len(batches) < 2 || len(batches) >= len(files) {
		return m.concat(ctx, files)
	}

	run := uuid.NewString()[:8]
	var (
		parts []drive.File
		temps []drive.File
	)
	defer func() { m.cleanup(ctx, temps) }()

	for i, batch := range batches {
		if len(batch) == 1 {
			parts = append(parts, batch[0])
			continue
		}

		part, err := m.concat(ctx, batch)
		asm.failed = append(asm.failed, part.failed...)
		if errors.Is(err, ErrNoDecodableFiles) {
			continue
		}
		if err != nil {
			return asm, fmt.Errorf("batch %d: %w", i+1, err)
		}

		tmp, err := m.drive.CreateFile(ctx, destID, tempName(run, i), drive.MIMEPDF, part.data)
		if err != nil {
			return asm, fmt.Errorf("store batch %d: %w", i+1, err)
		}
		temps = append(temps, *tmp)
		parts = append(parts, *tmp)

		m.logger.Debug("batch stored",
			"batch", i+1,
			"of", len(batches),
			"files", len(batch),
			"pages", part.pages,
			"size", formatting.FormatBytes(tmp.SizeBytes, 1),
		)
	}

	if len(parts) == 0 {
		return asm, ErrNoDecodableFiles
	}

	final, err := m.assemble(ctx, parts, destID)
	asm.failed = append(asm.failed, final.failed...)
	asm.data, asm.pages = final.data, final.pages
	return asm, err
}

// plan splits files into consecutive batches bounded by count and bytes.
// A file larger than BatchMaxBytes forms its own batch.
func (m *Merger) plan(files []drive.File) [][]drive.File {
	var (
		batches [][]drive.File
		current []drive.File
		size    int64
	)

	for _, f := range files {
		full := len(current) >= m.cfg.BatchSize
		heavy := m.cfg.BatchMaxBytes > 0 && size+f.SizeBytes > m.cfg.BatchMaxBytes
		if len(current) > 0 && (full || heavy) {
			batches = append(batches, current)
			current, size = nil, 0
		}
		current = append(current, f)
		size += f.SizeBytes
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// concat downloads files, drops those that fail to download or decode, and
// concatenates the rest. When the joint concatenation fails the documents
// are appended one at a time, dropping any that cannot be appended; if none
// can, the result is ErrNoDecodableFiles.
func (m *Merger) concat(ctx context.Context, files []drive.File) (assembly, error) {
	var asm assembly

	payloads, errs := m.fetch(ctx, files)

	var (
		docs   [][]byte
		counts []int
		kept   []drive.File
	)
	for i, f := range files {
		if errs[i] != nil {
			asm.failed = append(asm.failed, issue(f, "download failed: %v", errs[i]))
			continue
		}
		n, err := countPages(payloads[i])
		if err != nil {
			asm.failed = append(asm.failed, issue(f, "%v", err))
			continue
		}
		docs = append(docs, payloads[i])
		counts = append(counts, n)
		kept = append(kept, f)
		asm.pages += n
	}

	switch len(docs) {
	case 0:
		return asm, ErrNoDecodableFiles
	case 1:
		asm.data = docs[0]
		return asm, nil
	}

	data, err := concatenate(docs)
	if err == nil {
		asm.data = data
		return asm, nil
	}

	m.logger.Warn("joint concatenation failed, appending incrementally", "error", err)

	var (
		acc   []byte
		pages int
	)
	for i, doc := range docs {
		if acc == nil {
			// seed only with a document that concatenates with itself
			if _, err := concatenate([][]byte{doc, doc}); err != nil {
				asm.failed = append(asm.failed, issue(kept[i], "%v", err))
				continue
			}
			acc, pages = doc, counts[i]
			continue
		}

		next, err := concatenate([][]byte{acc, doc})
		if err != nil {
			asm.failed = append(asm.failed, issue(kept[i], "%v", err))
			continue
		}
		acc = next
		pages += counts[i]
	}

	if acc == nil {
		asm.pages = 0
		return asm, ErrNoDecodableFiles
	}

	asm.data, asm.pages = acc, pages
	return asm, nil
}

// fetch downloads files with bounded concurrency. Results and errors are
// aligned with files.
func (m *Merger) fetch(ctx context.Context, files []drive.File) ([][]byte, []error) {
	data := make([][]byte, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(m.cfg.FetchConcurrency)

	for i, f := range files {
		g.Go(func() error {
			data[i], errs[i] = m.drive.Download(ctx, f.ID)
			return nil
		})
	}
	_ = g.Wait()

	return data, errs
}

// cleanup permanently deletes temporary batch files. It runs even when ctx
// has been cancelled.
func (m *Merger) cleanup(ctx context.Context, temps []drive.File) {
	ctx = context.WithoutCancel(ctx)
	for _, t := range temps {
		if err := m.drive.DeleteFile(ctx, t.ID); err != nil {
			m.logger.Warn("temporary batch not deleted", "file_id", t.ID, "name", t.Name, "error", err)
		}
	}
}

func tempName(run string, index int) string {
	return fmt.Sprintf(".binder-batch-%s-%03d.pdf", run, index+1)
}
