package gen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// WriteStatus describes what happened to one generated file.
type WriteStatus int

const (
	// Written means the file was created or replaced.
	Written WriteStatus = iota
	// Unchanged means the file already had the generated content.
	Unchanged
	// Printed means the content went to the dry-run writer.
	Printed
)

func (s WriteStatus) String() string {
	switch s {
	case Written:
		return "written"
	case Unchanged:
		return "unchanged"
	case Printed:
		return "printed"
	default:
		return fmt.Sprintf("WriteStatus(%d)", int(s))
	}
}

// Writer puts generated files on disk.
type Writer struct {
	logger *slog.Logger

	// dryRun, when set, receives the file contents instead of the
	// filesystem.
	dryRun io.Writer
}

// NewWriter creates a Writer. A non-nil dryRun diverts all output to it.
func NewWriter(logger *slog.Logger, dryRun io.Writer) *Writer {
	return &Writer{logger: logger, dryRun: dryRun}
}

// WriteAll writes files concurrently and returns one status per file,
// in the order given.
func (w *Writer) WriteAll(ctx context.Context, files []GeneratedFile) ([]WriteStatus, error) {
	statuses := make([]WriteStatus, len(files))

	if w.dryRun != nil {
		for i, f := range files {
			if _, err := fmt.Fprintf(w.dryRun, "// ---- %s ----\n%s", f.Path, f.Content); err != nil {
				return nil, fmt.Errorf("writing dry-run output: %w", err)
			}
			statuses[i] = Printed
		}
		return statuses, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			st, err := w.write(f)
			if err != nil {
				return err
			}
			statuses[i] = st
			w.logger.Info("generated", "type", f.SumType, "file", f.Path, "status", st)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}

// write replaces f.Path atomically unless it already holds f.Content.
func (w *Writer) write(f GeneratedFile) (WriteStatus, error) {
	if existing, err := os.ReadFile(f.Path); err == nil && bytes.Equal(existing, f.Content) {
		return Unchanged, nil
	}

	dir, base := filepath.Split(f.Path)
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, f.Content, 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("renaming %s to %s: %w", tmp, f.Path, err)
	}
	return Written, nil
}
