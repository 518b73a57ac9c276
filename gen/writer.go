package gen

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// File is one generation artifact: a path relative to the writer's
// target directory and its contents.
type File struct {
	Path string
	Body []byte
}

// Writer writes artifacts through an afero filesystem with bounded
// parallelism. Go sources pass through goimports before hitting disk.
type Writer struct {
	fs      afero.Fs
	target  string
	workers int

	// Metrics for performance monitoring
	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks writer throughput.
type WriterMetrics struct {
	FilesWritten int
	TotalBytes   int64
}

// NewWriter creates a writer rooted at the target directory.
func NewWriter(fs afero.Fs, target string) *Writer {
	return &Writer{
		fs:      fs,
		target:  target,
		workers: runtime.GOMAXPROCS(0),
	}
}

// WithWorkers sets the number of parallel workers.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// Metrics returns a copy of the accumulated metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// Write writes all files in parallel and waits for them to land.
func (w *Writer) Write(ctx context.Context, files []*File) error {
	if err := w.fs.MkdirAll(w.target, 0o755); err != nil {
		return NewGenerationError("write", w.target, "cannot create target directory", err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(f)
			}
		})
	}
	return eg.Wait()
}

// writeFile writes a single artifact, formatting Go sources first.
func (w *Writer) writeFile(f *File) error {
	body := f.Body
	full := filepath.Join(w.target, f.Path)
	if strings.HasSuffix(f.Path, ".go") {
		// goimports both formats and prunes unused imports.
		formatted, err := imports.Process(full, body, nil)
		if err != nil {
			return NewGenerationError("format", f.Path, "goimports failed", err)
		}
		body = formatted
	}
	if err := w.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return NewGenerationError("write", f.Path, "cannot create directory", err)
	}
	if err := afero.WriteFile(w.fs, full, body, 0o644); err != nil {
		return NewGenerationError("write", f.Path, "cannot write file", err)
	}
	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(len(body))
	w.mu.Unlock()
	return nil
}
