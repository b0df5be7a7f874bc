// Package fs persists assembled documents as Markdown files.
package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/guji"
)

// Ensure Writer implements guji.DocumentWriter at compile time.
var _ guji.DocumentWriter = (*Writer)(nil)

// Writer writes documents as Markdown files to a directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
// The directory is created on first write.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Path returns where the document is written.
func (w *Writer) Path(doc *guji.Document) string {
	return filepath.Join(w.baseDir, FileName(doc.Title))
}

// WriteDocument validates the document and writes it to Path. The file
// is written under a .tmp name first and renamed into place, so an
// existing file is replaced only by a complete one.
func (w *Writer) WriteDocument(ctx context.Context, doc *guji.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return err
	}

	path := w.Path(doc)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(FormatDocument(doc)), 0644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
