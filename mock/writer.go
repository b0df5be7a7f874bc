package mock

import (
	"context"

	"github.com/fwojciec/guji"
)

var _ guji.DocumentWriter = (*DocumentWriter)(nil)

// DocumentWriter is a mock implementation of guji.DocumentWriter.
type DocumentWriter struct {
	WriteDocumentFn func(ctx context.Context, doc *guji.Document) error
}

func (w *DocumentWriter) WriteDocument(ctx context.Context, doc *guji.Document) error {
	return w.WriteDocumentFn(ctx, doc)
}
