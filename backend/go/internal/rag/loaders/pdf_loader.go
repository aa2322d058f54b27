package loaders

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"DocRAG/backend/go/internal/rag/interfaces"
	"DocRAG/backend/go/internal/rag/schema"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// PdfLoader implements the Loader interface for reading PDF files.
type PdfLoader struct{}

// NewPdfLoader creates a new PdfLoader.
func NewPdfLoader() *PdfLoader {
	return &PdfLoader{}
}

// Load extracts the plain text of each page and returns a Document per non-empty page.
func (l *PdfLoader) Load(ctx context.Context, name string, data []byte) (docs []*schema.Document, err error) {
	// the parser panics on some malformed fonts and xref tables
	defer func() {
		if r := recover(); r != nil {
			docs, err = nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, name, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, name, err)
	}

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %v", ErrUnreadable, name, i, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		docs = append(docs, &schema.Document{
			ID:   uuid.New().String(),
			Text: text,
			Metadata: map[string]interface{}{
				schema.MetadataKeyFileName:  name,
				schema.MetadataKeyPageLabel: strconv.Itoa(i),
			},
		})
	}

	return docs, nil
}

// compile-time check to ensure PdfLoader implements the Loader interface
var _ interfaces.Loader = (*PdfLoader)(nil)
