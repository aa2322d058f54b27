package loaders

import (
	"context"
	"fmt"
	"strings"

	"DocRAG/backend/go/internal/llm"
	"DocRAG/backend/go/internal/rag/interfaces"
	"DocRAG/backend/go/internal/rag/schema"

	"github.com/google/uuid"
)

const describePrompt = "Describe this image in detail. Transcribe all visible text verbatim, " +
	"and explain any diagrams, charts or formulas it contains."

// ImageLoader turns an image into searchable text by asking a vision-capable model to describe it.
type ImageLoader struct {
	describer llm.ImageDescriber
	mimeType  func(name string) string
}

// NewImageLoader creates an ImageLoader. mimeType maps a stored file name to its MIME type.
func NewImageLoader(describer llm.ImageDescriber, mimeType func(name string) string) *ImageLoader {
	return &ImageLoader{describer: describer, mimeType: mimeType}
}

func (l *ImageLoader) Load(ctx context.Context, name string, data []byte) ([]*schema.Document, error) {
	if l.describer == nil {
		return nil, fmt.Errorf("%w: %s: selected model cannot read images", ErrUnreadable, name)
	}
	text, err := l.describer.DescribeImage(ctx, l.mimeType(name), data, describePrompt)
	if err != nil {
		return nil, fmt.Errorf("describe image %s: %w", name, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	return []*schema.Document{{
		ID:   uuid.New().String(),
		Text: text,
		Metadata: map[string]interface{}{
			schema.MetadataKeyFileName: name,
		},
	}}, nil
}

var _ interfaces.Loader = (*ImageLoader)(nil)
