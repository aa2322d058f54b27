package interfaces

import (
	"context"

	"DocRAG/backend/go/internal/rag/schema"
)

// Loader converts the raw bytes of a stored document into a list of Document objects.
type Loader interface {
	Load(ctx context.Context, name string, data []byte) ([]*schema.Document, error)
}

// Splitter is the interface for splitting a list of Documents into smaller chunks.
type Splitter interface {
	Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error)
}

// Ranker orders chunks by relevance to the query and keeps at most topK of them.
type Ranker interface {
	Rank(ctx context.Context, query string, docs []*schema.Document, topK int) ([]*schema.Document, error)
}

// EmbeddingModel is the interface for a text embedding model.
type EmbeddingModel interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
