package rankers

import (
	"context"
	"fmt"
	"math"

	"DocRAG/backend/go/internal/rag/interfaces"
	"DocRAG/backend/go/internal/rag/schema"
)

// EmbeddingRanker ranks chunks by cosine similarity between query and chunk embeddings.
type EmbeddingRanker struct {
	embedder interfaces.EmbeddingModel
}

func NewEmbeddingRanker(embedder interfaces.EmbeddingModel) *EmbeddingRanker {
	return &EmbeddingRanker{embedder: embedder}
}

func (r *EmbeddingRanker) Rank(ctx context.Context, query string, docs []*schema.Document, topK int) ([]*schema.Document, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	texts := make([]string, 0, len(docs)+1)
	texts = append(texts, query)
	for _, d := range docs {
		texts = append(texts, d.Text)
	}

	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	q := vectors[0]
	for i, d := range docs {
		d.Embedding = vectors[i+1]
		d.Score = cosine(q, d.Embedding)
	}
	return topByScore(docs, topK), nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var _ interfaces.Ranker = (*EmbeddingRanker)(nil)
