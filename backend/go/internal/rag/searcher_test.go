package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"DocRAG/backend/go/internal/config"
	"DocRAG/backend/go/internal/docstore"
	"DocRAG/backend/go/internal/rag/interfaces"
	"DocRAG/backend/go/internal/rag/rankers"
	"DocRAG/backend/go/internal/rag/schema"
	"DocRAG/backend/go/internal/rag/splitters"
)

// textLoader treats everything after the magic header as page text, one page per form feed.
type textLoader struct {
	calls int
}

func (l *textLoader) Load(ctx context.Context, name string, data []byte) ([]*schema.Document, error) {
	l.calls++
	body := strings.SplitN(string(data), "\n", 2)[1]
	var out []*schema.Document
	for i, page := range strings.Split(body, "\f") {
		out = append(out, &schema.Document{
			ID:   name,
			Text: page,
			Metadata: map[string]interface{}{
				schema.MetadataKeyFileName:  name,
				schema.MetadataKeyPageLabel: string(rune('1' + i)),
			},
		})
	}
	return out, nil
}

func newTestSearcher(t *testing.T, loader interfaces.Loader) (*Searcher, *docstore.LocalStore) {
	t.Helper()
	store, err := docstore.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	splitter, _ := splitters.NewTokenSplitter(200, 20)
	return NewSearcher(Options{
		Store:    store,
		Loaders:  map[docstore.Kind]interfaces.Loader{docstore.KindPDF: loader},
		Splitter: splitter,
		Ranker:   rankers.NewKeywordRanker(),
		TopK:     1,
	}), store
}

func TestSearcher_ReturnsRelevantPassage(t *testing.T) {
	loader := &textLoader{}
	s, store := newTestSearcher(t, loader)
	ctx := context.Background()
	doc, err := store.Save(ctx, "notes.pdf", []byte("%PDF-1.4\nGradient descent minimises loss.\fBackpropagation applies the chain rule."))
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Search(ctx, doc.Path, "What is backpropagation?")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Backpropagation applies the chain rule.") || !strings.Contains(got, "(notes.pdf p.2)") {
		t.Errorf("unexpected search result:\n%s", got)
	}
	if strings.Contains(got, "Gradient descent") {
		t.Errorf("topK=1 should only return the best passage:\n%s", got)
	}
}

func TestSearcher_ReadsLatestContentAfterOverwrite(t *testing.T) {
	s, store := newTestSearcher(t, &textLoader{})
	ctx := context.Background()
	if _, err := store.Save(ctx, "notes.pdf", []byte("%PDF-1.4\nold content about backpropagation")); err != nil {
		t.Fatal(err)
	}
	doc, _ := store.Save(ctx, "notes.pdf", []byte("%PDF-1.4\nnew content about backpropagation"))

	got, err := s.Search(ctx, doc.Path, "backpropagation")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "new content") {
		t.Errorf("expected the overwritten content, got:\n%s", got)
	}
}

func TestSearcher_MissingDocument(t *testing.T) {
	loader := &textLoader{}
	s, store := newTestSearcher(t, loader)
	_, err := s.Search(context.Background(), store.PathFor("absent.pdf"), "q")
	if !errors.Is(err, docstore.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if loader.calls != 0 {
		t.Errorf("loader must not run for a missing document")
	}
}

func TestSearcher_InvalidPDF(t *testing.T) {
	store, _ := docstore.NewLocalStore(t.TempDir())
	s, err := Build(config.RAGConfig{ChunkSize: 100, ChunkOverlap: 10, TopK: 3}, store, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := store.Save(context.Background(), "broken.pdf", []byte("%PDF-1.4\nthis is not a real pdf body"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Search(context.Background(), doc.Path, "q"); !errors.Is(err, ErrUnreadableDocument) {
		t.Errorf("expected ErrUnreadableDocument, got %v", err)
	}
}

func TestSearcher_ImageWithoutVisionModel(t *testing.T) {
	store, _ := docstore.NewLocalStore(t.TempDir())
	s, _ := Build(config.RAGConfig{ChunkSize: 100, ChunkOverlap: 10, TopK: 3}, store, nil, nil, nil)
	doc, err := store.Save(context.Background(), "pic.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Search(context.Background(), doc.Path, "q"); !errors.Is(err, ErrUnreadableDocument) {
		t.Errorf("expected ErrUnreadableDocument, got %v", err)
	}
}

func TestBuild_RejectsUnknownRanker(t *testing.T) {
	if _, err := Build(config.RAGConfig{ChunkSize: 100, Ranker: "bm42"}, nil, nil, nil, nil); err == nil {
		t.Error("expected an error for an unknown ranker")
	}
	if _, err := Build(config.RAGConfig{ChunkSize: 100, Ranker: "embedding"}, nil, nil, nil, nil); err == nil {
		t.Error("expected an error for the embedding ranker without an embedder")
	}
}

func TestFormatPassages_Empty(t *testing.T) {
	if got := FormatPassages("scan.pdf", nil); !strings.Contains(got, "scan.pdf") {
		t.Errorf("unexpected message %q", got)
	}
}
