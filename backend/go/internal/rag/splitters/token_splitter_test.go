package splitters

import (
	"context"
	"strings"
	"testing"

	"DocRAG/backend/go/internal/rag/schema"
)

const sentence = "Gradient descent updates the weights after backpropagation computes the gradient. "

func TestTokenSplitter_NoOverlapRebuildsText(t *testing.T) {
	s, err := NewTokenSplitter(16, 0)
	if err != nil {
		t.Fatal(err)
	}
	text := strings.Repeat(sentence, 10)
	chunks, err := s.Split(context.Background(), []*schema.Document{{ID: "doc", Text: text, Metadata: map[string]interface{}{"file_name": "a.pdf"}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	var joined strings.Builder
	for i, c := range chunks {
		joined.WriteString(c.Text)
		if n := len(s.tokenizer.Encode(c.Text, nil, nil)); n > 16+1 {
			t.Errorf("chunk %d has %d tokens", i, n)
		}
		if c.Metadata[schema.MetadataKeyChunkNumber] != i+1 {
			t.Errorf("chunk %d has number %v", i, c.Metadata[schema.MetadataKeyChunkNumber])
		}
		if c.Metadata[schema.MetadataKeyOriginalDocID] != "doc" || c.Metadata["file_name"] != "a.pdf" {
			t.Errorf("chunk %d lost its metadata: %v", i, c.Metadata)
		}
	}
	if joined.String() != text {
		t.Errorf("chunks without overlap must rebuild the text")
	}
}

func TestTokenSplitter_CutsBeforeWords(t *testing.T) {
	s, _ := NewTokenSplitter(12, 0)
	chunks, _ := s.Split(context.Background(), []*schema.Document{{Text: strings.Repeat(sentence, 4)}})
	for i, c := range chunks[1:] {
		if !strings.HasPrefix(c.Text, " ") {
			t.Errorf("chunk %d starts mid-word: %q", i+1, c.Text)
		}
	}
}

func TestTokenSplitter_Overlap(t *testing.T) {
	s, _ := NewTokenSplitter(16, 4)
	text := strings.Repeat(sentence, 6)
	chunks, _ := s.Split(context.Background(), []*schema.Document{{Text: text}})
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	total := 0
	for _, c := range chunks {
		total += len(c.Text)
	}
	if total <= len(text) {
		t.Errorf("overlapping chunks should repeat text, got %d chars for %d", total, len(text))
	}
	if !strings.HasPrefix(text, chunks[0].Text) || !strings.HasSuffix(text, chunks[len(chunks)-1].Text) {
		t.Errorf("first and last chunk must be the text edges")
	}
}

func TestTokenSplitter_MultibyteText(t *testing.T) {
	s, _ := NewTokenSplitter(4, 0)
	text := "反向传播算法通过链式法则计算梯度"
	chunks, _ := s.Split(context.Background(), []*schema.Document{{Text: text}})
	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Text)
	}
	if joined.String() != text {
		t.Errorf("joined = %q", joined.String())
	}
}

func TestNewTokenSplitter_Validation(t *testing.T) {
	if _, err := NewTokenSplitter(0, 0); err == nil {
		t.Error("expected an error for zero chunk size")
	}
	if _, err := NewTokenSplitter(10, 10); err == nil {
		t.Error("expected an error when overlap equals chunk size")
	}
}
