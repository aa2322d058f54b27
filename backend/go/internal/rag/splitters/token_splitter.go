package splitters

import (
	"context"
	"fmt"
	"sync"
	"unicode"

	"DocRAG/backend/go/internal/rag/interfaces"
	"DocRAG/backend/go/internal/rag/schema"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Encoding is the tokenizer used by gpt-4, gpt-3.5-turbo and the text-embedding-3 models.
const Encoding = "cl100k_base"

var loaderOnce sync.Once

// TokenSplitter implements the Splitter interface to split documents based on token count.
// A chunk is cut before the last token of its second half that starts a new word,
// so words are not broken in the middle.
type TokenSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	tokenizer    *tiktoken.Tiktoken
}

// NewTokenSplitter creates a new TokenSplitter.
// BPE ranks are read from the embedded offline loader, no download happens.
func NewTokenSplitter(chunkSize, chunkOverlap int) (*TokenSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, chunkOverlap)
	}

	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	tke, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}

	return &TokenSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		tokenizer:    tke,
	}, nil
}

// Split splits a list of documents into smaller chunks based on the token size.
func (s *TokenSplitter) Split(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error) {
	var chunks []*schema.Document

	for _, doc := range docs {
		tokens := s.tokenizer.Encode(doc.Text, nil, nil)
		number := 0

		for start := 0; start < len(tokens); {
			end := start + s.ChunkSize
			if end >= len(tokens) {
				end = len(tokens)
			} else {
				end = s.backoff(tokens, start, end)
			}

			number++
			newDoc := &schema.Document{
				ID:       uuid.New().String(),
				Text:     s.tokenizer.Decode(tokens[start:end]),
				Metadata: copyMetadata(doc.Metadata),
			}
			newDoc.Metadata[schema.MetadataKeyOriginalDocID] = doc.ID
			newDoc.Metadata[schema.MetadataKeyChunkNumber] = number
			chunks = append(chunks, newDoc)

			if end == len(tokens) {
				break
			}
			next := end - s.ChunkOverlap
			if next <= start {
				next = end
			}
			start = next
		}
	}

	return chunks, nil
}

// backoff moves end back to the last token in the second half of the window whose
// decoded text begins with whitespace. tokens[end] is a candidate too.
func (s *TokenSplitter) backoff(tokens []int, start, end int) int {
	for i := end; i > start+s.ChunkSize/2; i-- {
		piece := s.tokenizer.Decode(tokens[i : i+1])
		if piece != "" && unicode.IsSpace([]rune(piece)[0]) {
			return i
		}
	}
	return end
}

func copyMetadata(md map[string]interface{}) map[string]interface{} {
	newMd := make(map[string]interface{}, len(md)+2)
	for k, v := range md {
		newMd[k] = v
	}
	return newMd
}

// compile-time check to ensure TokenSplitter implements the Splitter interface
var _ interfaces.Splitter = (*TokenSplitter)(nil)
