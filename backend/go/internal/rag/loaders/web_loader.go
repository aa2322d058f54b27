package loaders

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"DocRAG/backend/go/internal/rag/interfaces"
	"DocRAG/backend/go/internal/rag/schema"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/uuid"
)

// maxPageBytes caps how much of a web page is read.
const maxPageBytes = 2 << 20

// WebLoader implements the Loader interface for fetching and parsing web pages.
type WebLoader struct {
	client *http.Client
}

// NewWebLoader creates a new WebLoader. A nil client uses http.DefaultClient.
func NewWebLoader(client *http.Client) *WebLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebLoader{client: client}
}

// LoadURL fetches a page and converts its HTML into Markdown text.
func (l *WebLoader) LoadURL(ctx context.Context, url string) ([]*schema.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "DocRAG/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, err
	}

	docs, err := l.Load(ctx, url, body)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		d.Metadata[schema.MetadataKeySourceURL] = url
	}
	return docs, nil
}

// Load converts an HTML document into a single Markdown Document.
func (l *WebLoader) Load(ctx context.Context, name string, data []byte) ([]*schema.Document, error) {
	markdown, err := htmltomarkdown.ConvertString(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, name, err)
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return nil, nil
	}
	return []*schema.Document{{
		ID:       uuid.New().String(),
		Text:     markdown,
		Metadata: map[string]interface{}{},
	}}, nil
}

// compile-time check to ensure WebLoader implements the Loader interface
var _ interfaces.Loader = (*WebLoader)(nil)
