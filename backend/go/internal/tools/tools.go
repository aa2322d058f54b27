// Package tools 提供流水线任务使用的检索工具。
package tools

import (
	"context"
	"fmt"
	"path"

	"DocRAG/backend/go/internal/crew"
	"DocRAG/backend/go/internal/docstore"
	"DocRAG/backend/go/internal/websearch"
)

// DocumentSearcher 在单个文档中检索。
type DocumentSearcher interface {
	Search(ctx context.Context, docPath, query string) (string, error)
}

// WebSearcher 执行一次网页搜索。
type WebSearcher interface {
	Search(ctx context.Context, query string) (*websearch.Response, error)
}

// DocumentSearchTool 绑定到一个文档路径。绑定时不检查文档是否存在，
// 检索时才检查，缺失时返回 docstore.ErrDocumentNotFound。
type DocumentSearchTool struct {
	path     string
	store    docstore.Store
	searcher DocumentSearcher
}

func NewDocumentSearchTool(docPath string, store docstore.Store, searcher DocumentSearcher) *DocumentSearchTool {
	return &DocumentSearchTool{path: docPath, store: store, searcher: searcher}
}

func (t *DocumentSearchTool) Name() string { return "document_search:" + path.Base(t.path) }

func (t *DocumentSearchTool) Search(ctx context.Context, query string) (string, error) {
	if t.path == "" || !t.store.Exists(ctx, t.path) {
		return "", fmt.Errorf("%w: %q", docstore.ErrDocumentNotFound, t.path)
	}
	return t.searcher.Search(ctx, t.path, query)
}

// WebSearchTool 把网页搜索结果渲染成文本。
type WebSearchTool struct {
	searcher WebSearcher
}

func NewWebSearchTool(searcher WebSearcher) *WebSearchTool {
	return &WebSearchTool{searcher: searcher}
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Search(ctx context.Context, query string) (string, error) {
	resp, err := t.searcher.Search(ctx, query)
	if err != nil {
		return "", err
	}
	return resp.Format(), nil
}

var (
	_ crew.Tool = (*DocumentSearchTool)(nil)
	_ crew.Tool = (*WebSearchTool)(nil)
)
