// Package rag 在单个上传文档内检索与查询相关的段落。
package rag

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"DocRAG/backend/go/internal/docstore"
	"DocRAG/backend/go/internal/rag/interfaces"
	"DocRAG/backend/go/internal/rag/loaders"
	"DocRAG/backend/go/internal/rag/schema"
	"DocRAG/backend/go/pkg/logger"
)

// ErrUnreadableDocument 表示文档内容无法被解析。
var ErrUnreadableDocument = loaders.ErrUnreadable

// Options 配置一个 Searcher。Loaders 按文档类别选择。
type Options struct {
	Store    docstore.Store
	Loaders  map[docstore.Kind]interfaces.Loader
	Splitter interfaces.Splitter
	Ranker   interfaces.Ranker
	TopK     int
	Logger   *logger.Logger
}

// Searcher 每次检索都重新读取文档，因此同名覆盖后立即生效。
type Searcher struct {
	opts Options
	log  *logger.Logger
}

func NewSearcher(opts Options) *Searcher {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Searcher{opts: opts, log: log}
}

// Passages 返回按相关度排序的段落。
func (s *Searcher) Passages(ctx context.Context, docPath, query string) ([]*schema.Document, error) {
	start := time.Now()
	if !s.opts.Store.Exists(ctx, docPath) {
		return nil, fmt.Errorf("%w: %s", docstore.ErrDocumentNotFound, docPath)
	}
	kind, ok := docstore.KindOf(docPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", docstore.ErrUnsupportedKind, docPath)
	}
	loader, ok := s.opts.Loaders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no loader for %s", docstore.ErrUnsupportedKind, kind)
	}

	data, err := s.opts.Store.Open(ctx, docPath)
	if err != nil {
		return nil, err
	}
	docs, err := loader.Load(ctx, path.Base(docPath), data)
	if err != nil {
		return nil, err
	}
	chunks, err := s.opts.Splitter.Split(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", docPath, err)
	}
	ranked, err := s.opts.Ranker.Rank(ctx, query, chunks, s.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("rank %s: %w", docPath, err)
	}

	s.log.WithPayload(map[string]interface{}{
		"document":    docPath,
		"pages":       len(docs),
		"chunks":      len(chunks),
		"returned":    len(ranked),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Document searched")
	return ranked, nil
}

// Search 返回可直接放进提示词的检索结果。
func (s *Searcher) Search(ctx context.Context, docPath, query string) (string, error) {
	passages, err := s.Passages(ctx, docPath, query)
	if err != nil {
		return "", err
	}
	return FormatPassages(path.Base(docPath), passages), nil
}

// FormatPassages 把段落编号并标注来源。
func FormatPassages(name string, passages []*schema.Document) string {
	if len(passages) == 0 {
		return fmt.Sprintf("No readable text was found in %s.", name)
	}
	var sb strings.Builder
	for i, p := range passages {
		label := p.Label()
		if label == "" {
			label = name
		}
		fmt.Fprintf(&sb, "[%d] (%s)\n%s\n\n", i+1, label, strings.TrimSpace(p.Text))
	}
	return strings.TrimRight(sb.String(), "\n")
}
