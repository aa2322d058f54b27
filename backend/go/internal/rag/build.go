package rag

import (
	"fmt"

	"DocRAG/backend/go/internal/config"
	"DocRAG/backend/go/internal/docstore"
	"DocRAG/backend/go/internal/llm"
	"DocRAG/backend/go/internal/rag/interfaces"
	"DocRAG/backend/go/internal/rag/loaders"
	"DocRAG/backend/go/internal/rag/rankers"
	"DocRAG/backend/go/internal/rag/splitters"
	"DocRAG/backend/go/pkg/logger"
)

// Build 按配置组装 Searcher。describer 用于读取图片，通常是本次运行选中的模型；
// 排序器为 "embedding" 时必须提供 embedder。
func Build(cfg config.RAGConfig, store docstore.Store, describer llm.ImageDescriber, embedder interfaces.EmbeddingModel, log *logger.Logger) (*Searcher, error) {
	splitter, err := splitters.NewTokenSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	var ranker interfaces.Ranker
	switch cfg.Ranker {
	case "", "keyword":
		ranker = rankers.NewKeywordRanker()
	case "embedding":
		if embedder == nil {
			return nil, fmt.Errorf("embedding ranker needs an embedding model")
		}
		ranker = rankers.NewEmbeddingRanker(embedder)
	default:
		return nil, fmt.Errorf("unsupported ranker %q", cfg.Ranker)
	}

	return NewSearcher(Options{
		Store: store,
		Loaders: map[docstore.Kind]interfaces.Loader{
			docstore.KindPDF:   loaders.NewPdfLoader(),
			docstore.KindImage: loaders.NewImageLoader(describer, docstore.MIMETypeOf),
		},
		Splitter: splitter,
		Ranker:   ranker,
		TopK:     cfg.TopK,
		Logger:   log,
	}), nil
}
