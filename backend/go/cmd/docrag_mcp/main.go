package main

import (
	"context"
	"flag"
	"log"

	"DocRAG/backend/go/internal/config"
	"DocRAG/backend/go/internal/docrag_service/mcpserver"
	"DocRAG/backend/go/internal/docrag_service/service"
	"DocRAG/backend/go/internal/docstore"
	"DocRAG/backend/go/internal/llm"
	memstore "DocRAG/backend/go/internal/memory/store"
	"DocRAG/backend/go/internal/rag/interfaces"
	"DocRAG/backend/go/internal/websearch"
	"DocRAG/backend/go/pkg/logger"

	"github.com/mark3labs/mcp-go/server"
)

// STDIO transport (default)
//go run ./cmd/docrag_mcp
//
// SSE transport on port 8085
//go run ./cmd/docrag_mcp -transport=sse -port=8085
//
// StreamableHTTP transport on port 9000
//go run ./cmd/docrag_mcp -transport=httpstream -port=9000

func main() {
	transport := flag.String("transport", "stdio", "Transport method: stdio, sse, or httpstream")
	port := flag.String("port", "8085", "Port for HTTP-based transports (sse, httpstream)")
	configPath := flag.String("config", "config/config.yaml", "Path to the YAML configuration file")
	envFile := flag.String("env", ".env", "Path to a .env file with credentials")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// stdio 模式下标准输出承载协议消息，日志只能写到标准错误
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	logger.SetOutput(log.Writer())
	mcpLogger := logger.New("DocRAGMCP", "", "")

	ctx := context.Background()
	store, err := docstore.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	memory, err := memstore.Open(ctx, cfg.Memory)
	if err != nil {
		log.Fatalf("Failed to open conversation memory: %v", err)
	}
	var embedder interfaces.EmbeddingModel
	if cfg.RAG.Ranker == "embedding" {
		embedder = llm.NewOpenAIEmbedder(cfg.LLM.EmbeddingModel, cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.BaseURL)
	}

	svc, err := service.New(service.Options{
		Config:   cfg,
		Store:    store,
		Memory:   memory,
		Web:      websearch.NewClient(cfg.Search, mcpLogger),
		Embedder: embedder,
		Logger:   mcpLogger,
	})
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	s := mcpserver.New(cfg.App.Name, cfg.App.Version, svc)

	switch *transport {
	case "sse":
		log.Printf("Starting DocRAG MCP server with SSE transport on port %s", *port)
		sseServer := server.NewSSEServer(s)
		if err := sseServer.Start(":" + *port); err != nil {
			log.Fatalf("SSE server error: %v", err)
		}
	case "httpstream":
		log.Printf("Starting DocRAG MCP server with StreamableHTTP transport on port %s", *port)
		httpServer := server.NewStreamableHTTPServer(s)
		if err := httpServer.Start(":" + *port); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	case "stdio":
		log.Println("Starting DocRAG MCP server with STDIO transport")
		if err := server.ServeStdio(s); err != nil {
			log.Fatalf("STDIO server error: %v", err)
		}
	default:
		log.Fatalf("Unknown transport: %s. Use stdio, sse, or httpstream", *transport)
	}
}
