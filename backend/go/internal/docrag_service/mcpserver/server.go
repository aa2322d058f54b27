// Package mcpserver 把博客流水线暴露为 MCP 工具，供桌面客户端等 MCP host 调用。
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"DocRAG/backend/go/internal/docrag_service/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Runner 是 MCP 工具需要的服务能力，*service.Service 满足该接口。
type Runner interface {
	Run(ctx context.Context, req service.RunRequest) (*service.RunResult, error)
	Models() []service.ModelInfo
}

// New 创建注册了 write_blog_post 和 list_models 两个工具的 MCP 服务器。
func New(name, version string, runner Runner) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
	)

	h := &handlers{runner: runner}

	writeTool := mcp.NewTool("write_blog_post",
		mcp.WithDescription("Write a Markdown blog post that answers a query using an uploaded document and web search"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The question or topic the blog post should answer"),
		),
		mcp.WithString("document",
			mcp.Required(),
			mcp.Description("File name of a previously uploaded PDF or image"),
		),
		mcp.WithString("model",
			mcp.Description("Model choice name, defaults to the configured default model"),
		),
	)
	s.AddTool(writeTool, h.writeBlogPost)

	listTool := mcp.NewTool("list_models",
		mcp.WithDescription("List the model choices that write_blog_post accepts"),
	)
	s.AddTool(listTool, h.listModels)

	return s
}

type handlers struct {
	runner Runner
}

func (h *handlers) writeBlogPost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	document, err := request.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := h.runner.Run(ctx, service.RunRequest{
		Query:    query,
		Model:    request.GetString("model", ""),
		Document: document,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to write blog post: %v", err)), nil
	}
	return mcp.NewToolResultText(result.Markdown), nil
}

func (h *handlers) listModels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(h.runner.Models())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
