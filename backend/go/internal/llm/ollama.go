package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"DocRAG/backend/go/internal/models"

	olla "github.com/ollama/ollama/api"
)

// Ollama 是一个用于 Ollama API 的 LLM 客户端。
type Ollama struct {
	client *olla.Client // Ollama 客户端实例。
	model  string       // 要使用的模型名称。
}

// NewOllama 创建一个新的 Ollama 客户端。
//
// 参数:
//
//	model: 要使用的模型名称。
//	baseURL: Ollama 服务的基准 URL。如果为空，则默认为 "http://localhost:11434"。
//
// 返回值:
//
//	*Ollama: 新创建的 Ollama 客户端实例。
//	error: 如果基准 URL 无效，则返回错误。
func NewOllama(model, baseURL string) (*Ollama, error) {
	// 如果 baseURL 为空，则使用默认地址。
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	// 将字符串 URL 转换为 *url.URL。
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// 创建一个带有超时设置的 HTTP 客户端。
	hc := &http.Client{
		Timeout: 300 * time.Second,
	}

	return &Ollama{client: olla.NewClient(parsedURL, hc), model: model}, nil
}

// GenerateContent 使用 Ollama API 生成内容。
func (o *Ollama) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	prompt, images := o.toOllamaPrompt(req)
	return o.generate(ctx, req.SystemInstruction, prompt, images)
}

// DescribeImage 通过 Ollama 的多模态模型（例如 llava）描述图片。
func (o *Ollama) DescribeImage(ctx context.Context, mimeType string, data []byte, prompt string) (string, error) {
	resp, err := o.generate(ctx, "", prompt, []olla.ImageData{data})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (o *Ollama) generate(ctx context.Context, system, prompt string, images []olla.ImageData) (*models.GenerateContentResponse, error) {
	var result *olla.GenerateResponse // 用于存储生成结果。

	// 非流式调用，回调只会触发一次。
	err := o.client.Generate(ctx, &olla.GenerateRequest{
		Model:  o.model,
		System: system,
		Prompt: prompt,
		Images: images,
		Stream: &[]bool{false}[0],
	}, func(resp olla.GenerateResponse) error {
		result = &resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with ollama: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("ollama returned no response")
	}
	return o.toGenerateContentResponse(result), nil
}

// toOllamaPrompt 将内部 GenerateContentRequest 转换为 Ollama 提示字符串和图片列表。
func (o *Ollama) toOllamaPrompt(req *models.GenerateContentRequest) (string, []olla.ImageData) {
	var sb strings.Builder
	var images []olla.ImageData
	for i, content := range req.Content {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		for _, part := range content.Parts {
			sb.WriteString(part.Text)
			if part.InlineData != nil {
				images = append(images, part.InlineData.Data)
			}
		}
	}
	return sb.String(), images
}

// toGenerateContentResponse 将 Ollama GenerateResponse 转换为内部 GenerateContentResponse 结构体。
func (o *Ollama) toGenerateContentResponse(resp *olla.GenerateResponse) *models.GenerateContentResponse {
	return &models.GenerateContentResponse{
		Content:      []models.Content{models.NewTextContent(models.SpeakerModel, resp.Response)},
		CreateTime:   resp.CreatedAt,
		ModelVersion: resp.Model,
	}
}
