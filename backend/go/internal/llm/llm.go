package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"DocRAG/backend/go/internal/config"
	"DocRAG/backend/go/internal/models"
)

// ErrUnknownModel 表示模型选择器里没有这个选项。
var ErrUnknownModel = errors.New("unknown model choice")

// LLM 定义了所有大型语言模型客户端必须实现的通用接口。
type LLM interface {
	GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error)
}

// ImageDescriber 是支持图片输入的模型额外提供的能力。
type ImageDescriber interface {
	DescribeImage(ctx context.Context, mimeType string, data []byte, prompt string) (string, error)
}

// Resolve 在模型目录中查找一个选项；choice 为空时使用默认选项。
func Resolve(cfg config.LLMConfig, choice string) (config.ModelChoice, error) {
	if choice == "" {
		choice = cfg.DefaultModel
	}
	for _, m := range cfg.Models {
		if m.Name == choice {
			return m, nil
		}
	}
	return config.ModelChoice{}, fmt.Errorf("%w: %q", ErrUnknownModel, choice)
}

// NewClient 是一个工厂函数，根据模型选择器的选项创建一个 LLM 客户端。
// 每次提交都会重新调用，使本次运行的所有 Agent 绑定到提交时选中的模型。
func NewClient(ctx context.Context, cfg config.LLMConfig, choice string) (LLM, config.ModelChoice, error) {
	mc, err := Resolve(cfg, choice)
	if err != nil {
		return nil, config.ModelChoice{}, err
	}

	var client LLM
	switch mc.Provider {
	case "openai", "":
		client, err = NewOpenAI(mc.Model, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	case "ollama":
		client, err = NewOllama(mc.Model, cfg.Ollama.BaseURL)
	case "gemini":
		client, err = NewGemini(ctx, mc.Model, cfg.Gemini.APIKey)
	default:
		return nil, mc, fmt.Errorf("unsupported LLM provider: %s", mc.Provider)
	}
	if err != nil {
		return nil, mc, err
	}
	return client, mc, nil
}

// Close 释放持有底层连接的客户端（目前只有 Gemini）。
func Close(client LLM) error {
	if c, ok := client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
