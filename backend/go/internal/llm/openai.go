package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"DocRAG/backend/go/internal/models"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAI 是一个用于 OpenAI API 的 LLM 客户端。
type OpenAI struct {
	client *openai.Client // OpenAI 客户端实例。
	model  string         // 要使用的模型名称。
}

// NewOpenAI 创建一个新的 OpenAI 客户端。
// apiKey 为空时也能创建成功，调用时由服务端返回认证错误。
func NewOpenAI(model, apiKey, baseURL string) (*OpenAI, error) {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAI{
		client: client,
		model:  model,
	}, nil
}

// GenerateContent 使用 OpenAI API 生成内容。
func (o *OpenAI) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	resp, err := o.client.CreateChatCompletion(ctx, o.toOpenAIRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	return o.toGenerateContentResponse(&resp), nil
}

// DescribeImage 把图片作为多模态输入发送给模型。
func (o *OpenAI) DescribeImage(ctx context.Context, mimeType string, data []byte, prompt string) (string, error) {
	req := &models.GenerateContentRequest{
		Content: []models.Content{{
			Role: models.SpeakerUser,
			Parts: []*models.Part{
				{Text: prompt},
				{InlineData: &models.Blob{MIMEType: mimeType, Data: data}},
			},
		}},
	}
	resp, err := o.GenerateContent(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// toOpenAIRequest 将我们的内部请求格式转换为 OpenAI 格式。
func (o *OpenAI) toOpenAIRequest(req *models.GenerateContentRequest) openai.ChatCompletionRequest {
	var messages []openai.ChatCompletionMessage
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	for _, content := range req.Content {
		msg := openai.ChatCompletionMessage{Role: toOpenAIRole(content.Role)}
		if hasInlineData(content) {
			// 带图片的消息必须走 MultiContent，Content 字段需留空。
			for _, part := range content.Parts {
				switch {
				case part.InlineData != nil:
					msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(part.InlineData),
							Detail: openai.ImageURLDetailAuto,
						},
					})
				case part.Text != "":
					msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
						Type: openai.ChatMessagePartTypeText,
						Text: part.Text,
					})
				}
			}
		} else {
			msg.Content = content.Text()
		}
		messages = append(messages, msg)
	}

	return openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	}
}

// toGenerateContentResponse 将 OpenAI 响应转换为我们的内部格式。
func (o *OpenAI) toGenerateContentResponse(resp *openai.ChatCompletionResponse) *models.GenerateContentResponse {
	var content []models.Content
	for _, choice := range resp.Choices {
		content = append(content, models.NewTextContent(models.SpeakerModel, choice.Message.Content))
	}

	return &models.GenerateContentResponse{
		Content:      content,
		ResponseID:   resp.ID,
		ModelVersion: resp.Model,
	}
}

func toOpenAIRole(role models.SpeakerRole) string {
	switch role {
	case models.SpeakerSystem:
		return openai.ChatMessageRoleSystem
	case models.SpeakerModel:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

func hasInlineData(c models.Content) bool {
	for _, p := range c.Parts {
		if p != nil && p.InlineData != nil {
			return true
		}
	}
	return false
}

func dataURL(b *models.Blob) string {
	return "data:" + b.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(b.Data)
}
