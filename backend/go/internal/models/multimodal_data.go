package models

import (
	"strings"
	"time"
)

// SpeakerRole 定义了消息发送者的角色。
type SpeakerRole string

const (
	SpeakerSystem SpeakerRole = "system" // 系统提示（Agent 人设）。
	SpeakerUser   SpeakerRole = "user"   // 用户角色。
	SpeakerModel  SpeakerRole = "model"  // 模型角色。
)

// Content 包含了构成单个消息的多个部分。
type Content struct {
	// 可选。构成单个消息的部分列表。每个部分可能具有不同的 IANA MIME 类型。
	Parts []*Part `json:"parts,omitempty"`
	// 可选。内容的生产者。
	Role SpeakerRole `json:"role,omitempty"`
}

// Text 拼接所有文本部分。
func (c Content) Text() string {
	var sb strings.Builder
	for _, p := range c.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// NewTextContent 创建只包含一段文本的消息。
func NewTextContent(role SpeakerRole, text string) Content {
	return Content{Role: role, Parts: []*Part{{Text: text}}}
}

// GenerateContentRequest 定义了生成内容的请求结构。
type GenerateContentRequest struct {
	// 可选。系统指令，各提供商以各自的方式注入。
	SystemInstruction string `json:"systemInstruction,omitempty"`
	// 请求的内容列表。
	Content []Content `json:"content,omitempty"`
}

// GenerateContentResponse 定义了生成内容的响应结构。
type GenerateContentResponse struct {
	Content      []Content `json:"content,omitempty"`      // 响应的内容列表。
	CreateTime   time.Time `json:"createTime,omitempty"`   // 响应创建时间。
	ResponseID   string    `json:"responseId,omitempty"`   // 响应ID。
	ModelVersion string    `json:"modelVersion,omitempty"` // 模型版本。
}

// Text 返回第一个候选的文本；没有候选时返回空串。
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text()
}

// Part 定义了消息的单个部分，可以包含文本或内联数据。
type Part struct {
	// 可选。内联字节数据（例如上传的图片）。
	InlineData *Blob `json:"inlineData,omitempty"`
	// 可选。文本部分。
	Text string `json:"text,omitempty"`
}

// Blob 包含了内联的二进制数据。
type Blob struct {
	// 可选。Blob 的显示名称。
	DisplayName string `json:"displayName,omitempty"`
	// 必填。原始字节数据。
	Data []byte `json:"data,omitempty"`
	// 必填。源数据的 IANA 标准 MIME 类型。
	MIMEType string `json:"mimeType,omitempty"`
}
