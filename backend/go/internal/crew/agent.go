package crew

import (
	"context"
	"fmt"
	"strings"

	"DocRAG/backend/go/internal/llm"
	"DocRAG/backend/go/internal/models"
)

// CannotAnswerMarker 是模型回复以此开头时表示无法完成任务。
const CannotAnswerMarker = "CANNOT_ANSWER"

// Delegate 是流水线调度 Agent 时使用的能力接口。
// 主 Agent 返回 ErrCannotAnswer 后，流水线按声明顺序尝试其他 CanHandle 为真的成员。
type Delegate interface {
	Role() string
	CanHandle(t *Task) bool
	Invoke(ctx context.Context, t *Task, p Prompt) (string, error)
}

// AgentConfig 描述一个 Agent 人设。
type AgentConfig struct {
	Role            string
	Goal            string // 必须包含 {query}
	Backstory       string
	AllowDelegation bool
	LLM             llm.LLM
}

// Agent 是绑定了模型句柄的人设，构造后不可变，可被多个任务共享。
type Agent struct {
	role            string
	goal            string
	backstory       string
	allowDelegation bool
	llm             llm.LLM
}

// NewAgent 校验配置并创建 Agent。
func NewAgent(cfg AgentConfig) (*Agent, error) {
	if strings.TrimSpace(cfg.Role) == "" {
		return nil, fmt.Errorf("%w: role is empty", ErrInvalidAgent)
	}
	if !strings.Contains(cfg.Goal, QueryToken) {
		return nil, fmt.Errorf("%w: goal of %q has no %s token", ErrInvalidAgent, cfg.Role, QueryToken)
	}
	if cfg.LLM == nil {
		return nil, fmt.Errorf("%w: %q has no model bound", ErrInvalidAgent, cfg.Role)
	}
	return &Agent{
		role:            cfg.Role,
		goal:            cfg.Goal,
		backstory:       cfg.Backstory,
		allowDelegation: cfg.AllowDelegation,
		llm:             cfg.LLM,
	}, nil
}

func (a *Agent) Role() string           { return a.role }
func (a *Agent) AllowsDelegation() bool { return a.allowDelegation }
func (a *Agent) LLM() llm.LLM           { return a.llm }

// CanHandle 任何绑定了模型的 Agent 都可以接手任务；工具结果已在提示词里，不依赖 Agent。
func (a *Agent) CanHandle(t *Task) bool {
	return a.llm != nil && t != nil
}

// Invoke 用人设作为系统指令、任务提示词作为用户消息调用模型。
func (a *Agent) Invoke(ctx context.Context, t *Task, p Prompt) (string, error) {
	req := &models.GenerateContentRequest{
		SystemInstruction: a.SystemPrompt(p.Inputs),
		Content:           []models.Content{models.NewTextContent(models.SpeakerUser, p.Body)},
	}
	resp, err := a.llm.GenerateContent(ctx, req)
	if err != nil {
		return "", fmt.Errorf("agent %q: %w", a.role, err)
	}
	text := strings.TrimSpace(resp.Text())
	if strings.HasPrefix(text, CannotAnswerMarker) {
		return "", fmt.Errorf("agent %q: %w", a.role, ErrCannotAnswer)
	}
	return text, nil
}

// SystemPrompt 渲染人设。
func (a *Agent) SystemPrompt(in QueryInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s.\n", a.role)
	if a.backstory != "" {
		sb.WriteString(in.Render(a.backstory))
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Your personal goal is: %s\n", in.Render(a.goal))
	if a.allowDelegation {
		fmt.Fprintf(&sb, "If you cannot complete the task with the information given, reply with %s and nothing else.\n", CannotAnswerMarker)
	}
	sb.WriteString("Format your answer in Markdown.")
	return sb.String()
}
