package crew

import (
	"context"
	"fmt"
	"strings"
)

// QueryToken 是模板中被替换为用户查询的占位符。
const QueryToken = "{query}"

// QueryInput 是每次运行唯一的参数。
type QueryInput struct {
	Query string `json:"query"`
}

// Render 把模板中的每个 {query} 替换为原样的查询文本。
func (in QueryInput) Render(template string) string {
	return strings.ReplaceAll(template, QueryToken, in.Query)
}

// Tool 是绑定到固定资源的检索能力句柄。
type Tool interface {
	Name() string
	Search(ctx context.Context, query string) (string, error)
}

// Output 是一个任务的产出。
type Output struct {
	Task  string `json:"task"`
	Agent string `json:"agent"`
	Text  string `json:"text"`
}

// Prompt 是发给 Agent 的渲染结果。
type Prompt struct {
	Inputs QueryInput
	Body   string
}

// TaskConfig 描述一个任务。
type TaskConfig struct {
	Name           string
	Description    string
	ExpectedOutput string
	Agent          *Agent
	Tools          []Tool
	Upstream       []*Task
}

// Task 是流水线中的一个工作单元。
type Task struct {
	name           string
	description    string
	expectedOutput string
	agent          *Agent
	tools          []Tool
	upstream       []*Task
}

// NewTask 校验配置并创建 Task。依赖关系的合法性由 crew.New 统一校验。
func NewTask(cfg TaskConfig) (*Task, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("%w: name is empty", ErrInvalidTask)
	}
	if cfg.Agent == nil {
		return nil, fmt.Errorf("%w: %q has no agent", ErrInvalidTask, cfg.Name)
	}
	return &Task{
		name:           cfg.Name,
		description:    cfg.Description,
		expectedOutput: cfg.ExpectedOutput,
		agent:          cfg.Agent,
		tools:          append([]Tool(nil), cfg.Tools...),
		upstream:       append([]*Task(nil), cfg.Upstream...),
	}, nil
}

func (t *Task) Name() string      { return t.name }
func (t *Task) Agent() *Agent     { return t.agent }
func (t *Task) Upstream() []*Task { return t.upstream }

// Description 返回渲染后的任务描述。
func (t *Task) Description(in QueryInput) string { return in.Render(t.description) }

// ExpectedOutput 返回渲染后的期望输出。
func (t *Task) ExpectedOutput(in QueryInput) string { return in.Render(t.expectedOutput) }

// Run 渲染提示词并交给任务自己的 Agent，不做委派。
func (t *Task) Run(ctx context.Context, prior []Output, in QueryInput) (Output, error) {
	p, err := t.Prompt(ctx, prior, in, nil)
	if err != nil {
		return Output{}, err
	}
	text, err := t.agent.Invoke(ctx, t, p)
	if err != nil {
		return Output{}, err
	}
	return Output{Task: t.name, Agent: t.agent.Role(), Text: text}, nil
}

// Prompt 渲染描述与期望输出，用渲染后的查询调用每个工具，并拼接上游输出与历史对话。
// 任一工具失败都会中止任务。
func (t *Task) Prompt(ctx context.Context, prior []Output, in QueryInput, history []Turn) (Prompt, error) {
	var sb strings.Builder
	sb.WriteString("Task:\n")
	sb.WriteString(t.Description(in))
	sb.WriteString("\n\nExpected output:\n")
	sb.WriteString(t.ExpectedOutput(in))
	sb.WriteString("\n")

	for _, tool := range t.tools {
		result, err := tool.Search(ctx, in.Query)
		if err != nil {
			return Prompt{}, fmt.Errorf("tool %s: %w", tool.Name(), err)
		}
		fmt.Fprintf(&sb, "\nResults from %s:\n%s\n", tool.Name(), result)
	}

	for _, out := range prior {
		fmt.Fprintf(&sb, "\nContext from %s (%s):\n%s\n", out.Task, out.Agent, out.Text)
	}

	if len(history) > 0 {
		sb.WriteString("\nPrevious conversation (oldest first):\n")
		sb.WriteString(renderHistory(history))
	}

	return Prompt{Inputs: in, Body: sb.String()}, nil
}
