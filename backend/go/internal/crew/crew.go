package crew

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"DocRAG/backend/go/internal/models"
	"DocRAG/backend/go/pkg/logger"

	"github.com/google/uuid"
)

// Config 描述一条流水线。Tasks 的顺序即执行顺序，必须是合法的拓扑序。
type Config struct {
	Agents []Delegate
	Tasks  []*Task
	Memory Memory // 可选
	Logger *logger.Logger
}

// Crew 按声明顺序执行任务，并把上游输出作为下游任务的上下文。
type Crew struct {
	agents []Delegate
	tasks  []*Task
	memory Memory
	logger *logger.Logger
}

// Result 是一次 Kickoff 的结果。
type Result struct {
	RunID string
	Final Output
	Tasks []Output // 按执行顺序
}

// New 在构造时校验声明顺序：不允许自依赖、前向引用或引用流水线外的任务。
// 环一定包含前向引用，所以不需要单独做环检测。
func New(cfg Config) (*Crew, error) {
	if len(cfg.Tasks) == 0 {
		return nil, ErrNoTasks
	}

	members := make(map[*Agent]bool)
	for _, a := range cfg.Agents {
		if agent, ok := a.(*Agent); ok {
			members[agent] = true
		}
	}

	index := make(map[*Task]int, len(cfg.Tasks))
	for i, t := range cfg.Tasks {
		if t == nil {
			return nil, fmt.Errorf("%w: task %d is nil", ErrInvalidTask, i)
		}
		if _, dup := index[t]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTask, t.name)
		}
		index[t] = i
	}

	for i, t := range cfg.Tasks {
		if !members[t.agent] {
			return nil, fmt.Errorf("%w: %q (%s)", ErrAgentNotInCrew, t.name, t.agent.Role())
		}
		for _, up := range t.upstream {
			if up == t {
				return nil, fmt.Errorf("%w: %q", ErrSelfDependency, t.name)
			}
			j, ok := index[up]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownUpstream, t.name)
			}
			if j > i {
				return nil, fmt.Errorf("%w: %q needs %q", ErrForwardReference, t.name, up.name)
			}
		}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Crew{
		agents: append([]Delegate(nil), cfg.Agents...),
		tasks:  append([]*Task(nil), cfg.Tasks...),
		memory: cfg.Memory,
		logger: log,
	}, nil
}

// Tasks 返回声明顺序的任务列表。
func (c *Crew) Tasks() []*Task { return append([]*Task(nil), c.tasks...) }

// Kickoff 执行所有任务并返回最后一个任务的输出。
// 任意任务失败都会中止本次运行，后续任务不会被调用，也不返回中间结果。
func (c *Crew) Kickoff(ctx context.Context, in QueryInput) (*Result, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, ErrEmptyQuery
	}

	runID := uuid.New().String()
	log := c.logger.WithTrace(runID)
	log.WithPayload(map[string]interface{}{"query": in.Query, "tasks": len(c.tasks)}).Info("Crew kickoff")

	var history []Turn
	if c.memory != nil {
		turns, err := c.memory.Recent(ctx)
		if err != nil {
			return nil, fmt.Errorf("load memory: %w", err)
		}
		history = turns
	}

	outputs := make(map[*Task]Output, len(c.tasks))
	ordered := make([]Output, 0, len(c.tasks))
	for _, t := range c.tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		prior := make([]Output, 0, len(t.upstream))
		for _, up := range t.upstream {
			prior = append(prior, outputs[up])
		}

		start := time.Now()
		out, err := c.runTask(ctx, log, t, prior, in, history)
		if err != nil {
			log.WithError(models.NewErrorInfo(err, "task_error")).
				WithPayload(map[string]interface{}{"task": t.name}).
				Error("Task failed, aborting run")
			return nil, fmt.Errorf("task %q: %w", t.name, err)
		}
		log.WithPayload(map[string]interface{}{
			"task":        t.name,
			"agent":       out.Agent,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Task finished")

		outputs[t] = out
		ordered = append(ordered, out)
	}

	final := ordered[len(ordered)-1]
	if c.memory != nil {
		turn := Turn{ID: runID, Query: in.Query, Response: final.Text, CreatedAt: time.Now()}
		if err := c.memory.Append(ctx, turn); err != nil {
			// 运行本身已成功，记忆写入失败只记录日志。
			log.WithError(models.NewErrorInfo(err, "memory_error")).Warn("Failed to store conversation turn")
		}
	}

	return &Result{RunID: runID, Final: final, Tasks: ordered}, nil
}

// runTask 先交给任务自己的 Agent；收到 ErrCannotAnswer 且允许委派时，
// 按声明顺序尝试其他能处理该任务的成员。
func (c *Crew) runTask(ctx context.Context, log *logger.Logger, t *Task, prior []Output, in QueryInput, history []Turn) (Output, error) {
	p, err := t.Prompt(ctx, prior, in, history)
	if err != nil {
		return Output{}, err
	}

	text, err := t.agent.Invoke(ctx, t, p)
	if err == nil {
		return Output{Task: t.name, Agent: t.agent.Role(), Text: text}, nil
	}
	if !errors.Is(err, ErrCannotAnswer) || !t.agent.AllowsDelegation() {
		return Output{}, err
	}

	for _, d := range c.agents {
		if primary, ok := d.(*Agent); ok && primary == t.agent {
			continue
		}
		if !d.CanHandle(t) {
			continue
		}
		log.WithPayload(map[string]interface{}{"task": t.name, "from": t.agent.Role(), "to": d.Role()}).
			Info("Delegating task")
		text, derr := d.Invoke(ctx, t, p)
		if derr == nil {
			return Output{Task: t.name, Agent: d.Role(), Text: text}, nil
		}
		if !errors.Is(derr, ErrCannotAnswer) {
			return Output{}, derr
		}
	}
	return Output{}, err
}
