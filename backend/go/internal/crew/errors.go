package crew

import "errors"

var (
	// ErrCannotAnswer 是模型表示无法完成任务时的类型化信号，触发委派。
	ErrCannotAnswer = errors.New("agent cannot answer")
	// ErrEmptyQuery 表示查询为空或只有空白。
	ErrEmptyQuery = errors.New("query is empty")

	// 以下错误在构造时返回，流水线不会被创建。
	ErrInvalidAgent     = errors.New("invalid agent")
	ErrInvalidTask      = errors.New("invalid task")
	ErrNoTasks          = errors.New("crew has no tasks")
	ErrDuplicateTask    = errors.New("task declared twice")
	ErrSelfDependency   = errors.New("task depends on itself")
	ErrForwardReference = errors.New("task depends on a task declared after it")
	ErrUnknownUpstream  = errors.New("task depends on a task outside the crew")
	ErrAgentNotInCrew   = errors.New("task agent is not a crew member")
)
