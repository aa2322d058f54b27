// Package blog 定义生成博客文章的三个 Agent 和三个任务：
// 阅读文档、搜索网页、撰写博客，博客任务以前两者的输出为上下文。
package blog

import (
	"fmt"

	"DocRAG/backend/go/internal/crew"
	"DocRAG/backend/go/internal/llm"
	"DocRAG/backend/go/pkg/logger"
)

const (
	RoleSearch = "Search Agent"
	RoleReader = "Document Reader"
	RoleWriter = "Professional Blog Writer"

	TaskDocReader = "doc_reader_result"
	TaskSearch    = "search_result"
	TaskBlogPost  = "final_blog_post"
)

// Options 是一次构建所需的依赖。LLM 是本次请求选中的模型，所有 Agent 共用。
type Options struct {
	LLM          llm.LLM
	DocumentTool crew.Tool
	WebTool      crew.Tool
	Memory       crew.Memory
	Logger       *logger.Logger
}

// Build 每次请求都重新创建 Agent 和任务，模型句柄不会在请求之间共享。
func Build(opts Options) (*crew.Crew, error) {
	if opts.DocumentTool == nil || opts.WebTool == nil {
		return nil, fmt.Errorf("blog crew needs a document tool and a web tool")
	}

	searchAgent, err := crew.NewAgent(crew.AgentConfig{
		Role:            RoleSearch,
		Goal:            "Search for relevant information on the web related to the user {query}",
		Backstory:       searchBackstory,
		AllowDelegation: true,
		LLM:             opts.LLM,
	})
	if err != nil {
		return nil, err
	}
	readerAgent, err := crew.NewAgent(crew.AgentConfig{
		Role:            RoleReader,
		Goal:            "Read and find relevant information to the user's {query} in the document",
		Backstory:       readerBackstory,
		AllowDelegation: true,
		LLM:             opts.LLM,
	})
	if err != nil {
		return nil, err
	}
	writerAgent, err := crew.NewAgent(crew.AgentConfig{
		Role:            RoleWriter,
		Goal:            "Take the response from the search agent and doc reader agent and write a compelling and aesthetic blog post on the topic of {query}",
		Backstory:       writerBackstory,
		AllowDelegation: true,
		LLM:             opts.LLM,
	})
	if err != nil {
		return nil, err
	}

	docTask, err := crew.NewTask(crew.TaskConfig{
		Name:           TaskDocReader,
		Description:    docReaderDescription,
		ExpectedOutput: docReaderExpected,
		Agent:          readerAgent,
		Tools:          []crew.Tool{opts.DocumentTool},
	})
	if err != nil {
		return nil, err
	}
	searchTask, err := crew.NewTask(crew.TaskConfig{
		Name:           TaskSearch,
		Description:    searchDescription,
		ExpectedOutput: searchExpected,
		Agent:          searchAgent,
		Tools:          []crew.Tool{opts.WebTool},
	})
	if err != nil {
		return nil, err
	}
	blogTask, err := crew.NewTask(crew.TaskConfig{
		Name:           TaskBlogPost,
		Description:    blogDescription,
		ExpectedOutput: blogExpected,
		Agent:          writerAgent,
		Upstream:       []*crew.Task{docTask, searchTask},
	})
	if err != nil {
		return nil, err
	}

	return crew.New(crew.Config{
		Agents: []crew.Delegate{readerAgent, searchAgent, writerAgent},
		Tasks:  []*crew.Task{docTask, searchTask, blogTask},
		Memory: opts.Memory,
		Logger: opts.Logger,
	})
}
