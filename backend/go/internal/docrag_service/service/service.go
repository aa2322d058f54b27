package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"DocRAG/backend/go/internal/blog"
	"DocRAG/backend/go/internal/config"
	"DocRAG/backend/go/internal/crew"
	"DocRAG/backend/go/internal/docstore"
	"DocRAG/backend/go/internal/llm"
	"DocRAG/backend/go/internal/models"
	"DocRAG/backend/go/internal/rag"
	"DocRAG/backend/go/internal/rag/interfaces"
	"DocRAG/backend/go/internal/tools"
	"DocRAG/backend/go/pkg/logger"

	"github.com/yuin/goldmark"
)

// ClientFactory 为一次运行创建所选模型的客户端。
type ClientFactory func(ctx context.Context, cfg config.LLMConfig, choice string) (llm.LLM, config.ModelChoice, error)

// Options 是 Service 的依赖。Memory 和 Embedder 可以为 nil。
type Options struct {
	Config    *config.AppConfig
	Store     docstore.Store
	Memory    crew.Memory
	Web       tools.WebSearcher
	Embedder  interfaces.EmbeddingModel
	NewClient ClientFactory
	Logger    *logger.Logger
	// HealthChecks 只包含配置启用的后端。
	HealthChecks []HealthCheck
}

// HealthCheck 检查一个已启用的外部后端，例如 Redis 记忆或 MinIO 存储。
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RunRequest 是一次提交。Document 是上传时的文件名，Model 是模型选择器的选项名。
type RunRequest struct {
	Query    string `json:"query"`
	Model    string `json:"model"`
	Document string `json:"document"`
}

// RunResult 是一次成功运行的结果。
type RunResult struct {
	RunID    string        `json:"run_id"`
	Model    string        `json:"model"`
	ModelID  string        `json:"model_id"`
	Markdown string        `json:"markdown"`
	HTML     string        `json:"html"`
	Tasks    []crew.Output `json:"tasks,omitempty"`
}

// ModelInfo 是模型选择器中的一项。
type ModelInfo struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Default  bool   `json:"default"`
}

// Service 处理上传和运行。同一进程内一次只执行一个运行，后到的请求排队等待。
type Service struct {
	cfg       *config.AppConfig
	store     docstore.Store
	memory    crew.Memory
	web       tools.WebSearcher
	embedder  interfaces.EmbeddingModel
	newClient ClientFactory
	log       *logger.Logger
	md        goldmark.Markdown
	slot      chan struct{}
	checks    []HealthCheck
}

func New(opts Options) (*Service, error) {
	if opts.Config == nil || opts.Store == nil || opts.Web == nil {
		return nil, fmt.Errorf("service needs config, document store and web searcher")
	}
	if opts.NewClient == nil {
		opts.NewClient = llm.NewClient
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Service{
		cfg:       opts.Config,
		store:     opts.Store,
		memory:    opts.Memory,
		web:       opts.Web,
		embedder:  opts.Embedder,
		newClient: opts.NewClient,
		log:       opts.Logger,
		md:        goldmark.New(),
		slot:      make(chan struct{}, 1),
		checks:    append([]HealthCheck(nil), opts.HealthChecks...),
	}, nil
}

// Upload 保存文档，同名文件会被覆盖。
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (*docstore.Document, error) {
	doc, err := s.store.Save(ctx, filename, data)
	if err != nil {
		s.log.WithError(models.NewErrorInfo(err, "upload_error")).
			WithPayload(map[string]interface{}{"filename": filename, "size": len(data)}).
			Warn("Upload rejected")
		return nil, err
	}
	s.log.WithPayload(map[string]interface{}{"path": doc.Path, "kind": doc.Kind, "size": doc.Size}).
		Info("Document uploaded")
	return doc, nil
}

// healthTimeout 是单个后端检查的上限。
const healthTimeout = 3 * time.Second

// Health 依次检查所有后端，返回失败的后端名到错误信息的映射，全部正常时为空。
func (s *Service) Health(ctx context.Context) map[string]string {
	failed := make(map[string]string)
	for _, hc := range s.checks {
		checkCtx, cancel := context.WithTimeout(ctx, healthTimeout)
		err := hc.Check(checkCtx)
		cancel()
		if err != nil {
			s.log.WithError(models.NewErrorInfo(err, "health_error")).
				WithPayload(map[string]interface{}{"backend": hc.Name}).
				Warn("Backend health check failed")
			failed[hc.Name] = err.Error()
		}
	}
	return failed
}

// Models 按展示顺序返回模型目录。
func (s *Service) Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(s.cfg.LLM.Models))
	for _, m := range s.cfg.LLM.Models {
		out = append(out, ModelInfo{
			Name:     m.Name,
			Provider: m.Provider,
			Model:    m.Model,
			Default:  m.Name == s.cfg.LLM.DefaultModel,
		})
	}
	return out
}

// Run 用本次选中的模型构建流水线并执行，返回博客任务的 Markdown 和渲染后的 HTML。
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, crew.ErrEmptyQuery
	}
	if _, err := llm.Resolve(s.cfg.LLM, req.Model); err != nil {
		return nil, err
	}

	docPath := ""
	if req.Document != "" {
		name, err := docstore.BaseName(req.Document)
		if err != nil {
			return nil, err
		}
		docPath = s.store.PathFor(name)
	}

	select {
	case s.slot <- struct{}{}:
		defer func() { <-s.slot }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	start := time.Now()
	client, choice, err := s.newClient(ctx, s.cfg.LLM, req.Model)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := llm.Close(client); err != nil {
			s.log.WithError(models.NewErrorInfo(err, "llm_close_error")).Warn("Failed to close model client")
		}
	}()

	describer, _ := client.(llm.ImageDescriber)
	searcher, err := rag.Build(s.cfg.RAG, s.store, describer, s.embedder, s.log)
	if err != nil {
		return nil, err
	}
	pipeline, err := blog.Build(blog.Options{
		LLM:          client,
		DocumentTool: tools.NewDocumentSearchTool(docPath, s.store, searcher),
		WebTool:      tools.NewWebSearchTool(s.web),
		Memory:       s.memory,
		Logger:       s.log,
	})
	if err != nil {
		return nil, err
	}

	res, err := pipeline.Kickoff(ctx, crew.QueryInput{Query: query})
	if err != nil {
		return nil, err
	}

	html, err := s.render(res.Final.Text)
	if err != nil {
		return nil, err
	}
	s.log.WithTrace(res.RunID).WithPayload(map[string]interface{}{
		"model":       choice.Name,
		"model_id":    choice.Model,
		"document":    docPath,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Run finished")

	return &RunResult{
		RunID:    res.RunID,
		Model:    choice.Name,
		ModelID:  choice.Model,
		Markdown: res.Final.Text,
		HTML:     html,
		Tasks:    res.Tasks,
	}, nil
}

// render 把 Markdown 转成 HTML。goldmark 默认会丢弃原始 HTML。
func (s *Service) render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
