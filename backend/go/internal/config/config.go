package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// ServerConfig 定义了 HTTP 服务的配置。
type ServerConfig struct {
	Address        string            `yaml:"address"`        // 监听地址，例如 ":8080"
	MaxUploadBytes int64             `yaml:"maxUploadBytes"` // 单个上传文件的最大字节数
	RateLimiter    RateLimiterConfig `yaml:"rateLimiter"`    // 运行接口的限流配置
}

// RateLimiterConfig 定义了限流器的配置（令牌桶）。
type RateLimiterConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// ProviderConfig 定义了单个 LLM 提供商的连接配置。
type ProviderConfig struct {
	APIKey  string `yaml:"apiKey"`  // API 密钥
	BaseURL string `yaml:"baseURL"` // 可选，自定义服务地址
}

// ModelChoice 是前端模型选择器中的一项。
type ModelChoice struct {
	Name     string `yaml:"name"`     // 对外展示的选项名，例如 "model-B"
	Provider string `yaml:"provider"` // "openai"、"ollama" 或 "gemini"
	Model    string `yaml:"model"`    // 提供商侧的模型 ID
}

// LLMConfig 包含了不同LLM提供商的配置和模型目录。
type LLMConfig struct {
	OpenAI         ProviderConfig `yaml:"openai"`
	Ollama         ProviderConfig `yaml:"ollama"`
	Gemini         ProviderConfig `yaml:"gemini"`
	Models         []ModelChoice  `yaml:"models"`         // 模型选择器的选项，顺序即展示顺序
	DefaultModel   string         `yaml:"defaultModel"`   // 未指定时使用的选项名
	EmbeddingModel string         `yaml:"embeddingModel"` // 向量排序器使用的 OpenAI embedding 模型
}

// SearchConfig 定义了网页搜索服务的配置。
type SearchConfig struct {
	Endpoint    string `yaml:"endpoint"`    // Serper 搜索接口地址
	APIKey      string `yaml:"apiKey"`      // Serper API 密钥
	NumResults  int    `yaml:"numResults"`  // 每次搜索返回的条数
	ScrapeTopN  int    `yaml:"scrapeTopN"`  // 抓取前 N 条结果的网页正文，0 表示不抓取
	ScrapeChars int    `yaml:"scrapeChars"` // 每个网页正文保留的最大字符数
	TimeoutSecs int    `yaml:"timeoutSecs"` // 单次 HTTP 请求超时（秒）
}

// RAGConfig 定义了文档检索的配置。
type RAGConfig struct {
	ChunkSize    int    `yaml:"chunkSize"`    // 每个段落的最大 token 数 (cl100k_base)
	ChunkOverlap int    `yaml:"chunkOverlap"` // 相邻段落重叠的 token 数
	TopK         int    `yaml:"topK"`         // 返回的段落数
	Ranker       string `yaml:"ranker"`       // "keyword" 或 "embedding"
}

// MinIOConfig 定义了 MinIO 对象存储的连接配置。
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`  // MinIO 服务端点
	AccessKey string `yaml:"accessKey"` // 访问密钥
	SecretKey string `yaml:"secretKey"` // Secret 密钥
	Bucket    string `yaml:"bucket"`    // 存储桶名称
	Secure    bool   `yaml:"secure"`    // 是否使用HTTPS
}

// StorageConfig 定义了上传文档的存放位置。
type StorageConfig struct {
	Backend   string      `yaml:"backend"`   // "local" 或 "minio"
	UploadDir string      `yaml:"uploadDir"` // 本地目录或对象键前缀，默认 "uploads"
	MinIO     MinIOConfig `yaml:"minio"`
}

// RedisConfig 定义了 Redis 数据库的连接配置。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
	Key      string `yaml:"key"`      // 存放对话记录的列表键
}

// MemoryConfig 定义了跨运行的对话记忆。
type MemoryConfig struct {
	Enabled    bool        `yaml:"enabled"`
	Backend    string      `yaml:"backend"`    // "inmemory" 或 "redis"
	Capacity   int         `yaml:"capacity"`   // 保留最近的 N 轮
	TTLSeconds int         `yaml:"ttlSeconds"` // 0 表示不过期
	Redis      RedisConfig `yaml:"redis"`
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App     AppInfo       `yaml:"app"`     // 应用程序信息
	Logger  LoggerConfig  `yaml:"logger"`  // 日志记录器配置
	Server  ServerConfig  `yaml:"server"`  // HTTP 服务配置
	LLM     LLMConfig     `yaml:"llm"`     // LLM 配置部分
	Search  SearchConfig  `yaml:"search"`  // 网页搜索配置
	RAG     RAGConfig     `yaml:"rag"`     // 文档检索配置
	Storage StorageConfig `yaml:"storage"` // 上传文档存储配置
	Memory  MemoryConfig  `yaml:"memory"`  // 对话记忆配置
}

// Default 返回一份不依赖配置文件即可运行的默认配置。
func Default() *AppConfig {
	cfg := seeded()
	cfg.applyDefaults()
	return cfg
}

// seeded 返回 YAML 解码前的初始值。零值有意义的布尔字段只能在这里设默认值，
// 文件里显式写出的值会覆盖它们。
func seeded() *AppConfig {
	return &AppConfig{
		Memory: MemoryConfig{Enabled: true},
	}
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
// 文件不存在时使用默认配置；随后用环境变量覆盖凭证类字段。
//
// 参数:
//
//	path: YAML 配置文件的路径。
//
// 返回值:
//
//	*AppConfig: 解析后的应用程序配置结构体。
//	error: 如果文件读取或解析失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	cfg := seeded()
	yamlFile, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// 没有配置文件时完全依赖默认值和环境变量。
	default:
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// LoadDotEnv 加载 .env 文件中的变量到进程环境，已存在的变量不会被覆盖。
// 文件不存在不算错误。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func (c *AppConfig) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "DocRAG"
	}
	if c.App.Version == "" {
		c.App.Version = "1.0.0"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = 32 << 20
	}
	if c.Server.RateLimiter.Rate <= 0 {
		c.Server.RateLimiter.Rate = 1
	}
	if c.Server.RateLimiter.Capacity <= 0 {
		c.Server.RateLimiter.Capacity = 5
	}
	if len(c.LLM.Models) == 0 {
		c.LLM.Models = []ModelChoice{
			{Name: "model-A", Provider: "openai", Model: "gpt-4"},
			{Name: "model-B", Provider: "openai", Model: "gpt-4o-2024-08-06"},
			{Name: "model-C", Provider: "openai", Model: "gpt-3.5-turbo-0125"},
		}
	}
	if c.LLM.DefaultModel == "" {
		c.LLM.DefaultModel = c.LLM.Models[0].Name
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if c.Search.Endpoint == "" {
		c.Search.Endpoint = "https://google.serper.dev/search"
	}
	if c.Search.NumResults <= 0 {
		c.Search.NumResults = 8
	}
	if c.Search.ScrapeChars <= 0 {
		c.Search.ScrapeChars = 3000
	}
	if c.Search.TimeoutSecs <= 0 {
		c.Search.TimeoutSecs = 30
	}
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = 300
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		c.RAG.ChunkOverlap = c.RAG.ChunkSize / 6
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = 5
	}
	if c.RAG.Ranker == "" {
		c.RAG.Ranker = "keyword"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "local"
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = "uploads"
	}
	if c.Memory.Backend == "" {
		c.Memory.Backend = "inmemory"
	}
	if c.Memory.Capacity <= 0 {
		c.Memory.Capacity = 10
	}
	if c.Memory.Redis.Key == "" {
		c.Memory.Redis.Key = "docrag:memory"
	}
}

// applyEnv 用环境变量覆盖凭证。缺失的凭证不会在启动时报错，
// 而是在对应的外部调用发生时失败。
func (c *AppConfig) applyEnv() {
	setString(&c.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.LLM.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.LLM.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.LLM.Ollama.BaseURL, "OLLAMA_HOST")
	setString(&c.Search.APIKey, "SERPER_API_KEY")
	setString(&c.Storage.MinIO.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Storage.MinIO.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Storage.MinIO.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Memory.Redis.Address, "REDIS_ADDR")
	setString(&c.Memory.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Server.Address, "DOCRAG_ADDR")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Memory.Redis.DB = db
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
