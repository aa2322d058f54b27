// Package websearch 通过 Serper 的 Google 搜索接口查询网页，并可抓取排名靠前的页面正文。
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"DocRAG/backend/go/internal/config"
	"DocRAG/backend/go/internal/rag/loaders"
	"DocRAG/backend/go/pkg/logger"
)

// ErrNotConfigured 表示没有配置 Serper API 密钥。
var ErrNotConfigured = errors.New("web search is not configured: missing SERPER_API_KEY")

// Result 是一条自然搜索结果。
type Result struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
	Content  string `json:"-"` // 抓取到的正文，未抓取时为空
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
}

type answerBox struct {
	Title   string `json:"title"`
	Answer  string `json:"answer"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	AnswerBox *answerBox `json:"answerBox,omitempty"`
	Organic   []Result   `json:"organic"`
}

// Response 是一次搜索的结果。
type Response struct {
	Answer  string
	Results []Result
}

// Client 是 Serper 搜索客户端。
type Client struct {
	cfg     config.SearchConfig
	http    *http.Client
	scraper *loaders.WebLoader
	log     *logger.Logger
}

// NewClient 创建搜索客户端。log 可以为 nil。
func NewClient(cfg config.SearchConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	hc := &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}
	return &Client{cfg: cfg, http: hc, scraper: loaders.NewWebLoader(hc), log: log}
}

// Search 查询 Serper，并在配置了 ScrapeTopN 时抓取前 N 条结果的正文。
// 单个页面抓取失败只记录日志，不影响搜索结果。
func (c *Client) Search(ctx context.Context, query string) (*Response, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(searchRequest{Q: query, Num: c.cfg.NumResults}); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("serper error: status %d: %s", res.StatusCode, strings.TrimSpace(string(b)))
	}
	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode serper response: %w", err)
	}

	out := &Response{Results: sr.Organic}
	if sr.AnswerBox != nil {
		out.Answer = firstNonEmpty(sr.AnswerBox.Answer, sr.AnswerBox.Snippet)
	}
	if len(out.Results) > c.cfg.NumResults && c.cfg.NumResults > 0 {
		out.Results = out.Results[:c.cfg.NumResults]
	}
	c.scrape(ctx, out.Results)
	return out, nil
}

func (c *Client) scrape(ctx context.Context, results []Result) {
	for i := range results {
		if i >= c.cfg.ScrapeTopN {
			return
		}
		docs, err := c.scraper.LoadURL(ctx, results[i].Link)
		if err != nil {
			c.log.WithPayload(map[string]interface{}{"url": results[i].Link, "error": err.Error()}).
				Warn("Failed to scrape search result")
			continue
		}
		var sb strings.Builder
		for _, d := range docs {
			sb.WriteString(d.Text)
		}
		results[i].Content = truncate(sb.String(), c.cfg.ScrapeChars)
	}
}

// Format 把搜索结果渲染为提示词中的文本块。
func (r *Response) Format() string {
	if len(r.Results) == 0 && r.Answer == "" {
		return "No web results were found."
	}
	var sb strings.Builder
	if r.Answer != "" {
		fmt.Fprintf(&sb, "Answer box: %s\n\n", r.Answer)
	}
	for i, res := range r.Results {
		fmt.Fprintf(&sb, "[%d] %s\nLink: %s\nSnippet: %s\n", i+1, res.Title, res.Link, res.Snippet)
		if res.Content != "" {
			fmt.Fprintf(&sb, "Page content:\n%s\n", res.Content)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if max <= 0 || len(r) <= max {
		return string(r)
	}
	return string(r[:max]) + " ..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
