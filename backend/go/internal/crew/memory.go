package crew

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// maxTurnChars 限制每轮历史回复注入提示词的长度。
const maxTurnChars = 4000

// Turn 是一次成功运行留下的问答记录。
type Turn struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// Memory 是跨运行的有界对话记忆。实现负责淘汰策略。
type Memory interface {
	// Recent 按时间从旧到新返回保留的记录。
	Recent(ctx context.Context) ([]Turn, error)
	Append(ctx context.Context, turn Turn) error
}

func renderHistory(turns []Turn) string {
	var sb strings.Builder
	for i, turn := range turns {
		resp := turn.Response
		if r := []rune(resp); len(r) > maxTurnChars {
			resp = string(r[:maxTurnChars]) + " ..."
		}
		fmt.Fprintf(&sb, "[%d] Q: %s\nA: %s\n", i+1, turn.Query, resp)
	}
	return sb.String()
}
