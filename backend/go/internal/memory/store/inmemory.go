package store

import (
	"context"
	"sort"

	"DocRAG/backend/go/internal/crew"
)

// Recent 返回未过期的记录，按创建时间排序。
func (m *InMemory) Recent(ctx context.Context) ([]crew.Turn, error) {
	turns := m.turns.Values()
	sort.SliceStable(turns, func(i, j int) bool { return turns[i].CreatedAt.Before(turns[j].CreatedAt) })
	return turns, nil
}

func (m *InMemory) Append(ctx context.Context, turn crew.Turn) error {
	m.turns.Put(turn.ID, turn)
	return nil
}
