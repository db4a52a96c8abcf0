package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/gitnetwork/pkg/graph"
)

// Memory keeps layouts in process memory. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	layouts map[string]graph.Layout
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{layouts: make(map[string]graph.Layout)}
}

func (m *Memory) Save(ctx context.Context, l *graph.Layout) (string, error) {
	Prepare(l)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layouts[l.RunID] = *l
	return l.RunID, nil
}

func (m *Memory) Load(ctx context.Context, id string) (*graph.Layout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.layouts[id]
	if !ok {
		return nil, NotFound(id)
	}
	return &l, nil
}

func (m *Memory) List(ctx context.Context, limit int) ([]graph.Meta, error) {
	m.mu.RLock()
	metas := make([]graph.Meta, 0, len(m.layouts))
	for _, l := range m.layouts {
		metas = append(metas, l.Meta)
	}
	m.mu.RUnlock()
	return newestFirst(metas, limit), nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.layouts, id)
	return nil
}

func (m *Memory) Close() error { return nil }

func newestFirst(metas []graph.Meta, limit int) []graph.Meta {
	slices.SortFunc(metas, func(a, b graph.Meta) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.RunID, b.RunID)
	})
	if limit > 0 && len(metas) > limit {
		metas = metas[:limit]
	}
	return metas
}
