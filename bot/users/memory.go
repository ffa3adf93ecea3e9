package users

import (
	"context"
	"sort"
	"sync"
)

// MemoryRegistry is an in-memory Registry for tests.
type MemoryRegistry struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{ids: make(map[int64]struct{})}
}

func (r *MemoryRegistry) Record(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[userID] = struct{}{}
	return nil
}

func (r *MemoryRegistry) List(_ context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, 0, len(r.ids))
	for id := range r.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *MemoryRegistry) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids), nil
}
