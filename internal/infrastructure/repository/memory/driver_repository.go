package memory

import (
	"context"
	"sync"

	"github.com/gridfan/f1-fantasy/internal/domain/driver"
)

type DriverRepository struct {
	mu    sync.RWMutex
	items map[string]driver.Driver
}

func NewDriverRepository() *DriverRepository {
	return &DriverRepository{items: make(map[string]driver.Driver)}
}

func (r *DriverRepository) Put(items ...driver.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		r.items[item.ID] = item
	}
}

func (r *DriverRepository) GetByIDs(_ context.Context, ids []string) ([]driver.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]driver.Driver, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *DriverRepository) List(_ context.Context) ([]driver.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]driver.Driver, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}
