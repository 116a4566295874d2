package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gridfan/f1-fantasy/internal/domain/user"
)

type UserRepository struct {
	mu    sync.Mutex
	items map[string]user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[string]user.User)}
}

func (r *UserRepository) Put(items ...user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		r.items[item.ID] = item
	}
}

func (r *UserRepository) GetByID(_ context.Context, id string) (user.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	return item, ok, nil
}

func (r *UserRepository) AddFantasyPoints(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	item.FantasyPoints += delta
	r.items[id] = item
	return nil
}

func (r *UserRepository) ListByPoints(_ context.Context, offset, limit int) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]user.User, 0, len(r.items))
	for _, item := range r.items {
		all = append(all, item)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].FantasyPoints != all[j].FantasyPoints {
			return all[i].FantasyPoints > all[j].FantasyPoints
		}
		return all[i].Username < all[j].Username
	})

	if offset >= len(all) {
		return []user.User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return append([]user.User(nil), all[offset:end]...), nil
}

func (r *UserRepository) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items), nil
}

func (r *UserRepository) CountWithMorePoints(_ context.Context, points int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, item := range r.items {
		if item.FantasyPoints > points {
			count++
		}
	}
	return count, nil
}
