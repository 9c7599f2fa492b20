package session

import (
	"context"
	"sync"

	"github.com/h44z/sms-portal/internal/domain"
)

// MemoryRepo keeps tokens in process memory. Tokens are lost when the process exits.
type MemoryRepo struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tokens: make(map[string]string)}
}

func (r *MemoryRepo) LoadToken(_ context.Context, profile string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[profile]
	if !ok {
		return "", domain.ErrNotFound
	}
	return token, nil
}

func (r *MemoryRepo) SaveToken(_ context.Context, profile, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[profile] = token
	return nil
}

func (r *MemoryRepo) DeleteToken(_ context.Context, profile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, profile)
	return nil
}
