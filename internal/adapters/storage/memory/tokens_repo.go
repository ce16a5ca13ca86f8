package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gnap-as/internal/domain/tokens"
	"gnap-as/internal/ports/storage"
)

type tokenRepo struct {
	mu      sync.RWMutex
	byValue map[string]tokens.AccessToken
}

func NewTokensRepo() tokens.Repository {
	return &tokenRepo{
		byValue: make(map[string]tokens.AccessToken),
	}
}

func (r *tokenRepo) Create(ctx context.Context, t tokens.AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" || t.Value == "" {
		return errors.New("token id and value required")
	}
	if _, exists := r.byValue[t.Value]; exists {
		return storage.ErrAlreadyExists
	}
	// lo no persistido no se guarda
	t.Resources = nil
	t.Label = ""
	r.byValue[t.Value] = t
	onRollback(ctx, restoreEntry(&r.mu, r.byValue, t.Value, tokens.AccessToken{}, false))
	return nil
}

func (r *tokenRepo) GetByValue(ctx context.Context, value string) (tokens.AccessToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byValue[value]
	if !ok {
		return tokens.AccessToken{}, storage.ErrNotFound
	}
	return t, nil
}

func (r *tokenRepo) ListByGrant(ctx context.Context, grantID string) ([]tokens.AccessToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tokens.AccessToken, 0)
	for _, t := range r.byValue {
		if t.GrantID == grantID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ResourceServer < out[j].ResourceServer
	})
	return out, nil
}

func (r *tokenRepo) DeleteByValue(ctx context.Context, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.byValue[value]
	if !ok {
		return false, nil
	}
	delete(r.byValue, value)
	onRollback(ctx, restoreEntry(&r.mu, r.byValue, value, prev, true))
	return true, nil
}

func (r *tokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for v, t := range r.byValue {
		if !t.ExpiresAt.After(now) {
			delete(r.byValue, v)
			onRollback(ctx, restoreEntry(&r.mu, r.byValue, v, t, true))
			n++
		}
	}
	return n, nil
}
