package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gnap-as/internal/domain/interactions"
	"gnap-as/internal/ports/storage"
)

type interactionRepo struct {
	mu   sync.RWMutex
	byID map[string]interactions.Interaction
}

func NewInteractionsRepo() interactions.Repository {
	return &interactionRepo{
		byID: make(map[string]interactions.Interaction),
	}
}

func (r *interactionRepo) CreateAll(ctx context.Context, items []interactions.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range items {
		if it.ID == "" {
			return errors.New("interaction id required")
		}
		if _, exists := r.byID[it.ID]; exists {
			return storage.ErrAlreadyExists
		}
	}
	for _, it := range items {
		r.byID[it.ID] = it
		onRollback(ctx, restoreEntry(&r.mu, r.byID, it.ID, interactions.Interaction{}, false))
	}
	return nil
}

func (r *interactionRepo) GetByID(ctx context.Context, id string) (interactions.Interaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.byID[id]
	if !ok {
		return interactions.Interaction{}, storage.ErrNotFound
	}
	return it, nil
}

func (r *interactionRepo) GetByUserCode(ctx context.Context, code string) (interactions.Interaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if code == "" {
		return interactions.Interaction{}, storage.ErrNotFound
	}
	// si el código se repitiera, gana la más nueva
	var (
		found interactions.Interaction
		ok    bool
	)
	for _, it := range r.byID {
		if it.Type != interactions.TypeUserCode || it.UserCode != code {
			continue
		}
		if !ok || it.CreatedAt.After(found.CreatedAt) {
			found, ok = it, true
		}
	}
	if !ok {
		return interactions.Interaction{}, storage.ErrNotFound
	}
	return found, nil
}

func (r *interactionRepo) ListActiveByGrant(ctx context.Context, grantID string, now time.Time) ([]interactions.Interaction, error) {
	return r.list(grantID, func(it interactions.Interaction) bool { return it.ExpiresAt.After(now) }), nil
}

func (r *interactionRepo) ListByGrant(ctx context.Context, grantID string) ([]interactions.Interaction, error) {
	return r.list(grantID, func(interactions.Interaction) bool { return true }), nil
}

func (r *interactionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, it := range r.byID {
		if !it.ExpiresAt.After(now) {
			delete(r.byID, id)
			onRollback(ctx, restoreEntry(&r.mu, r.byID, id, it, true))
			n++
		}
	}
	return n, nil
}

func (r *interactionRepo) list(grantID string, keep func(interactions.Interaction) bool) []interactions.Interaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]interactions.Interaction, 0)
	for _, it := range r.byID {
		if it.GrantID == grantID && keep(it) {
			out = append(out, it)
		}
	}
	sortInteractions(out)
	return out
}

// Orden estable por CreatedAt; el batch de un grant comparte timestamp, así que
// desempata el orden de los modos.
func sortInteractions(in []interactions.Interaction) {
	rank := map[interactions.Type]int{
		interactions.TypeRedirect:    0,
		interactions.TypeApp:         1,
		interactions.TypeUserCode:    2,
		interactions.TypeUserCodeURI: 3,
	}
	sort.Slice(in, func(i, j int) bool {
		if !in[i].CreatedAt.Equal(in[j].CreatedAt) {
			return in[i].CreatedAt.Before(in[j].CreatedAt)
		}
		if rank[in[i].Type] != rank[in[j].Type] {
			return rank[in[i].Type] < rank[in[j].Type]
		}
		return in[i].ID < in[j].ID
	})
}
