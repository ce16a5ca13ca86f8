package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gnap-as/internal/domain/grants"
	"gnap-as/internal/ports/storage"
)

type grantRepo struct {
	mu   sync.RWMutex
	byID map[string]grants.GrantRequest
}

func NewGrantsRepo() grants.Repository {
	return &grantRepo{
		byID: make(map[string]grants.GrantRequest),
	}
}

func (r *grantRepo) Create(ctx context.Context, g grants.GrantRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; exists {
		return storage.ErrAlreadyExists
	}
	r.byID[g.ID] = clone(g)
	onRollback(ctx, restoreEntry(&r.mu, r.byID, g.ID, grants.GrantRequest{}, false))
	return nil
}

func (r *grantRepo) Update(ctx context.Context, g grants.GrantRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVersion(g); err != nil {
		return err
	}
	r.apply(ctx, g)
	return nil
}

func (r *grantRepo) GetByID(ctx context.Context, id string) (grants.GrantRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return grants.GrantRequest{}, storage.ErrNotFound
	}
	return clone(g), nil
}

func (r *grantRepo) ListExpired(ctx context.Context, now time.Time) ([]grants.GrantRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]grants.GrantRequest, 0)
	for _, g := range r.byID {
		if g.Status == grants.StatusExpired || g.Status == grants.StatusRevoked {
			continue
		}
		if !g.ExpiresAt.After(now) {
			out = append(out, clone(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

// UpdateAll valida todas las versiones antes de escribir ninguna.
func (r *grantRepo) UpdateAll(ctx context.Context, items []grants.GrantRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range items {
		if err := r.checkVersion(g); err != nil {
			return err
		}
	}
	for _, g := range items {
		r.apply(ctx, g)
	}
	return nil
}

func (r *grantRepo) checkVersion(g grants.GrantRequest) error {
	cur, ok := r.byID[g.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if cur.Version != g.Version {
		return storage.ErrVersionConflict
	}
	return nil
}

func (r *grantRepo) apply(ctx context.Context, g grants.GrantRequest) {
	prev := r.byID[g.ID]
	g = clone(g)
	g.Version++
	r.byID[g.ID] = g
	onRollback(ctx, restoreEntry(&r.mu, r.byID, g.ID, prev, true))
}

func clone(g grants.GrantRequest) grants.GrantRequest {
	if g.TokensIssuedAt != nil {
		t := *g.TokensIssuedAt
		g.TokensIssuedAt = &t
	}
	return g
}
