package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gnap-as/internal/domain/resources"
	"gnap-as/internal/ports/storage"
)

// resourceRepo guarda la forma persistida (listas como texto), igual que Postgres.
type resourceRepo struct {
	mu      sync.RWMutex
	byGrant map[string][]resources.Record
	ids     map[string]struct{}
}

func NewResourcesRepo() resources.Repository {
	return &resourceRepo{
		byGrant: make(map[string][]resources.Record),
		ids:     make(map[string]struct{}),
	}
}

func (r *resourceRepo) CreateAll(ctx context.Context, items []resources.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range items {
		if it.ID == "" {
			return errors.New("resource id required")
		}
		if _, exists := r.ids[it.ID]; exists {
			return storage.ErrAlreadyExists
		}
	}
	for _, it := range items {
		r.ids[it.ID] = struct{}{}
		r.byGrant[it.GrantID] = append(r.byGrant[it.GrantID], resources.ToRecord(it))
	}
	onRollback(ctx, func() { r.remove(items) })
	return nil
}

// remove deshace un CreateAll.
func (r *resourceRepo) remove(items []resources.Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	drop := make(map[string]struct{}, len(items))
	for _, it := range items {
		drop[it.ID] = struct{}{}
		delete(r.ids, it.ID)
	}
	for grantID, recs := range r.byGrant {
		kept := recs[:0]
		for _, rec := range recs {
			if _, ok := drop[rec.ID]; !ok {
				kept = append(kept, rec)
			}
		}
		if len(kept) == 0 {
			delete(r.byGrant, grantID)
			continue
		}
		r.byGrant[grantID] = kept
	}
}

func (r *resourceRepo) ListByGrant(ctx context.Context, grantID string) ([]resources.Resource, error) {
	return r.list(grantID, func(resources.Resource) bool { return true }), nil
}

// ListByGrantAndServer compara contra ServerKey: "default" trae los que no tienen server.
func (r *resourceRepo) ListByGrantAndServer(ctx context.Context, grantID, server string) ([]resources.Resource, error) {
	return r.list(grantID, func(res resources.Resource) bool { return res.ServerKey() == server }), nil
}

func (r *resourceRepo) list(grantID string, keep func(resources.Resource) bool) []resources.Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]resources.Resource, 0)
	for _, rec := range r.byGrant[grantID] {
		res := resources.FromRecord(rec)
		if keep(res) {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
