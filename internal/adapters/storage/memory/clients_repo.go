package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"gnap-as/internal/domain/clients"
	"gnap-as/internal/ports/storage"
)

type clientRepo struct {
	mu   sync.RWMutex
	byID map[string]clients.Client
}

func NewClientsRepo() clients.Repository {
	return &clientRepo{
		byID: make(map[string]clients.Client),
	}
}

func (r *clientRepo) Create(ctx context.Context, c clients.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		return errors.New("client id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return storage.ErrAlreadyExists
	}
	if r.keyTaken(c.ID, c.KeyID) {
		return storage.ErrAlreadyExists
	}
	r.byID[c.ID] = c
	onRollback(ctx, restoreEntry(&r.mu, r.byID, c.ID, clients.Client{}, false))
	return nil
}

func (r *clientRepo) Update(ctx context.Context, c clients.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.byID[c.ID]
	if !exists {
		return storage.ErrNotFound
	}
	if r.keyTaken(c.ID, c.KeyID) {
		return storage.ErrAlreadyExists
	}
	r.byID[c.ID] = c
	onRollback(ctx, restoreEntry(&r.mu, r.byID, c.ID, prev, true))
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, id string) (clients.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return clients.Client{}, storage.ErrNotFound
	}
	return c, nil
}

func (r *clientRepo) GetByInstanceID(ctx context.Context, instanceID string) (clients.Client, error) {
	return r.find(func(c clients.Client) bool {
		return instanceID != "" && c.InstanceID == instanceID
	})
}

func (r *clientRepo) GetByKeyID(ctx context.Context, keyID string) (clients.Client, error) {
	return r.find(func(c clients.Client) bool {
		return keyID != "" && c.KeyID == keyID
	})
}

func (r *clientRepo) find(match func(clients.Client) bool) (clients.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.byID {
		if match(c) {
			return c, nil
		}
	}
	return clients.Client{}, storage.ErrNotFound
}

// keyTaken: el key id es único entre clientes (vacío no cuenta).
func (r *clientRepo) keyTaken(id, keyID string) bool {
	if strings.TrimSpace(keyID) == "" {
		return false
	}
	for _, other := range r.byID {
		if other.ID != id && other.KeyID == keyID {
			return true
		}
	}
	return false
}

type informationRepo struct {
	mu   sync.RWMutex
	byID map[string]clients.Information
}

func NewInformationRepo() clients.InformationRepository {
	return &informationRepo{
		byID: make(map[string]clients.Information),
	}
}

func (r *informationRepo) Create(ctx context.Context, info clients.Information) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info.ID == "" {
		return errors.New("information id required")
	}
	if _, exists := r.byID[info.ID]; exists {
		return storage.ErrAlreadyExists
	}
	// una sola información por cliente
	for _, other := range r.byID {
		if other.ClientID == info.ClientID {
			return storage.ErrAlreadyExists
		}
	}
	r.byID[info.ID] = info
	onRollback(ctx, restoreEntry(&r.mu, r.byID, info.ID, clients.Information{}, false))
	return nil
}

func (r *informationRepo) Update(ctx context.Context, info clients.Information) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.byID[info.ID]
	if !exists {
		return storage.ErrNotFound
	}
	r.byID[info.ID] = info
	onRollback(ctx, restoreEntry(&r.mu, r.byID, info.ID, prev, true))
	return nil
}

func (r *informationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.byID[id]
	if !exists {
		return storage.ErrNotFound
	}
	delete(r.byID, id)
	onRollback(ctx, restoreEntry(&r.mu, r.byID, id, prev, true))
	return nil
}

func (r *informationRepo) GetByID(ctx context.Context, id string) (clients.Information, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.byID[id]
	if !ok {
		return clients.Information{}, storage.ErrNotFound
	}
	return info, nil
}

func (r *informationRepo) GetByClientID(ctx context.Context, clientID string) (clients.Information, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, info := range r.byID {
		if info.ClientID == clientID {
			return info, nil
		}
	}
	return clients.Information{}, storage.ErrNotFound
}
