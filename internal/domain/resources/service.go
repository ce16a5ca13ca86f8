package resources

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Build normaliza y valida los items pedidos y les asigna id/posición.
// No persiste.
func (s *Service) Build(grantID string, items []Access) ([]Resource, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return nil, ErrInvalidInput
	}

	now := s.now()
	out := make([]Resource, 0, len(items))
	for i, it := range items {
		typ := strings.TrimSpace(it.Type)
		if typ == "" {
			return nil, ErrInvalidInput
		}

		actions, err := normalizeList(it.Actions)
		if err != nil {
			return nil, err
		}
		locations, err := normalizeList(it.Locations)
		if err != nil {
			return nil, err
		}
		dataTypes, err := normalizeList(it.DataTypes)
		if err != nil {
			return nil, err
		}

		out = append(out, Resource{
			ID:             uuid.NewString(),
			GrantID:        grantID,
			Position:       i,
			Type:           typ,
			ResourceServer: strings.TrimSpace(it.ResourceServer),
			Actions:        actions,
			Locations:      locations,
			DataTypes:      dataTypes,
			CreatedAt:      now,
		})
	}
	return out, nil
}

// Attach crea y persiste los recursos de un grant.
func (s *Service) Attach(ctx context.Context, grantID string, items []Access) ([]Resource, error) {
	out, err := s.Build(grantID, items)
	if err != nil {
		return nil, err
	}
	if err := s.Store(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Store persiste recursos ya armados con Build.
func (s *Service) Store(ctx context.Context, items []Resource) error {
	if len(items) == 0 {
		return nil
	}
	return s.repo.CreateAll(ctx, items)
}

func (s *Service) ListByGrant(ctx context.Context, grantID string) ([]Resource, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByGrant(ctx, grantID)
}

// ListByGrantAndServer acepta DefaultServer para los recursos sin resource server.
func (s *Service) ListByGrantAndServer(ctx context.Context, grantID, server string) ([]Resource, error) {
	grantID = strings.TrimSpace(grantID)
	server = strings.TrimSpace(server)
	if grantID == "" {
		return nil, ErrInvalidInput
	}
	if server == "" {
		server = DefaultServer
	}
	return s.repo.ListByGrantAndServer(ctx, grantID, server)
}

// normalizeList descarta vacíos y rechaza valores con el delimitador:
// la columna de texto tiene que poder reconstruir exactamente la lista.
func normalizeList(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(in))
	for _, raw := range in {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		if strings.Contains(v, ListDelimiter) {
			return nil, ErrInvalidInput
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
