package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gnap-as/internal/platform/logger"
	"gnap-as/internal/ports/auth"
	"gnap-as/internal/ports/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// KeyResolver obtiene una JWK publicada en un JWKS remoto (clave por referencia).
type KeyResolver interface {
	ResolveKey(ctx context.Context, jwksURI, keyID string) (json.RawMessage, error)
}

type Service struct {
	repo     Repository
	info     InformationRepository
	verifier auth.AssertionVerifier
	keys     KeyResolver
	log      logger.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithKeyResolver(r KeyResolver) Option {
	return func(s *Service) { s.keys = r }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(repo Repository, info InformationRepository, verifier auth.AssertionVerifier, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		info:     info,
		verifier: verifier,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) FindByInstanceID(ctx context.Context, instanceID string) (Client, error) {
	instanceID = strings.TrimSpace(instanceID)
	if instanceID == "" {
		return Client{}, ErrNotFound
	}
	return s.lookup(s.repo.GetByInstanceID(ctx, instanceID))
}

func (s *Service) FindByKeyID(ctx context.Context, keyID string) (Client, error) {
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return Client{}, ErrNotFound
	}
	return s.lookup(s.repo.GetByKeyID(ctx, keyID))
}

func (s *Service) GetByID(ctx context.Context, id string) (Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Client{}, ErrNotFound
	}
	return s.lookup(s.repo.GetByID(ctx, id))
}

// Register hace upsert por identidad: primero instance id, después key id.
// Si existe se actualizan key id, key material y display name; si no, se crea.
func (s *Service) Register(ctx context.Context, cand Candidate) (Client, error) {
	now := s.now()

	existing, err := s.FindByInstanceID(ctx, cand.InstanceID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Client{}, err
	}
	if errors.Is(err, ErrNotFound) {
		existing, err = s.FindByKeyID(ctx, cand.KeyID())
		if err != nil && !errors.Is(err, ErrNotFound) {
			return Client{}, err
		}
	}
	found := err == nil

	c := existing
	if !found {
		c = Client{
			ID:        uuid.NewString(),
			CreatedAt: now,
		}
	}

	if err := s.applyCandidate(ctx, &c, cand); err != nil {
		return Client{}, err
	}
	c.UpdatedAt = now

	if found {
		err = s.repo.Update(ctx, c)
	} else {
		err = s.repo.Create(ctx, c)
	}
	if err != nil {
		return Client{}, err
	}

	if err := s.syncInformation(ctx, c.ID, cand.Display); err != nil {
		return Client{}, err
	}

	s.log.Debug("client registered", map[string]any{
		"client_id": c.ID,
		"kid":       c.KeyID,
		"created":   !found,
	})
	return c, nil
}

// Authenticate falla si el candidato no trae key id. Con aserción, verifica la
// firma contra la JWK guardada. Sin aserción solo comprueba que exista un
// cliente con ese key id (chequeo débil, intencional).
func (s *Service) Authenticate(ctx context.Context, cand Candidate, assertion string) (bool, error) {
	keyID := strings.TrimSpace(cand.KeyID())
	if keyID == "" {
		return false, nil
	}

	stored, err := s.FindByKeyID(ctx, keyID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	assertion = strings.TrimSpace(assertion)
	if assertion == "" {
		return true, nil
	}

	if s.verifier == nil || stored.KeyJWK == "" {
		return false, nil
	}
	if _, err := s.verifier.Verify(ctx, stored.KeyJWK, assertion, keyID); err != nil {
		s.log.Debug("client assertion rejected", map[string]any{"kid": keyID, "err": err})
		return false, nil
	}
	return true, nil
}

func (s *Service) applyCandidate(ctx context.Context, c *Client, cand Candidate) error {
	if iid := strings.TrimSpace(cand.InstanceID); iid != "" {
		c.InstanceID = iid
	}
	if cand.Display != nil {
		c.DisplayName = strings.TrimSpace(cand.Display.Name)
	}
	if cand.Key == nil {
		return nil
	}

	c.KeyID = strings.TrimSpace(cand.Key.KeyID)

	switch {
	case len(cand.Key.JWK) > 0:
		var buf bytes.Buffer
		if err := json.Compact(&buf, cand.Key.JWK); err != nil {
			s.log.Error("serialize client jwk failed", map[string]any{"kid": c.KeyID, "err": err})
			return fmt.Errorf("clients: serialize jwk: %w", err)
		}
		c.KeyJWK = buf.String()
	case strings.TrimSpace(cand.Key.JWKSURI) != "" && s.keys != nil:
		raw, err := s.keys.ResolveKey(ctx, strings.TrimSpace(cand.Key.JWKSURI), c.KeyID)
		if err != nil {
			return fmt.Errorf("clients: resolve jwks key: %w", err)
		}
		c.KeyJWK = string(raw)
	}
	return nil
}

func (s *Service) syncInformation(ctx context.Context, clientID string, d *Display) error {
	if s.info == nil || d == nil {
		return nil
	}
	if strings.TrimSpace(d.URI) == "" && strings.TrimSpace(d.LogoURI) == "" {
		return nil
	}

	now := s.now()
	info, err := s.info.GetByClientID(ctx, clientID)
	switch {
	case err == nil:
		info.Name = strings.TrimSpace(d.Name)
		info.URI = strings.TrimSpace(d.URI)
		info.LogoURI = strings.TrimSpace(d.LogoURI)
		info.UpdatedAt = now
		return s.info.Update(ctx, info)
	case errors.Is(err, storage.ErrNotFound):
		return s.info.Create(ctx, Information{
			ID:        uuid.NewString(),
			ClientID:  clientID,
			Name:      strings.TrimSpace(d.Name),
			URI:       strings.TrimSpace(d.URI),
			LogoURI:   strings.TrimSpace(d.LogoURI),
			CreatedAt: now,
			UpdatedAt: now,
		})
	default:
		return err
	}
}

// -------------------------
// Client information
// -------------------------

func (s *Service) CreateInformation(ctx context.Context, clientID string, in Information) (Information, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" || s.info == nil {
		return Information{}, ErrInvalidInput
	}
	if _, err := s.GetByID(ctx, clientID); err != nil {
		return Information{}, err
	}

	now := s.now()
	info := Information{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Name:      strings.TrimSpace(in.Name),
		URI:       strings.TrimSpace(in.URI),
		LogoURI:   strings.TrimSpace(in.LogoURI),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.info.Create(ctx, info); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return Information{}, ErrInvalidInput
		}
		return Information{}, err
	}
	return info, nil
}

func (s *Service) UpdateInformation(ctx context.Context, in Information) (Information, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" || s.info == nil {
		return Information{}, ErrInvalidInput
	}

	info, err := s.info.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Information{}, ErrNotFound
		}
		return Information{}, err
	}

	info.Name = strings.TrimSpace(in.Name)
	info.URI = strings.TrimSpace(in.URI)
	info.LogoURI = strings.TrimSpace(in.LogoURI)
	info.UpdatedAt = s.now()

	if err := s.info.Update(ctx, info); err != nil {
		return Information{}, err
	}
	return info, nil
}

func (s *Service) DeleteInformation(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" || s.info == nil {
		return ErrInvalidInput
	}
	if err := s.info.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) GetInformationByClient(ctx context.Context, clientID string) (Information, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" || s.info == nil {
		return Information{}, ErrNotFound
	}
	info, err := s.info.GetByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Information{}, ErrNotFound
		}
		return Information{}, err
	}
	return info, nil
}

func (s *Service) lookup(c Client, err error) (Client, error) {
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	return c, nil
}
