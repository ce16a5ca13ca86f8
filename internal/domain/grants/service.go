package grants

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gnap-as/internal/domain/clients"
	"gnap-as/internal/domain/interactions"
	"gnap-as/internal/domain/resources"
	"gnap-as/internal/domain/tokens"
	"gnap-as/internal/platform/logger"
	"gnap-as/internal/platform/metrics"
	"gnap-as/internal/ports/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrAuthenticationFailed = errors.New("client authentication failed")
	ErrExpired              = errors.New("grant expired")
	ErrConflict             = errors.New("grant modified concurrently")
	ErrInvalidInteraction   = errors.New("invalid interaction")
	ErrConsentDenied        = errors.New("consent denied")
	ErrInvalidStatus        = errors.New("invalid status")
)

// -------------------------
// Colaboradores
// -------------------------

type ClientRegistry interface {
	Authenticate(ctx context.Context, cand clients.Candidate, assertion string) (bool, error)
	Register(ctx context.Context, cand clients.Candidate) (clients.Client, error)
	GetByID(ctx context.Context, id string) (clients.Client, error)
}

type ResourceLedger interface {
	Build(grantID string, items []resources.Access) ([]resources.Resource, error)
	Store(ctx context.Context, items []resources.Resource) error
	ListByGrant(ctx context.Context, grantID string) ([]resources.Resource, error)
}

type InteractionEngine interface {
	CreateInteractions(ctx context.Context, grantID string, req interactions.Request) ([]interactions.Interaction, error)
	BuildInteractResponse(items []interactions.Interaction) interactions.Summary
	ValidateInteraction(ctx context.Context, grantID, interactionID, nonce string) (bool, error)
	Get(ctx context.Context, interactionID string) (interactions.Interaction, error)
	ListByGrant(ctx context.Context, grantID string) ([]interactions.Interaction, error)
	GrantEndpoint() string
}

type TokenEngine interface {
	GenerateContinuationToken(grantID string) (string, error)
	ValidateContinuationToken(grantID, token string) bool
	GenerateAccessTokens(ctx context.Context, g tokens.GrantInfo) ([]tokens.AccessToken, error)
	ListIssued(ctx context.Context, grantID string) ([]tokens.AccessToken, error)
}

type Deps struct {
	Clients      ClientRegistry
	Resources    ResourceLedger
	Interactions InteractionEngine
	Tokens       TokenEngine
}

type Config struct {
	// Lifetime es el vencimiento del grant (mismo valor que el de los tokens).
	Lifetime time.Duration
}

type Service struct {
	uow  storage.UnitOfWork
	repo Repository
	deps Deps
	ttl  time.Duration

	log     logger.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m metrics.Recorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

func NewService(uow storage.UnitOfWork, repo Repository, deps Deps, cfg Config, opts ...Option) *Service {
	if uow == nil {
		uow = storage.NoTx{}
	}
	s := &Service{
		uow:     uow,
		repo:    repo,
		deps:    deps,
		ttl:     cfg.Lifetime,
		log:     logger.Nop(),
		metrics: metrics.Nop{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// -------------------------
// Operaciones
// -------------------------

// ProcessGrantRequest autentica/registra al cliente (si vino), crea el grant en
// PENDING con sus recursos e interacciones y arma la respuesta inicial.
// Todo el input se valida antes de la primera escritura.
func (s *Service) ProcessGrantRequest(ctx context.Context, in Input) (Response, error) {
	grantID := uuid.NewString()

	items, err := s.deps.Resources.Build(grantID, in.Access)
	if err != nil {
		return Response{}, mapInput(err)
	}
	if in.Interact != nil {
		if _, err := interactions.ValidateRequest(*in.Interact); err != nil {
			return Response{}, mapInput(err)
		}
	}

	var out Response
	err = s.uow.Do(ctx, func(ctx context.Context) error {
		var clientID string
		if in.Client != nil {
			ok, err := s.deps.Clients.Authenticate(ctx, *in.Client, in.Assertion)
			if err != nil {
				return err
			}
			if !ok {
				return ErrAuthenticationFailed
			}
			c, err := s.deps.Clients.Register(ctx, *in.Client)
			if err != nil {
				return mapInput(err)
			}
			clientID = c.ID
		}

		now := s.now()
		g := GrantRequest{
			ID:        grantID,
			ClientID:  clientID,
			Status:    StatusPending,
			State:     in.State,
			ExpiresAt: now.Add(s.ttl),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if in.Interact != nil {
			g.RedirectURI = in.Interact.RedirectURI()
		}

		if err := s.repo.Create(ctx, g); err != nil {
			return err
		}

		if err := s.deps.Resources.Store(ctx, items); err != nil {
			return err
		}

		var created []interactions.Interaction
		if in.Interact != nil && len(in.Interact.Modes) > 0 {
			its, err := s.deps.Interactions.CreateInteractions(ctx, g.ID, *in.Interact)
			if err != nil {
				return mapInput(err)
			}
			created = its
		}

		resp, err := s.buildResponse(ctx, &g, created)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAuthenticationFailed) {
			s.log.Warn("grant request rejected", map[string]any{"reason": "client authentication"})
		}
		return Response{}, err
	}

	s.metrics.IncCounter(ctx, "grants_created", 1, nil)
	s.log.Info("grant created", map[string]any{"grant_id": out.InstanceID})
	return out, nil
}

// ProcessContinuation valida el continuation token y devuelve el estado actual.
// Un grant vencido pasa a EXPIRED (y se persiste) antes de fallar con ErrExpired.
func (s *Service) ProcessContinuation(ctx context.Context, grantID, token string) (Response, error) {
	if !s.deps.Tokens.ValidateContinuationToken(grantID, token) {
		s.metrics.IncCounter(ctx, "grant_continuations", 1, map[string]string{"result": "denied"})
		return Response{}, ErrUnauthorized
	}

	var (
		out     Response
		expired bool
	)
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		g, err := s.load(ctx, grantID)
		if err != nil {
			return err
		}

		if g.Expired(s.now()) {
			expired = true
			if g.Status.Terminal() {
				return nil
			}
			g.Status = StatusExpired
			g.UpdatedAt = s.now()
			return s.save(ctx, &g)
		}

		items, err := s.deps.Interactions.ListByGrant(ctx, g.ID)
		if err != nil {
			return err
		}
		resp, err := s.buildResponse(ctx, &g, items)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		return Response{}, err
	}
	if expired {
		s.metrics.IncCounter(ctx, "grant_continuations", 1, map[string]string{"result": "expired"})
		s.log.Info("grant expired on continuation", map[string]any{"grant_id": grantID})
		return Response{}, ErrExpired
	}

	s.metrics.IncCounter(ctx, "grant_continuations", 1, map[string]string{"result": "ok"})
	return out, nil
}

// CheckContinuation es la misma validación de token que usa ProcessContinuation.
func (s *Service) CheckContinuation(grantID, token string) error {
	if !s.deps.Tokens.ValidateContinuationToken(grantID, token) {
		return ErrUnauthorized
	}
	return nil
}

// UpdateGrantStatus sobrescribe el estado sin validar la transición. Quien llama
// decide cuándo es legítimo.
func (s *Service) UpdateGrantStatus(ctx context.Context, grantID string, status Status) (GrantRequest, error) {
	status, ok := ParseStatus(string(status))
	if !ok {
		return GrantRequest{}, ErrInvalidStatus
	}

	var out GrantRequest
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		g, err := s.load(ctx, grantID)
		if err != nil {
			return err
		}

		from := g.Status
		g.Status = status
		g.UpdatedAt = s.now()
		if err := s.save(ctx, &g); err != nil {
			return err
		}

		s.logTransition(ctx, g.ID, from, status)
		out = g
		return nil
	})
	if err != nil {
		return GrantRequest{}, err
	}
	return out, nil
}

// CleanupExpiredGrants marca EXPIRED a los vencidos en un solo lote. No borra.
func (s *Service) CleanupExpiredGrants(ctx context.Context) (int64, error) {
	var n int64
	err := s.uow.Do(ctx, func(ctx context.Context) error {
		now := s.now()
		items, err := s.repo.ListExpired(ctx, now)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		for i := range items {
			items[i].Status = StatusExpired
			items[i].UpdatedAt = now
		}
		if err := s.repo.UpdateAll(ctx, items); err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				return ErrConflict
			}
			return err
		}
		n = int64(len(items))
		return nil
	})
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.metrics.IncCounter(ctx, "grants_expired", n, nil)
		s.log.Info("expired grants swept", map[string]any{"count": n})
	}
	return n, nil
}

type FinishInput struct {
	GrantID       string
	InteractionID string
	Nonce         string
	Approved      bool
	UserID        string
}

type FinishResult struct {
	Grant       GrantRequest
	RedirectURI string
}

// FinishInteraction cierra la interacción: valida contra el grant, guarda
// APPROVED o DENIED y, si hay redirect, arma la URI con hash e interact_ref.
// Un rechazo queda persistido y devuelve ErrConsentDenied.
func (s *Service) FinishInteraction(ctx context.Context, in FinishInput) (FinishResult, error) {
	var (
		out    FinishResult
		denied bool
	)

	err := s.uow.Do(ctx, func(ctx context.Context) error {
		g, err := s.load(ctx, in.GrantID)
		if err != nil {
			return err
		}
		if g.Expired(s.now()) {
			return ErrExpired
		}
		if g.Status != StatusPending && g.Status != StatusProcessing {
			return ErrInvalidInteraction
		}

		ok, err := s.deps.Interactions.ValidateInteraction(ctx, g.ID, in.InteractionID, in.Nonce)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidInteraction
		}

		// la URI de vuelta se arma antes de escribir: si falla, el grant no cambia
		if in.Approved && g.RedirectURI != "" {
			redirect, err := s.finishRedirect(ctx, g, in.InteractionID)
			if err != nil {
				return err
			}
			out.RedirectURI = redirect
		}

		from := g.Status
		if in.Approved {
			g.Status = StatusApproved
		} else {
			g.Status = StatusDenied
			denied = true
		}
		if uid := strings.TrimSpace(in.UserID); uid != "" {
			g.UserID = uid
		}
		g.UpdatedAt = s.now()

		if err := s.save(ctx, &g); err != nil {
			return err
		}
		s.logTransition(ctx, g.ID, from, g.Status)

		out.Grant = g
		return nil
	})
	if err != nil {
		return FinishResult{}, err
	}
	if denied {
		return out, ErrConsentDenied
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, grantID string) (GrantRequest, error) {
	return s.load(ctx, grantID)
}

// -------------------------
// Internos
// -------------------------

func (s *Service) buildResponse(ctx context.Context, g *GrantRequest, items []interactions.Interaction) (Response, error) {
	cont, err := s.deps.Tokens.GenerateContinuationToken(g.ID)
	if err != nil {
		return Response{}, err
	}

	out := Response{
		InstanceID: g.ID,
		Continue: &Continue{
			URI:         "/grant/" + g.ID,
			AccessToken: cont,
			Wait:        DefaultWait,
		},
	}

	if len(items) > 0 {
		summary := s.deps.Interactions.BuildInteractResponse(items)
		if !summary.Empty() {
			out.Interact = &summary
		}
	}

	if g.Status == StatusApproved {
		issued, err := s.accessTokens(ctx, g)
		if err != nil {
			return Response{}, err
		}
		now := s.now()
		for _, t := range issued {
			out.AccessToken = append(out.AccessToken, t.ToResponse(now))
		}
	}
	return out, nil
}

// accessTokens emite una sola vez por grant. Las continuaciones siguientes
// devuelven los tokens guardados que siguen vigentes.
func (s *Service) accessTokens(ctx context.Context, g *GrantRequest) ([]tokens.AccessToken, error) {
	if g.TokensIssuedAt != nil {
		return s.deps.Tokens.ListIssued(ctx, g.ID)
	}

	issued, err := s.deps.Tokens.GenerateAccessTokens(ctx, tokens.GrantInfo{
		ID:       g.ID,
		ClientID: g.ClientID,
		UserID:   g.UserID,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	g.TokensIssuedAt = &now
	g.UpdatedAt = now
	if err := s.save(ctx, g); err != nil {
		return nil, err
	}
	return issued, nil
}

func (s *Service) finishRedirect(ctx context.Context, g GrantRequest, interactionID string) (string, error) {
	it, err := s.deps.Interactions.Get(ctx, interactionID)
	if err != nil {
		return "", err
	}

	hash, err := interactions.ComputeHash(it.HashMethod, it.Nonce, it.ID, s.deps.Interactions.GrantEndpoint())
	if err != nil {
		return "", err
	}

	u, err := url.Parse(g.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: redirect uri", ErrInvalidInput)
	}
	q := u.Query()
	q.Set("hash", hash)
	q.Set("interact_ref", it.ID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Service) load(ctx context.Context, grantID string) (GrantRequest, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return GrantRequest{}, ErrNotFound
	}
	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return GrantRequest{}, ErrNotFound
		}
		return GrantRequest{}, err
	}
	return g, nil
}

// save persiste con locking optimista y deja g con la versión nueva.
func (s *Service) save(ctx context.Context, g *GrantRequest) error {
	if err := s.repo.Update(ctx, *g); err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			return ErrConflict
		}
		return err
	}
	g.Version++
	return nil
}

func (s *Service) logTransition(ctx context.Context, grantID string, from, to Status) {
	s.metrics.IncCounter(ctx, "grant_status_transitions", 1, map[string]string{"to": string(to)})
	s.log.Info("grant status changed", map[string]any{
		"grant_id": grantID,
		"from":     string(from),
		"to":       string(to),
	})
}

// mapInput traduce errores de validación de los otros módulos.
func mapInput(err error) error {
	switch {
	case errors.Is(err, resources.ErrInvalidInput),
		errors.Is(err, interactions.ErrInvalidInput),
		errors.Is(err, clients.ErrInvalidInput):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return err
	}
}
