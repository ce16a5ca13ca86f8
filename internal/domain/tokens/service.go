package tokens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gnap-as/internal/domain/resources"
	"gnap-as/internal/platform/logger"
	"gnap-as/internal/platform/metrics"
	"gnap-as/internal/ports/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// ResourceSource evita que tokens dependa del servicio de recursos concreto.
type ResourceSource interface {
	ListByGrant(ctx context.Context, grantID string) ([]resources.Resource, error)
	ListByGrantAndServer(ctx context.Context, grantID, server string) ([]resources.Resource, error)
}

type Config struct {
	Issuer   string
	Lifetime time.Duration
}

type Service struct {
	repo     Repository
	res      ResourceSource
	keys     KeyProvider
	issuer   string
	lifetime time.Duration

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

func NewService(repo Repository, res ResourceSource, keys KeyProvider, cfg Config, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		res:      res,
		keys:     keys,
		issuer:   strings.TrimRight(cfg.Issuer, "/"),
		lifetime: cfg.Lifetime,
		log:      logger.Nop(),
		metrics:  metrics.Nop{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// -------------------------
// Continuation tokens
// -------------------------

func (s *Service) GenerateContinuationToken(grantID string) (string, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return "", ErrInvalidInput
	}

	now := s.now()
	claims := ContinuationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   grantID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
		TokenType: TokenTypeContinuation,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.keys.SigningKey())
	if err != nil {
		s.log.Error("sign continuation token failed", map[string]any{"grant_id": grantID, "err": err})
		return "", fmt.Errorf("tokens: sign continuation: %w", err)
	}
	return signed, nil
}

// ValidateContinuationToken: cualquier falla de parseo o firma es inválido.
func (s *Service) ValidateContinuationToken(grantID, token string) bool {
	token = strings.TrimSpace(token)
	if grantID == "" || token == "" {
		return false
	}

	var claims ContinuationClaims
	_, err := jwt.ParseWithClaims(token, &claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.log.Debug("continuation token rejected", map[string]any{"grant_id": grantID, "err": err})
		return false
	}
	return claims.Subject == grantID && claims.TokenType == TokenTypeContinuation
}

// -------------------------
// Access tokens
// -------------------------

// GenerateAccessTokens emite un token por resource server. Sin recursos, ninguno.
func (s *Service) GenerateAccessTokens(ctx context.Context, g GrantInfo) ([]AccessToken, error) {
	if strings.TrimSpace(g.ID) == "" {
		return nil, ErrInvalidInput
	}

	items, err := s.res.ListByGrant(ctx, g.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.lifetime)

	groups := resources.GroupByServer(items)
	out := make([]AccessToken, 0, len(groups))
	for _, grp := range groups {
		t := AccessToken{
			ID:             uuid.NewString(),
			GrantID:        g.ID,
			AccessType:     AccessTypeBearer,
			ResourceServer: grp.Server,
			ClientID:       g.ClientID,
			Subject:        g.UserID,
			ExpiresAt:      expiresAt,
			CreatedAt:      now,
			UpdatedAt:      now,
			Resources:      grp.Resources,
			Label:          grp.Server,
		}

		value, err := s.signAccess(t, now)
		if err != nil {
			return nil, err
		}
		t.Value = value

		if err := s.repo.Create(ctx, t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	if len(out) > 0 {
		s.metrics.IncCounter(ctx, "tokens_issued", int64(len(out)), nil)
		s.log.Info("access tokens issued", map[string]any{"grant_id": g.ID, "count": len(out)})
	}
	return out, nil
}

// ListIssued devuelve los tokens guardados y vigentes del grant, con sus recursos.
func (s *Service) ListIssued(ctx context.Context, grantID string) ([]AccessToken, error) {
	stored, err := s.repo.ListByGrant(ctx, grantID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]AccessToken, 0, len(stored))
	for _, t := range stored {
		if t.Expired(now) {
			continue
		}
		covered, err := s.covered(ctx, t)
		if err != nil {
			return nil, err
		}
		t.Resources = covered
		t.Label = t.ResourceServer
		out = append(out, t)
	}
	return out, nil
}

func (s *Service) IntrospectToken(ctx context.Context, value string) (Introspection, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Introspection{Active: false}, nil
	}

	t, err := s.repo.GetByValue(ctx, value)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Introspection{Active: false}, nil
		}
		return Introspection{}, err
	}

	now := s.now()
	if t.Expired(now) {
		return Introspection{Active: false}, nil
	}

	covered, err := s.covered(ctx, t)
	if err != nil {
		return Introspection{}, err
	}

	return Introspection{
		Active:         true,
		GrantID:        t.GrantID,
		ClientID:       t.ClientID,
		Subject:        t.Subject,
		IssuedAt:       t.CreatedAt.Unix(),
		ExpiresIn:      t.ExpiresIn(now),
		ResourceServer: t.ResourceServer,
		Access:         resources.ToAccessList(covered),
	}, nil
}

func (s *Service) RevokeToken(ctx context.Context, value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}

	ok, err := s.repo.DeleteByValue(ctx, value)
	if err != nil {
		return false, err
	}
	if ok {
		s.metrics.IncCounter(ctx, "tokens_revoked", 1, nil)
	}
	return ok, nil
}

func (s *Service) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired access tokens deleted", map[string]any{"count": n})
	}
	return n, nil
}

// ParseAccessToken verifica firma y vencimiento de un access token emitido acá.
func (s *Service) ParseAccessToken(value string) (AccessClaims, error) {
	var claims AccessClaims
	_, err := jwt.ParseWithClaims(value, &claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

func (s *Service) signAccess(t AccessToken, now time.Time) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        t.ID,
			Issuer:    s.issuer,
			Subject:   t.Subject,
			Audience:  jwt.ClaimStrings{t.ResourceServer},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(t.ExpiresAt),
		},
		GrantID:  t.GrantID,
		ClientID: t.ClientID,
		Access:   toAccessClaims(t.Resources),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.keys.SigningKey())
	if err != nil {
		s.log.Error("sign access token failed", map[string]any{"grant_id": t.GrantID, "err": err})
		return "", fmt.Errorf("tokens: sign access token: %w", err)
	}
	return signed, nil
}

// covered: recursos del server del token, o todos si el token no tiene server.
func (s *Service) covered(ctx context.Context, t AccessToken) ([]resources.Resource, error) {
	if strings.TrimSpace(t.ResourceServer) == "" {
		return s.res.ListByGrant(ctx, t.GrantID)
	}
	return s.res.ListByGrantAndServer(ctx, t.GrantID, t.ResourceServer)
}

func (s *Service) keyFunc(*jwt.Token) (any, error) {
	return s.keys.SigningKey(), nil
}
