package interactions

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"gnap-as/internal/platform/logger"
	"gnap-as/internal/ports/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Config struct {
	Issuer  string
	Timeout time.Duration
}

type Service struct {
	repo   Repository
	issuer string
	ttl    time.Duration
	log    logger.Logger
	now    func() time.Time

	// userCode se reemplaza en tests.
	userCode func() string
}

func NewService(repo Repository, cfg Config, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		issuer:   strings.TrimRight(cfg.Issuer, "/"),
		ttl:      cfg.Timeout,
		log:      log,
		now:      time.Now,
		userCode: generateUserCode,
	}
}

// CreateInteractions crea una interacción por modo pedido, todas con el mismo
// vencimiento y, si hubo finish, el mismo hash method.
func (s *Service) CreateInteractions(ctx context.Context, grantID string, req Request) ([]Interaction, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return nil, ErrInvalidInput
	}
	if len(req.Modes) == 0 {
		return nil, nil
	}

	method, err := ValidateRequest(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)

	seen := map[Type]bool{}
	out := make([]Interaction, 0, len(req.Modes))
	for _, m := range req.Modes {
		if seen[m.Type()] {
			continue
		}
		seen[m.Type()] = true

		it := Interaction{
			ID:         uuid.NewString(),
			GrantID:    grantID,
			Type:       m.Type(),
			HashMethod: method,
			ExpiresAt:  expiresAt,
			CreatedAt:  now,
		}

		switch mode := m.(type) {
		case RedirectMode:
			it.URL = s.modeURL("redirect", grantID)
			it.Nonce = mode.Nonce
		case AppMode:
			it.URL = s.modeURL("app", grantID)
			it.Nonce = mode.Nonce
		case UserCodeMode:
			it.URL = s.modeURL("user-code", grantID)
			it.UserCode = s.userCode()
		case UserCodeURIMode:
			it.URL = mode.URI
		}

		out = append(out, it)
	}

	if err := s.repo.CreateAll(ctx, out); err != nil {
		return nil, err
	}

	s.log.Debug("interactions created", map[string]any{
		"grant_id": grantID,
		"count":    len(out),
		"finish":   string(method),
	})
	return out, nil
}

// ValidateRequest revisa el bloque interact sin tocar el storage: hash method
// conocido, modos soportados y URIs absolutas. Devuelve el hash method
// (vacío si no hay finish).
func ValidateRequest(req Request) (HashMethod, error) {
	var method HashMethod
	if req.Finish != "" {
		m, ok := ParseHashMethod(req.Finish)
		if !ok {
			return "", fmt.Errorf("%w: unknown finish method %q", ErrInvalidInput, req.Finish)
		}
		method = m
	}

	for _, m := range req.Modes {
		switch mode := m.(type) {
		case RedirectMode:
			if mode.URI != "" && !validURI(mode.URI, true) {
				return "", fmt.Errorf("%w: redirect uri", ErrInvalidInput)
			}
		case AppMode:
			if mode.URI != "" && !validURI(mode.URI, false) {
				return "", fmt.Errorf("%w: app uri", ErrInvalidInput)
			}
		case UserCodeMode:
		case UserCodeURIMode:
			if !validURI(mode.URI, true) {
				return "", fmt.Errorf("%w: user code uri", ErrInvalidInput)
			}
		default:
			return "", fmt.Errorf("%w: unsupported mode %T", ErrInvalidInput, m)
		}
	}
	return method, nil
}

// validURI: absoluta; needHost para las que el navegador tiene que seguir.
func validURI(raw string, needHost bool) bool {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return false
	}
	return !needHost || u.Host != ""
}

// BuildInteractResponse proyecta el batch al bloque "interact". Un solo finish
// por respuesta, tomado de la primera interacción con hash method.
func (s *Service) BuildInteractResponse(items []Interaction) Summary {
	var out Summary
	for _, it := range items {
		switch it.Type {
		case TypeRedirect:
			out.Redirect = it.URL
		case TypeApp:
			out.App = it.URL
		case TypeUserCode:
			out.UserCode = &UserCode{Code: it.UserCode, URI: it.URL}
		case TypeUserCodeURI:
			// el cliente ya conoce su URI
		}
	}

	for _, it := range items {
		if it.HashMethod == "" {
			continue
		}
		out.Finish = &FinishDescriptor{
			URI:    s.issuer + "/interact/finish/" + it.GrantID,
			Method: string(it.HashMethod),
		}
		break
	}
	return out
}

// ValidateInteraction: existe, es del grant, no venció y, si guardó nonce, coincide.
func (s *Service) ValidateInteraction(ctx context.Context, grantID, interactionID, nonce string) (bool, error) {
	interactionID = strings.TrimSpace(interactionID)
	if interactionID == "" {
		return false, nil
	}

	it, err := s.repo.GetByID(ctx, interactionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if it.GrantID != grantID {
		return false, nil
	}
	if it.Expired(s.now()) {
		return false, nil
	}
	if it.Nonce != "" && subtle.ConstantTimeCompare([]byte(it.Nonce), []byte(nonce)) != 1 {
		return false, nil
	}
	return true, nil
}

func (s *Service) Get(ctx context.Context, interactionID string) (Interaction, error) {
	it, err := s.repo.GetByID(ctx, strings.TrimSpace(interactionID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Interaction{}, ErrNotFound
		}
		return Interaction{}, err
	}
	return it, nil
}

func (s *Service) FindActiveInteractions(ctx context.Context, grantID string) ([]Interaction, error) {
	return s.repo.ListActiveByGrant(ctx, grantID, s.now())
}

// ListByGrant incluye las vencidas que aún no barrió el cleanup.
func (s *Service) ListByGrant(ctx context.Context, grantID string) ([]Interaction, error) {
	return s.repo.ListByGrant(ctx, grantID)
}

// LookupUserCode busca la interacción USER_CODE activa con ese código.
func (s *Service) LookupUserCode(ctx context.Context, code string) (Interaction, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Interaction{}, ErrInvalidInput
	}

	it, err := s.repo.GetByUserCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Interaction{}, ErrNotFound
		}
		return Interaction{}, err
	}
	if it.Expired(s.now()) {
		return Interaction{}, ErrNotFound
	}
	return it, nil
}

func (s *Service) CleanupExpiredInteractions(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired interactions deleted", map[string]any{"count": n})
	}
	return n, nil
}

// GrantEndpoint es la URL del AS que entra en el hash de finish.
func (s *Service) GrantEndpoint() string {
	return s.issuer + "/grant"
}

// ComputeHash calcula base64url(H(nonce "\n" interactRef "\n" grantEndpoint)).
func ComputeHash(method HashMethod, nonce, interactRef, grantEndpoint string) (string, error) {
	var h hash.Hash
	switch method {
	case "", HashSHA256:
		h = sha256.New()
	case HashSHA384:
		h = sha512.New384()
	case HashSHA512:
		h = sha512.New()
	default:
		return "", ErrInvalidInput
	}

	h.Write([]byte(nonce + "\n" + interactRef + "\n" + grantEndpoint))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

func (s *Service) modeURL(mode, grantID string) string {
	return s.issuer + "/interact/" + mode + "/" + grantID
}

// generateUserCode: 6 dígitos con ceros a la izquierda. No es secreto.
func generateUserCode() string {
	return fmt.Sprintf("%06d", rand.IntN(1000000))
}
