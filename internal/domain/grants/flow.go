package grants

import (
	"context"
	"errors"

	"gnap-as/internal/domain/interactions"
	"gnap-as/internal/domain/resources"
)

// InteractionFlow expone el servicio a las rutas de interacción traduciendo
// errores al vocabulario de ese paquete.
func InteractionFlow(s *Service) interactions.GrantFlow {
	return interactionFlow{s: s}
}

type interactionFlow struct {
	s *Service
}

func (f interactionFlow) Lookup(ctx context.Context, grantID string) (interactions.GrantView, error) {
	g, err := f.s.Get(ctx, grantID)
	if err != nil {
		return interactions.GrantView{}, toInteractionErr(err)
	}

	view := interactions.GrantView{ID: g.ID, Status: string(g.Status)}

	if g.ClientID != "" {
		c, err := f.s.deps.Clients.GetByID(ctx, g.ClientID)
		if err == nil {
			view.ClientName = c.DisplayName
		}
	}

	items, err := f.s.deps.Resources.ListByGrant(ctx, g.ID)
	if err != nil {
		return interactions.GrantView{}, err
	}
	view.Access = resources.ToAccessList(items)
	return view, nil
}

func (f interactionFlow) FinishInteraction(ctx context.Context, in interactions.FinishInput) (interactions.FinishResult, error) {
	res, err := f.s.FinishInteraction(ctx, FinishInput{
		GrantID:       in.GrantID,
		InteractionID: in.InteractionID,
		Nonce:         in.Nonce,
		Approved:      in.Approved,
		UserID:        in.UserID,
	})
	if err != nil {
		return interactions.FinishResult{}, toInteractionErr(err)
	}
	return interactions.FinishResult{
		GrantID:     res.Grant.ID,
		Status:      string(res.Grant.Status),
		RedirectURI: res.RedirectURI,
	}, nil
}

func toInteractionErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return interactions.ErrNotFound
	case errors.Is(err, ErrConsentDenied):
		return interactions.ErrDenied
	case errors.Is(err, ErrInvalidInteraction), errors.Is(err, ErrExpired):
		return interactions.ErrRejected
	case errors.Is(err, ErrInvalidInput):
		return interactions.ErrInvalidInput
	case errors.Is(err, ErrConflict):
		return interactions.ErrConflict
	default:
		return err
	}
}
