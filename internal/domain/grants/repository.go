package grants

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, g GrantRequest) error

	// Update solo aplica si la versión guardada es g.Version y la incrementa.
	// Si no coincide devuelve storage.ErrVersionConflict.
	Update(ctx context.Context, g GrantRequest) error

	GetByID(ctx context.Context, id string) (GrantRequest, error)

	// ListExpired: expiresAt <= now y status distinto de EXPIRED/REVOKED.
	ListExpired(ctx context.Context, now time.Time) ([]GrantRequest, error)

	// UpdateAll es Update en lote, todo o nada.
	UpdateAll(ctx context.Context, items []GrantRequest) error
}
