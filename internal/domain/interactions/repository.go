package interactions

import (
	"context"
	"time"
)

type Repository interface {
	CreateAll(ctx context.Context, items []Interaction) error
	GetByID(ctx context.Context, id string) (Interaction, error)

	// GetByUserCode devuelve la interacción USER_CODE con ese código (vencida o no).
	GetByUserCode(ctx context.Context, code string) (Interaction, error)

	// ListActiveByGrant: expiresAt > now, ordenadas por CreatedAt.
	ListActiveByGrant(ctx context.Context, grantID string, now time.Time) ([]Interaction, error)
	ListByGrant(ctx context.Context, grantID string) ([]Interaction, error)

	// DeleteExpired borra las que tienen expiresAt <= now y devuelve cuántas.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
