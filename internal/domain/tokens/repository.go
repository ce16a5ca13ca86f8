package tokens

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t AccessToken) error
	GetByValue(ctx context.Context, value string) (AccessToken, error)
	ListByGrant(ctx context.Context, grantID string) ([]AccessToken, error)

	// DeleteByValue devuelve false si no había token con ese valor.
	DeleteByValue(ctx context.Context, value string) (bool, error)

	// DeleteExpired borra los que tienen expiresAt <= now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
