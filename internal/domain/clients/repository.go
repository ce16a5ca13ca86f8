package clients

import "context"

type Repository interface {
	Create(ctx context.Context, c Client) error
	Update(ctx context.Context, c Client) error
	GetByID(ctx context.Context, id string) (Client, error)
	GetByInstanceID(ctx context.Context, instanceID string) (Client, error)
	GetByKeyID(ctx context.Context, keyID string) (Client, error)
}

type InformationRepository interface {
	Create(ctx context.Context, info Information) error
	Update(ctx context.Context, info Information) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Information, error)
	GetByClientID(ctx context.Context, clientID string) (Information, error)
}
