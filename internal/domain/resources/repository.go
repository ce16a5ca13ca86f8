package resources

import "context"

// Repository devuelve siempre los recursos ordenados por Position.
type Repository interface {
	CreateAll(ctx context.Context, items []Resource) error
	ListByGrant(ctx context.Context, grantID string) ([]Resource, error)
	ListByGrantAndServer(ctx context.Context, grantID, server string) ([]Resource, error)
}
