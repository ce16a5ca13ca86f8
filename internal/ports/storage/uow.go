package storage

import "context"

// UnitOfWork ejecuta fn como una sola transacción: todo lo que los repos
// escriben con el ctx recibido se confirma junto o no se confirma.
// Llamadas anidadas se unen a la transacción externa.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoTx ejecuta fn directamente. Útil en tests de servicios con repos fake.
type NoTx struct{}

func (NoTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
