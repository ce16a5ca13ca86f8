package memory

import (
	"context"
	"sync"
)

type txKey struct{}

// tx junta las operaciones inversas de lo que los repos escribieron dentro de
// un Do. Si fn falla (o entra en pánico) se aplican en orden inverso.
type tx struct {
	owner *UnitOfWork

	mu   sync.Mutex
	undo []func()
}

func (t *tx) add(fn func()) {
	t.mu.Lock()
	t.undo = append(t.undo, fn)
	t.mu.Unlock()
}

func (t *tx) rollback() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// UnitOfWork serializa las operaciones con un mutex de proceso y deshace las
// escrituras de los repos de este paquete cuando fn devuelve error.
type UnitOfWork struct {
	mu sync.Mutex
}

func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	// llamada anidada: se une a la tx externa, que decide el rollback
	if t, ok := ctx.Value(txKey{}).(*tx); ok && t.owner == u {
		return fn(ctx)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	t := &tx{owner: u}
	defer func() {
		if p := recover(); p != nil {
			t.rollback()
			panic(p)
		}
		if err != nil {
			t.rollback()
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, t))
}

// onRollback registra fn si ctx viene de un Do. Fuera de un Do la escritura es
// definitiva.
func onRollback(ctx context.Context, fn func()) {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		t.add(fn)
	}
}

// restoreEntry devuelve la inversa de escribir m[key]: vuelve al valor previo o
// borra la entrada si no existía.
func restoreEntry[K comparable, V any](mu *sync.RWMutex, m map[K]V, key K, prev V, existed bool) func() {
	return func() {
		mu.Lock()
		defer mu.Unlock()

		if existed {
			m[key] = prev
			return
		}
		delete(m, key)
	}
}
