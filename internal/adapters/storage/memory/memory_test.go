package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gnap-as/internal/domain/grants"
	"gnap-as/internal/domain/interactions"
	"gnap-as/internal/domain/resources"
	"gnap-as/internal/domain/tokens"
	"gnap-as/internal/ports/storage"

	"github.com/google/go-cmp/cmp"
)

func TestUnitOfWork_NestedDoesNotDeadlock(t *testing.T) {
	uow := NewUnitOfWork()

	calls := 0
	err := uow.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return uow.Do(ctx, func(ctx context.Context) error {
			calls++
			return nil
		})
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestUnitOfWork_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	uow := NewUnitOfWork()
	grantsRepo := NewGrantsRepo()
	resRepo := NewResourcesRepo()
	tokRepo := NewTokensRepo()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// estado previo confirmado
	if err := grantsRepo.Create(ctx, grants.GrantRequest{ID: "g0", Status: grants.StatusPending, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("seed grant: %v", err)
	}
	if err := tokRepo.Create(ctx, tokens.AccessToken{ID: "t0", Value: "v0", GrantID: "g0", ExpiresAt: now.Add(-time.Minute)}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	boom := errors.New("boom")
	err := uow.Do(ctx, func(ctx context.Context) error {
		if err := grantsRepo.Create(ctx, grants.GrantRequest{ID: "g1", Status: grants.StatusPending, ExpiresAt: now.Add(time.Hour)}); err != nil {
			return err
		}
		if err := resRepo.CreateAll(ctx, []resources.Resource{{ID: "r1", GrantID: "g1", Type: "photo-api"}}); err != nil {
			return err
		}
		g0, err := grantsRepo.GetByID(ctx, "g0")
		if err != nil {
			return err
		}
		g0.Status = grants.StatusApproved
		if err := grantsRepo.Update(ctx, g0); err != nil {
			return err
		}
		if n, err := tokRepo.DeleteExpired(ctx, now); err != nil || n != 1 {
			return fmt.Errorf("delete expired: n=%d err=%v", n, err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := grantsRepo.GetByID(ctx, "g1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("created grant survived rollback: %v", err)
	}
	if got, _ := resRepo.ListByGrant(ctx, "g1"); len(got) != 0 {
		t.Fatalf("resources survived rollback: %+v", got)
	}
	g0, err := grantsRepo.GetByID(ctx, "g0")
	if err != nil {
		t.Fatalf("get g0: %v", err)
	}
	if g0.Status != grants.StatusPending || g0.Version != 0 {
		t.Fatalf("update survived rollback: status=%s version=%d", g0.Status, g0.Version)
	}
	if _, err := tokRepo.GetByValue(ctx, "v0"); err != nil {
		t.Fatalf("deleted token not restored: %v", err)
	}

	// el id liberado se puede volver a usar
	if err := resRepo.CreateAll(ctx, []resources.Resource{{ID: "r1", GrantID: "g1", Type: "photo-api"}}); err != nil {
		t.Fatalf("recreate resource: %v", err)
	}
}

func TestUnitOfWork_RollbackOnPanic(t *testing.T) {
	ctx := context.Background()
	uow := NewUnitOfWork()
	repo := NewGrantsRepo()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_ = uow.Do(ctx, func(ctx context.Context) error {
			if err := repo.Create(ctx, grants.GrantRequest{ID: "g1"}); err != nil {
				return err
			}
			panic("boom")
		})
	}()

	if _, err := repo.GetByID(ctx, "g1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("grant survived panic: %v", err)
	}

	// el mutex quedó libre
	if err := uow.Do(ctx, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("uow after panic: %v", err)
	}
}

func TestUnitOfWork_CommitKeepsWrites(t *testing.T) {
	ctx := context.Background()
	uow := NewUnitOfWork()
	repo := NewGrantsRepo()

	err := uow.Do(ctx, func(ctx context.Context) error {
		return uow.Do(ctx, func(ctx context.Context) error {
			return repo.Create(ctx, grants.GrantRequest{ID: "g1"})
		})
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if _, err := repo.GetByID(ctx, "g1"); err != nil {
		t.Fatalf("committed grant missing: %v", err)
	}
}

func TestGrantsRepo_VersionedUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewGrantsRepo()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	g := grants.GrantRequest{ID: "g1", Status: grants.StatusPending, ExpiresAt: now.Add(time.Hour)}
	if err := repo.Create(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}

	g.Status = grants.StatusApproved
	if err := repo.Update(ctx, g); err != nil {
		t.Fatalf("update: %v", err)
	}

	// misma versión vieja => conflicto
	g.Status = grants.StatusDenied
	if err := repo.Update(ctx, g); !errors.Is(err, storage.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	got, err := repo.GetByID(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != grants.StatusApproved || got.Version != 1 {
		t.Fatalf("unexpected stored grant: %+v", got)
	}
}

func TestGrantsRepo_ListExpiredSkipsTerminal(t *testing.T) {
	ctx := context.Background()
	repo := NewGrantsRepo()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	seed := []grants.GrantRequest{
		{ID: "due", Status: grants.StatusPending, ExpiresAt: now},
		{ID: "live", Status: grants.StatusPending, ExpiresAt: now.Add(time.Second)},
		{ID: "done", Status: grants.StatusExpired, ExpiresAt: now.Add(-time.Hour)},
		{ID: "revoked", Status: grants.StatusRevoked, ExpiresAt: now.Add(-time.Hour)},
	}
	for _, g := range seed {
		if err := repo.Create(ctx, g); err != nil {
			t.Fatalf("create %s: %v", g.ID, err)
		}
	}

	got, err := repo.ListExpired(ctx, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "due" {
		t.Fatalf("expected only 'due', got %+v", got)
	}
}

func TestResourcesRepo_ServerKeyFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewResourcesRepo()

	items := []resources.Resource{
		{ID: "r2", GrantID: "g", Position: 1, Type: "photo", ResourceServer: "rs1", Actions: []string{"read", "write"}},
		{ID: "r1", GrantID: "g", Position: 0, Type: "contact"},
		{ID: "r3", GrantID: "other", Position: 0, Type: "contact"},
	}
	if err := repo.CreateAll(ctx, items); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, _ := repo.ListByGrant(ctx, "g")
	var ids []string
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"r1", "r2"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"read", "write"}, all[1].Actions); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}

	def, _ := repo.ListByGrantAndServer(ctx, "g", resources.DefaultServer)
	if len(def) != 1 || def[0].ID != "r1" {
		t.Fatalf("expected r1 under default, got %+v", def)
	}
}

func TestInteractionsRepo_ActiveAndDeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewInteractionsRepo()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	items := []interactions.Interaction{
		{ID: "a", GrantID: "g", Type: interactions.TypeRedirect, CreatedAt: now, ExpiresAt: now.Add(time.Minute)},
		{ID: "b", GrantID: "g", Type: interactions.TypeUserCode, UserCode: "123456", CreatedAt: now, ExpiresAt: now},
	}
	if err := repo.CreateAll(ctx, items); err != nil {
		t.Fatalf("create: %v", err)
	}

	active, _ := repo.ListActiveByGrant(ctx, "g", now)
	if len(active) != 1 || active[0].ID != "a" {
		t.Fatalf("expected only 'a' active, got %+v", active)
	}

	if _, err := repo.GetByUserCode(ctx, "123456"); err != nil {
		t.Fatalf("user code lookup: %v", err)
	}

	n, _ := repo.DeleteExpired(ctx, now)
	if n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}
	if _, err := repo.GetByID(ctx, "b"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
