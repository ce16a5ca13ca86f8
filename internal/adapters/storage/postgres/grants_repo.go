package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"gnap-as/internal/domain/grants"
	"gnap-as/internal/ports/storage"
)

type GrantsRepo struct {
	db *sql.DB
}

func NewGrantsRepo(db *sql.DB) *GrantsRepo {
	return &GrantsRepo{db: db}
}

const grantColumns = `id, client_id, status, redirect_uri, state, user_id, expires_at, tokens_issued_at, version, created_at, updated_at`

func (r *GrantsRepo) Create(ctx context.Context, g grants.GrantRequest) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO grant_requests (`+grantColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		g.ID,
		toNullString(g.ClientID),
		string(g.Status),
		g.RedirectURI,
		g.State,
		g.UserID,
		g.ExpiresAt,
		toNullTime(g.TokensIssuedAt),
		g.Version,
		g.CreatedAt,
		g.UpdatedAt,
	)
	return mapWriteErr(err)
}

// Update solo escribe si la versión guardada es g.Version.
func (r *GrantsRepo) Update(ctx context.Context, g grants.GrantRequest) error {
	return r.update(ctx, conn(ctx, r.db), g)
}

func (r *GrantsRepo) UpdateAll(ctx context.Context, items []grants.GrantRequest) error {
	if len(items) == 0 {
		return nil
	}
	// todo o nada: si no venimos dentro de un UnitOfWork abrimos una tx propia
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return r.updateAll(ctx, conn(ctx, r.db), items)
	}
	return NewUnitOfWork(r.db).Do(ctx, func(ctx context.Context) error {
		return r.updateAll(ctx, conn(ctx, r.db), items)
	})
}

func (r *GrantsRepo) updateAll(ctx context.Context, q querier, items []grants.GrantRequest) error {
	for _, g := range items {
		if err := r.update(ctx, q, g); err != nil {
			return err
		}
	}
	return nil
}

func (r *GrantsRepo) update(ctx context.Context, q querier, g grants.GrantRequest) error {
	res, err := q.ExecContext(ctx, `
		UPDATE grant_requests
		SET
			client_id = $3,
			status = $4,
			redirect_uri = $5,
			state = $6,
			user_id = $7,
			expires_at = $8,
			tokens_issued_at = $9,
			updated_at = $10,
			version = version + 1
		WHERE id = $1 AND version = $2
	`,
		g.ID,
		g.Version,
		toNullString(g.ClientID),
		string(g.Status),
		g.RedirectURI,
		g.State,
		g.UserID,
		g.ExpiresAt,
		toNullTime(g.TokensIssuedAt),
		g.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// cero filas: o no existe o cambió la versión
	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM grant_requests WHERE id = $1)`, g.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return storage.ErrNotFound
	}
	return storage.ErrVersionConflict
}

func (r *GrantsRepo) GetByID(ctx context.Context, id string) (grants.GrantRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return grants.GrantRequest{}, storage.ErrNotFound
	}
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+grantColumns+`
		FROM grant_requests
		WHERE id = $1
	`, id)

	g, err := scanGrant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grants.GrantRequest{}, storage.ErrNotFound
		}
		return grants.GrantRequest{}, err
	}
	return g, nil
}

func (r *GrantsRepo) ListExpired(ctx context.Context, now time.Time) ([]grants.GrantRequest, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		SELECT `+grantColumns+`
		FROM grant_requests
		WHERE expires_at <= $1
		  AND status NOT IN ($2, $3)
		ORDER BY expires_at ASC
	`, now, string(grants.StatusExpired), string(grants.StatusRevoked))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]grants.GrantRequest, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGrant(s scanner) (grants.GrantRequest, error) {
	var (
		g              grants.GrantRequest
		clientID       sql.NullString
		status         string
		tokensIssuedAt sql.NullTime
	)
	if err := s.Scan(
		&g.ID,
		&clientID,
		&status,
		&g.RedirectURI,
		&g.State,
		&g.UserID,
		&g.ExpiresAt,
		&tokensIssuedAt,
		&g.Version,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return grants.GrantRequest{}, err
	}
	g.ClientID = clientID.String
	g.Status = grants.Status(status)
	g.TokensIssuedAt = fromNullTime(tokensIssuedAt)
	return g, nil
}
