package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"gnap-as/internal/domain/interactions"
	"gnap-as/internal/ports/storage"
)

type InteractionsRepo struct {
	db *sql.DB
}

func NewInteractionsRepo(db *sql.DB) *InteractionsRepo {
	return &InteractionsRepo{db: db}
}

const interactionColumns = `id, grant_id, type, url, nonce, hash_method, user_code, expires_at, created_at`

// el batch comparte created_at; el CASE mantiene el orden de los modos.
const interactionOrder = `
	ORDER BY created_at ASC,
		CASE type
			WHEN 'REDIRECT' THEN 0
			WHEN 'APP' THEN 1
			WHEN 'USER_CODE' THEN 2
			ELSE 3
		END,
		id ASC`

func (r *InteractionsRepo) CreateAll(ctx context.Context, items []interactions.Interaction) error {
	q := conn(ctx, r.db)
	for _, it := range items {
		_, err := q.ExecContext(ctx, `
			INSERT INTO interactions (`+interactionColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
			it.ID,
			it.GrantID,
			string(it.Type),
			it.URL,
			it.Nonce,
			string(it.HashMethod),
			toNullString(it.UserCode),
			it.ExpiresAt,
			it.CreatedAt,
		)
		if err != nil {
			return mapWriteErr(err)
		}
	}
	return nil
}

func (r *InteractionsRepo) GetByID(ctx context.Context, id string) (interactions.Interaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return interactions.Interaction{}, storage.ErrNotFound
	}
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+interactionColumns+`
		FROM interactions
		WHERE id = $1
	`, id)
	return scanInteraction(row)
}

func (r *InteractionsRepo) GetByUserCode(ctx context.Context, code string) (interactions.Interaction, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return interactions.Interaction{}, storage.ErrNotFound
	}
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+interactionColumns+`
		FROM interactions
		WHERE user_code = $1 AND type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, code, string(interactions.TypeUserCode))
	return scanInteraction(row)
}

func (r *InteractionsRepo) ListActiveByGrant(ctx context.Context, grantID string, now time.Time) ([]interactions.Interaction, error) {
	return r.list(ctx, `
		SELECT `+interactionColumns+`
		FROM interactions
		WHERE grant_id = $1 AND expires_at > $2
	`+interactionOrder, grantID, now)
}

func (r *InteractionsRepo) ListByGrant(ctx context.Context, grantID string) ([]interactions.Interaction, error) {
	return r.list(ctx, `
		SELECT `+interactionColumns+`
		FROM interactions
		WHERE grant_id = $1
	`+interactionOrder, grantID)
}

func (r *InteractionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM interactions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *InteractionsRepo) list(ctx context.Context, query string, args ...any) ([]interactions.Interaction, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]interactions.Interaction, 0)
	for rows.Next() {
		it, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInteraction(s scanner) (interactions.Interaction, error) {
	var (
		it         interactions.Interaction
		typ        string
		hashMethod string
		userCode   sql.NullString
	)
	if err := s.Scan(
		&it.ID,
		&it.GrantID,
		&typ,
		&it.URL,
		&it.Nonce,
		&hashMethod,
		&userCode,
		&it.ExpiresAt,
		&it.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return interactions.Interaction{}, storage.ErrNotFound
		}
		return interactions.Interaction{}, err
	}
	it.Type = interactions.Type(typ)
	it.HashMethod = interactions.HashMethod(hashMethod)
	it.UserCode = userCode.String
	return it, nil
}
