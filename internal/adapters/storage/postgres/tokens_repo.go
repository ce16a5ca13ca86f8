package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gnap-as/internal/domain/tokens"
	"gnap-as/internal/ports/storage"
)

type TokensRepo struct {
	db *sql.DB
}

func NewTokensRepo(db *sql.DB) *TokensRepo {
	return &TokensRepo{db: db}
}

const tokenColumns = `id, grant_id, value, access_type, resource_server, client_id, subject, expires_at, created_at, updated_at`

func (r *TokensRepo) Create(ctx context.Context, t tokens.AccessToken) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO access_tokens (`+tokenColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		t.ID,
		t.GrantID,
		t.Value,
		t.AccessType,
		t.ResourceServer,
		t.ClientID,
		t.Subject,
		t.ExpiresAt,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *TokensRepo) GetByValue(ctx context.Context, value string) (tokens.AccessToken, error) {
	if strings.TrimSpace(value) == "" {
		return tokens.AccessToken{}, storage.ErrNotFound
	}
	items, err := r.list(ctx, `
		SELECT `+tokenColumns+`
		FROM access_tokens
		WHERE value = $1
	`, value)
	if err != nil {
		return tokens.AccessToken{}, err
	}
	if len(items) == 0 {
		return tokens.AccessToken{}, storage.ErrNotFound
	}
	return items[0], nil
}

func (r *TokensRepo) ListByGrant(ctx context.Context, grantID string) ([]tokens.AccessToken, error) {
	return r.list(ctx, `
		SELECT `+tokenColumns+`
		FROM access_tokens
		WHERE grant_id = $1
		ORDER BY created_at ASC, resource_server ASC
	`, grantID)
}

func (r *TokensRepo) DeleteByValue(ctx context.Context, value string) (bool, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM access_tokens WHERE value = $1`, value)
	if err != nil {
		return false, err
	}
	n, err := affected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *TokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM access_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *TokensRepo) list(ctx context.Context, query string, args ...any) ([]tokens.AccessToken, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]tokens.AccessToken, 0)
	for rows.Next() {
		var t tokens.AccessToken
		if err := rows.Scan(
			&t.ID,
			&t.GrantID,
			&t.Value,
			&t.AccessType,
			&t.ResourceServer,
			&t.ClientID,
			&t.Subject,
			&t.ExpiresAt,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
