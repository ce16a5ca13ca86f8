package postgres

import (
	"context"
	"database/sql"
	"strings"

	"gnap-as/internal/domain/resources"
)

type ResourcesRepo struct {
	db *sql.DB
}

func NewResourcesRepo(db *sql.DB) *ResourcesRepo {
	return &ResourcesRepo{db: db}
}

func (r *ResourcesRepo) CreateAll(ctx context.Context, items []resources.Resource) error {
	q := conn(ctx, r.db)
	for _, it := range items {
		rec := resources.ToRecord(it)
		_, err := q.ExecContext(ctx, `
			INSERT INTO resources (
				id, grant_id, position, type, resource_server,
				actions, locations, datatypes, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
			rec.ID,
			rec.GrantID,
			rec.Position,
			rec.Type,
			rec.ResourceServer,
			rec.Actions,
			rec.Locations,
			rec.DataTypes,
			rec.CreatedAt,
		)
		if err != nil {
			return mapWriteErr(err)
		}
	}
	return nil
}

func (r *ResourcesRepo) ListByGrant(ctx context.Context, grantID string) ([]resources.Resource, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return nil, nil
	}
	return r.list(ctx, `
		SELECT id, grant_id, position, type, resource_server, actions, locations, datatypes, created_at
		FROM resources
		WHERE grant_id = $1
		ORDER BY position ASC
	`, grantID)
}

// ListByGrantAndServer: los recursos sin server cuentan como resources.DefaultServer.
func (r *ResourcesRepo) ListByGrantAndServer(ctx context.Context, grantID, server string) ([]resources.Resource, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return nil, nil
	}
	return r.list(ctx, `
		SELECT id, grant_id, position, type, resource_server, actions, locations, datatypes, created_at
		FROM resources
		WHERE grant_id = $1
		  AND COALESCE(NULLIF(TRIM(resource_server), ''), $3) = $2
		ORDER BY position ASC
	`, grantID, server, resources.DefaultServer)
}

func (r *ResourcesRepo) list(ctx context.Context, query string, args ...any) ([]resources.Resource, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]resources.Resource, 0)
	for rows.Next() {
		var rec resources.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.GrantID,
			&rec.Position,
			&rec.Type,
			&rec.ResourceServer,
			&rec.Actions,
			&rec.Locations,
			&rec.DataTypes,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, resources.FromRecord(rec))
	}
	return out, rows.Err()
}
