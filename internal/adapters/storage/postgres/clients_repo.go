package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gnap-as/internal/domain/clients"
	"gnap-as/internal/ports/storage"
)

type ClientsRepo struct {
	db *sql.DB
}

func NewClientsRepo(db *sql.DB) *ClientsRepo {
	return &ClientsRepo{db: db}
}

const clientColumns = `id, instance_id, display_name, key_id, key_jwk, created_at, updated_at`

func (r *ClientsRepo) Create(ctx context.Context, c clients.Client) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		c.ID,
		toNullString(c.InstanceID),
		c.DisplayName,
		toNullString(c.KeyID),
		c.KeyJWK,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *ClientsRepo) Update(ctx context.Context, c clients.Client) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE clients
		SET
			instance_id = $2,
			display_name = $3,
			key_id = $4,
			key_jwk = $5,
			updated_at = $6
		WHERE id = $1
	`,
		c.ID,
		toNullString(c.InstanceID),
		c.DisplayName,
		toNullString(c.KeyID),
		c.KeyJWK,
		c.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr(err)
	}
	return requireRow(res)
}

func (r *ClientsRepo) GetByID(ctx context.Context, id string) (clients.Client, error) {
	return r.getBy(ctx, "id", id)
}

func (r *ClientsRepo) GetByInstanceID(ctx context.Context, instanceID string) (clients.Client, error) {
	return r.getBy(ctx, "instance_id", instanceID)
}

func (r *ClientsRepo) GetByKeyID(ctx context.Context, keyID string) (clients.Client, error) {
	return r.getBy(ctx, "key_id", keyID)
}

// getBy: column es siempre una constante de este archivo.
func (r *ClientsRepo) getBy(ctx context.Context, column, value string) (clients.Client, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return clients.Client{}, storage.ErrNotFound
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE `+column+` = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, value)

	var (
		c          clients.Client
		instanceID sql.NullString
		keyID      sql.NullString
	)
	if err := row.Scan(
		&c.ID,
		&instanceID,
		&c.DisplayName,
		&keyID,
		&c.KeyJWK,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return clients.Client{}, storage.ErrNotFound
		}
		return clients.Client{}, err
	}
	c.InstanceID = instanceID.String
	c.KeyID = keyID.String
	return c, nil
}

type InformationRepo struct {
	db *sql.DB
}

func NewInformationRepo(db *sql.DB) *InformationRepo {
	return &InformationRepo{db: db}
}

const informationColumns = `id, client_id, name, uri, logo_uri, created_at, updated_at`

func (r *InformationRepo) Create(ctx context.Context, info clients.Information) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO client_information (`+informationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		info.ID,
		info.ClientID,
		info.Name,
		info.URI,
		info.LogoURI,
		info.CreatedAt,
		info.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *InformationRepo) Update(ctx context.Context, info clients.Information) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE client_information
		SET
			name = $2,
			uri = $3,
			logo_uri = $4,
			updated_at = $5
		WHERE id = $1
	`,
		info.ID,
		info.Name,
		info.URI,
		info.LogoURI,
		info.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *InformationRepo) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM client_information WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *InformationRepo) GetByID(ctx context.Context, id string) (clients.Information, error) {
	return r.getBy(ctx, "id", id)
}

func (r *InformationRepo) GetByClientID(ctx context.Context, clientID string) (clients.Information, error) {
	return r.getBy(ctx, "client_id", clientID)
}

func (r *InformationRepo) getBy(ctx context.Context, column, value string) (clients.Information, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return clients.Information{}, storage.ErrNotFound
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+informationColumns+`
		FROM client_information
		WHERE `+column+` = $1
	`, value)

	var info clients.Information
	if err := row.Scan(
		&info.ID,
		&info.ClientID,
		&info.Name,
		&info.URI,
		&info.LogoURI,
		&info.CreatedAt,
		&info.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return clients.Information{}, storage.ErrNotFound
		}
		return clients.Information{}, err
	}
	return info, nil
}
