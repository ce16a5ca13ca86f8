package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "gnap_schema_migrations"

// Migrator corre las migraciones embebidas contra dsn.
type Migrator struct {
	m *migrate.Migrate
}

func NewMigrator(dsn string) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("postgres: migrations source: %w", err)
	}

	// golang-migrate usa lib/pq por debajo; abrimos con ese driver.
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open for migrations: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{MigrationsTable: migrationsTable})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate runner: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up aplica todas las pendientes (steps <= 0) o solo steps. Sin cambios no es error.
func (mg *Migrator) Up(steps int) error {
	var err error
	if steps > 0 {
		err = mg.m.Steps(steps)
	} else {
		err = mg.m.Up()
	}
	return ignoreNoChange(err)
}

func (mg *Migrator) Down(steps int) error {
	if steps <= 0 {
		return errors.New("postgres: down requires a positive step count")
	}
	return ignoreNoChange(mg.m.Steps(-steps))
}

// Force fija la versión sin correr migraciones (-1 = sin versión).
func (mg *Migrator) Force(version int) error {
	if version < -1 {
		return fmt.Errorf("postgres: invalid force version %d", version)
	}
	return mg.m.Force(version)
}

// Version devuelve la versión actual; 0 si nunca se migró.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close cierra también la conexión abierta en NewMigrator.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// ignoreNoChange: golang-migrate devuelve os.ErrNotExist cuando Steps llega al borde.
func ignoreNoChange(err error) error {
	if err == nil || errors.Is(err, migrate.ErrNoChange) || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	var short migrate.ErrShortLimit
	if errors.As(err, &short) {
		return nil
	}
	return err
}
