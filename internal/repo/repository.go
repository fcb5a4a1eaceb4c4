package repo

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/tscrond/signin/internal/repo/migrationhelper"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to Postgres and brings the schema up to date.
func Open(connString string, logger *zap.Logger) (*Repository, error) {
	if connString == "" {
		return nil, fmt.Errorf("no conn string provided")
	}

	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	repository, err := NewRepository(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repository, nil
}

func NewRepository(db *sql.DB, logger *zap.Logger) (*Repository, error) {
	repository := &Repository{
		db:     db,
		logger: logger,
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		logger.Error("error creating migrations", zap.Error(err))
		return nil, err
	}

	migrations, err := migrationhelper.NewMigrator(m, repository, logger)
	if err != nil {
		logger.Error("error running migration helper", zap.Error(err))
		return nil, err
	}

	if err := migrations.Migrate(); err != nil {
		return nil, err
	}

	return repository, nil
}

func (repo *Repository) Close() error {
	if repo != nil {
		return repo.db.Close()
	}
	return nil
}
