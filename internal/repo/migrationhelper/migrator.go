package migrationhelper

import (
	"context"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"
)

// ExpiredSessionPurger removes sessions past their expiry.
type ExpiredSessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type Migrator struct {
	migrator *migrate.Migrate
	sessions ExpiredSessionPurger
	logger   *zap.Logger
}

func NewMigrator(m *migrate.Migrate, sessions ExpiredSessionPurger, logger *zap.Logger) (*Migrator, error) {
	if m == nil {
		return nil, errors.New("migration object is nil")
	}
	if sessions == nil {
		return nil, errors.New("session purger is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Migrator{
		migrator: m,
		sessions: sessions,
		logger:   logger,
	}, nil
}

func (m *Migrator) Migrate() error {
	if err := m.PerformStandardMigrations(); err != nil {
		return err
	}
	if err := m.PerformCustomMigrations(); err != nil {
		return err
	}

	m.logger.Info("all migrations succeeded")

	return nil
}

func (m *Migrator) PerformStandardMigrations() error {
	m.logger.Info("running migrations")
	if err := m.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		m.logger.Error("error running up migration", zap.Error(err))
		return err
	}
	return nil
}

// PerformCustomMigrations drops sessions that expired while the service
// was down.
func (m *Migrator) PerformCustomMigrations() error {
	purged, err := m.sessions.PurgeExpired(context.Background())
	if err != nil {
		return err
	}

	if purged == 0 {
		m.logger.Info("no expired sessions to purge")
		return nil
	}

	m.logger.Info("purged expired sessions", zap.Int64("count", purged))
	return nil
}
