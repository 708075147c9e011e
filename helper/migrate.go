package helper

import (
	"errors"
	"fmt"
	"net/url"

	"roombook/config"
	"roombook/infras/postgres"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // migrate driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file:// source
	"github.com/rs/zerolog/log"
)

// Migration actions accepted by Runner and the migrate command.
const (
	ActionUp     = "up"
	ActionDown   = "down"
	ActionDrop   = "drop"
	ActionStepUp = "step-up"
)

var ErrUnknownAction = errors.New("unknown migration action")

func open(cfg *config.Config) (*migrate.Migrate, error) {
	extra := url.Values{}
	if cfg.DB.Postgres.MigrationTable != "" {
		extra.Set("x-migrations-table", cfg.DB.Postgres.MigrationTable)
	}

	mig, err := migrate.New(cfg.DB.Postgres.MigrationSource, postgres.DSN(cfg, cfg.DB.Postgres.Write, extra))
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	return mig, nil
}

// Runner applies one migration action against the write database. Nothing to apply is not an error.
func Runner(cfg *config.Config, action string) error {
	var step func(*migrate.Migrate) error

	switch action {
	case ActionUp:
		step = (*migrate.Migrate).Up
	case ActionStepUp:
		step = func(m *migrate.Migrate) error { return m.Steps(1) }
	case ActionDown:
		step = func(m *migrate.Migrate) error { return m.Steps(-1) }
	case ActionDrop:
		step = (*migrate.Migrate).Down
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	mig, err := open(cfg)
	if err != nil {
		return err
	}

	defer func() {
		if srcErr, dbErr := mig.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Failed closing migrator")
		}
	}()

	if err := step(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", action, err)
	}

	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}

	log.Info().Str("action", action).Uint("version", version).Bool("dirty", dirty).Msg("Migration finished")

	return nil
}

// Up applies every pending migration. Used for auto-migrate on boot.
func Up(cfg *config.Config) error {
	return Runner(cfg, ActionUp)
}
