package postgres

import (
	"net"
	"net/url"
	"time"

	"roombook/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/rs/zerolog/log"
)

const (
	driverName = "postgres"

	maxIdleConnections = 10
	maxOpenConnections = 10
)

// Connection splits queries between the read replica and the primary.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres

	return &Connection{
		Read:  connect("read", DSN(cfg, pg.Read, nil), pg.MaxRetry, pg.RetryWaitTime),
		Write: connect("write", DSN(cfg, pg.Write, nil), pg.MaxRetry, pg.RetryWaitTime),
	}
}

// DSN builds a postgres URL for the endpoint. The configured prefix is prepended to the
// database name so several environments can share one server.
func DSN(cfg *config.Config, endpoint config.PostgresEndpoint, extra url.Values) string {
	query := url.Values{}
	if endpoint.SSLMode != "" {
		query.Set("sslmode", endpoint.SSLMode)
	}

	for key, values := range extra {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	dsn := url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(endpoint.Username, endpoint.Password),
		Host:     net.JoinHostPort(endpoint.Host, endpoint.Port),
		Path:     "/" + cfg.DB.Postgres.Prefix + endpoint.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func connect(name, dsn string, maxRetry, waitSeconds int) *sqlx.DB {
	var lastErr error

	for attempt := 1; attempt <= max(maxRetry, 1); attempt++ {
		db, err := sqlx.Connect(driverName, dsn)
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnections)
			db.SetMaxOpenConns(maxOpenConnections)

			log.Info().Str("name", name).Int("attempt", attempt).Msg("Connected to database")

			return db
		}

		lastErr = err

		log.Warn().Err(err).Str("name", name).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitSeconds) * time.Second)
	}

	log.Fatal().Err(lastErr).Str("name", name).Msg("Giving up connecting to database")

	return nil
}
