package postgres_test

import (
	"net/url"
	"testing"

	"roombook/config"
	"roombook/infras/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	endpoint := config.PostgresEndpoint{
		Host:     "db.internal",
		Port:     "5432",
		Username: "booker",
		Password: "p@ss/word",
		Name:     "roombook",
		SSLMode:  "disable",
	}

	tests := []struct {
		name     string
		prefix   string
		extra    url.Values
		wantPath string
		wantArgs map[string]string
	}{
		{
			name:     "plain",
			wantPath: "/roombook",
			wantArgs: map[string]string{"sslmode": "disable"},
		},
		{
			name:     "prefixed with migrations table",
			prefix:   "staging_",
			extra:    url.Values{"x-migrations-table": {"schema_migrations"}},
			wantPath: "/staging_roombook",
			wantArgs: map[string]string{"sslmode": "disable", "x-migrations-table": "schema_migrations"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.DB.Postgres.Prefix = tt.prefix

			parsed, err := url.Parse(postgres.DSN(cfg, endpoint, tt.extra))
			require.NoError(t, err)

			assert.Equal(t, "postgres", parsed.Scheme)
			assert.Equal(t, "db.internal:5432", parsed.Host)
			assert.Equal(t, tt.wantPath, parsed.Path)
			assert.Equal(t, "booker", parsed.User.Username())

			password, _ := parsed.User.Password()
			assert.Equal(t, "p@ss/word", password)

			for key, want := range tt.wantArgs {
				assert.Equal(t, want, parsed.Query().Get(key), key)
			}
		})
	}
}
