package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"docvault/internal/config"
)

func TestBuildPostgresDSN(t *testing.T) {
	base := func(mutate func(c *config.DatabaseConfig)) config.DatabaseConfig {
		c := config.DatabaseConfig{Host: "db", Port: "5432", User: "vault", Name: "docvault"}
		mutate(&c)
		return c
	}

	tests := []struct {
		name    string
		config  config.DatabaseConfig
		want    string
		wantErr bool
	}{
		{
			name:   "minimal",
			config: base(func(c *config.DatabaseConfig) {}),
			want:   "postgres://vault@db:5432/docvault",
		},
		{
			name: "password and sslmode",
			config: base(func(c *config.DatabaseConfig) {
				c.Password = "s3cret"
				c.SSLMode = "require"
			}),
			want: "postgres://vault:s3cret@db:5432/docvault?sslmode=require",
		},
		{
			name: "application name and connect timeout",
			config: base(func(c *config.DatabaseConfig) {
				c.ApplicationName = "docvault"
				c.ConnectTimeout = config.Duration(5 * time.Second)
			}),
			want: "postgres://vault@db:5432/docvault?application_name=docvault&connect_timeout=5",
		},
		{
			name: "sub-second timeout rounds up",
			config: base(func(c *config.DatabaseConfig) {
				c.ConnectTimeout = config.Duration(200 * time.Millisecond)
			}),
			want: "postgres://vault@db:5432/docvault?connect_timeout=1",
		},
		{
			name: "ipv6 host",
			config: base(func(c *config.DatabaseConfig) {
				c.Host = "::1"
			}),
			want: "postgres://vault@[::1]:5432/docvault",
		},
		{name: "missing host", config: base(func(c *config.DatabaseConfig) { c.Host = "" }), wantErr: true},
		{name: "missing port", config: base(func(c *config.DatabaseConfig) { c.Port = "" }), wantErr: true},
		{name: "missing user", config: base(func(c *config.DatabaseConfig) { c.User = "" }), wantErr: true},
		{name: "missing name", config: base(func(c *config.DatabaseConfig) { c.Name = "" }), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPostgresDSN(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
		return db, err
	}
	t.Cleanup(func() { sqlOpen = orig })
}

func TestOpen(t *testing.T) {
	conf := config.DatabaseConfig{
		Driver:          config.DatabaseDriverPostgres,
		Host:            "localhost",
		Port:            "5432",
		User:            "vault",
		Password:        "pass",
		Name:            "docvault",
		MaxOpenConns:    7,
		MaxIdleConns:    3,
		ConnMaxLifetime: config.Duration(5 * time.Minute),
		ConnMaxIdleTime: config.Duration(time.Minute),
	}

	t.Run("connects and applies pool settings", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		stubOpen(t, db, nil)
		mock.ExpectPing()

		core, logs := observer.New(zap.InfoLevel)
		got, err := Open(context.Background(), conf, zap.New(core).Sugar())
		require.NoError(t, err)
		assert.Equal(t, 7, got.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())

		entries := logs.FilterMessage("database connected").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "db_connected", entries[0].ContextMap()["event"])
		assert.Equal(t, "database", entries[0].LoggerName)
	})

	t.Run("open error", func(t *testing.T) {
		stubOpen(t, nil, errors.New("open error"))

		got, err := Open(context.Background(), conf, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sql open: open error")
		assert.Nil(t, got)
	})

	t.Run("ping error closes the pool", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)
		mock.ExpectPing().WillReturnError(errors.New("ping failed"))
		mock.ExpectClose()

		got, err := Open(context.Background(), conf, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db ping: ping failed")
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("memory driver has no sql connection", func(t *testing.T) {
		c := conf
		c.Driver = config.DatabaseDriverMemory
		got, err := Open(context.Background(), c, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "memory")
		assert.Nil(t, got)
	})

	t.Run("invalid DSN", func(t *testing.T) {
		got, err := Open(context.Background(), config.DatabaseConfig{}, nil)
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}
