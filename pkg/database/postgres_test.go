package database

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yardimli/learn-with-ai-sub000/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "cal", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=cal sslmode=disable", dsn)
}

func TestReady(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	mock.ExpectPing()
	require.NoError(t, Ready(context.Background(), db, time.Second))
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Error(t, Ready(context.Background(), nil, time.Second))
}
