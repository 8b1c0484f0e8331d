package app_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/linemk/storefront/internal/app"
	"github.com/linemk/storefront/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	dsn := app.DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Name:     "storefront",
	})
	assert.Equal(t, "postgres://postgres:secret@db:5432/storefront?sslmode=disable", dsn)
}

func TestNewApp_NoPassword(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Host: "db", Port: 5432, User: "postgres", Name: "storefront"}}

	_, err := app.NewApp(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	assert.ErrorContains(t, err, "DB_PASSWORD")
}
