package slogpretty_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/linemk/storefront/internal/lib/logger/handlers/slogpretty"
	"github.com/stretchr/testify/assert"
)

func TestPrettyHandler(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	opts := slogpretty.PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelInfo}}
	log := slog.New(opts.NewPrettyHandler(&buf))

	log.With(slog.String("op", "service.BasketService.Add")).
		Error("failed to lock product", slog.Any("error", errors.New("connection reset")))

	out := buf.String()
	assert.Contains(t, out, "ERROR:")
	assert.Contains(t, out, "failed to lock product")
	assert.Contains(t, out, `"op": "service.BasketService.Add"`)
	assert.Contains(t, out, `"error": "connection reset"`)
}

func TestPrettyHandler_Level(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	opts := slogpretty.PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelInfo}}
	log := slog.New(opts.NewPrettyHandler(&buf))

	log.Debug("hidden")
	assert.Empty(t, buf.String())
}
