package main

import (
	"io"
	"log/slog"
	"testing"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()

	cfg := &Config{Environment: "test"}
	cfg.Limiter.RPS = 2
	cfg.Limiter.Burst = 4
	cfg.Limiter.Enabled = true

	return &application{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
