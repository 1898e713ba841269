package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jen9x/TapRide/internal/config"
	"github.com/Jen9x/TapRide/pkg/logger"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	cfg := config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "missing", "tapride.db"),
	}

	err := run(cfg, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize database")
}
