package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rdbackup/config"
)

func validConfig() *config.Config {
	return &config.Config{
		FigshareToken:   "token",
		FigshareBaseURL: "https://api.example.org/v2",
		StateGraph:      "https://data.example.org/portal/self-test",
		OutputDirectory: "./snapshots",
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	missingToken := validConfig()
	missingToken.FigshareToken = ""
	assert.Error(t, missingToken.Validate())

	badURL := validConfig()
	badURL.FigshareBaseURL = "nicht-mal-eine-url"
	assert.Error(t, badURL.Validate())

	missingGraph := validConfig()
	missingGraph.StateGraph = ""
	assert.Error(t, missingGraph.Validate())
}

func TestWorkersFallsBackToCPUCount(t *testing.T) {
	cfg := validConfig()
	cfg.Parallelism = 6
	assert.Equal(t, 6, cfg.Workers())

	cfg.Parallelism = 0
	assert.Greater(t, cfg.Workers(), 0)
}

func TestDSN(t *testing.T) {
	cfg := validConfig()
	cfg.DBHost = "localhost"
	cfg.DBPort = 5432
	cfg.DBUser = "rdbackup"
	cfg.DBPassword = "geheim"
	cfg.DBName = "runs"

	assert.Equal(t,
		"host=localhost user=rdbackup password=geheim dbname=runs port=5432 sslmode=disable",
		cfg.DSN())
	assert.True(t, cfg.LedgerEnabled())
	assert.False(t, cfg.S3Enabled())
}
