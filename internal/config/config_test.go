package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearSchedulerEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SCHEDULER_DATABASE_URL",
		"SCHEDULER_LOG_FORMAT",
		"SCHEDULER_LOG_LEVEL",
		"SCHEDULER_DEFAULT_BUDGET_SECONDS",
		"SCHEDULER_HORIZON_MULTIPLIER",
		"SCHEDULER_LOCAL_SEARCH_RESTARTS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	clearSchedulerEnv(t)

	_, err := Load("")
	require.Error(t, err)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	clearSchedulerEnv(t)
	t.Setenv("SCHEDULER_DATABASE_URL", "postgres://localhost/prod3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60*time.Second, cfg.DefaultBudget)
	assert.Equal(t, 2, cfg.HorizonMultiplier)
	assert.Equal(t, 4, cfg.LocalSearchRestarts)
}

func TestLoad_EnvOverridesFileOverrides(t *testing.T) {
	clearSchedulerEnv(t)
	t.Setenv("SCHEDULER_DATABASE_URL", "postgres://localhost/prod3")

	dir := t.TempDir()
	path := dir + "/scheduler.yaml"
	require.NoError(t, os.WriteFile(path, []byte("horizon_multiplier: 5\n"), 0o644))

	t.Setenv("SCHEDULER_HORIZON_MULTIPLIER", "9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.HorizonMultiplier) // env wins over file
}

func TestLoad_FileOverrideAppliesWhenEnvAbsent(t *testing.T) {
	clearSchedulerEnv(t)
	t.Setenv("SCHEDULER_DATABASE_URL", "postgres://localhost/prod3")

	dir := t.TempDir()
	path := dir + "/scheduler.yaml"
	require.NoError(t, os.WriteFile(path, []byte("horizon_multiplier: 5\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.HorizonMultiplier)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	clearSchedulerEnv(t)
	t.Setenv("SCHEDULER_DATABASE_URL", "postgres://localhost/prod3")

	_, err := Load("/no/such/file.yaml")
	require.NoError(t, err)
}
