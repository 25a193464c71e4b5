package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestApplyEnvironmentKeepsPresetValues(t *testing.T) {
	env := MapEnvironment{
		"PORT":          "9999",
		"DEFAULT_AGENT": "ReadOnlyAgent",
		"LLM_MODEL":     "",
	}

	require.NoError(t, ApplyEnvironment(env, zap.NewNop()))

	assert.Equal(t, "9999", env["PORT"])
	assert.Equal(t, "ReadOnlyAgent", env["DEFAULT_AGENT"])
	// present but empty still counts as set
	assert.Equal(t, "", env["LLM_MODEL"])

	assert.Equal(t, "0.0.0.0", env["HOST"])
	assert.Equal(t, "30", env["MAX_ITERATIONS"])
}

func TestApplyEnvironmentDefaultsEveryAbsentVariable(t *testing.T) {
	env := MapEnvironment{}
	require.NoError(t, ApplyEnvironment(env, zap.NewNop()))

	for _, s := range Defaults {
		assert.Equal(t, s.Value, env[s.Name], s.Name)
	}
}

func TestApplyEnvironmentRootsPathsUnderTempRoot(t *testing.T) {
	root := t.TempDir()
	env := MapEnvironment{"BOOTSTRAP_TEMP_ROOT": root, "FILE_STORE_PATH": "/data/store"}

	require.NoError(t, ApplyEnvironment(env, zap.NewNop()))

	assert.Equal(t, filepath.Join(root, "workspace"), env["WORKSPACE_BASE"])
	// explicit values still win
	assert.Equal(t, "/data/store", env["FILE_STORE_PATH"])
}

func TestApplyEnvironmentOverwritesForced(t *testing.T) {
	env := MapEnvironment{
		"SETTINGS_STORE_TYPE":  "file",
		"DISABLE_FILE_LOGGING": "false",
		"SERVE_FRONTEND":       "true",
	}

	require.NoError(t, ApplyEnvironment(env, zap.NewNop()))

	for _, s := range Forced {
		assert.Equal(t, s.Value, env[s.Name], s.Name)
	}
}

func TestApplyEnvironmentWarnsWithoutAPIKey(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	require.NoError(t, ApplyEnvironment(MapEnvironment{}, zap.New(core)))

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "LLM_API_KEY")
}

func TestApplyEnvironmentWithAPIKey(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	require.NoError(t, ApplyEnvironment(MapEnvironment{"LLM_API_KEY": "sk-test"}, zap.New(core)))

	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("OpenRouter API key found").Len())
}

func TestEnsureDirectoriesIdempotent(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, EnsureDirectories(root))
	require.NoError(t, EnsureDirectories(root))

	for _, name := range ScratchDirectories {
		info, err := os.Stat(filepath.Join(root, name))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureDirectoriesPropagatesErrors(t *testing.T) {
	root := t.TempDir()
	// a regular file where a directory should go
	require.NoError(t, os.WriteFile(filepath.Join(root, "cache"), []byte("x"), 0644))

	err := EnsureDirectories(root)
	assert.Error(t, err)
}

func TestEnsureDirectoriesCreatesExtraPaths(t *testing.T) {
	root := t.TempDir()
	elsewhere := t.TempDir()
	workspace := filepath.Join(elsewhere, "agents", "workspace")
	store := filepath.Join(elsewhere, "store")

	require.NoError(t, EnsureDirectories(root, workspace, "", store))

	for _, dir := range []string{workspace, store} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
