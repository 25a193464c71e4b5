package main

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-bootstrap/internal/bootstrap"
	"agent-bootstrap/internal/config"
	"agent-bootstrap/internal/deps"
)

// isolateEnv unsets every variable the commands read or write and restores
// the previous values when the test ends.
func isolateEnv(t *testing.T) {
	t.Helper()

	names := []string{
		"BOOTSTRAP_TEMP_ROOT",
		"LLM_API_KEY",
		"PERSONAL_ACCESS_TOKEN",
		"LOG_LEVEL",
		"LOG_FORMAT",
	}
	for _, s := range config.Defaults {
		names = append(names, s.Name)
	}
	for _, s := range config.Forced {
		names = append(names, s.Name)
	}

	for _, name := range names {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

// listenLocal binds an ephemeral loopback port and points HOST and PORT at it.
func listenLocal(t *testing.T) net.Listener {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", strconv.Itoa(l.Addr().(*net.TCPAddr).Port))
	return l
}

func TestConfigShowMasksSecrets(t *testing.T) {
	isolateEnv(t)
	t.Setenv("LLM_API_KEY", "sk-secret")
	t.Setenv("PERSONAL_ACCESS_TOKEN", "abc123")
	t.Setenv("DEFAULT_AGENT", "LocAgent")

	out, err := execute(t, "config", "show", "--env-file", missingEnvFile(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"default_agent": "LocAgent"`)
	assert.NotContains(t, out, "sk-secret")
	assert.NotContains(t, out, "abc123")
}

func TestConfigShowReadsEnvFile(t *testing.T) {
	isolateEnv(t)
	envPath := filepath.Join(t.TempDir(), "agent.env")
	require.NoError(t, os.WriteFile(envPath, []byte("MAX_ITERATIONS=7\n"), 0644))

	out, err := execute(t, "config", "show", "--env-file", envPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"max_iterations": 7`)
}

func TestCheckPrintsReport(t *testing.T) {
	isolateEnv(t)
	root := t.TempDir()
	t.Setenv("BOOTSTRAP_TEMP_ROOT", root)

	l := listenLocal(t)
	require.NoError(t, l.Close())

	out, err := execute(t, "check", "--env-file", missingEnvFile(t))
	require.NoError(t, err)

	var report deps.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Empty(t, report.Missing)
	assert.Subset(t, report.Present, deps.DefaultRequired)

	for _, name := range config.ScratchDirectories {
		_, err := os.Stat(filepath.Join(root, name))
		assert.NoError(t, err, name)
	}
}

func TestCheckFailsWhenPortIsTaken(t *testing.T) {
	isolateEnv(t)
	t.Setenv("BOOTSTRAP_TEMP_ROOT", t.TempDir())
	listenLocal(t)

	out, err := execute(t, "check", "--env-file", missingEnvFile(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, bootstrap.ErrMissingDependencies)

	var report deps.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Contains(t, report.Missing, deps.Listener)
}

func TestServeFailsWhenPortIsTaken(t *testing.T) {
	isolateEnv(t)
	t.Setenv("BOOTSTRAP_TEMP_ROOT", t.TempDir())
	listenLocal(t)

	_, err := execute(t, "serve", "--env-file", missingEnvFile(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, bootstrap.ErrMissingDependencies)
	assert.Contains(t, err.Error(), deps.Listener)
}
