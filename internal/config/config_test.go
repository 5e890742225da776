package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "site:\n  title: Test Blog\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Test Blog", cfg.Site.Title)
	require.Equal(t, "/", cfg.Site.BaseURL)
	require.Equal(t, "content", cfg.Content.Dir)
	require.Equal(t, "public", cfg.Build.Output)
	require.Equal(t, 4, cfg.Build.Workers)
	require.Equal(t, "localhost:8080", cfg.Preview.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("SITE_TITLE", "From Env")
	path := writeConfig(t, "site:\n  title: ${SITE_TITLE}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "From Env", cfg.Site.Title)
}

func TestLoad_RejectsContentEqualsOutput(t *testing.T) {
	path := writeConfig(t, "content:\n  dir: site\nbuild:\n  output: site\n")

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must differ")
}

func TestLoad_ParsesRebuildInterval(t *testing.T) {
	path := writeConfig(t, "preview:\n  rebuild_interval: 5m\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, cfg.Preview.RebuildEvery())
}

func TestLoad_RejectsBadRebuildInterval(t *testing.T) {
	path := writeConfig(t, "preview:\n  rebuild_interval: soon\n")

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rebuild interval")
}

func TestRebuildEvery_EmptyDisables(t *testing.T) {
	require.Zero(t, Default().Preview.RebuildEvery())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "site: [broken\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestWrite_RefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	require.NoError(t, cfg.Write(path, false))
	require.Error(t, cfg.Write(path, false))
	require.NoError(t, cfg.Write(path, true))
}

func TestWrite_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Site.Title = "Round Trip"
	require.NoError(t, cfg.Write(path, false))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Round Trip", loaded.Site.Title)
}
