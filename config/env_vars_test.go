package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryLoadDotEnvSetsUnsetVariables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOCOFORGE_TEST_DOTENV=\"from-file\"\n"), 0o600))

	require.NoError(t, os.Unsetenv("LOCOFORGE_TEST_DOTENV"))
	t.Cleanup(func() { os.Unsetenv("LOCOFORGE_TEST_DOTENV") })

	require.NoError(t, tryLoadDotEnv(path))
	require.Equal(t, "from-file", os.Getenv("LOCOFORGE_TEST_DOTENV"))
}

func TestTryLoadDotEnvNeverOverwritesExistingVariable(t *testing.T) {
	require.NoError(t, os.Setenv("LOCOFORGE_TEST_DOTENV_EXISTING", "from-environment"))
	t.Cleanup(func() { os.Unsetenv("LOCOFORGE_TEST_DOTENV_EXISTING") })

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOCOFORGE_TEST_DOTENV_EXISTING=from-file\n"), 0o600))

	require.NoError(t, tryLoadDotEnv(path))
	require.Equal(t, "from-environment", os.Getenv("LOCOFORGE_TEST_DOTENV_EXISTING"))
}

func TestTryLoadDotEnvMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, tryLoadDotEnv(filepath.Join(dir, ".env")))
}
