package autoload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesDefaultsToDotEnv(t *testing.T) {
	t.Setenv("DOTENV_FILES", "")
	assert.Equal(t, []string{".env"}, Files())
}

func TestFilesSplitsList(t *testing.T) {
	t.Setenv("DOTENV_FILES", " a.env, ,b.env ")
	assert.Equal(t, []string{"a.env", "b.env"}, Files())
}

func TestLoadAppliesWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.env")
	content := "SAMPLE_SOURCE_TEST=http\nexport CADENCE_TEST='2s'\n#comment\nEXISTING_TEST=fromfile\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("EXISTING_TEST", "existing")
	t.Setenv("SAMPLE_SOURCE_TEST", "")
	os.Unsetenv("SAMPLE_SOURCE_TEST")
	t.Setenv("CADENCE_TEST", "")
	os.Unsetenv("CADENCE_TEST")

	require.NoError(t, Load(path))

	assert.Equal(t, "http", os.Getenv("SAMPLE_SOURCE_TEST"))
	assert.Equal(t, "2s", os.Getenv("CADENCE_TEST"))
	assert.Equal(t, "existing", os.Getenv("EXISTING_TEST"))
}

func TestLoadIgnoresMissingFiles(t *testing.T) {
	assert.NoError(t, Load(filepath.Join(t.TempDir(), "does-not-exist.env")))
}
