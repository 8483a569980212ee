package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, "deploy.env", "SQLALCHEMY_URL=sqlite://\nDEBUG=true\n")

	values, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite://", values["SQLALCHEMY_URL"])
	assert.Equal(t, "true", values["DEBUG"], "env values stay strings")
}

func TestLoadYAMLFlattens(t *testing.T) {
	path := writeFile(t, "app.yaml", `
debug: true
sqlalchemy:
  url: postgres://localhost/blog
  pool_size: 10
ming:
  connection:
    tz_aware: true
`)

	values, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, true, values["debug"])
	assert.Equal(t, "postgres://localhost/blog", values["sqlalchemy.url"])
	assert.Equal(t, 10, values["sqlalchemy.pool_size"])
	assert.Equal(t, true, values["ming.connection.tz_aware"])
}

func TestLoadJSONFlattens(t *testing.T) {
	path := writeFile(t, "app.json", `{"i18n": {"lang": "de"}, "debug": false}`)

	values, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "de", values["i18n.lang"])
	assert.Equal(t, false, values["debug"])
}

func TestLoadUnknownFormat(t *testing.T) {
	path := writeFile(t, "app.toml", "debug = true")

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestFlattenKeepsLists(t *testing.T) {
	values := Flatten(map[string]any{
		"renderers": []any{"html", "json"},
	})
	assert.Equal(t, []any{"html", "json"}, values["renderers"])
}
