package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "site.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
servers:
  - port: 80
    locations:
      - path: /
        root: .
`), 0644))

	f, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, f.Servers, 1)

	nginxPath := filepath.Join(dir, "site.conf")
	require.NoError(t, os.WriteFile(nginxPath, []byte(`
server {
	listen 80;
	location / {
		root .;
	}
}
`), 0644))

	f2, err := Load(nginxPath)
	require.NoError(t, err)
	assert.Len(t, f2.Servers, 1)
}

func TestLoadRejectsConfigWithNoLocations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.conf")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
	listen 80;
}
`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
