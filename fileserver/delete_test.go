package fileserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webserv/webserv/config"
)

func TestDeleteRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	loc := &config.Location{Path: "/", Root: dir}
	resp := Delete(newSC(), loc, "/a.txt")
	assert.Equal(t, 200, resp.Status)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingFileIs404(t *testing.T) {
	dir := t.TempDir()
	loc := &config.Location{Path: "/", Root: dir}
	resp := Delete(newSC(), loc, "/nope.txt")
	assert.Equal(t, 404, resp.Status)
}

func TestDeleteDirectoryIs403(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	loc := &config.Location{Path: "/", Root: dir}
	resp := Delete(newSC(), loc, "/sub")
	assert.Equal(t, 403, resp.Status)
}

func TestDeleteTraversalIs403(t *testing.T) {
	dir := t.TempDir()
	loc := &config.Location{Path: "/", Root: dir}
	resp := Delete(newSC(), loc, "/../etc/passwd")
	assert.Equal(t, 403, resp.Status)
}

func TestDeleteURLDecodesTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	loc := &config.Location{Path: "/", Root: dir}
	resp := Delete(newSC(), loc, "/my%20file.txt")
	assert.Equal(t, 200, resp.Status)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
