package cgi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webserv/webserv/config"
	"github.com/webserv/webserv/httpparse"
)

func TestFindHeaderSeparatorCRLF(t *testing.T) {
	idx, length := findHeaderSeparator([]byte("Status: 200\r\n\r\nbody"))
	assert.Equal(t, 11, idx)
	assert.Equal(t, 4, length)
}

func TestFindHeaderSeparatorLF(t *testing.T) {
	idx, length := findHeaderSeparator([]byte("Status: 200\n\nbody"))
	assert.Equal(t, 11, idx)
	assert.Equal(t, 2, length)
}

func TestFindHeaderSeparatorMissingReturnsNegative(t *testing.T) {
	idx, _ := findHeaderSeparator([]byte("just a body, no headers"))
	assert.Equal(t, -1, idx)
}

func TestParseOutputWithStatusHeader(t *testing.T) {
	resp := parseOutput([]byte("Status: 201 Created\r\nContent-Type: text/plain\r\n\r\nok"))
	assert.Equal(t, 201, resp.Status)
	assert.Equal(t, "Created", resp.StatusMessage)
	ct, ok := resp.Headers.Get("Content-Type")
	require.True(t, ok)
	assert.Equal(t, "text/plain", ct)
	assert.Equal(t, "ok", string(resp.Body))
}

func TestParseOutputDefaultsTo200WithoutStatusHeader(t *testing.T) {
	resp := parseOutput([]byte("Content-Type: text/html\n\n<p>hi</p>"))
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "<p>hi</p>", string(resp.Body))
}

func TestParseOutputWithNoHeaderBlockTreatsWholeOutputAsBody(t *testing.T) {
	resp := parseOutput([]byte("just raw text"))
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "just raw text", string(resp.Body))
}

func TestRunExecutesScriptAndParsesOutput(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "hello.sh")
	script := "#!/bin/sh\nprintf 'Content-Type: text/plain\\r\\n\\r\\nok'\n"
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0755))

	loc := &config.Location{CGIPath: "/bin/sh", CGIExtension: ".sh"}
	p := httpparse.New()
	p.Feed([]byte("GET /cgi-bin/hello.sh HTTP/1.1\r\n\r\n"))
	req := p.Request()

	resp := Run(loc, req, scriptPath)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "ok", string(resp.Body))
}
