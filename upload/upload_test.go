package upload

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webserv/webserv/config"
	"github.com/webserv/webserv/httpparse"
)

func reqWithBody(method httpparse.Method, contentType string, body []byte) *httpparse.Request {
	p := httpparse.New()
	head := string(method) + " /upload HTTP/1.1\r\nContent-Type: " + contentType +
		"\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n"
	p.Feed([]byte(head))
	p.Feed(body)
	return p.Request()
}

func TestHandleRejectsOversizedBody(t *testing.T) {
	sc := &config.ServerConfig{ClientMaxBodySize: 4, ErrorPages: map[int]string{}}
	loc := &config.Location{Path: "/upload"}
	h := &Handler{}

	req := reqWithBody(httpparse.MethodPost, "application/x-www-form-urlencoded", []byte("toolong=yes"))
	resp := h.Handle(sc, loc, req)
	assert.Equal(t, 413, resp.Status)
}

func TestHandleURLEncodedAck(t *testing.T) {
	sc := &config.ServerConfig{ClientMaxBodySize: 1 << 20, ErrorPages: map[int]string{}}
	loc := &config.Location{Path: "/upload"}
	h := &Handler{}

	req := reqWithBody(httpparse.MethodPost, "application/x-www-form-urlencoded", []byte("a=1"))
	resp := h.Handle(sc, loc, req)
	assert.Equal(t, 200, resp.Status)
}

func TestHandleMultipartSavesAllowedFile(t *testing.T) {
	dir := t.TempDir()
	sc := &config.ServerConfig{ClientMaxBodySize: 1 << 20, ErrorPages: map[int]string{}}
	loc := &config.Location{Path: "/upload", UploadDir: dir}
	h := &Handler{}

	body := buildMultipart("B1",
		"Content-Disposition: form-data; name=\"file\"; filename=\"a.txt\"\r\nContent-Type: text/plain\r\n\r\nhello",
	)
	req := reqWithBody(httpparse.MethodPost, "multipart/form-data; boundary=B1", body)
	resp := h.Handle(sc, loc, req)
	assert.Equal(t, 200, resp.Status)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestHandleMultipartRejectsDisallowedExtension(t *testing.T) {
	dir := t.TempDir()
	sc := &config.ServerConfig{ClientMaxBodySize: 1 << 20, ErrorPages: map[int]string{}}
	loc := &config.Location{Path: "/upload", UploadDir: dir}
	h := &Handler{}

	body := buildMultipart("B1",
		"Content-Disposition: form-data; name=\"file\"; filename=\"a.exe\"\r\nContent-Type: application/octet-stream\r\n\r\nbad",
	)
	req := reqWithBody(httpparse.MethodPost, "multipart/form-data; boundary=B1", body)
	resp := h.Handle(sc, loc, req)
	assert.Equal(t, 400, resp.Status)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHandleMultipartDescriptionOverridesFilename(t *testing.T) {
	dir := t.TempDir()
	sc := &config.ServerConfig{ClientMaxBodySize: 1 << 20, ErrorPages: map[int]string{}}
	loc := &config.Location{Path: "/upload", UploadDir: dir}
	h := &Handler{}

	body := buildMultipart("B1",
		"Content-Disposition: form-data; name=\"description\"\r\n\r\nmy photo",
		"Content-Disposition: form-data; name=\"file\"; filename=\"a.png\"\r\nContent-Type: image/png\r\n\r\nbytes",
	)
	req := reqWithBody(httpparse.MethodPost, "multipart/form-data; boundary=B1", body)
	resp := h.Handle(sc, loc, req)
	assert.Equal(t, 200, resp.Status)

	_, err := os.Stat(filepath.Join(dir, "my_photo.png"))
	assert.NoError(t, err)
}

func TestCollisionFreeNameAvoidsOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644))
	name := collisionFreeName(nil, dir, "a", ".txt")
	assert.Equal(t, "a_1.txt", name)
}

func TestCollisionFreeNameAvoidsLedgerOnlyCollision(t *testing.T) {
	dir := t.TempDir()
	ledger, err := OpenLedger(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	defer ledger.Close()
	require.NoError(t, ledger.Put(Record{Filename: "a.txt"}))

	// a.txt is recorded in the ledger (e.g. uploaded then deleted) but no
	// longer exists on disk; collisionFreeName must still avoid reusing it.
	name := collisionFreeName(ledger, dir, "a", ".txt")
	assert.Equal(t, "a_1.txt", name)
}

func TestHandleMultipartConsultsLedgerForCollisionFreeName(t *testing.T) {
	dir := t.TempDir()
	sc := &config.ServerConfig{ClientMaxBodySize: 1 << 20, ErrorPages: map[int]string{}}
	loc := &config.Location{Path: "/upload", UploadDir: dir}

	ledgerDir := t.TempDir()
	ledger, err := OpenLedger(filepath.Join(ledgerDir, "ledger.db"))
	require.NoError(t, err)
	defer ledger.Close()
	require.NoError(t, ledger.Put(Record{Filename: "a.txt"}))

	h := &Handler{Ledger: ledger}
	body := buildMultipart("B1",
		"Content-Disposition: form-data; name=\"file\"; filename=\"a.txt\"\r\nContent-Type: text/plain\r\n\r\nhello",
	)
	req := reqWithBody(httpparse.MethodPost, "multipart/form-data; boundary=B1", body)
	resp := h.Handle(sc, loc, req)
	assert.Equal(t, 200, resp.Status)

	_, err = os.Stat(filepath.Join(dir, "a_1.txt"))
	assert.NoError(t, err)
}

func TestHandleUnknownContentTypeIs400(t *testing.T) {
	sc := &config.ServerConfig{ClientMaxBodySize: 1 << 20, ErrorPages: map[int]string{}}
	loc := &config.Location{Path: "/upload"}
	h := &Handler{}

	req := reqWithBody(httpparse.MethodPost, "text/plain", []byte("whatever"))
	resp := h.Handle(sc, loc, req)
	assert.Equal(t, 400, resp.Status)
}

func TestParseContentTypeSplitsParams(t *testing.T) {
	mt, params := parseContentType("multipart/form-data; boundary=abc123")
	assert.Equal(t, "multipart/form-data", mt)
	assert.Equal(t, "abc123", params["boundary"])
}
