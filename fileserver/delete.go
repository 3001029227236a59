package fileserver

import (
	"os"

	"github.com/webserv/webserv/config"
	"github.com/webserv/webserv/response"
)

const deleteAckBody = `<html><body><p>deleted</p></body></html>`

// Delete implements the §4.5 DELETE contract: URL-decode, reject traversal,
// reject a missing target or a directory, unlink the file, and acknowledge.
func Delete(sc *config.ServerConfig, loc *config.Location, rawURI string) *response.Response {
	decoded, err := URLDecode(rawURI)
	if err != nil || IsTraversal(decoded) {
		return response.Error(403, sc.ErrorPages)
	}

	fsPath := Resolve(loc, decoded)
	if IsTraversal(fsPath) {
		return response.Error(403, sc.ErrorPages)
	}

	info, err := os.Stat(fsPath)
	if err != nil {
		return response.Error(404, sc.ErrorPages)
	}
	if info.IsDir() {
		return response.Error(403, sc.ErrorPages)
	}

	if err := os.Remove(fsPath); err != nil {
		return response.Error(500, sc.ErrorPages)
	}

	resp := response.New(200)
	resp.SetBody([]byte(deleteAckBody))
	return resp
}
