package fileserver

import (
	"os"
	"path"

	"github.com/webserv/webserv/config"
	"github.com/webserv/webserv/response"
)

// Get implements the §4.5 static GET contract: resolve the filesystem path,
// enforce the traversal and readability rules, and serve a file, an index
// file, an autoindex listing, or an error response. loc may be nil, meaning
// no location matched (§4.4 rule 1); the URI is then resolved against an
// empty root, i.e. relative to the process's working directory, with no
// index file and no autoindex. ServerConfig has no root of its own.
func Get(sc *config.ServerConfig, loc *config.Location, uri string) *response.Response {
	if IsTraversal(uri) {
		return response.Error(403, sc.ErrorPages)
	}

	root := ""
	if loc != nil {
		root = loc.Root
	}
	fsPath := Resolve(&config.Location{Path: locPath(loc), Root: root}, uri)
	if IsTraversal(fsPath) {
		return response.Error(403, sc.ErrorPages)
	}

	info, err := os.Stat(fsPath)
	if err != nil {
		return response.Error(404, sc.ErrorPages)
	}

	if info.IsDir() {
		return getDir(sc, loc, fsPath, uri)
	}
	return getFile(sc, fsPath, info)
}

func locPath(loc *config.Location) string {
	if loc == nil {
		return "/"
	}
	return loc.Path
}

func getDir(sc *config.ServerConfig, loc *config.Location, dir, requestURI string) *response.Response {
	if loc != nil && loc.Index != "" {
		indexPath := path.Join(dir, loc.Index)
		if info, err := os.Stat(indexPath); err == nil && info.Mode().IsRegular() {
			return getFile(sc, indexPath, info)
		}
	}

	autoindex := loc != nil && loc.AutoIndex
	if !autoindex {
		return response.Error(403, sc.ErrorPages)
	}

	allowDelete := loc != nil && loc.Allows(config.MethodDelete)
	body, err := renderAutoindex(dir, requestURI, allowDelete)
	if err != nil {
		return response.Error(403, sc.ErrorPages)
	}
	resp := response.New(200)
	resp.SetBody(body)
	return resp
}

func getFile(sc *config.ServerConfig, fsPath string, info os.FileInfo) *response.Response {
	if !info.Mode().IsRegular() || !isReadable(info) {
		return response.Error(403, sc.ErrorPages)
	}
	body, err := os.ReadFile(fsPath)
	if err != nil {
		return response.Error(403, sc.ErrorPages)
	}
	resp := response.New(200)
	resp.Headers.Set("Content-Type", response.ContentTypeForPath(fsPath))
	resp.SetBody(body)
	return resp
}

// isReadable checks the world/group/owner read bits on the file's mode,
// a conservative stand-in for the source's access(2) check.
func isReadable(info os.FileInfo) bool {
	return info.Mode().Perm()&0o444 != 0
}
