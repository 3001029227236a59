// Package fileserver implements the static file server (C6): path
// resolution, path-traversal defense, autoindex, and the DELETE handler.
// Grounded on original_source/src/http/FileServer.cpp for resolution and
// safety rules.
package fileserver

import (
	"net/url"
	"path"
	"strings"

	"github.com/webserv/webserv/config"
)

// Resolve computes the on-disk path for uri within loc, per §4.5: strip
// the leading '/' from the URI, strip the location's own path prefix (if
// not "/") and any following '/', join with root, and collapse repeated
// slashes.
func Resolve(loc *config.Location, uri string) string {
	rel := strings.TrimPrefix(uri, "/")
	if loc.Path != "/" {
		trimmedLocPath := strings.TrimPrefix(loc.Path, "/")
		rel = strings.TrimPrefix(rel, trimmedLocPath)
		rel = strings.TrimPrefix(rel, "/")
	}
	joined := path.Join(loc.Root, rel)
	return collapseSlashes(joined)
}

func collapseSlashes(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// IsTraversal reports whether the raw or resolved path contains a "../" or
// "/.." component — the only safety check the spec requires; it must run
// on both the raw URI and the resolved path, and before any filesystem
// access.
func IsTraversal(s string) bool {
	return strings.Contains(s, "../") || strings.HasSuffix(s, "/..") || s == ".."
}

// URLDecode performs percent-decoding, used only for DELETE per §4.5
// ("URL-decode only for DELETE (matches source)").
func URLDecode(s string) (string, error) {
	return url.QueryUnescape(s)
}
