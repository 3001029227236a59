package response

import (
	"strings"
)

// extensionContentTypes is the lowercased-extension → Content-Type table
// from §6.
var extensionContentTypes = map[string]string{
	"html": "text/html; charset=UTF-8",
	"htm":  "text/html; charset=UTF-8",
	"css":  "text/css; charset=UTF-8",
	"js":   "application/javascript; charset=UTF-8",
	"txt":  "text/plain; charset=UTF-8",
	"json": "application/json; charset=UTF-8",
	"xml":  "application/xml; charset=UTF-8",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"pdf":  "application/pdf",
	"zip":  "application/zip",
}

const defaultContentType = "application/octet-stream"

// ContentTypeForPath returns the Content-Type for a file path based on its
// extension (the text after the last '.', lowercased).
func ContentTypeForPath(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 || idx == len(path)-1 {
		return defaultContentType
	}
	ext := strings.ToLower(path[idx+1:])
	if ct, ok := extensionContentTypes[ext]; ok {
		return ct
	}
	return defaultContentType
}
