// Package upload implements the POST upload handler (C7): size
// preconditions, urlencoded/multipart decoding, filename derivation, and
// collision-free persistence. Grounded on
// original_source/src/http/PostHandler.cpp.
package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/webserv/webserv/config"
	"github.com/webserv/webserv/httpparse"
	"github.com/webserv/webserv/response"
)

// allowedExtensions is the file-upload allow-list from §4.6.
var allowedExtensions = map[string]bool{
	".txt": true, ".html": true, ".css": true, ".js": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".pdf": true, ".ico": true,
}

// Handler executes upload requests against one location, optionally
// recording every saved file in a Ledger (nil disables the ledger).
type Handler struct {
	Ledger *Ledger
}

// Handle implements the §4.6 contract. req must already be routed to loc
// and known to be a POST.
func (h *Handler) Handle(sc *config.ServerConfig, loc *config.Location, req *httpparse.Request) *response.Response {
	if int64(len(req.Body)) > sc.ClientMaxBodySize {
		return response.Error(413, sc.ErrorPages)
	}

	contentType, _ := req.Header("content-type")
	mediaType, params := parseContentType(contentType)

	switch {
	case mediaType == "application/x-www-form-urlencoded":
		return h.handleURLEncoded(sc, req.Body)
	case mediaType == "multipart/form-data":
		boundary := params["boundary"]
		if boundary == "" {
			return response.Error(400, sc.ErrorPages)
		}
		return h.handleMultipart(sc, loc, req.Body, boundary)
	default:
		return response.Error(400, sc.ErrorPages)
	}
}

func parseContentType(header string) (string, map[string]string) {
	parts := strings.Split(header, ";")
	mediaType := strings.TrimSpace(strings.ToLower(parts[0]))
	params := map[string]string{}
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		eq := strings.IndexByte(p, '=')
		if eq < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(p[:eq]))
		val := strings.Trim(strings.TrimSpace(p[eq+1:]), `"`)
		params[key] = val
	}
	return mediaType, params
}

func (h *Handler) handleURLEncoded(sc *config.ServerConfig, body []byte) *response.Response {
	fields, err := ParseURLEncoded(body)
	if err != nil {
		return response.Error(400, sc.ErrorPages)
	}
	var b strings.Builder
	b.WriteString("<html><body><p>received fields:</p><ul>")
	for _, f := range fields {
		fmt.Fprintf(&b, "<li>%s</li>", htmlEscape(f.Name))
	}
	b.WriteString("</ul></body></html>")

	resp := response.New(200)
	resp.SetBody([]byte(b.String()))
	return resp
}

func (h *Handler) handleMultipart(sc *config.ServerConfig, loc *config.Location, body []byte, boundary string) *response.Response {
	fields, err := ParseMultipart(body, boundary)
	if err != nil {
		return response.Error(400, sc.ErrorPages)
	}

	baseOverride := ""
	for _, f := range fields {
		if !f.IsFile && f.Name == "description" {
			if trimmed := strings.TrimSpace(string(f.Value)); trimmed != "" {
				baseOverride = strings.ReplaceAll(trimmed, " ", "_")
			}
		}
	}

	if loc.UploadDir != "" {
		if err := os.MkdirAll(loc.UploadDir, 0755); err != nil {
			return response.Error(500, sc.ErrorPages)
		}
	}

	var saved []string
	for _, f := range fields {
		if !f.IsFile {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Filename))
		if !allowedExtensions[ext] {
			continue
		}
		if int64(len(f.Value)) > sc.ClientMaxBodySize {
			continue
		}

		base := strings.TrimSuffix(filepath.Base(f.Filename), ext)
		base = strings.ReplaceAll(base, " ", "_")
		if baseOverride != "" {
			base = strings.TrimSuffix(baseOverride, filepath.Ext(baseOverride))
		}

		name := collisionFreeName(h.Ledger, loc.UploadDir, base, ext)
		full := filepath.Join(loc.UploadDir, name)
		if err := os.WriteFile(full, f.Value, 0644); err != nil {
			continue
		}
		if h.Ledger != nil {
			h.Ledger.Put(Record{
				Filename:    name,
				Size:        int64(len(f.Value)),
				ContentType: f.ContentType,
				SavedAt:     time.Now(),
			})
		}
		saved = append(saved, name)
	}

	if len(saved) == 0 {
		resp := response.New(400)
		resp.SetBody([]byte("<html><body><p>no file saved</p></body></html>"))
		return resp
	}

	var b strings.Builder
	b.WriteString("<html><body><p>saved:</p><ul>")
	for _, name := range saved {
		fmt.Fprintf(&b, "<li>%s</li>", htmlEscape(name))
	}
	b.WriteString("</ul></body></html>")

	resp := response.New(200)
	resp.SetBody([]byte(b.String()))
	return resp
}

// collisionFreeName finds the first of base+ext, base_1+ext, base_2+ext, ...
// that is free both on disk and in the ledger, per §4.6 and the testable
// property that no saved upload overwrites a pre-existing file. The ledger
// check catches names that were uploaded and later deleted from disk (by
// the DELETE handler) but would otherwise silently collide with their own
// history; a nil ledger disables that half of the check.
func collisionFreeName(ledger *Ledger, dir, base, ext string) string {
	taken := func(name string) bool {
		return exists(filepath.Join(dir, name)) || (ledger != nil && ledger.Has(name))
	}
	name := base + ext
	if !taken(name) {
		return name
	}
	for i := 1; ; i++ {
		candidate := base + "_" + strconv.Itoa(i) + ext
		if !taken(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
