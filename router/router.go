// Package router implements the request router (C5): it maps a completed
// request to a server config and location, and decides what the core
// should do next. Grounded on the teacher's mdnsRegistry radix-tree
// longest-prefix matcher (scon/mdns.go), reused here for location paths
// instead of DNS names.
package router

import (
	"strings"

	"github.com/armon/go-radix"

	"github.com/webserv/webserv/config"
	"github.com/webserv/webserv/httpparse"
	"github.com/webserv/webserv/response"
)

// Kind is the routing outcome variant. Modeled as an explicit enum rather
// than a flag on Response, per the design note "HTTPResponse::stop_server
// back-channel": /stop is a distinct routing result, not a bit on every
// response.
type Kind int

const (
	KindStatic Kind = iota
	KindUpload
	KindDelete
	KindCGI
	KindRespond     // Response is already fully built (redirect, 404, 405, ...)
	KindStopThenRespond
)

// Decision is the result of routing a completed request.
type Decision struct {
	Kind     Kind
	Server   *config.ServerConfig
	Location *config.Location // nil when no location matched (file-server root fallback)
	Response *response.Response
}

// Registry indexes every configured ServerConfig by port and builds one
// radix tree of location paths per server for §4.4's longest-prefix match.
type Registry struct {
	byPort map[uint16][]*boundServer
}

type boundServer struct {
	cfg  *config.ServerConfig
	tree *radix.Tree
}

func NewRegistry(file *config.File) *Registry {
	r := &Registry{byPort: map[uint16][]*boundServer{}}
	for _, sc := range file.Servers {
		tree := radix.New()
		for _, loc := range sc.Locations {
			tree.Insert(loc.Path, loc)
		}
		bs := &boundServer{cfg: sc, tree: tree}
		r.byPort[sc.Port] = append(r.byPort[sc.Port], bs)
	}
	return r
}

// serverFor returns the first ServerConfig bound to port. §9 open question
// 1 flags the source's hard-coded port 8080 lookup as a bug; this takes
// the accepting listener's bound port explicitly instead.
func (r *Registry) serverFor(port uint16) *boundServer {
	servers := r.byPort[port]
	if len(servers) == 0 {
		return nil
	}
	return servers[0]
}

// matchLocation finds the longest-prefix Location whose path either equals
// the URI or is a prefix of it ending at a '/' boundary, using the radix
// tree's LongestPrefix lookup and re-trying against a shorter candidate
// whenever the longest match found isn't actually boundary-aligned.
func matchLocation(tree *radix.Tree, uri string) *config.Location {
	candidate := uri
	for candidate != "" {
		prefix, v, ok := tree.LongestPrefix(candidate)
		if !ok {
			return nil
		}
		boundary := prefix == "/" || prefix == uri ||
			strings.HasSuffix(prefix, "/") ||
			(len(uri) > len(prefix) && uri[len(prefix)] == '/')
		if boundary {
			return v.(*config.Location)
		}
		candidate = prefix[:len(prefix)-1]
	}
	return nil
}

const stopURI = "/stop"

// Route implements the routing contract of §4.4.
func (r *Registry) Route(port uint16, req *httpparse.Request) Decision {
	if req.URI == stopURI {
		resp := response.New(200)
		resp.SetBody([]byte("server stopping"))
		resp.StopServer = true
		return Decision{Kind: KindStopThenRespond, Response: resp}
	}

	bs := r.serverFor(port)
	if bs == nil {
		resp := response.Error(500, nil)
		return Decision{Kind: KindRespond, Response: resp}
	}

	loc := matchLocation(bs.tree, req.URI)
	if loc == nil {
		return Decision{Kind: KindStatic, Server: bs.cfg, Location: nil}
	}

	if loc.Redirect != nil {
		resp := response.New(loc.Redirect.Status)
		resp.Headers.Set("Location", loc.Redirect.Target)
		resp.SetBody(nil)
		return Decision{Kind: KindRespond, Server: bs.cfg, Location: loc, Response: resp}
	}

	method := config.Method(req.Method)
	if !loc.Allows(method) {
		resp := response.Error(405, bs.cfg.ErrorPages)
		return Decision{Kind: KindRespond, Server: bs.cfg, Location: loc, Response: resp}
	}

	switch req.Method {
	case httpparse.MethodPost:
		return Decision{Kind: KindUpload, Server: bs.cfg, Location: loc}
	case httpparse.MethodDelete:
		return Decision{Kind: KindDelete, Server: bs.cfg, Location: loc}
	case httpparse.MethodGet:
		if loc.CGIEnabled && strings.HasSuffix(req.URI, loc.CGIExtension) {
			return Decision{Kind: KindCGI, Server: bs.cfg, Location: loc}
		}
	}

	return Decision{Kind: KindStatic, Server: bs.cfg, Location: loc}
}
