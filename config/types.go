// Package config holds the parsed, immutable server configuration consumed
// by the core engine. The parsers that produce it (nginx-like and YAML)
// live in this package too, but nothing downstream imports them directly —
// only the ServerConfig/Location types and Load.
package config

import (
	"fmt"
	"net"
)

// Method is one of the HTTP methods a location can allow.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodDelete Method = "DELETE"
)

// Redirect is a configured location-level redirect.
type Redirect struct {
	Status int
	Target string
}

// Location is one routing rule attached to a URI prefix.
type Location struct {
	Path      string
	Root      string
	Index     string
	Methods   map[Method]bool
	UploadDir string
	AutoIndex bool

	CGIEnabled   bool
	CGIExtension string
	CGIPath      string

	Redirect *Redirect
}

// Allows reports whether m is permitted at this location. A location with
// no configured methods directive allows nothing — isMethodAllowed in
// ServerConfig.cpp looks up the method in an empty vector and always
// returns false, so every request 405s until methods are configured.
func (l *Location) Allows(m Method) bool {
	return l.Methods[m]
}

func (l *Location) validate() error {
	if l.Path == "" || l.Path[0] != '/' {
		return fmt.Errorf("location path %q must begin with /", l.Path)
	}
	if l.CGIEnabled && (l.CGIExtension == "" || l.CGIPath == "") {
		return fmt.Errorf("location %q: cgi_enabled requires cgi_extension and cgi_path", l.Path)
	}
	return nil
}

const defaultMaxBodySize = 1 << 20 // 1 MiB

// ServerConfig is one virtual server, bound to a single host:port.
type ServerConfig struct {
	Host               net.IP
	Port               uint16
	ServerName         string
	ClientMaxBodySize  int64
	ErrorPages         map[int]string
	Locations          []*Location
}

func (s *ServerConfig) validate() error {
	if len(s.Locations) == 0 {
		return fmt.Errorf("server %s:%d: at least one location is required", s.Host, s.Port)
	}
	for _, loc := range s.Locations {
		if err := loc.validate(); err != nil {
			return fmt.Errorf("server %s:%d: %w", s.Host, s.Port, err)
		}
	}
	if s.ClientMaxBodySize == 0 {
		s.ClientMaxBodySize = defaultMaxBodySize
	}
	if s.ErrorPages == nil {
		s.ErrorPages = map[int]string{}
	}
	return nil
}

// ListenAddr is the dial string the listener set binds to.
func (s *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// File is the full parsed configuration: every virtual server defined in
// the config file, grouped implicitly by port at routing time.
type File struct {
	Servers []*ServerConfig
}

func (f *File) validate() error {
	if len(f.Servers) == 0 {
		return fmt.Errorf("config defines no servers")
	}
	for _, s := range f.Servers {
		if err := s.validate(); err != nil {
			return err
		}
	}
	return nil
}
