package config

import (
	"fmt"
	"net"

	"gopkg.in/yaml.v3"
)

// yamlFile mirrors the on-disk YAML shape; converted into the public
// File/ServerConfig/Location types after unmarshaling so the wire format
// stays decoupled from the core's types.
type yamlFile struct {
	Servers []yamlServer `yaml:"servers"`
}

type yamlServer struct {
	Host              string            `yaml:"host"`
	Port              uint16            `yaml:"port"`
	ServerName        string            `yaml:"server_name"`
	ClientMaxBodySize int64             `yaml:"client_max_body_size"`
	ErrorPages        map[int]string    `yaml:"error_pages"`
	Locations         []yamlLocation    `yaml:"locations"`
}

type yamlLocation struct {
	Path         string          `yaml:"path"`
	Root         string          `yaml:"root"`
	Index        string          `yaml:"index"`
	Methods      []string        `yaml:"methods"`
	UploadDir    string          `yaml:"upload_path"`
	AutoIndex    bool            `yaml:"autoindex"`
	CGIEnabled   bool            `yaml:"cgi_enabled"`
	CGIExtension string          `yaml:"cgi_extension"`
	CGIPath      string          `yaml:"cgi_path"`
	Redirect     *yamlRedirect   `yaml:"redirect"`
}

type yamlRedirect struct {
	Status int    `yaml:"status"`
	Target string `yaml:"target"`
}

func parseYAML(raw []byte) (*File, error) {
	var yf yamlFile
	if err := yaml.Unmarshal(raw, &yf); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}

	f := &File{}
	for _, ys := range yf.Servers {
		host := net.ParseIP(ys.Host)
		if host == nil {
			if ys.Host == "" {
				host = net.IPv4zero
			} else {
				return nil, fmt.Errorf("yaml: invalid host %q", ys.Host)
			}
		}

		sc := &ServerConfig{
			Host:              host,
			Port:              ys.Port,
			ServerName:        ys.ServerName,
			ClientMaxBodySize: ys.ClientMaxBodySize,
			ErrorPages:        ys.ErrorPages,
		}
		for _, yl := range ys.Locations {
			loc := &Location{
				Path:         yl.Path,
				Root:         yl.Root,
				Index:        yl.Index,
				UploadDir:    yl.UploadDir,
				AutoIndex:    yl.AutoIndex,
				CGIEnabled:   yl.CGIEnabled,
				CGIExtension: yl.CGIExtension,
				CGIPath:      yl.CGIPath,
				Methods:      map[Method]bool{},
			}
			for _, m := range yl.Methods {
				loc.Methods[Method(m)] = true
			}
			if yl.Redirect != nil {
				loc.Redirect = &Redirect{Status: yl.Redirect.Status, Target: yl.Redirect.Target}
			}
			sc.Locations = append(sc.Locations, loc)
		}
		f.Servers = append(f.Servers, sc)
	}
	return f, nil
}
