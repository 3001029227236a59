package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// parseNginxLike implements the project's nginx-like dialect: a sequence of
// `server { ... }` blocks, each holding `location <path> { ... }` blocks.
// Directives are one per line, terminated by an optional trailing `;`.
// Grounded on original_source/src/config/Config.cpp's line-oriented,
// brace-counting approach — there is no off-the-shelf library for this
// bespoke grammar (see DESIGN.md).
func parseNginxLike(raw []byte) (*File, error) {
	lines := cleanLines(string(raw))

	f := &File{}
	for i := 0; i < len(lines); i++ {
		if isBlockStart(lines[i], "server") {
			i++ // move past the "server {" line
			sc := &ServerConfig{Host: net.IPv4zero}
			end, err := parseServerBlock(lines, i, sc)
			if err != nil {
				return nil, err
			}
			f.Servers = append(f.Servers, sc)
			i = end
		}
	}
	return f, nil
}

func cleanLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func isBlockStart(line, blockType string) bool {
	return strings.HasPrefix(line, blockType) && strings.Contains(line, "{")
}

func isBlockEnd(line string) bool {
	return line == "}"
}

// extractValue returns the directive's value with the directive name
// stripped and any trailing ';' removed.
func extractValue(line string) string {
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return ""
	}
	value := strings.TrimSpace(line[idx:])
	value = strings.TrimSuffix(value, ";")
	return strings.TrimSpace(value)
}

func parseServerBlock(lines []string, index int, sc *ServerConfig) (int, error) {
	for ; index < len(lines); index++ {
		line := lines[index]
		if isBlockEnd(line) {
			return index, nil
		}

		switch {
		case strings.HasPrefix(line, "listen"):
			port, err := strconv.Atoi(extractValue(line))
			if err != nil || port <= 0 || port > 65535 {
				return 0, fmt.Errorf("invalid listen port in %q", line)
			}
			sc.Port = uint16(port)
		case strings.HasPrefix(line, "host"):
			ip := net.ParseIP(extractValue(line))
			if ip == nil {
				return 0, fmt.Errorf("invalid host in %q", line)
			}
			sc.Host = ip
		case strings.HasPrefix(line, "server_name"):
			sc.ServerName = extractValue(line)
		case strings.HasPrefix(line, "client_max_body_size"):
			size, err := parseBodySize(extractValue(line))
			if err != nil {
				return 0, err
			}
			sc.ClientMaxBodySize = size
		case isBlockStart(line, "location"):
			loc := &Location{Methods: map[Method]bool{}}
			spaceIdx := strings.IndexAny(line, " \t")
			braceIdx := strings.LastIndex(line, "{")
			if spaceIdx < 0 || braceIdx < 0 || braceIdx < spaceIdx {
				return 0, fmt.Errorf("malformed location line %q", line)
			}
			loc.Path = strings.TrimSpace(line[spaceIdx:braceIdx])
			end, err := parseLocationBlock(lines, index+1, loc)
			if err != nil {
				return 0, err
			}
			sc.Locations = append(sc.Locations, loc)
			index = end
		}
	}
	return 0, fmt.Errorf("unterminated server block")
}

func parseBodySize(value string) (int64, error) {
	lower := strings.ToLower(value)
	if strings.HasSuffix(lower, "m") {
		n, err := strconv.ParseInt(value[:len(value)-1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid client_max_body_size %q", value)
		}
		return n * 1 << 20, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid client_max_body_size %q", value)
	}
	return n, nil
}

func parseLocationBlock(lines []string, index int, loc *Location) (int, error) {
	for ; index < len(lines); index++ {
		line := lines[index]
		if isBlockEnd(line) {
			return index, nil
		}

		switch {
		case strings.HasPrefix(line, "root"):
			loc.Root = extractValue(line)
		case strings.HasPrefix(line, "index"):
			loc.Index = extractValue(line)
		case strings.HasPrefix(line, "methods"):
			for _, m := range strings.Fields(extractValue(line)) {
				loc.Methods[Method(strings.ToUpper(m))] = true
			}
		case strings.HasPrefix(line, "upload_path"):
			loc.UploadDir = extractValue(line)
		case strings.HasPrefix(line, "autoindex"):
			v := strings.ToLower(extractValue(line))
			loc.AutoIndex = v == "on" || v == "true" || v == "yes"
		case strings.HasPrefix(line, "cgi_extension"):
			loc.CGIExtension = extractValue(line)
			loc.CGIEnabled = true
		case strings.HasPrefix(line, "cgi_path"):
			loc.CGIPath = extractValue(line)
		case strings.HasPrefix(line, "return"):
			loc.Redirect = parseRedirect(extractValue(line))
		}
	}
	return 0, fmt.Errorf("unterminated location block for %q", loc.Path)
}

// parseRedirect accepts either "301 /new-path" or a bare target (defaults
// to 302 Found), matching the loose "return" directive the source accepts.
func parseRedirect(value string) *Redirect {
	fields := strings.Fields(value)
	if len(fields) == 2 {
		if status, err := strconv.Atoi(fields[0]); err == nil {
			return &Redirect{Status: status, Target: fields[1]}
		}
	}
	return &Redirect{Status: 302, Target: value}
}
