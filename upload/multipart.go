package upload

import (
	"bytes"
	"net/url"
	"strings"
)

func urlDecode(s string) (string, error) {
	return url.QueryUnescape(s)
}

// FormField is one decoded part of either a multipart/form-data body or a
// single urlencoded pair, per §4.6.
type FormField struct {
	Name        string
	Filename    string
	ContentType string
	Value       []byte
	IsFile      bool
}

// ParseMultipart splits body into its named parts using the declared
// boundary. Grounded on original_source/src/http/PostHandler.cpp's
// "locate every --<boundary> occurrence" strategy rather than Go's
// mime/multipart.Reader, to keep byte-for-byte control over trailing CRLF
// trimming as the spec describes it.
func ParseMultipart(body []byte, boundary string) ([]FormField, error) {
	delim := []byte("--" + boundary)
	var fields []FormField

	parts := splitOnDelimiter(body, delim)
	for _, part := range parts {
		part = bytes.TrimPrefix(part, []byte("\r\n"))
		if len(part) == 0 || bytes.Equal(part, []byte("--")) || bytes.HasPrefix(part, []byte("--")) {
			continue
		}
		part = bytes.TrimSuffix(part, []byte("\r\n"))

		sep := bytes.Index(part, []byte("\r\n\r\n"))
		if sep < 0 {
			continue
		}
		headerBlock := string(part[:sep])
		value := part[sep+4:]

		field := FormField{Value: value}
		for _, line := range strings.Split(headerBlock, "\r\n") {
			name, params := parseHeaderLine(line)
			if strings.EqualFold(name, "Content-Disposition") {
				field.Name = params["name"]
				field.Filename = params["filename"]
				field.IsFile = params["filename"] != ""
			} else if strings.EqualFold(name, "Content-Type") {
				field.ContentType = strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
			}
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// splitOnDelimiter returns every segment strictly between consecutive
// occurrences of delim, so callers never see the delimiter bytes.
func splitOnDelimiter(body, delim []byte) [][]byte {
	var out [][]byte
	rest := body
	for {
		idx := bytes.Index(rest, delim)
		if idx < 0 {
			break
		}
		rest = rest[idx+len(delim):]
		next := bytes.Index(rest, delim)
		if next < 0 {
			out = append(out, rest)
			break
		}
		out = append(out, rest[:next])
	}
	return out
}

// parseHeaderLine splits "Name: value; k=\"v\"; k2=v2" into the header name
// and a lowercase-keyed parameter map (values unquoted).
func parseHeaderLine(line string) (string, map[string]string) {
	params := map[string]string{}
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", params
	}
	name := strings.TrimSpace(line[:colon])
	rest := line[colon+1:]
	for _, seg := range strings.Split(rest, ";") {
		seg = strings.TrimSpace(seg)
		eq := strings.IndexByte(seg, '=')
		if eq < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(seg[:eq]))
		val := strings.Trim(strings.TrimSpace(seg[eq+1:]), `"`)
		params[key] = val
	}
	return name, params
}

// ParseURLEncoded decodes an application/x-www-form-urlencoded body into
// its key/value fields, per §4.6: split on '&', each pair on the first '=',
// '+' becomes a space before URL-decoding both sides.
func ParseURLEncoded(body []byte) ([]FormField, error) {
	var fields []FormField
	for _, pair := range strings.Split(string(body), "&") {
		if pair == "" {
			continue
		}
		var key, value string
		if eq := strings.IndexByte(pair, '='); eq >= 0 {
			key, value = pair[:eq], pair[eq+1:]
		} else {
			key = pair
		}
		key = strings.ReplaceAll(key, "+", " ")
		value = strings.ReplaceAll(value, "+", " ")
		decodedKey, err := urlDecode(key)
		if err != nil {
			return nil, err
		}
		decodedValue, err := urlDecode(value)
		if err != nil {
			return nil, err
		}
		fields = append(fields, FormField{Name: decodedKey, Value: []byte(decodedValue)})
	}
	return fields, nil
}
