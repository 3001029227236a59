package response

import (
	"fmt"
	"os"

	"github.com/flosch/pongo2/v6"
)

// cannedTemplate renders the built-in error body for any status code.
// Grounded on original_source/src/http/Utils.cpp's generic error-HTML
// builder, which is not limited to 403/404/500 — any non-2xx status gets a
// body through the same helper (see SPEC_FULL.md "supplemented features").
var cannedTemplate = pongo2.Must(pongo2.FromString(`<html>
<head><title>{{ status }} {{ reason }}</title></head>
<body>
<h1>{{ status }} {{ reason }}</h1>
<hr><address>Webserv/1.0</address>
</body>
</html>
`))

// ErrorBody renders the body for an error response: the server config's
// configured error page for this status if one exists and is readable,
// otherwise the built-in canned template.
func ErrorBody(status int, configuredPages map[int]string) []byte {
	if path, ok := configuredPages[status]; ok {
		if data, err := os.ReadFile(path); err == nil {
			return data
		}
	}
	return cannedErrorBody(status)
}

func cannedErrorBody(status int) []byte {
	out, err := cannedTemplate.Execute(pongo2.Context{
		"status": status,
		"reason": ReasonPhrase(status),
	})
	if err != nil {
		// template execution failure should never happen for this static
		// template; fall back to a minimal literal body rather than panic
		return []byte(fmt.Sprintf("%d %s", status, ReasonPhrase(status)))
	}
	return []byte(out)
}

// Error builds a complete error Response: status line, default headers,
// and the configured-or-canned HTML body.
func Error(status int, configuredPages map[int]string) *Response {
	r := New(status)
	r.SetBody(ErrorBody(status, configuredPages))
	return r
}
