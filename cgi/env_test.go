package cgi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/webserv/webserv/config"
	"github.com/webserv/webserv/httpparse"
)

func TestSplitScriptPathWithExtraPathInfo(t *testing.T) {
	scriptName, pathInfo := splitScriptPath("/cgi-bin/env.py/extra/path", ".py")
	assert.Equal(t, "/cgi-bin/env.py", scriptName)
	assert.Equal(t, "/extra/path", pathInfo)
}

func TestSplitScriptPathNoExtraPathInfo(t *testing.T) {
	scriptName, pathInfo := splitScriptPath("/cgi-bin/env.py", ".py")
	assert.Equal(t, "/cgi-bin/env.py", scriptName)
	assert.Equal(t, "", pathInfo)
}

func TestSplitScriptPathMissingExtensionReturnsWholeURI(t *testing.T) {
	scriptName, pathInfo := splitScriptPath("/cgi-bin/env", ".py")
	assert.Equal(t, "/cgi-bin/env", scriptName)
	assert.Equal(t, "", pathInfo)
}

func TestHeaderEnvNameConvertsDashesAndUppercases(t *testing.T) {
	assert.Equal(t, "X_FORWARDED_FOR", headerEnvName("x-forwarded-for"))
}

func TestBuildEnvIncludesStandardVariables(t *testing.T) {
	loc := &config.Location{CGIExtension: ".py"}
	p := httpparse.New()
	p.Feed([]byte("GET /cgi-bin/env.py?x=1 HTTP/1.1\r\nHost: example.test\r\nX-Custom: yes\r\n\r\n"))
	req := p.Request()

	env := buildEnv(loc, req, "/var/www/cgi-bin/env.py", "/cgi-bin/env.py", "")

	assertContains := func(want string) {
		for _, e := range env {
			if e == want {
				return
			}
		}
		t.Errorf("expected env to contain %q, got %v", want, env)
	}
	assertContains("REQUEST_METHOD=GET")
	assertContains("SCRIPT_FILENAME=/var/www/cgi-bin/env.py")
	assertContains("SCRIPT_NAME=/cgi-bin/env.py")
	assertContains("PATH_TRANSLATED=/var/www/cgi-bin/env.py")
	assertContains("QUERY_STRING=x=1")
	assertContains("SERVER_NAME=example.test")
	assertContains("HTTP_X_CUSTOM=yes")
	assertContains("GATEWAY_INTERFACE=CGI/1.1")
}

func TestBuildEnvPathTranslatedUsesLocationRootWhenPathInfoPresent(t *testing.T) {
	loc := &config.Location{CGIExtension: ".py", Root: "/var/www"}
	p := httpparse.New()
	p.Feed([]byte("GET /cgi-bin/env.py/extra/path HTTP/1.1\r\n\r\n"))
	req := p.Request()

	env := buildEnv(loc, req, "/var/www/cgi-bin/env.py", "/cgi-bin/env.py", "/extra/path")

	for _, e := range env {
		if e == "PATH_TRANSLATED=/var/www/extra/path" {
			return
		}
	}
	t.Errorf("expected PATH_TRANSLATED=/var/www/extra/path in env, got %v", env)
}
