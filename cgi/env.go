package cgi

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/webserv/webserv/config"
	"github.com/webserv/webserv/httpparse"
)

// buildEnv constructs the CGI/1.1 environment per §4.7. scriptPath is the
// absolute on-disk path to the script; scriptName/pathInfo are the URI
// split at the script boundary (§9 open question 4's fix: the source
// populates both with the full URI, which is wrong for scripts addressed
// with extra path components).
func buildEnv(loc *config.Location, req *httpparse.Request, scriptPath, scriptName, pathInfo string) []string {
	contentType, _ := req.Header("content-type")

	env := []string{
		"REQUEST_METHOD=" + string(req.Method),
		"SERVER_PROTOCOL=" + string(req.Version),
		"SCRIPT_FILENAME=" + scriptPath,
		"SCRIPT_NAME=" + scriptName,
		"PATH_INFO=" + pathInfo,
		"PATH_TRANSLATED=" + pathTranslated(loc, scriptPath, pathInfo),
		"QUERY_STRING=" + req.QueryString,
		"CONTENT_LENGTH=" + fmt.Sprint(len(req.Body)),
		"CONTENT_TYPE=" + contentType,
		"SERVER_SOFTWARE=Webserv/1.0",
		"GATEWAY_INTERFACE=CGI/1.1",
		"REDIRECT_STATUS=200",
	}

	if host, ok := req.Header("host"); ok {
		env = append(env, "SERVER_NAME="+host)
	}

	for name, value := range req.Headers() {
		if name == "content-length" || name == "content-type" {
			continue
		}
		env = append(env, "HTTP_"+headerEnvName(name)+"="+value)
	}

	return env
}

// pathTranslated resolves PATH_INFO to the filesystem location it would
// name under loc's root, per CGI/1.1 — a standard variable the original
// CGIHandler.cpp never sets. With no extra path info the script itself is
// the translated path.
func pathTranslated(loc *config.Location, scriptPath, pathInfo string) string {
	if pathInfo == "" {
		return scriptPath
	}
	return filepath.Join(loc.Root, pathInfo)
}

// headerEnvName converts a lowercased header name ("x-forwarded-for") into
// its CGI environment suffix ("X_FORWARDED_FOR").
func headerEnvName(name string) string {
	upper := strings.ToUpper(name)
	return strings.ReplaceAll(upper, "-", "_")
}

// splitScriptPath implements the fix for §9 open question 4: find the
// prefix of uri ending in cgiExtension and treat everything after it as
// PATH_INFO, instead of the source's bug of assigning the full URI to both.
func splitScriptPath(uri, cgiExtension string) (scriptName, pathInfo string) {
	idx := strings.Index(uri, cgiExtension)
	if idx < 0 {
		return uri, ""
	}
	boundary := idx + len(cgiExtension)
	return uri[:boundary], uri[boundary:]
}
