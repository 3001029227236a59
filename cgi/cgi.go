// Package cgi implements the CGI/1.1 sub-process runner (C8): environment
// construction, two-pipe process execution, wall-clock timeout, and
// response composition from the script's header-block-plus-body output.
// Grounded on original_source/src/cgi/CGIHandler.cpp; process spawning
// follows the teacher's os/exec usage (scon/util/exec.go) rather than the
// source's raw fork/exec/pipe/waitpid sequence, since Go's exec.Cmd already
// gives non-blocking-equivalent concurrent I/O via goroutines.
package cgi

import (
	"bytes"
	"io"
	"os/exec"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/webserv/webserv/config"
	"github.com/webserv/webserv/httpparse"
	"github.com/webserv/webserv/response"
)

// Timeout is the wall-clock limit on a CGI script's stdout drain, per §4.7.
const Timeout = 5 * time.Second

// Run executes loc's CGI interpreter against the resolved scriptPath and
// composes the resulting Response. A failure to spawn the script, a failed
// or timed-out drain of its output, or a non-zero exit yields 500. Errors
// writing the request body to the script's stdin are not checked.
func Run(loc *config.Location, req *httpparse.Request, scriptPath string) *response.Response {
	scriptName, pathInfo := splitScriptPath(req.URI, loc.CGIExtension)
	env := buildEnv(loc, req, scriptPath, scriptName, pathInfo)

	cmd := exec.Command(loc.CGIPath, scriptPath)
	cmd.Dir = path.Dir(scriptPath)
	cmd.Env = env

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return response.Error(500, nil)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return response.Error(500, nil)
	}

	if err := cmd.Start(); err != nil {
		return response.Error(500, nil)
	}

	go func() {
		stdin.Write(req.Body)
		stdin.Close()
	}()

	output, ok := drain(cmd, stdout)
	if !ok {
		return response.Error(500, nil)
	}

	if err := cmd.Wait(); err != nil {
		return response.Error(500, nil)
	}

	return parseOutput(output)
}

// drain reads the script's entire stdout within Timeout, killing and
// reaping the process if it runs long. Reimplements the source's "100ms
// readiness wait, retry, 5s wall-clock SIGKILL" loop as a goroutine plus a
// single select, since Go has no non-blocking read primitive to poll.
func drain(cmd *exec.Cmd, stdout io.ReadCloser) ([]byte, bool) {
	done := make(chan struct{})
	var buf bytes.Buffer
	var readErr error

	go func() {
		_, readErr = io.Copy(&buf, stdout)
		close(done)
	}()

	select {
	case <-done:
		if readErr != nil {
			return nil, false
		}
		return buf.Bytes(), true
	case <-time.After(Timeout):
		cmd.Process.Kill()
		<-done
		cmd.Wait()
		return nil, false
	}
}

// parseOutput splits the script's raw output at the first CRLFCRLF or
// LFLF separator into a header block and a body, per §4.7.
func parseOutput(output []byte) *response.Response {
	sep, sepLen := findHeaderSeparator(output)
	if sep < 0 {
		resp := response.New(200)
		resp.SetBody(output)
		return resp
	}

	headerBlock := string(output[:sep])
	body := output[sep+sepLen:]
	headerBlock = strings.ReplaceAll(headerBlock, "\r\n", "\n")

	resp := response.New(200)
	for _, line := range strings.Split(headerBlock, "\n") {
		if line == "" {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		name := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])

		if strings.EqualFold(name, "Status") && len(value) >= 3 {
			if status, err := strconv.Atoi(value[:3]); err == nil {
				resp.Status = status
				resp.StatusMessage = response.ReasonPhrase(status)
			}
			continue
		}
		resp.Headers.Set(name, value)
	}
	resp.SetBody(body)
	return resp
}

func findHeaderSeparator(output []byte) (idx, length int) {
	if i := bytes.Index(output, []byte("\r\n\r\n")); i >= 0 {
		return i, 4
	}
	if i := bytes.Index(output, []byte("\n\n")); i >= 0 {
		return i, 2
	}
	return -1, 0
}
