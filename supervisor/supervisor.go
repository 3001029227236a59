// Package supervisor implements the server supervisor (C10): it owns the
// connection table, drives the reactor's poll loop, runs routing and every
// handler it dispatches to, sweeps idle connections, and performs graceful
// shutdown. This is the connection-lifecycle engine the spec calls out as
// the hard, central part of the design (§1); grounded throughout on
// scon/main.go's signal-handling and logging conventions, with the
// event-loop shape itself original to this package (the teacher has no
// reactor of its own to adapt).
package supervisor

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/webserv/webserv/applog"
	"github.com/webserv/webserv/cgi"
	"github.com/webserv/webserv/conn"
	"github.com/webserv/webserv/config"
	"github.com/webserv/webserv/crashreport"
	"github.com/webserv/webserv/fileserver"
	"github.com/webserv/webserv/httpparse"
	"github.com/webserv/webserv/listener"
	"github.com/webserv/webserv/reactor"
	"github.com/webserv/webserv/response"
	"github.com/webserv/webserv/router"
	"github.com/webserv/webserv/upload"
)

// ClientTimeout is §4.8's CLIENT_TIMEOUT.
const ClientTimeout = 120 * time.Second

const readBufSize = 64 * 1024

// Supervisor owns every long-lived piece of server state.
type Supervisor struct {
	reactor   *reactor.Reactor
	listeners []*listener.Listener
	conns     map[int]*conn.Conn
	registry  *router.Registry
	upload    *upload.Handler

	running bool
}

// New builds listeners for every configured server, binds them to a fresh
// reactor, and constructs the routing table.
func New(file *config.File, ledger *upload.Ledger) (*Supervisor, error) {
	r, err := reactor.New()
	if err != nil {
		return nil, err
	}

	s := &Supervisor{
		reactor:  r,
		conns:    map[int]*conn.Conn{},
		registry: router.NewRegistry(file),
		upload:   &upload.Handler{Ledger: ledger},
	}

	for _, sc := range file.Servers {
		l, err := listener.Open(sc)
		if err != nil {
			return nil, fmt.Errorf("open listener %s: %w", sc.ListenAddr(), err)
		}
		s.listeners = append(s.listeners, l)
		port := sc.Port
		if err := r.Bind(l.FD, reactor.EventRead, func(fd int, _ reactor.Event) {
			s.onListenerReadable(l, port)
		}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ListenAddrs returns every bound address, for the startup banner.
func (s *Supervisor) ListenAddrs() []string {
	addrs := make([]string, len(s.listeners))
	for i, l := range s.listeners {
		addrs[i] = l.Addr.ListenAddr()
	}
	return addrs
}

// Run drives the reactor loop until Shutdown is called or a termination
// signal arrives, per §5's "next iteration of the main loop" shutdown rule.
func (s *Supervisor) Run() error {
	s.running = true

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM)
	signal.Ignore(unix.SIGPIPE)

	for s.running {
		select {
		case <-sigCh:
			logrus.Info("shutting down")
			s.Shutdown()
			return nil
		default:
		}

		s.pollOnce()
		time.Sleep(time.Millisecond)
	}
	return nil
}

// pollOnce runs one reactor iteration under a deferred recover, so a panic
// while handling one connection (a route, fileserver, upload, or CGI bug)
// is reported to Sentry and logged instead of taking the whole server down.
func (s *Supervisor) pollOnce() {
	defer func() {
		if r := recover(); r != nil {
			crashreport.ReportPanic(r)
			logrus.WithField("panic", r).Error("recovered panic in reactor loop")
		}
	}()

	if err := s.reactor.Poll(); err != nil {
		logrus.WithError(err).Error("reactor poll")
	}
	s.sweep()
}

// Shutdown unbinds and closes every client, then every listener, per §5.
func (s *Supervisor) Shutdown() {
	s.running = false
	for fd := range s.conns {
		s.dropConn(fd)
	}
	for _, l := range s.listeners {
		s.reactor.Unbind(l.FD, reactor.EventRead|reactor.EventWrite|reactor.EventError)
		l.Close()
	}
}

func (s *Supervisor) onListenerReadable(l *listener.Listener, port uint16) {
	err := l.AcceptAll(func(fd int, peer net.Addr) {
		s.addClient(fd, port)
	})
	if err != nil {
		logrus.WithError(err).Error("accept")
	}
}

func (s *Supervisor) addClient(fd int, port uint16) {
	c := conn.New(fd, port)
	s.conns[fd] = c
	if err := s.reactor.Bind(fd, reactor.EventRead|reactor.EventError, func(fd int, ev reactor.Event) {
		s.onClientEvent(fd, ev)
	}); err != nil {
		logrus.WithError(err).Error("bind client fd")
		s.dropConn(fd)
	}
}

func (s *Supervisor) onClientEvent(fd int, ev reactor.Event) {
	c, ok := s.conns[fd]
	if !ok {
		return
	}
	switch ev {
	case reactor.EventError:
		s.dropConn(fd)
	case reactor.EventRead:
		s.onReadable(c)
	case reactor.EventWrite:
		s.onWritable(c)
	}
}

func (s *Supervisor) onReadable(c *conn.Conn) {
	buf := make([]byte, readBufSize)
	n, err := unix.Read(c.FD, buf)
	if n == 0 && err == nil {
		s.dropConn(c.FD)
		return
	}
	if err != nil {
		if err == unix.EAGAIN {
			return
		}
		s.dropConn(c.FD)
		return
	}

	c.Touch()
	c.Parser.Feed(buf[:n])

	switch c.Parser.Phase() {
	case httpparse.PhaseError:
		s.respond(c, response.Error(400, nil), false)
	case httpparse.PhaseComplete:
		s.route(c)
	default:
		// needs more data; stay in READING_REQUEST
	}
}

func (s *Supervisor) route(c *conn.Conn) {
	req := c.Parser.Request()
	decision := s.registry.Route(c.Port, req)

	var resp *response.Response
	switch decision.Kind {
	case router.KindRespond, router.KindStopThenRespond:
		resp = decision.Response
	case router.KindStatic:
		resp = fileserver.Get(decision.Server, decision.Location, req.URI)
	case router.KindDelete:
		resp = fileserver.Delete(decision.Server, decision.Location, req.URI)
	case router.KindUpload:
		resp = s.upload.Handle(decision.Server, decision.Location, req)
	case router.KindCGI:
		resp = s.runCGI(decision, req)
	default:
		resp = response.Error(500, nil)
	}

	applog.AccessLog(c.ID, string(req.Method), req.URI, resp.Status, len(resp.Body))
	if resp.Status >= 500 {
		crashreport.Report500(fmt.Errorf("%s %s -> %d", req.Method, req.URI, resp.Status))
	}
	s.respond(c, resp, decision.Kind == router.KindStopThenRespond)
}

func (s *Supervisor) runCGI(decision router.Decision, req *httpparse.Request) *response.Response {
	scriptPath := fileserver.Resolve(decision.Location, req.URI)
	if _, err := os.Stat(scriptPath); err != nil {
		return response.Error(404, decision.Server.ErrorPages)
	}
	scriptPath, err := filepath.Abs(scriptPath)
	if err != nil {
		return response.Error(500, decision.Server.ErrorPages)
	}
	return cgi.Run(decision.Location, req, scriptPath)
}

func (s *Supervisor) respond(c *conn.Conn, resp *response.Response, stopAfter bool) {
	c.QueueResponse(resp.Serialize(), stopAfter)
	if err := s.reactor.Unbind(c.FD, reactor.EventRead); err != nil {
		logrus.WithError(err).Error("unbind read")
	}
	if err := s.reactor.Bind(c.FD, reactor.EventWrite, func(fd int, ev reactor.Event) {
		s.onClientEvent(fd, ev)
	}); err != nil {
		logrus.WithError(err).Error("bind write")
	}
}

func (s *Supervisor) onWritable(c *conn.Conn) {
	n, err := unix.Write(c.FD, c.Remaining())
	if err != nil {
		if err == unix.EAGAIN {
			return
		}
		s.dropConn(c.FD)
		return
	}
	c.Touch()
	c.Advance(n)
	if !c.Pending() {
		stop := c.StopAfterWrite
		s.dropConn(c.FD)
		if stop {
			s.Shutdown()
		}
	}
}

func (s *Supervisor) dropConn(fd int) {
	s.reactor.Unbind(fd, reactor.EventRead|reactor.EventWrite|reactor.EventError)
	unix.Close(fd)
	delete(s.conns, fd)
}

// sweep implements §4.8: drop any connection idle for at least ClientTimeout.
func (s *Supervisor) sweep() {
	for fd, c := range s.conns {
		if c.Idle(ClientTimeout) {
			s.dropConn(fd)
		}
	}
}
