// Package listener implements the listen-socket set (C2): one raw,
// non-blocking TCP listener per configured ServerConfig, registered with
// the reactor for READ (new connections). Grounded on the teacher's raw
// unix.Socket-level usage (scon/mdns/socket_linux.go's SetsockoptInt
// pattern), generalized from a UDP multicast socket to a full
// socket/bind/listen/accept TCP lifecycle via golang.org/x/sys/unix.
package listener

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/webserv/webserv/config"
)

// Listener is one bound, non-blocking TCP listen socket.
type Listener struct {
	FD   int
	Addr *config.ServerConfig
}

const backlog = 128

// Open creates, binds, and listens a non-blocking TCP socket for sc, with
// SO_REUSEADDR set, per §4.2.
func Open(sc *config.ServerConfig) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}

	sockAddr := &unix.SockaddrInet4{Port: int(sc.Port)}
	copy(sockAddr.Addr[:], sc.Host.To4())
	if err := unix.Bind(fd, sockAddr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", sc.ListenAddr(), err)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listen %s: %w", sc.ListenAddr(), err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set nonblock: %w", err)
	}

	return &Listener{FD: fd, Addr: sc}, nil
}

// Close closes the underlying socket.
func (l *Listener) Close() error {
	return unix.Close(l.FD)
}

// AcceptAll accepts every pending connection on l until EAGAIN/EWOULDBLOCK,
// making each accepted fd non-blocking and reporting its peer address.
// Non-retryable accept errors are returned so the caller can log them; the
// loop otherwise runs until the listen socket's backlog is drained.
func (l *Listener) AcceptAll(handle func(fd int, peer net.Addr)) error {
	for {
		connFd, sa, err := unix.Accept(l.FD)
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		if err := unix.SetNonblock(connFd, true); err != nil {
			unix.Close(connFd)
			continue
		}
		handle(connFd, sockaddrToAddr(sa))
	}
}

func sockaddrToAddr(sa unix.Sockaddr) net.Addr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(a.Addr[:]), Port: a.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(a.Addr[:]), Port: a.Port}
	default:
		return nil
	}
}
