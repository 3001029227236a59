// Package reactor implements the event reactor (C1): a thin wrapper over
// epoll that tracks per-fd event subscriptions and dispatches ready events
// to per-fd callbacks. Grounded on the docker-compose process monitor's
// epoll wrapper (archutils/epoll.go, monitor/monitor_linux.go), adapted
// from a single-event HUP monitor to a full READ/WRITE/ERROR dispatcher
// and built on golang.org/x/sys/unix rather than the old syscall package.
package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Event is one of the three event classes the spec distinguishes.
type Event int

const (
	EventRead Event = 1 << iota
	EventWrite
	EventError
)

// Callback is invoked once per ready (fd, event) pair during Poll.
type Callback func(fd int, event Event)

type binding struct {
	mask Event
	cb   Callback
}

// Reactor owns the epoll instance and the per-fd subscription table.
type Reactor struct {
	epfd     int
	bindings map[int]*binding
}

// New creates the epoll instance.
func New() (*Reactor, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}
	return &Reactor{epfd: epfd, bindings: map[int]*binding{}}, nil
}

// Close releases the epoll fd.
func (r *Reactor) Close() error {
	return unix.Close(r.epfd)
}

func toEpollEvents(mask Event) uint32 {
	var e uint32
	if mask&EventRead != 0 {
		e |= unix.EPOLLIN
	}
	if mask&EventWrite != 0 {
		e |= unix.EPOLLOUT
	}
	if mask&EventError != 0 {
		e |= unix.EPOLLERR | unix.EPOLLHUP
	}
	return e
}

// Bind registers fd for mask, invoking cb on readiness. Binding an
// already-subscribed (fd, event) combination is idempotent: calling Bind
// again for an fd already tracked just widens its mask and re-arms epoll.
func (r *Reactor) Bind(fd int, mask Event, cb Callback) error {
	existing, tracked := r.bindings[fd]
	op := unix.EPOLL_CTL_ADD
	if tracked {
		mask |= existing.mask
		op = unix.EPOLL_CTL_MOD
	}
	ev := unix.EpollEvent{Events: toEpollEvents(mask), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, op, fd, &ev); err != nil {
		return fmt.Errorf("epoll_ctl: %w", err)
	}
	r.bindings[fd] = &binding{mask: mask, cb: cb}
	return nil
}

// Unbind removes mask from fd's subscription, or removes the fd from the
// multiplexer entirely when no subscribed event class remains.
func (r *Reactor) Unbind(fd int, mask Event) error {
	b, ok := r.bindings[fd]
	if !ok {
		return nil
	}
	remaining := b.mask &^ mask
	if remaining == 0 {
		delete(r.bindings, fd)
		if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
			return fmt.Errorf("epoll_ctl del: %w", err)
		}
		return nil
	}
	b.mask = remaining
	ev := unix.EpollEvent{Events: toEpollEvents(remaining), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("epoll_ctl mod: %w", err)
	}
	return nil
}

const maxEvents = 256

// Poll runs one non-blocking epoll_wait and dispatches every ready event to
// its bound callback. A multiplexer error is logged by the caller; it is
// only fatal if the epoll fd itself is invalid, which the caller detects
// from the returned error.
func (r *Reactor) Poll() error {
	var events [maxEvents]unix.EpollEvent
	n, err := unix.EpollWait(r.epfd, events[:], 0)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return fmt.Errorf("epoll_wait: %w", err)
	}
	for i := 0; i < n; i++ {
		fd := int(events[i].Fd)
		b, ok := r.bindings[fd]
		if !ok {
			continue
		}
		flags := events[i].Events
		if flags&(unix.EPOLLERR|unix.EPOLLHUP) != 0 && b.mask&EventError != 0 {
			b.cb(fd, EventError)
		}
		if flags&unix.EPOLLIN != 0 && b.mask&EventRead != 0 {
			b.cb(fd, EventRead)
		}
		if flags&unix.EPOLLOUT != 0 && b.mask&EventWrite != 0 {
			b.cb(fd, EventWrite)
		}
	}
	return nil
}
