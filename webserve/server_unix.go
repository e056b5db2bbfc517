//go:build linux
// +build linux

package webserve

import (
	"fmt"
	"net"
	"os"

	"github.com/ftln/go-threadless-web/log"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// DefaultTimeoutUsec is the readiness wait budget, in microseconds,
// used until SetTimeoutUsec overrides it.
const DefaultTimeoutUsec uint = 1e6

// MaxPort is the highest port number Start accepts.
const MaxPort = 60000

// Webserve is one server instance: the listening socket, the epoll
// interest registry, the conversation table and the event loop state.
// It is driven by a single goroutine; nothing here is safe for
// concurrent use.
type Webserve struct {
	ln       net.Listener
	lnFile   *os.File
	lnFd     int
	poll     *Poll
	convs    *ConvTable
	hit      int
	timeout  uint // microseconds
	callback ConvHandler
	quit     bool
}

// Start binds and listens on the given TCP port and returns a server
// ready to poll, with the default timeout and the default responder
// installed. Ports outside 1..60000 are rejected.
func Start(port int) (*Webserve, error) {
	if port <= 0 || port > MaxPort {
		log.Logger.Error("invalid port number", zap.Int("port", port))
		return nil, ErrInvalidPort
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		log.Logger.Error("listen error", zap.Error(err))
		return nil, err
	}

	f, err := ln.(*net.TCPListener).File()
	if err != nil {
		log.Logger.Error("failed to get listener fd", zap.Error(err))
		ln.Close()
		return nil, err
	}

	lnFd := int(f.Fd())
	if err := unix.SetNonblock(lnFd, true); err != nil {
		log.Logger.Error("set nonblock error", zap.Error(err))
		f.Close()
		ln.Close()
		return nil, err
	}

	poll, err := NewPoll(lnFd)
	if err != nil {
		f.Close()
		ln.Close()
		return nil, err
	}

	log.Logger.Info("listening", zap.Int("port", port))

	return &Webserve{
		ln:       ln,
		lnFile:   f,
		lnFd:     lnFd,
		poll:     poll,
		convs:    NewConvTable(),
		timeout:  DefaultTimeoutUsec,
		callback: DefaultResponder{},
	}, nil
}

// Finish marks the server terminated and closes the listening socket
// and the poller. In-flight connections are left to drain on their own.
func (w *Webserve) Finish() {
	w.quit = true
	if w.lnFile != nil {
		w.lnFile.Close()
	}
	if w.ln != nil {
		w.ln.Close()
	}
	if w.poll != nil {
		w.poll.Close()
	}
}

// SetTimeoutUsec sets the readiness wait budget in microseconds.
func (w *Webserve) SetTimeoutUsec(usec uint) {
	w.timeout = usec
}

// SetConvCallback registers the decision callback. Passing nil restores
// the built-in default responder.
func (w *Webserve) SetConvCallback(h ConvHandler) {
	if h == nil {
		h = DefaultResponder{}
	}
	w.callback = h
}

// Hits returns the number of connections accepted since Start.
func (w *Webserve) Hits() int {
	return w.hit
}

// PollOnce runs a single event loop iteration: wait for readiness,
// accept pending connections, service every read-ready connection, then
// flush and close every write-ready one. Handles are serviced in
// ascending fd order, reads before writes. It reports whether the
// server has terminated.
func (w *Webserve) PollOnce() bool {
	if w.quit {
		return true
	}

	reads, writes, err := w.poll.WaitReady(w.timeout)
	if err != nil {
		log.Logger.Error("readiness wait error", zap.Error(err))
		w.quit = true
		return true
	}

	for _, fd := range reads {
		if w.quit {
			break
		}
		if fd == w.lnFd {
			w.acceptConn()
		} else {
			w.serviceRead(fd)
		}
	}

	for _, fd := range writes {
		if w.quit {
			break
		}
		w.serviceWrite(fd)
	}

	return w.quit
}

// PollThrice runs up to three iterations, stopping early once the
// server terminates.
func (w *Webserve) PollThrice() bool {
	for count := 0; count < 3 && !w.quit; count++ {
		w.PollOnce()
	}
	return w.quit
}

// PollForever iterates until the server terminates.
func (w *Webserve) PollForever() {
	for !w.quit {
		w.PollOnce()
	}
}

func (w *Webserve) acceptConn() {
	fd, sa, err := unix.Accept(w.lnFd)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return
		}
		log.Logger.Fatal("accept error", zap.Error(err))
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		log.Logger.Error("set nonblock error", zap.Int("fd", fd), zap.Error(err))
		CloseFd(fd)
		return
	}

	w.hit++
	log.Logger.Info("connection", zap.Int("hit", w.hit), zap.String("from", sockaddrIP(sa)))

	w.convs.Acquire(fd, w.hit)
	if err := w.poll.RegisterRead(fd); err != nil {
		log.Logger.Error("register read error", zap.Int("fd", fd), zap.Error(err))
		w.convs.Release(fd)
		CloseFd(fd)
	}
}

// serviceRead consumes the one readable event a connection gets: read
// and parse the request, run the callback, then wait for writability.
// A failed or unsupported request is answered with the fixed 403 and
// the connection dropped, leaving the rest of the loop undisturbed.
func (w *Webserve) serviceRead(fd int) {
	conv := w.convs.Get(fd)

	outcome := readRequest(fd, conv)
	if outcome != ReadSuccess {
		writeForbidden(fd)
		w.dropConn(fd)
		return
	}

	dispatch(conv, w.callback)

	if err := w.poll.RegisterWrite(fd); err != nil {
		log.Logger.Error("register write error", zap.Int("fd", fd), zap.Error(err))
		w.dropConn(fd)
	}
}

// serviceWrite flushes the response and finishes the conversation. The
// fd is closed by the writer, so only the bookkeeping remains here.
func (w *Webserve) serviceWrite(fd int) {
	conv := w.convs.Get(fd)

	if err := w.poll.Unregister(fd); err != nil {
		log.Logger.Debug("unregister error", zap.Int("fd", fd), zap.Error(err))
	}
	writeResponse(fd, conv)
	w.convs.Release(fd)
}

// dropConn closes a single misbehaving connection and releases its
// conversation, keeping the server running.
func (w *Webserve) dropConn(fd int) {
	if err := w.poll.Unregister(fd); err != nil {
		log.Logger.Debug("unregister error", zap.Int("fd", fd), zap.Error(err))
	}
	if err := CloseFd(fd); err != nil {
		log.Logger.Debug("close error", zap.Int("fd", fd), zap.Error(err))
	}
	w.convs.Release(fd)
}
