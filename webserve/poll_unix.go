//go:build linux
// +build linux

package webserve

import (
	"sort"

	"github.com/ftln/go-threadless-web/log"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// MaxFD bounds the number of readiness events serviced per iteration.
const MaxFD = 1024

// Poll owns the epoll instance behind one server and the interest
// registry over it.
type Poll struct {
	*Registry
	epollFd int
	events  []unix.EpollEvent
}

func NewPoll(lnFd int) (*Poll, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		log.Logger.Error("failed to create epoll", zap.Error(err))
		return nil, err
	}

	r := NewRegistry(epfd)

	// The listener is permanently read-interested
	if err := r.RegisterRead(lnFd); err != nil {
		log.Logger.Error("failed to add listener to epoll", zap.Error(err))
		unix.Close(epfd)
		return nil, err
	}

	return &Poll{
		Registry: r,
		epollFd:  epfd,
		events:   make([]unix.EpollEvent, MaxFD),
	}, nil
}

// WaitReady blocks for up to usec microseconds and returns the fds that
// became read-ready and write-ready, each in ascending fd order. An
// interrupted wait counts as an empty wake-up, not an error.
func (p *Poll) WaitReady(usec uint) (reads, writes []int, err error) {
	msec := int(usec / 1000)
	if usec > 0 && msec == 0 {
		msec = 1
	}

	n, err := unix.EpollWait(p.epollFd, p.events, msec)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	for i := 0; i < n; i++ {
		ev := &p.events[i]
		fd := int(ev.Fd)
		// Error and hang-up conditions surface through the fd's current
		// interest so the normal read or write path deals with them.
		switch {
		case ev.Events&readEvents != 0 || p.WantsRead(fd):
			reads = append(reads, fd)
		case ev.Events&writeEvents != 0 || p.WantsWrite(fd):
			writes = append(writes, fd)
		}
	}

	sort.Ints(reads)
	sort.Ints(writes)
	return reads, writes, nil
}

func (p *Poll) Close() error {
	return CloseFd(p.epollFd)
}
