//go:build linux
// +build linux

package webserve

import (
	"os"

	"golang.org/x/sys/unix"
)

const (
	readEvents  = unix.EPOLLPRI | unix.EPOLLIN
	writeEvents = unix.EPOLLOUT
)

// Registry wraps epoll and tracks which interest every registered fd
// currently holds. An fd is read-interested or write-interested, never
// both at once.
type Registry struct {
	epollFd  int
	interest map[int]uint32
}

func NewRegistry(epollFd int) *Registry {
	return &Registry{
		epollFd:  epollFd,
		interest: make(map[int]uint32),
	}
}

// RegisterRead moves fd into the read interest set, adding it to epoll
// when it is not yet watched.
func (r *Registry) RegisterRead(fd int) (err error) {
	if _, ok := r.interest[fd]; ok {
		err = r.modify(fd, readEvents)
	} else {
		err = r.add(fd, readEvents)
	}
	if err != nil {
		return err
	}
	r.interest[fd] = readEvents
	return nil
}

// RegisterWrite moves fd into the write interest set, implicitly taking
// it out of the read interest set.
func (r *Registry) RegisterWrite(fd int) (err error) {
	if _, ok := r.interest[fd]; ok {
		err = r.modify(fd, writeEvents)
	} else {
		err = r.add(fd, writeEvents)
	}
	if err != nil {
		return err
	}
	r.interest[fd] = writeEvents
	return nil
}

// Unregister removes fd from epoll and drops its interest. Unknown fds
// are a no-op.
func (r *Registry) Unregister(fd int) error {
	if _, ok := r.interest[fd]; !ok {
		return nil
	}
	if err := r.del(fd); err != nil {
		return err
	}
	delete(r.interest, fd)
	return nil
}

// WantsRead reports whether fd is currently read-interested.
func (r *Registry) WantsRead(fd int) bool {
	return r.interest[fd]&readEvents != 0
}

// WantsWrite reports whether fd is currently write-interested.
func (r *Registry) WantsWrite(fd int) bool {
	return r.interest[fd]&writeEvents != 0
}

func (r *Registry) add(fd int, events uint32) error {
	return os.NewSyscallError("epoll_ctl add",
		unix.EpollCtl(r.epollFd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Fd: int32(fd), Events: events}))
}

func (r *Registry) modify(fd int, events uint32) error {
	return os.NewSyscallError("epoll_ctl mod",
		unix.EpollCtl(r.epollFd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{Fd: int32(fd), Events: events}))
}

func (r *Registry) del(fd int) error {
	return os.NewSyscallError("epoll_ctl del",
		unix.EpollCtl(r.epollFd, unix.EPOLL_CTL_DEL, fd, nil))
}
