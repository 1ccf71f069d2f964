//go:build !windows

package process

import (
	"os"

	"golang.org/x/sys/unix"
)

func redirectInherit(stream Stream) (Handle, error) {
	fd, err := unix.FcntlInt(uintptr(int(stream)), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		// The parent's own stream is closed; there is nothing to inherit.
		return Invalid, errPipe("parent stream is not open")
	}
	return Handle(fd), nil
}

func redirectDiscard(Stream) (Handle, error) {
	fd, err := unix.Open(os.DevNull, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return Invalid, systemError(err)
	}
	return Handle(fd), nil
}
