//go:build !windows

package process

import (
	"os"

	"golang.org/x/sys/unix"
)

// Handle is an opaque OS token. On POSIX it is a raw file descriptor.
type Handle int

// Invalid is the designated invalid handle.
const Invalid Handle = -1

// Valid reports whether h refers to a live OS resource.
func (h Handle) Valid() bool {
	return h != Invalid
}

// Destroy releases the underlying OS resource if h is valid and returns
// Invalid. Calling Destroy on an already-invalid handle is a no-op, so
// partial-construction rollback can close unconditionally.
func (h Handle) Destroy() Handle {
	if h.Valid() {
		_ = unix.Close(int(h))
	}
	return Invalid
}

func handleFromFile(f *os.File) Handle {
	return Handle(f.Fd())
}
