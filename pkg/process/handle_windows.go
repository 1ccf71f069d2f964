package process

import (
	"os"

	"golang.org/x/sys/windows"
)

// Handle is an opaque OS token. On Windows it wraps a kernel HANDLE.
type Handle windows.Handle

// Invalid is the designated invalid handle.
const Invalid = Handle(windows.InvalidHandle)

// Valid reports whether h refers to a live OS resource.
func (h Handle) Valid() bool {
	return h != Invalid && h != 0
}

// Destroy releases the underlying OS resource if h is valid and returns
// Invalid. Calling Destroy on an already-invalid handle is a no-op, so
// partial-construction rollback can close unconditionally.
func (h Handle) Destroy() Handle {
	if h.Valid() {
		_ = windows.CloseHandle(windows.Handle(h))
	}
	return Invalid
}

func handleFromFile(f *os.File) Handle {
	return Handle(f.Fd())
}
