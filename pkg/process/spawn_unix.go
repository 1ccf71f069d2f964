//go:build !windows

package process

import (
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// procHandle is the child's pid on POSIX.
type procHandle int

const procInvalid procHandle = -1

// procDestroy releases the process handle. A pid holds no OS resource
// beyond the process-table entry, which is released by the reap in
// procWait, so there is nothing to close.
func procDestroy(procHandle) procHandle {
	return procInvalid
}

// spawn launches argv with the resolved child endpoints as its standard
// streams. The write end of the exit pipe rides along as fd 3: the child
// inherits it, never writes to it, and its close on exit makes the read
// end readable-EOF exactly when the child dies.
func spawn(argv []string, env []string, dir string, child stdioHandles) (procHandle, error) {
	path := argv[0]
	if !strings.ContainsRune(path, '/') {
		resolved, err := exec.LookPath(path)
		if err != nil {
			return procInvalid, newError(EInval, "%s", err.Error())
		}
		path = resolved
	}

	attr := &syscall.ProcAttr{
		Dir: dir,
		Env: env,
		Files: []uintptr{
			uintptr(child.in),
			uintptr(child.out),
			uintptr(child.err),
			uintptr(child.exit),
		},
	}

	pid, _, err := syscall.StartProcess(path, argv, attr)
	if err != nil {
		return procInvalid, systemError(err)
	}

	return procHandle(pid), nil
}

// exitNotifier returns the handle whose readability signals child exit.
// On POSIX that is the exit pipe's read end, unchanged.
func exitNotifier(_ procHandle, exitRead Handle) (Handle, error) {
	return exitRead, nil
}

// procWait reaps the child and returns its exit code. Exits caused by a
// signal are reported as 128 + signo.
func procWait(h procHandle) (int, error) {
	var status syscall.WaitStatus
	for {
		_, err := syscall.Wait4(int(h), &status, 0, nil)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			return 0, systemError(err)
		}
		break
	}

	if status.Signaled() {
		return sigOffset + int(status.Signal()), nil
	}

	return status.ExitStatus(), nil
}

func procTerminate(h procHandle) error {
	if err := unix.Kill(int(h), unix.SIGTERM); err != nil && err != unix.ESRCH {
		return systemError(err)
	}
	return nil
}

func procKill(h procHandle) error {
	if err := unix.Kill(int(h), unix.SIGKILL); err != nil && err != unix.ESRCH {
		return systemError(err)
	}
	return nil
}
