package process

import (
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

// procHandle bundles the child's process handle with its pid: the handle
// is what we wait on and terminate, the pid is what console control
// events are addressed to.
type procHandle struct {
	handle windows.Handle
	pid    uint32
}

var procInvalid = procHandle{handle: windows.InvalidHandle}

func procDestroy(h procHandle) procHandle {
	if h.handle != windows.InvalidHandle && h.handle != 0 {
		_ = windows.CloseHandle(h.handle)
	}
	return procInvalid
}

// spawn launches argv with the resolved child endpoints as its standard
// streams. The child is put in its own process group so Terminate's
// console control event does not reach the parent.
func spawn(argv []string, env []string, dir string, child stdioHandles) (procHandle, error) {
	path := argv[0]
	if !strings.ContainsAny(path, `/\`) {
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
		},
		Sys: &syscall.SysProcAttr{
			CreationFlags: windows.CREATE_NEW_PROCESS_GROUP,
		},
	}

	pid, handle, err := syscall.StartProcess(path, argv, attr)
	if err != nil {
		return procInvalid, systemError(err)
	}

	return procHandle{handle: windows.Handle(handle), pid: uint32(pid)}, nil
}

// exitNotifier returns the handle whose signalled state marks child exit.
// On Windows the process handle itself is waitable, so the exit pipe
// degenerates to a duplicate of it; the pre-allocated pipe is released.
func exitNotifier(h procHandle, exitRead Handle) (Handle, error) {
	exitRead.Destroy()

	current := windows.CurrentProcess()
	var dup windows.Handle
	err := windows.DuplicateHandle(current, h.handle, current, &dup, 0, false,
		windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return Invalid, systemError(err)
	}

	return Handle(dup), nil
}

// procWait collects the child's exit code. The 128 + signo convention has
// no exact Windows analogue: a child killed through Kill reports
// SignalKill because TerminateProcess is invoked with that exit code, and
// whatever code the child set itself is passed through untouched.
func procWait(h procHandle) (int, error) {
	if _, err := windows.WaitForSingleObject(h.handle, windows.INFINITE); err != nil {
		return 0, systemError(err)
	}

	var code uint32
	if err := windows.GetExitCodeProcess(h.handle, &code); err != nil {
		return 0, systemError(err)
	}

	return int(code), nil
}

func procTerminate(h procHandle) error {
	err := windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, h.pid)
	if err != nil {
		return systemError(err)
	}
	return nil
}

func procKill(h procHandle) error {
	err := windows.TerminateProcess(h.handle, uint32(SignalKill))
	if err != nil {
		return systemError(err)
	}
	return nil
}
