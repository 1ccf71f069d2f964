package process

import "os"

// Stream identifies one of the child's three standard streams.
type Stream int

const (
	// StreamIn is the child's standard input.
	StreamIn Stream = iota
	// StreamOut is the child's standard output.
	StreamOut
	// StreamErr is the child's standard error.
	StreamErr
)

// RedirectMode selects how one of the child's standard streams is wired
// up.
type RedirectMode int

const (
	// RedirectPipe allocates an anonymous pipe; the parent keeps one side
	// and the child inherits the other. This is the default.
	RedirectPipe RedirectMode = iota

	// RedirectInherit duplicates the parent's own standard stream for the
	// child; there is no parent-side endpoint.
	RedirectInherit

	// RedirectDiscard routes the child's stream to the platform's null
	// device.
	RedirectDiscard

	// RedirectHandle uses the caller-supplied handle as the child side
	// verbatim. The caller keeps ownership.
	RedirectHandle

	// RedirectFile uses the caller-supplied open file as the child side.
	// The caller keeps ownership.
	RedirectFile

	// RedirectStdout reuses the stdout child-side handle for stderr so the
	// child's stdout and stderr stream into one pipe. Only valid for
	// stderr.
	RedirectStdout
)

// StreamRedirect configures the redirection of a single stream.
type StreamRedirect struct {
	Mode   RedirectMode
	Handle Handle
	File   *os.File
}

// RedirectOptions configures all three standard streams.
type RedirectOptions struct {
	In  StreamRedirect
	Out StreamRedirect
	Err StreamRedirect
}

// redirectInit resolves one stream's redirection into a (parent, child)
// handle pair. parent is only valid for RedirectPipe. child has to be
// duplicated onto its corresponding stream in the child process.
// stdoutChild carries the already-resolved stdout child handle so stderr
// can alias it.
func redirectInit(stream Stream, r StreamRedirect, nonblocking bool, stdoutChild Handle) (Handle, Handle, error) {
	switch r.Mode {
	case RedirectPipe:
		read, write, err := pipeInit()
		if err != nil {
			return Invalid, Invalid, err
		}

		var parent, child Handle
		if stream == StreamIn {
			parent, child = write, read
		} else {
			parent, child = read, write
		}

		if nonblocking {
			if err := pipeNonblocking(parent, true); err != nil {
				parent.Destroy()
				child.Destroy()
				return Invalid, Invalid, err
			}
		}

		return parent, child, nil

	case RedirectInherit:
		child, err := redirectInherit(stream)
		if err != nil {
			return Invalid, Invalid, err
		}
		return Invalid, child, nil

	case RedirectDiscard:
		child, err := redirectDiscard(stream)
		if err != nil {
			return Invalid, Invalid, err
		}
		return Invalid, child, nil

	case RedirectHandle:
		if !r.Handle.Valid() {
			return Invalid, Invalid, newError(EInval, "redirect handle is not valid")
		}
		return Invalid, r.Handle, nil

	case RedirectFile:
		if r.File == nil {
			return Invalid, Invalid, newError(EInval, "redirect file is nil")
		}
		return Invalid, handleFromFile(r.File), nil

	case RedirectStdout:
		if stream != StreamErr {
			return Invalid, Invalid, newError(EInval, "only stderr can be redirected to stdout")
		}
		if !stdoutChild.Valid() {
			return Invalid, Invalid, newError(EInval, "stdout has no child-side handle to share")
		}
		return Invalid, stdoutChild, nil
	}

	return Invalid, Invalid, newError(EInval, "unknown redirect mode %d", r.Mode)
}

// redirectDestroy closes a child-side handle for the modes that own it.
// Handles supplied by the caller and the stdout alias are left alone.
func redirectDestroy(child Handle, mode RedirectMode) Handle {
	switch mode {
	case RedirectPipe, RedirectInherit, RedirectDiscard:
		return child.Destroy()
	}
	return Invalid
}
