//go:build !windows

package process

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedirectPipeDirections(t *testing.T) {
	parent, child, err := redirectInit(StreamIn, StreamRedirect{Mode: RedirectPipe}, false, Invalid)
	assert.NoError(t, err)

	// Child stdin: the parent holds the write end.
	n, err := pipeWrite(parent, []byte("x"))
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	buf := make([]byte, 1)
	_, err = pipeRead(child, buf)
	assert.NoError(t, err)
	assert.Equal(t, "x", string(buf))

	parent.Destroy()
	redirectDestroy(child, RedirectPipe)

	// Child stdout: the parent holds the read end.
	parent, child, err = redirectInit(StreamOut, StreamRedirect{Mode: RedirectPipe}, false, Invalid)
	assert.NoError(t, err)

	_, err = pipeWrite(child, []byte("y"))
	assert.NoError(t, err)
	_, err = pipeRead(parent, buf)
	assert.NoError(t, err)
	assert.Equal(t, "y", string(buf))

	parent.Destroy()
	redirectDestroy(child, RedirectPipe)
}

func TestRedirectDiscard(t *testing.T) {
	parent, child, err := redirectInit(StreamOut, StreamRedirect{Mode: RedirectDiscard}, false, Invalid)
	assert.NoError(t, err)
	assert.False(t, parent.Valid())
	assert.True(t, child.Valid())

	// Writes to the null device succeed and go nowhere.
	n, err := pipeWrite(child, []byte("dropped"))
	assert.NoError(t, err)
	assert.Equal(t, 7, n)

	redirectDestroy(child, RedirectDiscard)
}

func TestRedirectInherit(t *testing.T) {
	parent, child, err := redirectInit(StreamOut, StreamRedirect{Mode: RedirectInherit}, false, Invalid)
	assert.NoError(t, err)
	assert.False(t, parent.Valid())
	assert.True(t, child.Valid())

	redirectDestroy(child, RedirectInherit)
}

func TestRedirectHandleOwnership(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "redirect")
	assert.NoError(t, err)
	defer f.Close()

	parent, child, err := redirectInit(StreamOut, StreamRedirect{Mode: RedirectFile, File: f}, false, Invalid)
	assert.NoError(t, err)
	assert.False(t, parent.Valid())
	assert.Equal(t, handleFromFile(f), child)

	// Caller-supplied handles are not closed by redirectDestroy.
	redirectDestroy(child, RedirectFile)
	_, err = f.WriteString("still open")
	assert.NoError(t, err)
}

func TestRedirectStdoutAlias(t *testing.T) {
	stdoutParent, stdoutChild, err := redirectInit(StreamOut, StreamRedirect{Mode: RedirectPipe}, false, Invalid)
	assert.NoError(t, err)
	defer stdoutParent.Destroy()

	parent, child, err := redirectInit(StreamErr, StreamRedirect{Mode: RedirectStdout}, false, stdoutChild)
	assert.NoError(t, err)
	assert.False(t, parent.Valid())
	assert.Equal(t, stdoutChild, child)

	// The alias does not own the handle; destroying it leaves stdout's
	// child side open.
	redirectDestroy(child, RedirectStdout)
	_, err = pipeWrite(stdoutChild, []byte("x"))
	assert.NoError(t, err)

	redirectDestroy(stdoutChild, RedirectPipe)
}

func TestRedirectValidation(t *testing.T) {
	_, _, err := redirectInit(StreamOut, StreamRedirect{Mode: RedirectStdout}, false, Invalid)
	assert.True(t, HasErrorCode(err, EInval))

	_, _, err = redirectInit(StreamErr, StreamRedirect{Mode: RedirectStdout}, false, Invalid)
	assert.True(t, HasErrorCode(err, EInval))

	_, _, err = redirectInit(StreamOut, StreamRedirect{Mode: RedirectHandle, Handle: Invalid}, false, Invalid)
	assert.True(t, HasErrorCode(err, EInval))

	_, _, err = redirectInit(StreamOut, StreamRedirect{Mode: RedirectFile}, false, Invalid)
	assert.True(t, HasErrorCode(err, EInval))
}
