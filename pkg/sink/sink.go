// Package sink provides convenience helpers that drain a child process's
// output streams into strings, writers, or a logger.
package sink

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/christophe-duc/procio/pkg/process"
)

// Sink consumes a chunk of bytes drained from one of a process's output
// streams.
type Sink func(stream process.Stream, buf []byte) error

// NewStringSink returns a sink that appends everything it receives to
// *out.
func NewStringSink(out *string) Sink {
	return func(_ process.Stream, buf []byte) error {
		*out += string(buf)
		return nil
	}
}

// NewWriterSink returns a sink that forwards everything it receives to w.
func NewWriterSink(w io.Writer) Sink {
	return func(_ process.Stream, buf []byte) error {
		_, err := w.Write(buf)
		return err
	}
}

// NewLogSink returns a sink that logs each drained chunk at the given
// level, tagged with the stream it came from.
func NewLogSink(log *logrus.Entry, level logrus.Level) Sink {
	return func(stream process.Stream, buf []byte) error {
		name := "stdout"
		if stream == process.StreamErr {
			name = "stderr"
		}
		log.WithField("stream", name).Log(level, string(buf))
		return nil
	}
}

// Null discards everything it receives.
var Null Sink = func(process.Stream, []byte) error {
	return nil
}

// Drain reads the child's stdout and stderr until both are closed,
// forwarding stdout chunks to out and stderr chunks to errSink. Passing
// the same sink twice merges both streams into it. Drain returns
// ETimedout when the process deadline expires before the streams are
// exhausted.
func Drain(p *process.Process, out, errSink Sink) error {
	buf := make([]byte, 4096)

	for {
		sources := []process.EventSource{{
			Process:   p,
			Interests: process.EventOut | process.EventErr | process.EventDeadline,
		}}

		_, err := process.Poll(sources, process.Infinite)
		if process.HasErrorCode(err, process.EPipe) {
			// Both output streams are closed; nothing left to drain.
			return nil
		}
		if err != nil {
			return err
		}

		events := sources[0].Events
		if events&process.EventDeadline != 0 {
			return &process.Error{Code: process.ETimedout, Message: "deadline expired while draining"}
		}

		for _, target := range []struct {
			event  process.Event
			stream process.Stream
			sink   Sink
		}{
			{process.EventOut, process.StreamOut, out},
			{process.EventErr, process.StreamErr, errSink},
		} {
			if events&target.event == 0 {
				continue
			}

			n, err := p.Read(target.stream, buf)
			if process.HasErrorCode(err, process.EPipe) {
				// The endpoint is closed now; Poll stops reporting it.
				continue
			}
			if err != nil {
				return err
			}

			if target.sink == nil {
				continue
			}
			if err := target.sink(target.stream, buf[:n]); err != nil {
				return err
			}
		}
	}
}
