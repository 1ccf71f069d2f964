// io is a tiny child program used by the examples: it copies its stdin to
// the stream(s) selected by the mode argument. The sleep and ignoreterm
// modes exist to experiment with stop sequences by hand.
package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/integrii/flaggy"
)

var mode = "stdout"

func main() {
	flaggy.SetName("io")
	flaggy.SetDescription("echoes stdin to the requested standard streams")
	flaggy.AddPositionalValue(&mode, "mode", 1, true,
		"one of stdout, stderr, both, sleep, ignoreterm")
	flaggy.Parse()

	switch mode {
	case "stdout":
		copyStdin(os.Stdout)
	case "stderr":
		copyStdin(os.Stderr)
	case "both":
		copyStdin(io.MultiWriter(os.Stdout, os.Stderr))
	case "sleep":
		block()
	case "ignoreterm":
		signal.Ignore(syscall.SIGTERM)
		block()
	default:
		flaggy.ShowHelpAndExit("unknown mode " + mode)
	}
}

func copyStdin(w io.Writer) {
	if _, err := io.Copy(w, os.Stdin); err != nil {
		os.Exit(1)
	}
}

func block() {
	for {
		time.Sleep(time.Hour)
	}
}
