// Package render implements the default formatting of a dumped recorder
// event, and the default byte sink it is written to. Both are replaceable
// at runtime by callers of recorder.SetRenderFunc / recorder.SetShowFunc.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/flightrecorder/recorder/tick"
)

// ShowFunc writes b to out. The default, Stderr, ignores out and always
// writes to os.Stderr, matching the C original's behavior of a
// process-wide default sink; callers that want the io.Writer honored
// should use Show instead.
type ShowFunc func(b []byte, out io.Writer)

// FormatFunc renders one dumped event as text and hands it to show.
type FormatFunc func(show ShowFunc, out io.Writer, name, where string, order, timestamp uint64, message string)

// Default is the FormatFunc installed at package init: it renders
// "<where>: [<order> <seconds>] <name>: <message>\n".
func Default(show ShowFunc, out io.Writer, name, where string, order, timestamp uint64, message string) {
	seconds := float64(timestamp) / float64(tick.HZ)
	line := fmt.Sprintf("%s: [%d %.6f] %s: %s\n", where, order, seconds, name, message)
	show([]byte(line), out)
}

// Stderr is the ShowFunc installed at package init: it writes to
// os.Stderr regardless of out, matching the flight recorder's original
// "always visible somewhere" default.
func Stderr(b []byte, out io.Writer) {
	_, _ = os.Stderr.Write(b)
}

// Show writes b to out, ignoring any default sink. Useful as an
// alternative ShowFunc for callers who want out honored.
func Show(b []byte, out io.Writer) {
	_, _ = out.Write(b)
}
