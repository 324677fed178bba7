package recorder

import (
	"io"
	"os"
	"os/signal"
)

// DumpOnSignal installs a signal.Notify-backed goroutine that runs Sort
// against pattern ".*" every time one of sigs is received, using whatever
// render/show functions are currently installed (SetRenderFunc /
// SetShowFunc). The returned stop func undoes the signal registration and
// waits for the goroutine to exit.
func DumpOnSignal(sigs ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for range ch {
			formatFn, showFn := currentRenderFuncs()
			Sort(".*", formatFn, showFn, io.Discard)
		}
	}()

	return func() {
		signal.Stop(ch)
		close(ch)
		<-done
	}
}
