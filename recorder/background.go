package recorder

import (
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flightrecorder/recorder/tweak"
)

// StartBackgroundDump launches a goroutine that repeatedly calls Sort for
// pattern until it drains (returns 0), then sleeps for sleepTweak's
// current value in milliseconds before trying again, until ctx is
// canceled. It replaces the signal-handler/running-flag loop of the
// original implementation with cooperative, context-based cancellation.
//
// The returned stop function cancels the loop's context (a child of ctx)
// and waits for the goroutine to exit, returning any error it observed
// other than context.Canceled.
func StartBackgroundDump(ctx context.Context, pattern string, sleepTweak *tweak.Tweak, out io.Writer) (stop func() error) {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			formatFn, showFn := currentRenderFuncs()
			for Sort(pattern, formatFn, showFn, out) > 0 {
				if gctx.Err() != nil {
					return gctx.Err()
				}
			}

			sleepMS := sleepTweak.Value()
			if sleepMS <= 0 {
				sleepMS = 1
			}

			timer := time.NewTimer(time.Duration(sleepMS) * time.Millisecond)
			select {
			case <-gctx.Done():
				timer.Stop()
				return gctx.Err()
			case <-timer.C:
			}
		}
	})

	return func() error {
		cancel()
		err := g.Wait()
		if err == context.Canceled {
			return nil
		}
		return err
	}
}
