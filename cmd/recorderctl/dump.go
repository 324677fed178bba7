package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/spf13/cobra"

	"github.com/flightrecorder/recorder/shmem"
)

func newDumpCmd() *cobra.Command {
	var sharePath string
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "dump --share <path>",
		Short: "Open a shared-memory channel file and list its channels' sample counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sharePath == "" {
				return fmt.Errorf("--share is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()
			return runDump(ctx, sharePath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&sharePath, "share", "", "path to the shared-memory channel file")
	cmd.Flags().DurationVar(&wait, "wait", 10*time.Second, "how long to retry opening --share before giving up")
	return cmd
}

// runDump opens path, retrying with exponential backoff until ctx's
// deadline if the file doesn't exist yet (the writer process may not
// have created it yet), then prints every channel's name and current
// sample counters.
func runDump(ctx context.Context, path string, out io.Writer) error {
	chans, err := backoff.Retry(ctx, func() (*shmem.Chans, error) {
		c, err := shmem.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return c, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()))
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer chans.Close()

	for _, ch := range chans.Channels() {
		fmt.Fprintf(out, "%-24s type=%-8d writer=%-8d reader=%-8d overflow=%d\n",
			ch.Name(), ch.Type(), ch.WriterIndex(), ch.ReaderIndex(), ch.Overflow())
	}
	return nil
}
