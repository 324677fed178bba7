// Command recorderctl is a worked example of driving the configuration
// protocol and reading back a shared-memory export from the command
// line. It does not reach into another process's memory except through
// the shared-memory file both sides agreed on.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flightrecorder/recorder/config"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "recorderctl",
		Short: "Inspect and configure an in-process flight recorder",
	}
	root.AddCommand(newSetCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newDumpCmd())
	return root
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <spec>",
		Short: "Apply a configuration spec to the in-process registries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Parse(args[0])
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the recorder and tweak registries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Parse("list")
		},
	}
}
