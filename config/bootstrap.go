package config

import "os"

// defaultSharePath is used when RECORDER_SHARE is unset but some other
// variable asks for an export.
const defaultSharePath = "/tmp/recorder_share"

// BootstrapResult carries the pieces of Bootstrap's environment read that
// the caller, not Parse, is responsible for acting on.
type BootstrapResult struct {
	// DumpPattern is RECORDER_DUMP, or "" if unset. A caller that wants a
	// background dumper passes this to recorder.StartBackgroundDump.
	DumpPattern string
}

// Bootstrap reads the configuration protocol's environment variables and
// applies them in the order a dependent variable needs: RECORDER_SHARE
// first (so RECORDER_TRACES export labels have somewhere to land), then
// RECORDER_TRACES, then RECORDER_TWEAKS. RECORDER_DUMP is not itself a
// Parse item (it names a pattern, not a trace/tweak spec) and is returned
// for the caller to hand to recorder.StartBackgroundDump.
//
// The first error encountered is returned; every variable is still
// applied.
func Bootstrap() (BootstrapResult, error) {
	var firstErr error
	note := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// With no RECORDER_SHARE, an export item in RECORDER_TRACES creates
	// the file at defaultSharePath itself (see ensureShans); a spec with
	// no export item creates no file.
	if share, ok := os.LookupEnv("RECORDER_SHARE"); ok && share != "" {
		note(Parse("share=" + share))
	}

	if traces, ok := os.LookupEnv("RECORDER_TRACES"); ok && traces != "" {
		note(Parse(traces))
	}

	if tweaks, ok := os.LookupEnv("RECORDER_TWEAKS"); ok && tweaks != "" {
		note(Parse(tweaks))
	}

	return BootstrapResult{DumpPattern: os.Getenv("RECORDER_DUMP")}, firstErr
}
