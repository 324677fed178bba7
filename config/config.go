// Package config implements the text configuration protocol that wires
// together recorders, tweaks, and shared-memory exports from a single
// spec string: the same mechanism a command-line flag, an environment
// variable, or an admin socket would feed.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/flightrecorder/recorder/recorder"
	"github.com/flightrecorder/recorder/tweak"
)

// Errors returned by Parse. The first invalid item in a spec determines
// the returned error; parsing still continues for the remainder. Every
// name is accepted as a pattern, so Parse itself never returns
// ErrUnknownOption.
var (
	ErrInvalidName   = errors.New("config: invalid name pattern")
	ErrInvalidValue  = errors.New("config: invalid value")
	ErrUnknownOption = errors.New("config: unknown option")
)

// defaultChannelRingSize is the sample capacity given to a shared-memory
// channel allocated by an export item, when the caller hasn't specified
// one — the configuration grammar has no per-channel size syntax, so one
// generous default is used for every exported channel.
const defaultChannelRingSize = 4096

var logger = mustLogger()

func mustLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// MetaRecorder is the recorder_traces meta-recorder: every rejected
// configuration item is recorded here as an Event, in addition to being
// logged structurally, so it shows up in a normal Sort dump like any
// other trace.
var MetaRecorder *recorder.Recorder

func init() {
	r, err := recorder.New("recorder_traces", "configuration protocol diagnostics", 256)
	if err != nil {
		panic(err)
	}
	MetaRecorder = r
}

// Parse applies one configuration spec against the process-wide recorder
// and tweak registries. An empty (or all-whitespace) spec is a no-op. The
// first invalid item's error is returned; every item is still attempted.
func Parse(spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}

	var firstErr error
	for _, item := range splitItems(spec) {
		if item == "" {
			continue
		}
		if err := parseItem(item); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			logRejected(item, err)
		}
	}
	return firstErr
}

func splitItems(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ':' || unicode.IsSpace(r)
	})
}

func parseItem(item string) error {
	switch strings.ToLower(item) {
	case "help", "list":
		printRegistries(os.Stdout)
		return nil
	}

	name, value, hasValue := strings.Cut(item, "=")
	if name == "" {
		return fmt.Errorf("%w: %q", ErrInvalidName, item)
	}
	if strings.EqualFold(name, "share") {
		return applyShare(value)
	}
	// "all" is shorthand for the regex matching every recorder/tweak,
	// with or without a trailing value ("all", "all=1", "all=0").
	if strings.EqualFold(name, "all") {
		name = ".*"
	}
	if !hasValue {
		return applyValue(name, "1")
	}
	return applyValue(name, value)
}

func compileName(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidName, pattern, err)
	}
	return re, nil
}

func matchRecorders(re *regexp.Regexp) []*recorder.Recorder {
	var out []*recorder.Recorder
	for _, r := range recorder.All() {
		if re.MatchString(r.Name()) {
			out = append(out, r)
		}
	}
	return out
}

func matchTweaks(re *regexp.Regexp) []*tweak.Tweak {
	var out []*tweak.Tweak
	for _, t := range tweak.All() {
		if re.MatchString(t.Name()) {
			out = append(out, t)
		}
	}
	return out
}

// applyValue handles every item except share=path and help/list: a
// numeric value sets trace/tweak levels directly; a non-numeric value is
// treated as a comma-separated export label list.
func applyValue(namePattern, value string) error {
	re, err := compileName(namePattern)
	if err != nil {
		return err
	}

	recorders := matchRecorders(re)
	tweaks := matchTweaks(re)

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		for _, rec := range recorders {
			rec.SetTrace(n)
		}
		for _, t := range tweaks {
			t.Set(n)
		}
		return nil
	}

	labels := strings.Split(value, ",")
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("%w: %q", ErrInvalidValue, value)
		}
	}

	if len(recorders) == 0 {
		return fmt.Errorf("%w: %q matches no recorder to export", ErrInvalidValue, namePattern)
	}

	disambiguate := len(recorders) > 1
	for _, rec := range recorders {
		if err := exportLabels(rec, labels, disambiguate); err != nil {
			return err
		}
	}
	return nil
}

// exportLabels allocates one shared-memory channel per label (bounded by
// recorder.MaxArgs) and installs it into the recorder's export slots.
// Channels are created lazily: the first export request that runs before
// any explicit share= item opens (or creates) the shared-memory file at
// RECORDER_SHARE, or the package default path, itself.
func exportLabels(rec *recorder.Recorder, labels []string, disambiguate bool) error {
	shans, err := ensureShans()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	for i, label := range labels {
		if i >= recorder.MaxArgs {
			break
		}
		name := label
		if disambiguate {
			name = rec.Name() + "/" + label
		}
		ch, err := shans.NewChan(0 /* shmem.None */, defaultChannelRingSize, name, rec.Description(), "", 0, 0)
		if err != nil {
			return err
		}
		rec.SetExport(i, ch)
	}

	if rec.Trace() == 0 {
		rec.SetTrace(recorder.ChanMagic)
	}
	return nil
}

func printRegistries(out io.Writer) {
	for _, r := range recorder.All() {
		fmt.Fprintf(out, "%-24s active=%-5t %s\n", r.Name(), r.Active(), r.Description())
	}
	for _, t := range tweak.All() {
		v := t.Value()
		fmt.Fprintf(out, "%-24s = %-12d (0x%x) %s\n", t.Name(), v, v, t.Description())
	}
}

func logRejected(item string, err error) {
	logger.Warn("config: item rejected", zap.String("item", item), zap.Error(err))
	MetaRecorder.Record("item=%s err=%s", "config.Parse", item, err.Error())
}
