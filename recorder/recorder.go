package recorder

import (
	"sync/atomic"

	"github.com/flightrecorder/recorder/ring"
	"github.com/flightrecorder/recorder/shmem"
	"github.com/flightrecorder/recorder/tick"
)

// ChanMagic is the sentinel trace value meaning "export only, never
// live-print". It is distinguishable from any ordinary verbosity level a
// caller would plausibly set via the configuration protocol.
const ChanMagic = -1

// Recorder is a named producer surface: a Ring of Events plus the
// live-print/export configuration that governs what happens to each
// recorded Event beyond being stored.
type Recorder struct {
	name        string
	description string
	r           *ring.Ring[Event]

	// trace: 0 silences live-print, positive live-prints, ChanMagic
	// live-prints never (export only).
	trace atomic.Int64

	exported [MaxArgs]atomic.Pointer[shmem.Chan]

	next atomic.Pointer[Recorder]
}

var head atomic.Pointer[Recorder]

// New registers a new Recorder with the given name, description, and
// ring capacity (in events), and links it into the process-wide registry
// with a CAS-prepend loop, so registration is race-free across
// concurrently-initializing packages and constructors running in any
// order.
func New(name, description string, ringSize int) (*Recorder, error) {
	r, err := ring.New[Event](ringSize)
	if err != nil {
		return nil, err
	}
	rec := &Recorder{name: name, description: description, r: r}
	for {
		old := head.Load()
		rec.next.Store(old)
		if head.CompareAndSwap(old, rec) {
			return rec, nil
		}
	}
}

// Name returns the recorder's registered name.
func (rec *Recorder) Name() string { return rec.name }

// Description returns the recorder's human-readable description.
func (rec *Recorder) Description() string { return rec.description }

// Trace returns the recorder's current trace/verbosity level.
func (rec *Recorder) Trace() int64 { return rec.trace.Load() }

// SetTrace sets the recorder's trace/verbosity level; called only by the
// configuration protocol (package config).
func (rec *Recorder) SetTrace(v int64) { rec.trace.Store(v) }

// Active reports whether the recorder currently live-prints (trace > 0).
func (rec *Recorder) Active() bool {
	return rec.trace.Load() > 0
}

// SetExport installs a shared-memory export target for argument slot i.
// Called only by the configuration protocol.
func (rec *Recorder) SetExport(i int, ch *shmem.Chan) {
	if i < 0 || i >= MaxArgs {
		return
	}
	rec.exported[i].Store(ch)
}

// Export returns the current export target for argument slot i, or nil.
func (rec *Recorder) Export(i int) *shmem.Chan {
	if i < 0 || i >= MaxArgs {
		return nil
	}
	return rec.exported[i].Load()
}

// Record is the hot-path entry point: it stamps a global order and a
// monotonic timestamp, packs up to MaxArgs arguments into one Ring slot,
// and — only if trace != 0 — performs live-trace rendering and
// shared-memory export. Steps 1-3 are wait-free; step 4 is best-effort
// userspace work that is skipped entirely when trace == 0.
func (rec *Recorder) Record(format, where string, args ...any) {
	packed, truncated := packArgs(args)
	nArgs := len(args)
	if truncated {
		logTruncatedArgs(rec.name, format)
		nArgs = MaxArgs
	}
	rec.record(format, where, packed, nArgs, args)
}

// RecordArgs is the zero-allocation entry point for callers that already
// have their arguments as packed machine words (e.g. generated call
// sites, or hot loops that pre-pack once and call repeatedly). Because it
// never sees the original arguments, any %s verb renders the packed
// word in fmt's bad-verb form ("%!s(uint64=N)") rather than string
// content — callers on this path
// that use %s are expected to pre-render their own message text.
func (rec *Recorder) RecordArgs(format, where string, args Args, nArgs int) {
	rec.record(format, where, args, nArgs, nil)
}

func (rec *Recorder) record(format, where string, args Args, nArgs int, raw []any) {
	order := nextOrder()
	timestamp := tick.Tick()

	ev := Event{
		Order:     order,
		Timestamp: timestamp,
		Where:     where,
		Format:    format,
		Args:      args,
		NArgs:     nArgs,
		Raw:       raw,
	}

	rec.r.Write([]Event{ev}, nil, nil, nil)

	trace := rec.trace.Load()
	if trace == 0 {
		return
	}

	if trace != ChanMagic {
		rec.livePrint(ev)
	}
	rec.exportArgs(ev)
}

// Ring exposes the recorder's backing Ring, for use by Sort/Peek/Read
// from package-level dump logic.
func (rec *Recorder) Ring() *ring.Ring[Event] { return rec.r }

// All returns every registered Recorder, most-recently-registered-first.
func All() []*Recorder {
	var out []*Recorder
	for r := head.Load(); r != nil; r = r.next.Load() {
		out = append(out, r)
	}
	return out
}

// Find returns the first registered Recorder with the given exact name,
// or nil.
func Find(name string) *Recorder {
	for _, r := range All() {
		if r.name == name {
			return r
		}
	}
	return nil
}
