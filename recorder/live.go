package recorder

import (
	"os"

	"github.com/flightrecorder/recorder/shmem"
)

// liveOut is the default destination handed to the installed ShowFunc.
// render.Stderr (the package default) ignores it, but callers who
// install their own ShowFunc via SetShowFunc may honor it.
var liveOut = os.Stdout

// livePrint renders ev through the currently-installed FormatFunc/ShowFunc
// pair. Called only when the recorder's trace level requires live output.
func (rec *Recorder) livePrint(ev Event) {
	formatFn, showFn := currentRenderFuncs()
	message := renderMessage(ev)
	formatFn(showFn, liveOut, rec.name, ev.Where, ev.Order, ev.Timestamp, message)
}

// verbToChanType maps a format specifier's classification to the
// shared-memory channel type it implies.
func verbToChanType(v verbKind) shmem.ChanType {
	switch v {
	case verbFloat:
		return shmem.Real
	case verbSigned:
		return shmem.Signed
	case verbUnsigned:
		return shmem.Unsigned
	default:
		return shmem.Invalid
	}
}

// exportArgs writes each argument with an installed export channel to
// shared memory. A channel's Type is inferred (CAS None -> inferred type)
// from the first export; once Invalid or set, it never changes.
func (rec *Recorder) exportArgs(ev Event) {
	for i := 0; i < ev.NArgs && i < MaxArgs; i++ {
		ch := rec.Export(i)
		if ch == nil {
			continue
		}

		kind := verbToChanType(nthVerb(ev.Format, i))
		if ch.Type() == shmem.None {
			ch.InferType(kind)
		}

		switch ch.Type() {
		case shmem.Real:
			ch.WriteFloat(ev.Timestamp, Float(ev.Args[i]))
		case shmem.Signed, shmem.Unsigned:
			ch.Write(ev.Timestamp, int64(ev.Args[i]))
		default:
			// Invalid: nothing sensible to export, skip.
		}
	}
}
