package recorder

import (
	"fmt"
	"io"
	"regexp"
	"sync"

	"github.com/flightrecorder/recorder/render"
)

var (
	renderMu   sync.Mutex
	renderFunc render.FormatFunc = render.Default
	showFunc   render.ShowFunc   = render.Stderr
)

// SetRenderFunc installs a new FormatFunc for live-print and Sort, and
// returns the previous one.
func SetRenderFunc(f render.FormatFunc) render.FormatFunc {
	renderMu.Lock()
	defer renderMu.Unlock()
	old := renderFunc
	renderFunc = f
	return old
}

// SetShowFunc installs a new ShowFunc for live-print and Sort, and
// returns the previous one.
func SetShowFunc(f render.ShowFunc) render.ShowFunc {
	renderMu.Lock()
	defer renderMu.Unlock()
	old := showFunc
	showFunc = f
	return old
}

func currentRenderFuncs() (render.FormatFunc, render.ShowFunc) {
	renderMu.Lock()
	defer renderMu.Unlock()
	return renderFunc, showFunc
}

// dumpCursor tracks Sort's read position within one recorder's ring.
// There is one per recorder, created on first use and kept in the
// package-level dumpCursors map, so each Sort call resumes from wherever
// the previous call left that recorder.
type dumpCursor struct {
	pos uint64
}

var dumpCursors sync.Map // *Recorder -> *dumpCursor

func cursorFor(rec *Recorder) *dumpCursor {
	v, _ := dumpCursors.LoadOrStore(rec, &dumpCursor{})
	return v.(*dumpCursor)
}

// Sort performs one pattern-matched, globally-ordered dump pass: among
// all registered recorders whose name fully matches pattern
// (case-insensitive extended regex), it repeatedly picks the one whose
// oldest unread Event has the smallest Order, reads it, and emits it via
// formatFn/showFn, until no matching recorder has anything left to read.
//
// It returns the number of events dumped, and 0 (with no error exposed
// beyond the return value, per spec) if pattern fails to compile.
func Sort(pattern string, formatFn render.FormatFunc, showFn render.ShowFunc, out io.Writer) int {
	re, err := regexp.Compile("(?i)^(?:" + pattern + ")$")
	if err != nil {
		return 0
	}

	var matching []*Recorder
	for _, rec := range All() {
		if re.MatchString(rec.name) {
			matching = append(matching, rec)
		}
	}

	dumped := 0
	for {
		winner, ok := pickOldest(matching)
		if !ok {
			return dumped
		}

		cur := cursorFor(winner)
		buf := make([]Event, 1)
		n := winner.r.Read(buf, &cur.pos, nil, nil)
		if n == 0 {
			// Catch-up snap: this recorder's cursor moved but nothing
			// was read. Don't count it; loop again.
			continue
		}

		ev := buf[0]
		message := renderMessage(ev)
		formatFn(showFn, out, winner.name, ev.Where, ev.Order, ev.Timestamp, message)
		dumped++
	}
}

// pickOldest peeks every matching recorder's oldest unread event and
// returns the recorder whose event has the smallest Order.
func pickOldest(recorders []*Recorder) (winner *Recorder, ok bool) {
	bestOrder := uint64(0)
	found := false
	for _, rec := range recorders {
		cur := cursorFor(rec)
		if rec.r.Readable(&cur.pos) == 0 {
			continue
		}
		peeked, peekOK := rec.r.Peek(&cur.pos)
		if !peekOK {
			continue
		}
		if !found || peeked.Order < bestOrder {
			winner = rec
			bestOrder = peeked.Order
			found = true
		}
	}
	return winner, found
}

// renderMessage renders an Event's Format/Args pair to a string. When the
// event carries its original arguments (Raw, populated by Record), those
// are used directly — this is what lets a %s verb render actual string
// content instead of a packed word. Events recorded through RecordArgs
// have no Raw and fall back to reconstructing arguments from the packed
// machine words (floats un-punned back via the format string's own
// conversion specifiers, per the spec's bit-punning contract); %s in that
// path is handed a uint64 and so renders as fmt's bad-verb form
// ("%!s(uint64=N)"), not string content.
func renderMessage(ev Event) string {
	if ev.Raw != nil {
		return fmt.Sprintf(ev.Format, ev.Raw...)
	}

	converted := make([]any, ev.NArgs)
	for i := 0; i < ev.NArgs; i++ {
		switch nthVerb(ev.Format, i) {
		case verbFloat:
			converted[i] = Float(ev.Args[i])
		case verbSigned:
			converted[i] = int64(ev.Args[i])
		default:
			converted[i] = ev.Args[i]
		}
	}
	return fmt.Sprintf(ev.Format, converted...)
}
