// {{{ Copyright (c) Paul R. Tagliamonte <paultag@gmail.com> 2020-2021
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package ring

// Read copies up to len(buf) items into buf, starting at *readerCursor,
// and advances *readerCursor by however many were read. If *readerCursor
// equaled the ring's canonical reader before advancing, the canonical
// reader is advanced too (this caller was the "lead" reader).
//
// If *readerCursor has fallen behind the canonical reader (this caller
// was overrun by producers since its last Read), Read returns 0 and
// snaps *readerCursor forward to the canonical reader; the caller is
// expected to retry, at which point the read will succeed against
// whatever is still available. This is the "catch-up" contract: a Read
// returning 0 due to catch-up is not itself an error.
func (r *Ring[T]) Read(buf []T, readerCursor *uint64, before, after Hook[T]) int {
	if len(buf) == 0 {
		return 0
	}

	canonical := r.reader.Load()
	if *readerCursor < canonical {
		*readerCursor = canonical
		return 0
	}

	commit := r.commit.Load()
	avail := commit - *readerCursor
	if avail == 0 {
		return 0
	}

	n := uint64(len(buf))
	if n > avail {
		n = avail
	}

	start := *readerCursor
	end := start + n

	if before == nil && after == nil {
		for i, c := uint64(0), start; c < end; i, c = i+1, c+1 {
			buf[i] = r.items[r.index(c)]
		}
	} else {
		slots := make([]T, n)
		for i, c := uint64(0), start; c < end; i, c = i+1, c+1 {
			slots[i] = r.items[r.index(c)]
		}

		if before != nil {
			before(slots)
		}

		copy(buf, slots)

		if after != nil {
			after(slots)
		}
	}

	*readerCursor = end
	if start == canonical {
		r.reader.CompareAndSwap(canonical, end)
	}

	return int(n)
}

// Peek returns the oldest unread item at *readerCursor without advancing
// any cursor. ok is false if there is nothing readable at that cursor.
func (r *Ring[T]) Peek(readerCursor *uint64) (item T, ok bool) {
	canonical := r.reader.Load()
	if *readerCursor < canonical {
		return item, false
	}
	commit := r.commit.Load()
	if *readerCursor >= commit {
		return item, false
	}
	return r.items[r.index(*readerCursor)], true
}

// Readable reports how many items are available to read from
// *readerCursor right now. A cursor that has been overrun reports 0 here
// (the next Read will snap it forward instead of reading).
func (r *Ring[T]) Readable(readerCursor *uint64) int {
	canonical := r.reader.Load()
	if *readerCursor < canonical {
		return 0
	}
	commit := r.commit.Load()
	if *readerCursor >= commit {
		return 0
	}
	return int(commit - *readerCursor)
}

// Writable reports how many items could be claimed right now without
// immediately causing an overrun, based on the canonical reader cursor.
func (r *Ring[T]) Writable() int {
	writer := r.writer.Load()
	reader := r.reader.Load()
	inFlight := writer - reader
	if inFlight >= r.size {
		return 0
	}
	return int(r.size - inFlight)
}

// vim: foldmethod=marker
