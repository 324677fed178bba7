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

// Write claims len(items) contiguous slots, copies items into them, and
// publishes the claim. It never blocks: if the claim overruns the reader,
// the reader is advanced past the lost slots and onOverflow (if non-nil)
// is told how many were lost. before/after, if non-nil, are called with
// the claimed slice immediately before and after the copy.
//
// Write is wait-free on its own account: the only potentially-looping
// step is the overrun-recovery CAS, which only a concurrent overrunning
// writer can make it retry. When before and after are both nil — the hot
// path every recorder uses — no intermediate slice is allocated: items
// are copied straight into the ring's backing array, since a claimed
// range may wrap and so isn't always a contiguous slice of r.items.
func (r *Ring[T]) Write(items []T, before, after Hook[T], onOverflow OverflowHook) int {
	n := uint64(len(items))
	if n == 0 {
		return 0
	}

	start := r.writer.Add(n) - n
	end := start + n

	if before == nil && after == nil {
		for i, c := 0, start; c < end; i, c = i+1, c+1 {
			r.items[r.index(c)] = items[i]
		}
	} else {
		slots := make([]T, n)
		copy(slots, items)

		if before != nil {
			before(slots)
		}

		for i, c := 0, start; c < end; i, c = i+1, c+1 {
			r.items[r.index(c)] = slots[i]
		}

		if after != nil {
			after(slots)
		}
	}

	r.commit.Add(n)
	r.recoverOverrun(end, onOverflow)

	return int(n)
}

// recoverOverrun checks whether a claim ending at writerEnd has run past
// the reader by more than the ring's capacity, and if so, drags the
// canonical reader cursor forward by the overrun amount, crediting the
// loss to overflow. The adjustment is a CAS loop so that two producers
// racing to recover the same overrun don't both advance past each other.
func (r *Ring[T]) recoverOverrun(writerEnd uint64, onOverflow OverflowHook) {
	for {
		readerOld := r.reader.Load()
		inFlight := writerEnd - readerOld
		if inFlight <= r.size {
			return
		}
		lost := inFlight - r.size
		if r.reader.CompareAndSwap(readerOld, readerOld+lost) {
			r.overflow.Add(lost)
			if onOverflow != nil {
				onOverflow(lost)
			}
			return
		}
		// Lost the race to another producer's recovery; reload and
		// recheck, since the winner may already have moved the reader
		// far enough for us.
	}
}

// vim: foldmethod=marker
