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

import (
	"fmt"
	"sync/atomic"
)

// Hook is called by Write/Read with the slice of items just committed or
// consumed, before (Before) or after (After) the operation takes effect.
// Hooks run on the caller's goroutine and must not block.
type Hook[T any] func(items []T)

// OverflowHook is invoked by Write when a claim overruns the reader; lost
// is the number of items dropped to make room.
type OverflowHook func(lost uint64)

// Ring is a fixed-capacity, lock-free, multi-producer/single-consumer
// bounded FIFO of items of type T.
type Ring[T any] struct {
	items []T
	size  uint64

	// writer is the next slot a producer will claim. commit is the next
	// slot whose write has completed (publication point). reader is the
	// canonical next slot a consumer will read; it is only ever advanced
	// by Read (on success) or by a producer's overrun-recovery CAS.
	//
	// Invariant: reader <= commit <= writer as unbounded integers.
	writer atomic.Uint64
	commit atomic.Uint64
	reader atomic.Uint64

	// overflow counts items lost because the reader was overrun.
	overflow atomic.Uint64
}

// New creates a Ring with room for size items. size must be positive; it
// need not be a power of two.
func New[T any](size int) (*Ring[T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("ring: size must be positive, got %d", size)
	}
	return &Ring[T]{
		items: make([]T, size),
		size:  uint64(size),
	}, nil
}

// Size returns the ring's fixed capacity.
func (r *Ring[T]) Size() int {
	return int(r.size)
}

// Overflow returns the total number of items ever dropped due to overrun.
func (r *Ring[T]) Overflow() uint64 {
	return r.overflow.Load()
}

// Reader returns the ring's canonical reader cursor. Exposed so a fresh
// caller cursor can be initialized to "don't miss anything that's already
// been overrun".
func (r *Ring[T]) Reader() uint64 {
	return r.reader.Load()
}

// Commit returns the ring's commit cursor (items published so far).
func (r *Ring[T]) Commit() uint64 {
	return r.commit.Load()
}

// Writer returns the ring's writer cursor (items claimed so far, some of
// which may still be in flight).
func (r *Ring[T]) Writer() uint64 {
	return r.writer.Load()
}

// index maps an unbounded counter to a physical slot.
func (r *Ring[T]) index(counter uint64) uint64 {
	return counter % r.size
}

// vim: foldmethod=marker
