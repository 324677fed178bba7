package shmem

import (
	"encoding/binary"
	"sync/atomic"
)

// Write appends one (timestamp, value) sample to the channel's embedded
// ring, using the same claim/publish/overrun-recovery protocol as
// package ring, but expressed directly over the mapped bytes (a Shan's
// ring cannot reuse ring.Ring[T] because its storage is raw mmap'd memory,
// not a Go slice of a generic element type).
func (ch *Chan) Write(timestamp uint64, value int64) {
	writer := ch.writerPtr()
	commit := ch.commitPtr()
	reader := ch.readerPtr()
	overflow := ch.overflowPtr()

	start := atomic.AddUint64(writer, 1) - 1
	off := ch.sampleOffset(start)
	binary.LittleEndian.PutUint64(ch.c.data[off:], timestamp)
	binary.LittleEndian.PutUint64(ch.c.data[off+8:], uint64(value))

	atomic.AddUint64(commit, 1)

	size := ch.ringSize()
	for {
		readerOld := atomic.LoadUint64(reader)
		writerEnd := start + 1
		inFlight := writerEnd - readerOld
		if inFlight <= size {
			return
		}
		lost := inFlight - size
		if atomic.CompareAndSwapUint64(reader, readerOld, readerOld+lost) {
			atomic.AddUint64(overflow, lost)
			return
		}
	}
}

// WriteFloat is a convenience wrapper that bit-puns v into the sample's
// value word, for channels whose inferred Type is Real.
func (ch *Chan) WriteFloat(timestamp uint64, v float64) {
	ch.Write(timestamp, int64(bitsFromFloat64(v)))
}

// Sample is one (timestamp, value) pair read back from a channel.
type Sample struct {
	Timestamp uint64
	Value     int64
}

// Float reinterprets s.Value as a float64, per the bit-punning contract.
func (s Sample) Float() float64 {
	return float64FromBits(uint64(s.Value))
}

// Read copies up to len(buf) samples starting at *readerCursor, advancing
// the cursor (and the channel's canonical reader, if this caller is in
// the lead) exactly as ring.Ring.Read does. A return of 0 with
// *readerCursor having moved means this caller was overrun and snapped
// forward; retry.
func (ch *Chan) Read(buf []Sample, readerCursor *uint64) int {
	if len(buf) == 0 {
		return 0
	}

	readerPtr := ch.readerPtr()
	commitPtr := ch.commitPtr()

	canonical := atomic.LoadUint64(readerPtr)
	if *readerCursor < canonical {
		*readerCursor = canonical
		return 0
	}

	commit := atomic.LoadUint64(commitPtr)
	avail := commit - *readerCursor
	if avail == 0 {
		return 0
	}

	n := uint64(len(buf))
	if n > avail {
		n = avail
	}

	start := *readerCursor
	for i := uint64(0); i < n; i++ {
		off := ch.sampleOffset(start + i)
		ts := binary.LittleEndian.Uint64(ch.c.data[off:])
		val := int64(binary.LittleEndian.Uint64(ch.c.data[off+8:]))
		buf[i] = Sample{Timestamp: ts, Value: val}
	}

	*readerCursor = start + n
	if start == canonical {
		atomic.CompareAndSwapUint64(readerPtr, canonical, *readerCursor)
	}

	return int(n)
}

// Readable reports how many samples are available to read from
// *readerCursor right now.
func (ch *Chan) Readable(readerCursor *uint64) int {
	canonical := atomic.LoadUint64(ch.readerPtr())
	if *readerCursor < canonical {
		return 0
	}
	commit := atomic.LoadUint64(ch.commitPtr())
	if *readerCursor >= commit {
		return 0
	}
	return int(commit - *readerCursor)
}

// Writable reports how many samples could be written right now without
// immediately causing an overrun.
func (ch *Chan) Writable() int {
	writer := atomic.LoadUint64(ch.writerPtr())
	reader := atomic.LoadUint64(ch.readerPtr())
	inFlight := writer - reader
	size := ch.ringSize()
	if inFlight >= size {
		return 0
	}
	return int(size - inFlight)
}

// WriterIndex returns the channel's current writer cursor.
func (ch *Chan) WriterIndex() uint64 { return atomic.LoadUint64(ch.writerPtr()) }

// ReaderIndex returns the channel's canonical reader cursor.
func (ch *Chan) ReaderIndex() uint64 { return atomic.LoadUint64(ch.readerPtr()) }

// Overflow returns the total samples ever dropped due to overrun.
func (ch *Chan) Overflow() uint64 { return atomic.LoadUint64(ch.overflowPtr()) }
