package shmem

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// ChanType is the inferred scalar type of the samples a channel carries.
type ChanType uint32

const (
	// None is the initial state of every channel: no sample has been
	// written through the live-trace path yet.
	None ChanType = iota
	// Real marks a channel whose values are bit-punned float64s.
	Real
	// Signed marks a channel whose values are signed integers.
	Signed
	// Unsigned marks a channel whose values are unsigned/character/hex/
	// pointer data.
	Unsigned
	// Invalid marks a channel whose format specifier could not be
	// classified.
	Invalid
)

// Shan record layout (bytes from the start of the record), stable across
// remaps:
//
//	0   type         uint32  (atomically CAS'd on first sample)
//	4   _pad         uint32
//	8   next         uint64  (offset of next Shan, 0 = none)
//	16  nameOff      uint64  (offset of NUL-terminated name, from record start)
//	24  descOff      uint64  (offset of NUL-terminated description)
//	32  unitOff      uint64  (offset of NUL-terminated unit)
//	40  min          int64
//	48  max          int64
//	56  ringSize     uint64  (sample slots)
//	64  ringWriter   uint64
//	72  ringCommit   uint64
//	80  ringReader   uint64
//	88  ringOverflow uint64
//	96  dataOff      uint64  (offset of ring sample data, from record start)
//	104 <ring data, then name bytes, then desc bytes, then unit bytes>
const (
	shanTypeOff         = 0
	shanNextOff         = 8
	shanNameOffOff      = 16
	shanDescOffOff      = 24
	shanUnitOffOff      = 32
	shanMinOff          = 40
	shanMaxOff          = 48
	shanRingSizeOff     = 56
	shanRingWriterOff   = 64
	shanRingCommitOff   = 72
	shanRingReaderOff   = 80
	shanRingOverflowOff = 88
	shanDataOff         = 96
	shanHeaderSize      = 104

	// sampleWords is the number of uint64 words per sample: a
	// (timestamp, value) pair.
	sampleWords = 2
	sampleBytes = sampleWords * 8
)

// Chan is a handle onto one Shan record within a Chans mapping. It holds
// only the owning Chans and a byte offset — never an absolute pointer —
// so it stays valid across Chans.grow relocating the mapping.
type Chan struct {
	c      *Chans
	offset uint64
}

func (ch *Chan) typePtr() *uint32     { return ch.c.u32At(ch.offset + shanTypeOff) }
func (ch *Chan) nextPtr() *uint64     { return ch.c.u64At(ch.offset + shanNextOff) }
func (ch *Chan) writerPtr() *uint64   { return ch.c.u64At(ch.offset + shanRingWriterOff) }
func (ch *Chan) commitPtr() *uint64   { return ch.c.u64At(ch.offset + shanRingCommitOff) }
func (ch *Chan) readerPtr() *uint64   { return ch.c.u64At(ch.offset + shanRingReaderOff) }
func (ch *Chan) overflowPtr() *uint64 { return ch.c.u64At(ch.offset + shanRingOverflowOff) }

// Type returns the channel's current (possibly still None) sample type.
func (ch *Chan) Type() ChanType {
	return ChanType(atomic.LoadUint32(ch.typePtr()))
}

// InferType attempts to set the channel's type from None to t. It is a
// no-op (and returns false) if the type has already been inferred by
// this or another producer; returns true if this call performed the
// transition.
func (ch *Chan) InferType(t ChanType) bool {
	if t == None {
		return false
	}
	return atomic.CompareAndSwapUint32(ch.typePtr(), uint32(None), uint32(t))
}

func (ch *Chan) next() uint64 { return binary.LittleEndian.Uint64(ch.c.data[ch.offset+shanNextOff:]) }
func (ch *Chan) setNext(v uint64) {
	binary.LittleEndian.PutUint64(ch.c.data[ch.offset+shanNextOff:], v)
}

func (ch *Chan) ringSize() uint64 {
	return binary.LittleEndian.Uint64(ch.c.data[ch.offset+shanRingSizeOff:])
}

func (ch *Chan) dataOff() uint64 {
	return binary.LittleEndian.Uint64(ch.c.data[ch.offset+shanDataOff:])
}

// Min returns the channel's declared minimum value.
func (ch *Chan) Min() int64 {
	return int64(binary.LittleEndian.Uint64(ch.c.data[ch.offset+shanMinOff:]))
}

// Max returns the channel's declared maximum value.
func (ch *Chan) Max() int64 {
	return int64(binary.LittleEndian.Uint64(ch.c.data[ch.offset+shanMaxOff:]))
}

// Name returns the channel's NUL-terminated name.
func (ch *Chan) Name() string {
	off := binary.LittleEndian.Uint64(ch.c.data[ch.offset+shanNameOffOff:])
	return readCString(ch.c.data, ch.offset+off)
}

// Description returns the channel's NUL-terminated description.
func (ch *Chan) Description() string {
	off := binary.LittleEndian.Uint64(ch.c.data[ch.offset+shanDescOffOff:])
	return readCString(ch.c.data, ch.offset+off)
}

// Unit returns the channel's NUL-terminated unit label.
func (ch *Chan) Unit() string {
	off := binary.LittleEndian.Uint64(ch.c.data[ch.offset+shanUnitOffOff:])
	return readCString(ch.c.data, ch.offset+off)
}

func readCString(data []byte, off uint64) string {
	end := off
	for end < uint64(len(data)) && data[end] != 0 {
		end++
	}
	return string(data[off:end])
}

func writeCString(data []byte, off uint64, s string) {
	copy(data[off:], s)
	data[off+uint64(len(s))] = 0
}

// sampleOffset returns the byte offset, relative to the Chans mapping, of
// sample slot index within this channel's ring data.
func (ch *Chan) sampleOffset(index uint64) uint64 {
	slot := index % ch.ringSize()
	return ch.offset + ch.dataOff() + slot*sampleBytes
}

// bitsFromFloat64 and float64FromBits implement the producer/consumer
// sides of the float bit-punning contract: a float64 is carried through a
// machine word unchanged, and reconstructed only by a reader that already
// knows (from the channel's inferred Real type, or from the format
// string at the recorder layer) that the word is a float.
func bitsFromFloat64(f float64) uint64    { return math.Float64bits(f) }
func float64FromBits(bits uint64) float64 { return math.Float64frombits(bits) }
