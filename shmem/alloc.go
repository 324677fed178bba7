package shmem

import (
	"encoding/binary"
	"fmt"
)

const wordAlign = 8

func align8(n uint64) uint64 {
	if n%wordAlign == 0 {
		return n
	}
	return (n/wordAlign + 1) * wordAlign
}

// NewChan allocates a new channel record of the given type, ring size (in
// samples), name/description/unit, and declared value range.
//
// Allocation is always a bump from the header's allocCursor (the
// free_list, threaded by DeleteChan, is never consulted here — see
// DESIGN.md's Open Question decision). If the bump would run past the
// current mapping, the file is grown in page-sized increments and
// re-mapped; any handle obtained before the growth remains valid because
// it only ever dereferences through Chans.data, read fresh on every
// access.
func (c *Chans) NewChan(typ ChanType, size int, name, desc, unit string, min, max int64) (*Chan, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shmem: channel size must be positive, got %d", size)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ringBytes := uint64(size) * sampleBytes
	nameOff := uint64(shanHeaderSize) + ringBytes
	descOff := nameOff + uint64(len(name)) + 1
	unitOff := descOff + uint64(len(desc)) + 1
	recordSize := align8(unitOff + uint64(len(unit)) + 1)

	start := c.allocCursor()
	end := start + recordSize

	if end > uint64(c.mapSize()) {
		if err := c.grow(end); err != nil {
			return nil, fmt.Errorf("shmem: grow for new channel: %w", err)
		}
	}

	rec := start
	data := c.data

	binary.LittleEndian.PutUint32(data[rec+shanTypeOff:], uint32(typ))
	binary.LittleEndian.PutUint64(data[rec+shanNextOff:], 0)
	binary.LittleEndian.PutUint64(data[rec+shanNameOffOff:], nameOff)
	binary.LittleEndian.PutUint64(data[rec+shanDescOffOff:], descOff)
	binary.LittleEndian.PutUint64(data[rec+shanUnitOffOff:], unitOff)
	binary.LittleEndian.PutUint64(data[rec+shanMinOff:], uint64(min))
	binary.LittleEndian.PutUint64(data[rec+shanMaxOff:], uint64(max))
	binary.LittleEndian.PutUint64(data[rec+shanRingSizeOff:], uint64(size))
	binary.LittleEndian.PutUint64(data[rec+shanRingWriterOff:], 0)
	binary.LittleEndian.PutUint64(data[rec+shanRingCommitOff:], 0)
	binary.LittleEndian.PutUint64(data[rec+shanRingReaderOff:], 0)
	binary.LittleEndian.PutUint64(data[rec+shanRingOverflowOff:], 0)
	binary.LittleEndian.PutUint64(data[rec+shanDataOff:], shanHeaderSize)

	writeCString(data, rec+nameOff, name)
	writeCString(data, rec+descOff, desc)
	writeCString(data, rec+unitOff, unit)

	c.setAllocCursor(end)

	// Splice onto the live list: new records become the new head. This
	// keeps splice cost O(1) regardless of list length, the same
	// "prepend, don't append" shape the recorder and tweak registries use
	// over Go pointers instead of offsets.
	oldHead := c.head()
	binary.LittleEndian.PutUint64(data[rec+shanNextOff:], oldHead)
	c.setHead(rec)

	return &Chan{c: c, offset: rec}, nil
}

// grow extends the file to at least minSize bytes, rounded up to a page
// multiple, and re-mmaps it. Per the remap invalidation rule, no caller
// may hold a pointer into the old mapping across this call; all access
// goes through Chans.data, re-read on every operation.
func (c *Chans) grow(minSize uint64) error {
	newSize := roundUpPage(int(minSize))

	if err := ftruncateFile(c.file, int64(newSize)); err != nil {
		return err
	}

	newData, err := mmapFile(c.file, newSize)
	if err != nil {
		// Growth failed; the previous mapping is left intact and usable.
		return err
	}

	if err := munmapFile(c.data); err != nil {
		// We already remapped successfully; losing the old mapping's
		// unmap is not fatal to correctness, but surface it.
		c.data = newData
		return fmt.Errorf("shmem: old mapping unmap failed after growth: %w", err)
	}

	c.data = newData
	return nil
}

// DeleteChan unlinks ch from the live list and threads it onto the free
// list instead. The record's bytes are not reclaimed or reused by
// NewChan; see DESIGN.md.
func (c *Chans) DeleteChan(ch *Chan) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := uint64(0)
	cur := c.head()
	found := false
	for cur != 0 {
		if cur == ch.offset {
			found = true
			break
		}
		prev = cur
		cur = binary.LittleEndian.Uint64(c.data[cur+shanNextOff:])
	}
	if !found {
		return fmt.Errorf("shmem: channel at offset %d is not live", ch.offset)
	}

	next := binary.LittleEndian.Uint64(c.data[ch.offset+shanNextOff:])
	if prev == 0 {
		c.setHead(next)
	} else {
		binary.LittleEndian.PutUint64(c.data[prev+shanNextOff:], next)
	}

	binary.LittleEndian.PutUint64(c.data[ch.offset+shanNextOff:], c.freeList())
	c.setFreeList(ch.offset)
	return nil
}

// Channels returns every live channel, head-first.
func (c *Chans) Channels() []*Chan {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*Chan
	for off := c.head(); off != 0; off = binary.LittleEndian.Uint64(c.data[off+shanNextOff:]) {
		out = append(out, &Chan{c: c, offset: off})
	}
	return out
}

// FindChan returns the first live channel with the given exact name, or
// nil if none exists.
func (c *Chans) FindChan(name string) *Chan {
	for _, ch := range c.Channels() {
		if ch.Name() == name {
			return ch
		}
	}
	return nil
}
