package shmem

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"unsafe"
)

// Header layout (bytes from the start of the file), stable across remaps:
//
//	0   magic        uint32
//	4   version      uint32
//	8   head         uint64  (offset of first live Shan, 0 = none)
//	16  freeList     uint64  (offset of first deleted Shan, 0 = none)
//	24  allocCursor  uint64  (offset of the next never-yet-allocated byte)
const (
	headerSize = 32

	magicOff       = 0
	versionOff     = 4
	headOff        = 8
	freeListOff    = 16
	allocCursorOff = 24

	// magic identifies a Shans file; "REC1" as big-endian bytes, read as
	// a little-endian uint32.
	magic uint32 = 0x52454331
	// version is bumped whenever the on-disk layout changes
	// incompatibly.
	version uint32 = 1
)

var (
	// ErrBadMagic is returned by Open when the file's magic does not
	// identify it as a Shans file.
	ErrBadMagic = fmt.Errorf("shmem: bad magic")
	// ErrVersionMismatch is returned by Open when the file's version
	// does not match the version this package writes.
	ErrVersionMismatch = fmt.Errorf("shmem: version mismatch")
)

// Chans is a process-local handle onto a mapped Shans file. All channel
// handles (Chan) obtained from it address their data through Chans.data,
// never through a cached pointer, so that Chans.grow can relocate the
// mapping transparently.
type Chans struct {
	mu   sync.Mutex
	file *os.File
	data []byte
}

// New creates a new Shans file at path (O_CREATE|O_TRUNC, 0600), sized to
// one page, and writes an empty header.
func New(path string) (*Chans, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("shmem: create %s: %w", path, err)
	}

	size := roundUpPage(headerSize)
	if err := ftruncateFile(f, int64(size)); err != nil {
		f.Close()
		return nil, fmt.Errorf("shmem: truncate %s: %w", path, err)
	}

	data, err := mmapFile(f, size)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shmem: mmap %s: %w", path, err)
	}

	c := &Chans{file: f, data: data}
	c.setMagic(magic)
	c.setVersion(version)
	c.setHead(0)
	c.setFreeList(0)
	c.setAllocCursor(headerSize)
	return c, nil
}

// Open opens an existing Shans file at path, validates its header, and
// builds a process-local handle onto it.
func Open(path string) (*Chans, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("shmem: open %s: %w", path, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shmem: stat %s: %w", path, err)
	}
	if st.Size() < headerSize {
		f.Close()
		return nil, fmt.Errorf("shmem: %s too small to be a Shans file", path)
	}

	data, err := mmapFile(f, int(st.Size()))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shmem: mmap %s: %w", path, err)
	}

	c := &Chans{file: f, data: data}
	if c.magic() != magic {
		c.Close()
		return nil, ErrBadMagic
	}
	if c.version() != version {
		c.Close()
		return nil, ErrVersionMismatch
	}
	return c, nil
}

// Close unmaps the file and closes the underlying descriptor.
func (c *Chans) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := munmapFile(c.data); err != nil {
		return err
	}
	return c.file.Close()
}

// --- header accessors ---
//
// Every accessor reads straight from c.data, the current mapping, rather
// than a pointer captured at some earlier time: this is what lets
// Chans.grow relocate the mapping without invalidating any live Chan.

func (c *Chans) magic() uint32 { return binary.LittleEndian.Uint32(c.data[magicOff:]) }
func (c *Chans) setMagic(v uint32) {
	binary.LittleEndian.PutUint32(c.data[magicOff:], v)
}

func (c *Chans) version() uint32 { return binary.LittleEndian.Uint32(c.data[versionOff:]) }
func (c *Chans) setVersion(v uint32) {
	binary.LittleEndian.PutUint32(c.data[versionOff:], v)
}

func (c *Chans) head() uint64 { return binary.LittleEndian.Uint64(c.data[headOff:]) }
func (c *Chans) setHead(v uint64) {
	binary.LittleEndian.PutUint64(c.data[headOff:], v)
}

func (c *Chans) freeList() uint64 { return binary.LittleEndian.Uint64(c.data[freeListOff:]) }
func (c *Chans) setFreeList(v uint64) {
	binary.LittleEndian.PutUint64(c.data[freeListOff:], v)
}

func (c *Chans) allocCursor() uint64 { return binary.LittleEndian.Uint64(c.data[allocCursorOff:]) }
func (c *Chans) setAllocCursor(v uint64) {
	binary.LittleEndian.PutUint64(c.data[allocCursorOff:], v)
}

// u32At returns a pointer to the uint32 at the given byte offset of the
// current mapping, for use with sync/atomic's Uint32 helpers. The caller
// must not retain the pointer past a call that might grow (and thus
// remap) c.
func (c *Chans) u32At(offset uint64) *uint32 {
	return (*uint32)(unsafe.Pointer(&c.data[offset]))
}

// u64At is the uint64 analogue of u32At.
func (c *Chans) u64At(offset uint64) *uint64 {
	return (*uint64)(unsafe.Pointer(&c.data[offset]))
}

// mapSize returns the current size in bytes of the mapped file.
func (c *Chans) mapSize() int {
	return len(c.data)
}
