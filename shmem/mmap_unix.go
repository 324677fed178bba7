//go:build linux || darwin

package shmem

import (
	"os"

	"golang.org/x/sys/unix"
)

// pageSize caches the platform page size; Shans files are always
// extended in page-sized increments.
var pageSize = unix.Getpagesize()

// mmapFile maps the first size bytes of fd SHARED, READ|WRITE.
//
// The teacher (pault.ag/go/go-diskring) reached for raw
// syscall.Syscall6(syscall.SYS_MMAP, ...) to get this mapping; this
// implementation uses golang.org/x/sys/unix.Mmap instead, which returns a
// normal []byte and is portable across the platforms x/sys/unix supports,
// rather than being pinned to one architecture's raw syscall numbers.
func mmapFile(fd *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(fd.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// munmapFile unmaps a mapping previously returned by mmapFile.
func munmapFile(data []byte) error {
	return unix.Munmap(data)
}

// ftruncateFile extends (or truncates) fd to exactly size bytes.
func ftruncateFile(fd *os.File, size int64) error {
	return unix.Ftruncate(int(fd.Fd()), size)
}

// roundUpPage rounds n up to the next multiple of the platform page size.
func roundUpPage(n int) int {
	if n%pageSize == 0 {
		return n
	}
	return (n/pageSize + 1) * pageSize
}
