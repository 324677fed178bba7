// Package shmem implements the shared-memory channel file ("Shans") used
// to export numeric samples from recorder arguments to a separate
// process. A Shans file is a single mmap'd file holding a small header
// followed by a bump-allocated, singly-linked list of Shan records, each
// embedding its own lock-free sample ring.
//
// Everything in this package is addressed by byte offset from the start
// of the mapping, never by cached absolute pointer: the mapping can move
// on growth (see Chans.grow), and every accessor recomputes its address
// from the current mapping on each call, per the "remap invalidation
// rule".
package shmem
