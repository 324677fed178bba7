package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1 — single producer, single reader, small ring.
func TestRingBasicReadWrite(t *testing.T) {
	r, err := New[int](4)
	require.NoError(t, err)

	n := r.Write([]int{1, 2, 3, 4}, nil, nil, nil)
	assert.Equal(t, 4, n)

	var cursor uint64
	buf := make([]int, 4)
	got := r.Read(buf, &cursor, nil, nil)
	assert.Equal(t, 4, got)
	assert.Equal(t, []int{1, 2, 3, 4}, buf)
	assert.EqualValues(t, 0, r.Overflow())

	n = r.Write([]int{5, 6, 7}, nil, nil, nil)
	assert.Equal(t, 3, n)

	buf = make([]int, 3)
	got = r.Read(buf, &cursor, nil, nil)
	assert.Equal(t, 3, got)
	assert.Equal(t, []int{5, 6, 7}, buf)
	assert.EqualValues(t, 0, r.Overflow())
}

// S2 — overrun: write past capacity with no interleaved reads, verify the
// catch-up snap, then the read of the surviving tail.
func TestRingOverrunCatchUp(t *testing.T) {
	r, err := New[int](4)
	require.NoError(t, err)

	for i := 1; i <= 10; i++ {
		r.Write([]int{i}, nil, nil, nil)
	}
	assert.EqualValues(t, 6, r.Overflow())

	var cursor uint64
	buf := make([]int, 4)

	// First read: cursor (0) is behind the canonical reader (6), so this
	// call snaps forward and reports nothing read.
	got := r.Read(buf, &cursor, nil, nil)
	assert.Equal(t, 0, got)
	assert.EqualValues(t, 6, cursor)

	// Second read succeeds against the surviving tail.
	got = r.Read(buf, &cursor, nil, nil)
	assert.Equal(t, 4, got)
	assert.Equal(t, []int{7, 8, 9, 10}, buf)
	assert.EqualValues(t, 6, r.Overflow())
}

// Invariant 5 — catch-up idempotence: a Read returning 0 due to catch-up,
// immediately followed by another Read, must not loop forever and must
// yield the oldest surviving item.
func TestRingCatchUpIdempotent(t *testing.T) {
	r, err := New[int](2)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		r.Write([]int{i}, nil, nil, nil)
	}

	var cursor uint64
	buf := make([]int, 1)
	got := r.Read(buf, &cursor, nil, nil)
	require.Equal(t, 0, got)

	got = r.Read(buf, &cursor, nil, nil)
	require.Equal(t, 1, got)
	assert.Equal(t, 3, buf[0])
}

// Invariant 1 & 2 — monotonicity and no-loss when in-flight items never
// exceed capacity.
func TestRingNoLossWithinCapacity(t *testing.T) {
	r, err := New[int](1024)
	require.NoError(t, err)

	var wg sync.WaitGroup
	const producers = 8
	const perProducer = 64

	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				r.Write([]int{1}, nil, nil, nil)
			}
		}()
	}
	wg.Wait()

	var cursor uint64
	total := 0
	buf := make([]int, 16)
	for {
		n := r.Read(buf, &cursor, nil, nil)
		if n == 0 && r.Empty() {
			break
		}
		total += n
	}

	assert.Equal(t, producers*perProducer, total)
	assert.EqualValues(t, 0, r.Overflow())
}

// Invariant 3 — lossy accounting: written == read + dropped, for an
// interleaving that does overrun the reader.
func TestRingLossyAccounting(t *testing.T) {
	r, err := New[int](8)
	require.NoError(t, err)

	written := 0
	for i := 0; i < 100; i++ {
		r.Write([]int{i}, nil, nil, nil)
		written++
	}

	var cursor uint64
	read := 0
	buf := make([]int, 4)
	for {
		n := r.Read(buf, &cursor, nil, nil)
		if n == 0 {
			if r.Readable(&cursor) == 0 {
				break
			}
			continue
		}
		read += n
	}

	assert.Equal(t, written, read+int(r.Overflow()))
}

func TestRingPeekDoesNotAdvance(t *testing.T) {
	r, err := New[int](4)
	require.NoError(t, err)
	r.Write([]int{42}, nil, nil, nil)

	var cursor uint64
	item, ok := r.Peek(&cursor)
	require.True(t, ok)
	assert.Equal(t, 42, item)
	assert.Equal(t, 1, r.Readable(&cursor))

	// peeking again yields the same item, unchanged
	item, ok = r.Peek(&cursor)
	require.True(t, ok)
	assert.Equal(t, 42, item)
}

func TestNewRejectsNonPositiveSize(t *testing.T) {
	_, err := New[int](0)
	assert.Error(t, err)
	_, err = New[int](-1)
	assert.Error(t, err)
}
