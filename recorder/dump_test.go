package recorder

import (
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightrecorder/recorder/render"
)

func TestSortInterleavesByGlobalOrder(t *testing.T) {
	a, err := New("dump_test_interleave_a", "", 16)
	require.NoError(t, err)
	b, err := New("dump_test_interleave_b", "", 16)
	require.NoError(t, err)

	a.Record("a1", "here")
	b.Record("b1", "here")
	a.Record("a2", "here")
	b.Record("b2", "here")

	var lines []string
	formatFn := func(show render.ShowFunc, out io.Writer, name, where string, order, timestamp uint64, message string) {
		lines = append(lines, name+":"+message)
	}

	n := Sort("dump_test_interleave_.", formatFn, render.Show, &strings.Builder{})
	require.Equal(t, 4, n)
	assert.Equal(t, []string{
		"dump_test_interleave_a:a1",
		"dump_test_interleave_b:b1",
		"dump_test_interleave_a:a2",
		"dump_test_interleave_b:b2",
	}, lines)
}

func TestSortIsExhaustedAfterOneDrain(t *testing.T) {
	rec, err := New("dump_test_drain", "", 8)
	require.NoError(t, err)
	rec.Record("hello")

	out := &strings.Builder{}
	n := Sort("dump_test_drain", render.Default, render.Show, out)
	assert.Equal(t, 1, n)

	n = Sort("dump_test_drain", render.Default, render.Show, out)
	assert.Equal(t, 0, n)
}

func TestSortRendersStringArgumentContent(t *testing.T) {
	rec, err := New("dump_test_string_arg", "", 8)
	require.NoError(t, err)
	rec.Record("connected to %s", "here", "example.com")

	out := &strings.Builder{}
	n := Sort("dump_test_string_arg", render.Default, render.Show, out)
	require.Equal(t, 1, n)
	assert.Contains(t, out.String(), "connected to example.com")
	assert.NotContains(t, out.String(), "uint64=")
}

func TestSortSkipsNonMatchingRecorders(t *testing.T) {
	target, err := New("dump_test_pattern_target", "", 8)
	require.NoError(t, err)
	other, err := New("dump_test_pattern_other", "", 8)
	require.NoError(t, err)

	target.Record("t1")
	other.Record("o1")

	out := &strings.Builder{}
	n := Sort("dump_test_pattern_target", render.Default, render.Show, out)
	assert.Equal(t, 1, n)
	assert.Contains(t, out.String(), "dump_test_pattern_target")
	assert.NotContains(t, out.String(), "dump_test_pattern_other")
	assert.Equal(t, "dump_test_pattern_other", other.Name())
}

func TestSortInvalidPatternDumpsNothing(t *testing.T) {
	_, err := New("dump_test_invalid_pattern", "", 8)
	require.NoError(t, err)

	out := &strings.Builder{}
	n := Sort("(unterminated", render.Default, render.Show, out)
	assert.Equal(t, 0, n)
}

func TestRecordDuringConcurrentSort(t *testing.T) {
	rec, err := New("dump_test_concurrent", "", 1024)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			rec.Record("tick %d", "here", i)
		}
	}()

	total := 0
	go func() {
		defer wg.Done()
		out := &strings.Builder{}
		for i := 0; i < 50; i++ {
			total += Sort("dump_test_concurrent", render.Default, render.Show, out)
		}
	}()

	wg.Wait()
	out := &strings.Builder{}
	total += Sort("dump_test_concurrent", render.Default, render.Show, out)
	assert.Equal(t, 200, total)
}

func TestGlobalOrderIsTotalAcrossRecorders(t *testing.T) {
	a, err := New("dump_test_order_a", "", 8)
	require.NoError(t, err)
	b, err := New("dump_test_order_b", "", 8)
	require.NoError(t, err)

	a.Record("a1")
	b.Record("b1")
	a.Record("a2")

	var curA, curB uint64
	bufA := make([]Event, 1)
	a.r.Read(bufA, &curA, nil, nil)
	bufB := make([]Event, 1)
	b.r.Read(bufB, &curB, nil, nil)
	bufA2 := make([]Event, 1)
	a.r.Read(bufA2, &curA, nil, nil)

	assert.Less(t, bufA[0].Order, bufB[0].Order)
	assert.Less(t, bufB[0].Order, bufA2[0].Order)
}
