package shmem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.shan")

	c, err := New(path)
	require.NoError(t, err)
	defer c.Close()

	ch, err := c.NewChan(Real, 8, "val", "a test channel", "unit", 0, 100)
	require.NoError(t, err)

	ch.WriteFloat(1, 3.14)
	ch.WriteFloat(2, 2.71)

	c2, err := Open(path)
	require.NoError(t, err)
	defer c2.Close()

	got := c2.FindChan("val")
	require.NotNil(t, got)
	assert.Equal(t, "val", got.Name())
	assert.Equal(t, "a test channel", got.Description())
	assert.Equal(t, "unit", got.Unit())

	var cursor uint64
	buf := make([]Sample, 2)
	n := got.Read(buf, &cursor)
	require.Equal(t, 2, n)
	assert.EqualValues(t, 1, buf[0].Timestamp)
	assert.InDelta(t, 3.14, buf[0].Float(), 1e-9)
	assert.EqualValues(t, 2, buf[1].Timestamp)
	assert.InDelta(t, 2.71, buf[1].Float(), 1e-9)
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notashan.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, headerSize), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestGrowthAcrossManyChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.shan")
	c, err := New(path)
	require.NoError(t, err)
	defer c.Close()

	// Allocate enough channels (with large rings) to force at least one
	// grow() past the initial single page.
	for i := 0; i < 50; i++ {
		_, err := c.NewChan(Unsigned, 64, "chan", "", "", 0, 0)
		require.NoError(t, err)
	}

	assert.Len(t, c.Channels(), 50)
}

func TestDeleteChanMovesToFreeList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.shan")
	c, err := New(path)
	require.NoError(t, err)
	defer c.Close()

	ch, err := c.NewChan(None, 4, "doomed", "", "", 0, 0)
	require.NoError(t, err)
	require.Len(t, c.Channels(), 1)

	require.NoError(t, c.DeleteChan(ch))
	assert.Len(t, c.Channels(), 0)
	assert.EqualValues(t, ch.offset, c.freeList())
}

func TestTypeInferenceIsGuardedByCAS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.shan")
	c, err := New(path)
	require.NoError(t, err)
	defer c.Close()

	ch, err := c.NewChan(None, 4, "inferred", "", "", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, None, ch.Type())
	assert.True(t, ch.InferType(Real))
	assert.Equal(t, Real, ch.Type())
	// A second inference attempt must not overwrite the first.
	assert.False(t, ch.InferType(Signed))
	assert.Equal(t, Real, ch.Type())
}
