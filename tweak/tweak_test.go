package tweak

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAndValue(t *testing.T) {
	tw := New("test_tweak_basic", "a basic tweak", 42)
	assert.Equal(t, "test_tweak_basic", tw.Name())
	assert.EqualValues(t, 42, tw.Value())

	tw.Set(7)
	assert.EqualValues(t, 7, tw.Value())
}

func TestFind(t *testing.T) {
	tw := New("test_tweak_find", "findable", 1)
	found := Find("test_tweak_find")
	assert.Same(t, tw, found)

	assert.Nil(t, Find("test_tweak_does_not_exist"))
}

func TestConcurrentRegistration(t *testing.T) {
	var wg sync.WaitGroup
	names := make([]string, 50)
	for i := range names {
		names[i] = "test_tweak_concurrent_" + string(rune('a'+i%26)) + string(rune('0'+i/26))
	}

	wg.Add(len(names))
	for _, n := range names {
		n := n
		go func() {
			defer wg.Done()
			New(n, "", int64(0))
		}()
	}
	wg.Wait()

	for _, n := range names {
		assert.NotNil(t, Find(n), "tweak %q should be registered", n)
	}
}
