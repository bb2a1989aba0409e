package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoComputesOnce(t *testing.T) {
	m := New[int](4)
	var calls int32
	k := Key{Kind: "summary", Version: "v1", Label: "CONFIRMED", Columns: []string{"period"}}
	for i := 0; i < 3; i++ {
		v, err := m.Get(k, func() (int, error) {
			atomic.AddInt32(&calls, 1)
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}
	assert.Equal(t, int32(1), calls)
	hits, misses := m.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)
}

func TestMemoKeyDistinguishesInputs(t *testing.T) {
	m := New[string](0)
	get := func(k Key) string {
		v, _ := m.Get(k, func() (string, error) { return k.String(), nil })
		return v
	}
	a := get(Key{Version: "v1", Label: "CONFIRMED", Columns: []string{"a", "b"}})
	b := get(Key{Version: "v1", Label: "CONFIRMED", Columns: []string{"ab"}})
	c := get(Key{Version: "v1", Label: "CANDIDATE", Columns: []string{"a", "b"}})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 3, m.Len())
}

func TestMemoErrorsAreNotCached(t *testing.T) {
	m := New[int](4)
	k := Key{Version: "v1"}
	_, err := m.Get(k, func() (int, error) { return 0, errors.New("boom") })
	require.Error(t, err)
	assert.Equal(t, 0, m.Len())
	v, err := m.Get(k, func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestMemoCollapsesConcurrentMisses(t *testing.T) {
	m := New[int](4)
	var calls int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Get(Key{Version: "v1", Kind: "hist"}, func() (int, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return 42, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(8))
	assert.Equal(t, 1, m.Len())
}

func TestMemoEvictsLeastRecentlyUsed(t *testing.T) {
	m := New[int](2)
	put := func(label string, v int) {
		_, _ = m.Get(Key{Version: "v", Label: label}, func() (int, error) { return v, nil })
	}
	put("a", 1)
	put("b", 2)
	put("a", 1)
	put("c", 3)
	assert.Equal(t, 2, m.Len())

	var recomputed bool
	_, _ = m.Get(Key{Version: "v", Label: "b"}, func() (int, error) { recomputed = true; return 2, nil })
	assert.True(t, recomputed, "b was least recently used")
}

func TestMemoRetain(t *testing.T) {
	m := New[int](8)
	for _, v := range []string{"old", "old", "new"} {
		_, _ = m.Get(Key{Version: v, Label: v + "x"}, func() (int, error) { return 1, nil })
	}
	_, _ = m.Get(Key{Version: "old", Label: "y"}, func() (int, error) { return 1, nil })
	m.Retain("new")
	assert.Equal(t, 1, m.Len())
}
