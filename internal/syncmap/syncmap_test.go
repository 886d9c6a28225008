package syncmap

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_BasicOperations(t *testing.T) {
	sm := New[string, int]()

	sm.Store("one", 1)
	sm.Store("two", 2)

	val, ok := sm.Load("one")
	assert.True(t, ok)
	assert.Equal(t, 1, val)

	_, ok = sm.Load("three")
	assert.False(t, ok)

	sm.Delete("one")
	assert.Equal(t, 1, sm.Len())
	sm.Delete("missing")
}

func TestMap_LoadOrStore(t *testing.T) {
	sm := New[string, int]()

	actual, loaded := sm.LoadOrStore("k", 100)
	assert.Equal(t, 100, actual)
	assert.False(t, loaded)

	actual, loaded = sm.LoadOrStore("k", 200)
	assert.Equal(t, 100, actual)
	assert.True(t, loaded)
}

func TestKeysWithPrefix(t *testing.T) {
	sm := New[string, string]()
	sm.Store("favorites-2", "[]")
	sm.Store("favorites-1", "[]")
	sm.Store("theme", `"dark"`)

	assert.Equal(t, []string{"favorites-1", "favorites-2"}, KeysWithPrefix(sm, "favorites-"))
	assert.Len(t, KeysWithPrefix(sm, ""), 3)
}

func TestMap_Concurrent(t *testing.T) {
	sm := New[string, int]()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			sm.Store(strconv.Itoa(i), i)
			sm.Load(strconv.Itoa(i))
		})
	}
	wg.Wait()

	assert.Equal(t, 50, sm.Len())
}
