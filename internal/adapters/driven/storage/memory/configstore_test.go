package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Load())
	assert.NoError(t, store.Save())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("wiki.base_url", "https://wiki.example.com"))
	require.NoError(t, store.Set("wiki.base_url", "https://other.example.com"))

	val, ok := store.Get("wiki.base_url")
	assert.True(t, ok)
	assert.Equal(t, "https://other.example.com", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("s", "text")
	_ = store.Set("i", 25)
	_ = store.Set("i64", int64(50))
	_ = store.Set("f", 2.5)
	_ = store.Set("b", true)

	assert.Equal(t, "text", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))

	assert.Equal(t, 25, store.GetInt("i"))
	assert.Equal(t, 50, store.GetInt("i64"))
	assert.Equal(t, 2, store.GetInt("f"))
	assert.Equal(t, 0, store.GetInt("s"))

	assert.InDelta(t, 2.5, store.GetFloat("f"), 0.001)
	assert.InDelta(t, 25.0, store.GetFloat("i"), 0.001)
	assert.InDelta(t, 0.0, store.GetFloat("missing"), 0.001)

	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("s"))
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("wiki.page_size", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("wiki.page_size")
		}()
	}
	wg.Wait()

	_, ok := store.Get("wiki.page_size")
	assert.True(t, ok)
}
