package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dionbett/chatrelay/src/aisdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndWindow(t *testing.T) {
	store := NewStore(8)

	store.Append(1, aisdk.RoleUser, "hello")
	store.Append(1, aisdk.RoleAssistant, "hi there")

	window := store.Window(1)
	require.Len(t, window, 2)
	assert.Equal(t, aisdk.RoleUser, window[0].Role)
	assert.Equal(t, "hello", window[0].Content)
	assert.Equal(t, aisdk.RoleAssistant, window[1].Role)
	assert.Equal(t, "hi there", window[1].Content)
}

func TestWindowUnknownUserIsEmpty(t *testing.T) {
	store := NewStore(8)
	assert.Empty(t, store.Window(42))
}

func TestFIFOEviction(t *testing.T) {
	store := NewStore(4)

	for i := 0; i < 10; i++ {
		store.Append(1, aisdk.RoleUser, fmt.Sprintf("msg-%d", i))
	}

	window := store.Window(1)
	require.Len(t, window, 4)
	for i, msg := range window {
		assert.Equal(t, fmt.Sprintf("msg-%d", i+6), msg.Content, "window keeps the most recent entries in order")
	}
}

func TestWindowNeverExceedsSize(t *testing.T) {
	store := NewStore(8)

	for i := 0; i < 100; i++ {
		store.Append(1, aisdk.RoleUser, "x")
		assert.LessOrEqual(t, len(store.Window(1)), 8)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	store := NewStore(8)

	store.Append(1, aisdk.RoleUser, "from user one")
	store.Append(2, aisdk.RoleUser, "from user two")

	require.Len(t, store.Window(1), 1)
	require.Len(t, store.Window(2), 1)
	assert.Equal(t, "from user one", store.Window(1)[0].Content)
	assert.Equal(t, "from user two", store.Window(2)[0].Content)
	assert.Equal(t, 2, store.Users())
}

func TestWindowReturnsCopy(t *testing.T) {
	store := NewStore(8)
	store.Append(1, aisdk.RoleUser, "hello")

	window := store.Window(1)
	window[0].Content = "mutated"

	assert.Equal(t, "hello", store.Window(1)[0].Content)
}

func TestDefaultWindowSize(t *testing.T) {
	store := NewStore(0)
	for i := 0; i < 20; i++ {
		store.Append(1, aisdk.RoleUser, "x")
	}
	assert.Len(t, store.Window(1), DefaultWindowSize)
}

func TestConcurrentAppends(t *testing.T) {
	store := NewStore(8)

	var wg sync.WaitGroup
	for user := int64(0); user < 8; user++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				store.Append(id, aisdk.RoleUser, "x")
				store.Window(id)
			}
		}(user)
	}
	wg.Wait()

	for user := int64(0); user < 8; user++ {
		assert.Len(t, store.Window(user), 8)
	}
}
