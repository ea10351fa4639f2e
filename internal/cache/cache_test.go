package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := New(time.Minute)

	c.Set("products:list", []string{"a", "b"})

	got, found := c.Get("products:list")
	require.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got)

	_, found = c.Get("missing")
	assert.False(t, found)
}

func TestExpiry(t *testing.T) {
	c := New(20 * time.Millisecond)

	c.Set("key", "value")
	_, found := c.Get("key")
	require.True(t, found)

	time.Sleep(30 * time.Millisecond)

	_, found = c.Get("key")
	assert.False(t, found)
}

func TestDeletePrefix(t *testing.T) {
	c := New(time.Minute)

	c.Set("products:list:1", 1)
	c.Set("products:list:2", 2)
	c.Set("categories:list", 3)

	c.DeletePrefix("products:")

	_, found := c.Get("products:list:1")
	assert.False(t, found)
	_, found = c.Get("products:list:2")
	assert.False(t, found)
	_, found = c.Get("categories:list")
	assert.True(t, found)
	assert.Equal(t, 1, c.Size())
}

func TestClear(t *testing.T) {
	c := New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	require.Equal(t, 2, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}
