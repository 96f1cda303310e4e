package cache

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := NewAt(t.TempDir(), time.Hour)
	require.NoError(t, err)

	_, ok := c.Get("https://pypi.org/simple/pyyaml/")
	assert.False(t, ok)

	require.NoError(t, c.Set("https://pypi.org/simple/pyyaml/", []byte(`{"versions": ["6.0.2"]}`)))

	data, ok := c.Get("https://pypi.org/simple/pyyaml/")
	require.True(t, ok)
	assert.Equal(t, `{"versions": ["6.0.2"]}`, string(data))

	// Different keys map to different files
	require.NoError(t, c.Set("other", []byte("x")))
	assert.NotEqual(t, c.Path("other"), c.Path("https://pypi.org/simple/pyyaml/"))
}

func TestCacheExpiry(t *testing.T) {
	c, err := NewAt(t.TempDir(), time.Minute)
	require.NoError(t, err)

	require.NoError(t, c.Set("key", []byte("value")))

	// Age the entry past its TTL
	stale := time.Now().Add(-2 * time.Minute)
	require.NoError(t, os.Chtimes(c.Path("key"), stale, stale))

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCacheRemoveAndClear(t *testing.T) {
	c, err := NewAt(t.TempDir(), time.Hour)
	require.NoError(t, err)

	require.NoError(t, c.Set("a", []byte("1")))
	require.NoError(t, c.Set("b", []byte("2")))

	require.NoError(t, c.Remove("a"))
	require.NoError(t, c.Remove("a")) // removing twice is fine
	_, ok := c.Get("a")
	assert.False(t, ok)

	require.NoError(t, c.Clear())
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestCacheDefaultTTL(t *testing.T) {
	c, err := NewAt(t.TempDir(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, c.TTL)
}
