package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtracker/internal/nutrition"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewCache(filepath.Join(t.TempDir(), "food_cache.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheLookupMiss(t *testing.T) {
	c := newTestCache(t)

	profile, err := c.Lookup("unknown food")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestCacheStoreAndLookup(t *testing.T) {
	c := newTestCache(t)

	want := nutrition.Profile{Calories: 300, Protein: 4, Carbs: 40, Fat: 14}
	require.NoError(t, c.Store("bolo de banana", want))

	got, err := c.Lookup("bolo de banana")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestCacheExactMatchOnly(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Store("Banana Cake", nutrition.Profile{Calories: 300}))

	// Lookup is case-sensitive: no normalization anywhere.
	got, err := c.Lookup("banana cake")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheStoreReplaces(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Store("rice", nutrition.Profile{Calories: 100}))
	require.NoError(t, c.Store("rice", nutrition.Profile{Calories: 130, Carbs: 28}))

	got, err := c.Lookup("rice")
	require.NoError(t, err)
	require.NotNil(t, got)
	// Last write wins, no merge.
	assert.Equal(t, nutrition.Profile{Calories: 130, Carbs: 28}, *got)
}

func TestCacheStoreIdempotent(t *testing.T) {
	c := newTestCache(t)

	p := nutrition.Profile{Calories: 52, Protein: 0.3, Carbs: 14, Fat: 0.2}
	require.NoError(t, c.Store("apple", p))
	require.NoError(t, c.Store("apple", p))

	got, err := c.Lookup("apple")
	require.NoError(t, err)
	assert.Equal(t, p, *got)
}

func TestCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "food_cache.db")

	c, err := NewCache(path, nil)
	require.NoError(t, err)
	require.NoError(t, c.Store("frango", nutrition.Profile{Calories: 165, Protein: 31, Fat: 3.6}))
	require.NoError(t, c.Close())

	c2, err := NewCache(path, nil)
	require.NoError(t, err)
	defer c2.Close()

	got, err := c2.Lookup("frango")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 165, got.Calories, 1e-9)
}
