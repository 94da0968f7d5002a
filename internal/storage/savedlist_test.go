package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodbot/pkg"
)

func entry(name string) pkg.SavedEntry {
	return pkg.SavedEntry{
		Name:    name,
		MapLink: "https://www.google.com/maps/place/?q=place_id:" + name,
		Rating:  "4.5 (100 reviews)",
	}
}

func newTestStore(t *testing.T) *SavedListStore {
	t.Helper()
	s, err := NewSavedListStore(filepath.Join(t.TempDir(), "saved_lists.json"))
	require.NoError(t, err)
	return s
}

func TestAddIdempotentOnName(t *testing.T) {
	s := newTestStore(t)

	added, err := s.Add("u1", entry("牛肉湯老店"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add("u1", entry("牛肉湯老店"))
	require.NoError(t, err)
	assert.False(t, added)

	assert.Len(t, s.List("u1"), 1)
}

func TestRemoveFirstSubstringMatch(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("u1", entry("牛肉湯老店"))
	require.NoError(t, err)
	_, err = s.Add("u1", entry("度小月"))
	require.NoError(t, err)

	removed, ok, err := s.Remove("u1", "牛肉")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "牛肉湯老店", removed.Name)

	remaining := s.List("u1")
	require.Len(t, remaining, 1)
	assert.Equal(t, "度小月", remaining[0].Name)
}

func TestRemoveNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("u1", entry("度小月"))
	require.NoError(t, err)

	_, ok, err := s.Remove("u1", "鹹粥")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, s.List("u1"), 1)
}

func TestRoundTripPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved_lists.json")
	s, err := NewSavedListStore(path)
	require.NoError(t, err)

	names := []string{"牛肉湯老店", "度小月", "阿堂鹹粥"}
	for _, name := range names {
		_, err := s.Add("u1", entry(name))
		require.NoError(t, err)
	}
	_, err = s.Add("u2", entry("莉莉水果店"))
	require.NoError(t, err)

	reloaded, err := NewSavedListStore(path)
	require.NoError(t, err)

	list := reloaded.List("u1")
	require.Len(t, list, len(names))
	for i, name := range names {
		assert.Equal(t, name, list[i].Name)
	}
	assert.Len(t, reloaded.List("u2"), 1)
}

func TestMalformedFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved_lists.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s, err := NewSavedListStore(path)
	require.NoError(t, err)
	assert.Empty(t, s.List("u1"))
}

func TestListIsolatedPerUser(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("u1", entry("牛肉湯老店"))
	require.NoError(t, err)

	assert.Empty(t, s.List("u2"))
}
