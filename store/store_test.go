package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string) *Config {
	t.Helper()
	doc := strings.NewReader(`
default_page_size: 32
handle_cache_size: 2
series:
  - name: cpu
    path: ` + filepath.Join(dir, "cpu.fid") + `
  - name: mem
    path: ` + filepath.Join(dir, "mem.fid") + `
`)
	cfg, err := LoadConfig(doc)
	require.NoError(t, err)
	return cfg
}

func TestAppendAndQuery(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	s := Open(cfg)
	defer s.Close()

	require.NoError(t, s.Append("cpu", []int64{1, 2, 3}))
	got, err := s.Query("cpu", []int64{0, 2, 10})
	require.NoError(t, err)
	require.Equal(t, []int64{0, 1, 3}, got)
}

func TestUnknownSeries(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	s := Open(cfg)
	defer s.Close()

	_, err := s.Query("disk", []int64{0})
	require.ErrorIs(t, err, ErrUnknownSeries)
}

func TestQueryManyAcrossSeries(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	s := Open(cfg)
	defer s.Close()

	require.NoError(t, s.Append("cpu", []int64{1, 2, 3}))
	require.NoError(t, s.Append("mem", []int64{5, 6, 7}))

	results, err := s.QueryMany(map[string][]int64{
		"cpu": {1, 3},
		"mem": {6, 100},
	})
	require.NoError(t, err)
	require.Equal(t, []int64{0, 2}, results["cpu"])
	require.Equal(t, []int64{1, 3}, results["mem"])
}

func TestHandleCacheEviction(t *testing.T) {
	dir := t.TempDir()
	doc := strings.NewReader(`
default_page_size: 32
handle_cache_size: 1
series:
  - name: a
    path: ` + filepath.Join(dir, "a.fid") + `
  - name: b
    path: ` + filepath.Join(dir, "b.fid") + `
`)
	cfg, err := LoadConfig(doc)
	require.NoError(t, err)
	s := Open(cfg)
	defer s.Close()

	require.NoError(t, s.Append("a", []int64{1}))
	require.NoError(t, s.Append("b", []int64{2}))

	// "a"'s handle should have been evicted by the cache-size-1 limit; a
	// fresh handle reopening the same underlying file must still work.
	_, err = s.Query("a", []int64{1})
	require.NoError(t, err)

	if _, statErr := os.Stat(filepath.Join(dir, "a.fid")); statErr != nil {
		t.Fatalf("expected a.fid to exist: %v", statErr)
	}
}
