// Package store manages a set of named FID files, the way a graphing
// frontend serving many metrics would: one series per file, file handles
// kept warm in an LRU so a burst of queries against the same series
// doesn't reopen it every time, and concurrent queries across distinct
// series fanned out with an errgroup.
package store

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/errgroup"

	"github.com/navi-cx/fid/fid"
)

// ErrUnknownSeries is returned for any series name not present in the
// store's configuration.
var ErrUnknownSeries = errors.New("store: unknown series")

// Store serves append/query operations against a named set of FID files.
type Store struct {
	cfg *Config

	mu      sync.Mutex
	handles *lru.Cache
	open    map[string]*os.File
}

// Open returns a Store backed by cfg. It does not open any files itself;
// files are opened lazily on first use and cached thereafter.
func Open(cfg *Config) *Store {
	s := &Store{cfg: cfg, open: make(map[string]*os.File)}
	s.handles = s.newHandleCache()
	return s
}

// newHandleCache returns an LRU whose eviction callback closes the
// evicted file and drops it from s.open.
func (s *Store) newHandleCache() *lru.Cache {
	c := lru.New(s.cfg.HandleCacheSize)
	c.OnEvicted = func(key lru.Key, value interface{}) {
		value.(*os.File).Close()
		delete(s.open, key.(string))
	}
	return c
}

func (s *Store) handle(name string) (*os.File, int, error) {
	path, ok := s.cfg.path(name)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownSeries, name)
	}
	pageSize, _ := s.cfg.pageSize(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.handles.Get(name); ok {
		return v.(*os.File), pageSize, nil
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, 0, fmt.Errorf("store: open %q: %w", path, err)
	}
	s.handles.Add(name, f)
	s.open[name] = f
	return f, pageSize, nil
}

// Append appends samples to the named series.
func (s *Store) Append(name string, samples []int64) error {
	f, pageSize, err := s.handle(name)
	if err != nil {
		return err
	}
	return fid.AppendSamples(f, pageSize, samples)
}

// Query seeks to each of keys in the named series and returns the
// resulting ordinals.
func (s *Store) Query(name string, keys []int64) ([]int64, error) {
	f, pageSize, err := s.handle(name)
	if err != nil {
		return nil, err
	}
	return fid.QuerySamples(f, pageSize, keys)
}

// QueryMany runs one query per named series concurrently, returning a
// result map keyed the same way as queries. Concurrency is safe because
// distinct series never share a file handle, and the core's
// single-writer-per-file contract is only ever exercised by one goroutine
// per series.
func (s *Store) QueryMany(queries map[string][]int64) (map[string][]int64, error) {
	var mu sync.Mutex
	results := make(map[string][]int64, len(queries))

	g := new(errgroup.Group)
	for name, keys := range queries {
		name, keys := name, keys
		g.Go(func() error {
			res, err := s.Query(name, keys)
			if err != nil {
				return fmt.Errorf("series %q: %w", name, err)
			}
			mu.Lock()
			results[name] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close closes every cached file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for name, f := range s.open {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("store: close %q: %w", name, err)
		}
		delete(s.open, name)
	}
	// Dropped rather than drained through Remove/Clear, which would fire
	// OnEvicted and close each *os.File a second time.
	s.handles = s.newHandleCache()
	return firstErr
}
