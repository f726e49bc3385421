package main

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// cacheSnapshot is the durable part of a search cache: the deepest
// search results and the per-depth score vectors. The cheap memo tables
// are rebuilt on demand and not worth persisting.
type cacheSnapshot struct {
	TT        map[StateKey]TTEntry
	DepthMemo map[DepthKey][]float64
}

func (c *SearchCache) Snapshot() cacheSnapshot {
	snapshot := cacheSnapshot{
		TT:        make(map[StateKey]TTEntry, len(c.tt)),
		DepthMemo: make(map[DepthKey][]float64, len(c.depthMemo)),
	}
	for key, entry := range c.tt {
		snapshot.TT[key] = entry
	}
	for key, scores := range c.depthMemo {
		snapshot.DepthMemo[key] = append([]float64(nil), scores...)
	}
	return snapshot
}

func (c *SearchCache) Restore(snapshot cacheSnapshot) {
	for key, entry := range snapshot.TT {
		c.StoreTT(key, entry)
	}
	for key, scores := range snapshot.DepthMemo {
		c.StoreDepthScores(key, scores)
	}
}

// CacheStore persists cache snapshots in a badger database so a
// restarted process does not search from cold.
type CacheStore struct {
	db *badger.DB
}

func NewCacheStore(dir string) (*CacheStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache store %s: %w", dir, err)
	}
	return &CacheStore{db: db}, nil
}

func (s *CacheStore) Close() error {
	return s.db.Close()
}

func snapshotStoreKey(name string) []byte {
	return []byte("snapshot/" + name)
}

func (s *CacheStore) Save(name string, snapshot cacheSnapshot) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snapshot); err != nil {
		return fmt.Errorf("encode snapshot %s: %w", name, err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotStoreKey(name), buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	return nil
}

func (s *CacheStore) Load(name string) (cacheSnapshot, bool, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotStoreKey(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return cacheSnapshot{}, false, nil
	}
	if err != nil {
		return cacheSnapshot{}, false, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	var snapshot cacheSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snapshot); err != nil {
		return cacheSnapshot{}, false, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return snapshot, true, nil
}

func (s *CacheStore) Delete(name string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotStoreKey(name))
	})
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", name, err)
	}
	return nil
}
