// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned by Store.Load for a missing key.
var ErrNotFound = errors.New("session store: key not found")

// Store is durable key/value storage for the persisted session.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

// Store types.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
)

// OpenStore opens a store of the given type. An empty type means memory.
func OpenStore(storeType, path string) (Store, error) {
	switch storeType {
	case "", StoreMemory:
		return NewMemoryStore(), nil
	case StoreBadger:
		return OpenBadgerStore(path)
	default:
		return nil, fmt.Errorf("unknown session store type %q", storeType)
	}
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// BadgerStore persists entries in BadgerDB so a session survives restarts.
type BadgerStore struct {
	db    *badger.DB
	owned bool
}

// OpenBadgerStore opens (or creates) a BadgerDB at path. Close closes it.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	if path == "" {
		return nil, errors.New("badger session store requires a path")
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for session: %w", err)
	}
	return &BadgerStore{db: db, owned: true}, nil
}

// NewBadgerStoreFromDB wraps an existing DB. Close leaves it open.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (s *BadgerStore) Load(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) Save(_ context.Context, key string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), data); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return nil
	})
}

func (s *BadgerStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
