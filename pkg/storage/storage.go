// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/luxfi/database"
	"github.com/luxfi/database/badgerdb"
	"github.com/luxfi/database/memdb"

	"github.com/luxfi/lpx/pkg/errs"
)

// Store is the persistent object store backing the settlement engine.
// Entities are JSON-encoded under deterministic composite keys.
type Store struct {
	db database.Database
}

// New creates a store on luxfi/database.
func New(dbType string, path string) (*Store, error) {
	var db database.Database
	var err error

	switch dbType {
	case "memory":
		db = memdb.New()
	case "badger":
		db, err = badgerdb.New(path, nil, "", nil)
		if err != nil {
			return nil, err
		}
	default:
		// Default to badger
		db, err = badgerdb.New(path, nil, "", nil)
		if err != nil {
			return nil, err
		}
	}

	return &Store{db: db}, nil
}

// NewMemory creates an in-memory store, used by tests and the dev daemon.
func NewMemory() *Store {
	return &Store{db: memdb.New()}
}

// keySeparator joins composite key parts. Entity fields never contain NUL.
const keySeparator = "\x00"

// Key builds a deterministic composite key from an entity type and its
// identifying fields.
func Key(entity string, fields ...string) []byte {
	parts := append([]string{entity}, fields...)
	return []byte(strings.Join(parts, keySeparator))
}

// PutObject JSON-encodes and stores an entity.
func (s *Store) PutObject(key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Put(key, raw)
}

// GetObject loads and decodes an entity. A missing key surfaces as a typed
// NotFound error.
func (s *Store) GetObject(key []byte, v any) error {
	raw, err := s.db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return errs.NotFoundf("object %q does not exist", string(key))
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Has checks if a key exists
func (s *Store) Has(key []byte) (bool, error) {
	return s.db.Has(key)
}

// Delete removes a key-value pair
func (s *Store) Delete(key []byte) error {
	return s.db.Delete(key)
}

// IteratePrefix walks all entities under a composite-key prefix. The
// callback receives the raw JSON value; returning an error stops iteration.
func (s *Store) IteratePrefix(prefix []byte, fn func(key, value []byte) error) error {
	it := s.db.NewIteratorWithPrefix(prefix)
	defer it.Release()
	for it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
