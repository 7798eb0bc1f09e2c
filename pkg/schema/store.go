/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package schema

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrSchemaNotFound is returned by a Store when the referenced schema has no
// stored definition.
var ErrSchemaNotFound = errors.New("schema definition not found")

// Store resolves a schema reference id to its definition document.
// Implementations may fetch over the network; the verifier treats a missing
// definition as a degrade-not-fail condition.
type Store interface {
	ResolveSchema(ctx context.Context, id string) (Document, error)
}

// MapStore is an in-process schema store.
type MapStore struct {
	mu      sync.RWMutex
	schemas map[string]Document
}

// NewMapStore returns an empty in-process schema store.
func NewMapStore() *MapStore {
	return &MapStore{schemas: make(map[string]Document)}
}

// Put stores the definition under the schema id.
func (s *MapStore) Put(id string, def Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schemas[id] = def
}

// ResolveSchema returns the stored definition for the schema id.
func (s *MapStore) ResolveSchema(_ context.Context, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.schemas[id]
	if !ok {
		return nil, errors.Wrap(ErrSchemaNotFound, id)
	}

	return def, nil
}
