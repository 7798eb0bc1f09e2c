/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package status

import (
	"context"
	"fmt"
	"sync"

	"github.com/trustbloc/vc-engine/pkg/api"
)

// DefaultListSize is the bit capacity of a newly created list.
const DefaultListSize = 131072

// InMemoryStatusList is a status-list collaborator backed by in-process
// bitstrings, one per list id. Safe for concurrent use.
type InMemoryStatusList struct {
	mu    sync.RWMutex
	lists map[string]*BitString
	size  int
}

// NewInMemoryStatusList returns an empty in-memory status list collection.
func NewInMemoryStatusList() *InMemoryStatusList {
	return &InMemoryStatusList{
		lists: make(map[string]*BitString),
		size:  DefaultListSize,
	}
}

// Revoke sets the revocation bit for index on the named list, creating the
// list on first use.
func (s *InMemoryStatusList) Revoke(listID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[listID]
	if !ok {
		list = NewBitString(s.size)
		s.lists[listID] = list
	}

	return list.Set(index, true)
}

// IsRevoked reports whether the credential at the referenced index is
// revoked. An unknown list id is a lookup failure, not a revocation.
func (s *InMemoryStatusList) IsRevoked(_ context.Context, ref *api.StatusRef) (bool, error) {
	if ref == nil {
		return false, fmt.Errorf("status reference is nil")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.lists[ref.ID]
	if !ok {
		return false, fmt.Errorf("status list %q not found", ref.ID)
	}

	return list.Get(ref.Index)
}
