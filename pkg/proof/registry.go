/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proof

import (
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
)

// Registry maps format ids to proof engines. Typically populated once at
// startup and read on every issue/verify call; safe for concurrent use.
// Construct one per issuer/verifier instead of sharing a process-wide
// singleton so tests get isolated instances.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewRegistry returns an empty engine registry.
func NewRegistry(engines ...Engine) *Registry {
	r := &Registry{engines: make(map[string]Engine)}

	for _, e := range engines {
		r.Register(e)
	}

	return r
}

// Register adds the engine under its format id, replacing any previous
// registration for that format.
func (r *Registry) Register(e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.engines[e.Format()] = e
}

// Resolve returns the engine registered for the format.
func (r *Registry) Resolve(format string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.engines[format]
	if !ok {
		return nil, fmt.Errorf("no proof engine registered for format %q", format)
	}

	return e, nil
}

// Formats returns the registered format ids.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Keys(r.engines)
}
