/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proof

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vc-engine/pkg/doc/credential"
)

type stubEngine struct {
	format string
}

func (e *stubEngine) Format() string  { return e.format }
func (e *stubEngine) Name() string    { return "Stub" }
func (e *stubEngine) Version() string { return "0.1" }

func (e *stubEngine) Capabilities() Capabilities { return Capabilities{} }

func (e *stubEngine) Issue(context.Context, *credential.Credential, *IssuanceRequest) (*credential.Proof, error) {
	return nil, nil
}

func (e *stubEngine) Verify(context.Context, *credential.Credential) *VerifyResult {
	return &VerifyResult{ProofValid: true, IssuerValid: true}
}

func (e *stubEngine) CreatePresentation(context.Context, []*credential.Credential,
	*credential.PresentationRequest) (*credential.Presentation, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	t.Run("resolve registered engine", func(t *testing.T) {
		r := NewRegistry(&stubEngine{format: "stub"})

		e, err := r.Resolve("stub")
		require.NoError(t, err)
		require.Equal(t, "stub", e.Format())
	})

	t.Run("resolve unknown format", func(t *testing.T) {
		r := NewRegistry()

		_, err := r.Resolve("unknown")
		require.Error(t, err)
		require.Contains(t, err.Error(), `no proof engine registered for format "unknown"`)
	})

	t.Run("register replaces previous engine", func(t *testing.T) {
		first := &stubEngine{format: "stub"}
		second := &stubEngine{format: "stub"}

		r := NewRegistry(first)
		r.Register(second)

		e, err := r.Resolve("stub")
		require.NoError(t, err)
		require.Same(t, second, e)
	})

	t.Run("formats", func(t *testing.T) {
		r := NewRegistry(&stubEngine{format: "a"}, &stubEngine{format: "b"})

		require.ElementsMatch(t, []string{"a", "b"}, r.Formats())
	})
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry(&stubEngine{format: "stub"})

	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		i := i

		wg.Add(2)

		go func() {
			defer wg.Done()

			r.Register(&stubEngine{format: fmt.Sprintf("format-%d", i)})
		}()

		go func() {
			defer wg.Done()

			if e, err := r.Resolve("stub"); err == nil {
				_ = e.Format()
			}

			_ = r.Formats()
		}()
	}

	wg.Wait()

	require.Len(t, r.Formats(), 33)

	e, err := r.Resolve("stub")
	require.NoError(t, err)
	require.Equal(t, "stub", e.Format())
}
