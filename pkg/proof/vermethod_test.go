/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proof

import (
	"context"
	"testing"

	"github.com/multiformats/go-multibase"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vc-engine/pkg/api"
)

type mapResolver struct {
	docs map[string]*api.IdentifierDocument
}

func (r *mapResolver) Resolve(_ context.Context, id string) (*api.IdentifierDocument, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, api.ErrNotFound
	}

	return doc, nil
}

type panickyResolver struct{}

func (r *panickyResolver) Resolve(context.Context, string) (*api.IdentifierDocument, error) {
	panic("resolver crashed")
}

func TestResolveKey(t *testing.T) {
	keyBytes := []byte{1, 2, 3, 4}

	resolver := &mapResolver{docs: map[string]*api.IdentifierDocument{
		"did:example:issuer": {
			ID: "did:example:issuer",
			VerificationMethods: []api.VerificationMethod{
				{ID: "did:example:issuer#key-1", Type: "Ed25519VerificationKey2018", PublicKeyBytes: keyBytes},
			},
		},
	}}

	t.Run("resolves fully qualified reference", func(t *testing.T) {
		got, err := ResolveKey(context.Background(), resolver, "did:example:issuer#key-1")
		require.NoError(t, err)
		require.Equal(t, keyBytes, got)
	})

	t.Run("falls back to the first method for a bare identifier", func(t *testing.T) {
		got, err := ResolveKey(context.Background(), resolver, "did:example:issuer")
		require.NoError(t, err)
		require.Equal(t, keyBytes, got)
	})

	t.Run("matches by fragment suffix", func(t *testing.T) {
		fragResolver := &mapResolver{docs: map[string]*api.IdentifierDocument{
			"did:example:issuer": {
				ID: "did:example:issuer",
				VerificationMethods: []api.VerificationMethod{
					{ID: "#key-unrelated", PublicKeyBytes: []byte{9}},
					{ID: "#key-1", PublicKeyBytes: keyBytes},
				},
			},
		}}

		got, err := ResolveKey(context.Background(), fragResolver, "did:example:issuer#key-1")
		require.NoError(t, err)
		require.Equal(t, keyBytes, got)
	})

	t.Run("decodes multibase public key", func(t *testing.T) {
		encoded, err := multibase.Encode(multibase.Base58BTC, keyBytes)
		require.NoError(t, err)

		mbResolver := &mapResolver{docs: map[string]*api.IdentifierDocument{
			"did:example:issuer": {
				ID: "did:example:issuer",
				VerificationMethods: []api.VerificationMethod{
					{ID: "did:example:issuer#key-1", PublicKeyMultibase: encoded},
				},
			},
		}}

		got, err := ResolveKey(context.Background(), mbResolver, "did:example:issuer#key-1")
		require.NoError(t, err)
		require.Equal(t, keyBytes, got)
	})

	t.Run("nil resolver", func(t *testing.T) {
		_, err := ResolveKey(context.Background(), nil, "did:example:issuer#key-1")
		require.EqualError(t, err, "no identifier resolver available")
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := ResolveKey(context.Background(), resolver, "did:example:unknown#key-1")
		require.ErrorIs(t, err, api.ErrNotFound)
	})

	t.Run("unknown verification method", func(t *testing.T) {
		_, err := ResolveKey(context.Background(), resolver, "did:example:issuer#key-2")
		require.Error(t, err)
		require.Contains(t, err.Error(), "not found in document")
	})

	t.Run("method without key material", func(t *testing.T) {
		emptyResolver := &mapResolver{docs: map[string]*api.IdentifierDocument{
			"did:example:issuer": {
				ID:                  "did:example:issuer",
				VerificationMethods: []api.VerificationMethod{{ID: "did:example:issuer#key-1"}},
			},
		}}

		_, err := ResolveKey(context.Background(), emptyResolver, "did:example:issuer#key-1")
		require.EqualError(t, err, "verification method carries no public key")
	})

	t.Run("panicking resolver is contained", func(t *testing.T) {
		_, err := ResolveKey(context.Background(), &panickyResolver{}, "did:example:issuer#key-1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "identifier resolution panicked")
	})
}
