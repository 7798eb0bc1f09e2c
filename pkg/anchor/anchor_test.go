/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package anchor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vc-engine/pkg/api"
	"github.com/trustbloc/vc-engine/pkg/doc/credential"
)

func TestExtractEvidence(t *testing.T) {
	t.Run("finds the anchoring record", func(t *testing.T) {
		vc := &credential.Credential{
			Evidence: []credential.Evidence{
				{"type": "DocumentVerification", "verifier": "https://example.edu/verifiers/14"},
				NewEvidence("eip155:1", "0xabc123", "zQmWvQxTqbG2Z9HPJgG57jjwR154cKhbtJenbyYTWkjgF3e"),
			},
		}

		ev := ExtractEvidence(vc)
		require.NotNil(t, ev)
		require.Equal(t, EvidenceType, ev.Type)
		require.Equal(t, "eip155:1", ev.ChainID)
		require.Equal(t, "0xabc123", ev.TxRef)
		require.Equal(t, "zQmWvQxTqbG2Z9HPJgG57jjwR154cKhbtJenbyYTWkjgF3e", ev.AnchorHash)
	})

	t.Run("no evidence at all", func(t *testing.T) {
		require.Nil(t, ExtractEvidence(&credential.Credential{}))
	})

	t.Run("no anchoring record among evidence", func(t *testing.T) {
		vc := &credential.Credential{
			Evidence: []credential.Evidence{{"type": "DocumentVerification"}},
		}

		require.Nil(t, ExtractEvidence(vc))
	})
}

func TestValidateStructure(t *testing.T) {
	t.Run("complete record", func(t *testing.T) {
		require.NoError(t, ValidateStructure(&api.AnchorEvidence{
			Type:    EvidenceType,
			ChainID: "eip155:1",
			TxRef:   "0xabc123",
		}))
	})

	t.Run("nil record", func(t *testing.T) {
		require.EqualError(t, ValidateStructure(nil), "anchor evidence is nil")
	})

	t.Run("missing chain id", func(t *testing.T) {
		err := ValidateStructure(&api.AnchorEvidence{TxRef: "0xabc123"})
		require.EqualError(t, err, "anchor evidence is missing chain id")
	})

	t.Run("missing transaction reference", func(t *testing.T) {
		err := ValidateStructure(&api.AnchorEvidence{ChainID: "eip155:1"})
		require.EqualError(t, err, "anchor evidence is missing transaction reference")
	})
}

func TestNewEvidence(t *testing.T) {
	ev := NewEvidence("eip155:1", "0xabc123", "zdigest")

	vc := &credential.Credential{Evidence: []credential.Evidence{ev}}

	extracted := ExtractEvidence(vc)
	require.NotNil(t, extracted)
	require.NoError(t, ValidateStructure(extracted))
	require.Equal(t, "zdigest", extracted.AnchorHash)
}
