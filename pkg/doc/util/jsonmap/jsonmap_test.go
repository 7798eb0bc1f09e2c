/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testDoc struct {
	ID   string `json:"id,omitempty"`
	Kind string `json:"kind,omitempty"`
}

func TestToMap(t *testing.T) {
	t.Run("from struct", func(t *testing.T) {
		m, err := ToMap(&testDoc{ID: "doc-1", Kind: "sample"})
		require.NoError(t, err)
		require.Equal(t, map[string]interface{}{"id": "doc-1", "kind": "sample"}, m)
	})

	t.Run("from JSON string", func(t *testing.T) {
		m, err := ToMap(`{"id":"doc-1"}`)
		require.NoError(t, err)
		require.Equal(t, "doc-1", m["id"])
	})

	t.Run("from JSON bytes", func(t *testing.T) {
		m, err := ToMap([]byte(`{"id":"doc-1"}`))
		require.NoError(t, err)
		require.Equal(t, "doc-1", m["id"])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ToMap("not json")
		require.Error(t, err)
	})
}

func TestMarshalWithExtra(t *testing.T) {
	t.Run("merges extra fields", func(t *testing.T) {
		b, err := MarshalWithExtra(&testDoc{ID: "doc-1"}, map[string]interface{}{"custom": true})
		require.NoError(t, err)

		m, err := ToMap(b)
		require.NoError(t, err)
		require.Equal(t, "doc-1", m["id"])
		require.Equal(t, true, m["custom"])
	})

	t.Run("modeled fields win on conflict", func(t *testing.T) {
		b, err := MarshalWithExtra(&testDoc{ID: "doc-1"}, map[string]interface{}{"id": "shadow"})
		require.NoError(t, err)

		m, err := ToMap(b)
		require.NoError(t, err)
		require.Equal(t, "doc-1", m["id"])
	})
}

func TestUnmarshalWithExtra(t *testing.T) {
	t.Run("collects unmodeled fields", func(t *testing.T) {
		var doc testDoc

		extra := make(map[string]interface{})

		err := UnmarshalWithExtra([]byte(`{"id":"doc-1","kind":"sample","custom":"kept"}`), &doc, extra)
		require.NoError(t, err)
		require.Equal(t, "doc-1", doc.ID)
		require.Equal(t, "sample", doc.Kind)
		require.Equal(t, map[string]interface{}{"custom": "kept"}, extra)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		var doc testDoc

		err := UnmarshalWithExtra([]byte("not json"), &doc, map[string]interface{}{})
		require.Error(t, err)
	})
}
