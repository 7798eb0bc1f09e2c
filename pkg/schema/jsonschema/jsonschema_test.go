/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vc-engine/pkg/schema"
)

func degreeSchema() schema.Document {
	return schema.Document{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"properties": map[string]interface{}{
			"id":     map[string]interface{}{"type": "string"},
			"degree": map[string]interface{}{"type": "string"},
			"age":    map[string]interface{}{"type": "number", "minimum": float64(0)},
		},
		"required": []interface{}{"id", "degree"},
	}
}

func TestValidatorFormat(t *testing.T) {
	require.Equal(t, schema.FormatJSONSchema, New().Format())
}

func TestValidatorValidate(t *testing.T) {
	v := New()

	t.Run("conforming document", func(t *testing.T) {
		doc := schema.Document{
			"id":     "did:example:holder",
			"degree": "BachelorDegree",
			"age":    float64(29),
		}

		require.NoError(t, v.Validate(doc, degreeSchema()))
	})

	t.Run("missing required property", func(t *testing.T) {
		doc := schema.Document{"id": "did:example:holder"}

		err := v.Validate(doc, degreeSchema())
		require.Error(t, err)
		require.Contains(t, err.Error(), "validation error")
		require.Contains(t, err.Error(), "degree")
	})

	t.Run("wrong property type", func(t *testing.T) {
		doc := schema.Document{
			"id":     "did:example:holder",
			"degree": "BachelorDegree",
			"age":    "twenty-nine",
		}

		err := v.Validate(doc, degreeSchema())
		require.Error(t, err)
		require.Contains(t, err.Error(), "age")
	})

	t.Run("uncompilable schema", func(t *testing.T) {
		bad := schema.Document{"type": "not-a-real-type"}

		err := v.Validate(schema.Document{}, bad)
		require.Error(t, err)
		require.Contains(t, err.Error(), "compile JSON schema")
	})

	t.Run("compiled schema is reused", func(t *testing.T) {
		cached := New()

		doc := schema.Document{"id": "did:example:holder", "degree": "BachelorDegree"}

		require.NoError(t, cached.Validate(doc, degreeSchema()))
		require.NoError(t, cached.Validate(doc, degreeSchema()))
		require.Len(t, cached.cache, 1)
	})

	t.Run("works through the registry", func(t *testing.T) {
		r := schema.NewRegistry(New())

		doc := schema.Document{"id": "did:example:holder", "degree": "BachelorDegree"}

		require.NoError(t, r.ValidateSubject(doc, degreeSchema(), ""))
		require.Error(t, r.ValidateSubject(schema.Document{}, degreeSchema(), ""))
	})
}
