/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jsonschema is the JSON Schema validator for the schema registry.
// A given schema is compiled once and reused for subsequent validations.
package jsonschema

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/trustbloc/logutil-go/pkg/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/trustbloc/vc-engine/internal/logfields"
	"github.com/trustbloc/vc-engine/pkg/doc/canonical"
	"github.com/trustbloc/vc-engine/pkg/schema"
)

var logger = log.New("vc-engine/jsonschema")

// Validator is a caching JSON Schema validator.
type Validator struct {
	mu    sync.RWMutex
	cache map[string]*gojsonschema.Schema
}

// New returns a JSON Schema validator with an empty compile cache.
func New() *Validator {
	return &Validator{cache: make(map[string]*gojsonschema.Schema)}
}

// Format returns the schema format the validator handles.
func (v *Validator) Format() string {
	return schema.FormatJSONSchema
}

// Validate checks doc against the JSON Schema definition.
func (v *Validator) Validate(doc, schemaDoc schema.Document) error {
	compiled, err := v.compile(schemaDoc)
	if err != nil {
		return err
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return errors.Wrap(err, "loader error")
	}

	if !result.Valid() {
		return errors.Wrap(validationErrors(result.Errors()), "validation error")
	}

	return nil
}

// compile returns the compiled form of the schema, keyed by its canonical
// digest so semantically-equal definitions share one compilation.
func (v *Validator) compile(schemaDoc schema.Document) (*gojsonschema.Schema, error) {
	key, err := canonical.Digest(schemaDoc)
	if err != nil {
		return nil, errors.Wrap(err, "fingerprint schema")
	}

	v.mu.RLock()
	compiled, ok := v.cache[key]
	v.mu.RUnlock()

	if ok {
		return compiled, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if compiled, ok = v.cache[key]; ok {
		return compiled, nil
	}

	compiled, err = gojsonschema.NewSchemaLoader().Compile(gojsonschema.NewGoLoader(schemaDoc))
	if err != nil {
		return nil, errors.Wrap(err, "compile JSON schema")
	}

	v.cache[key] = compiled

	logger.Debug("compiled JSON schema", logfields.WithSchemaID(key))

	return compiled, nil
}

type validationErrors []gojsonschema.ResultError

func (e validationErrors) Error() string {
	var msg string

	for i, resultErr := range e {
		msg += resultErr.String()
		if i+1 < len(e) {
			msg += "; "
		}
	}

	return "[" + msg + "]"
}
