/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package schema maps schema-format identifiers to pluggable validators and
// auto-detects the format of a schema definition.
package schema

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// Schema format identifiers.
const (
	// FormatJSONSchema identifies JSON Schema definitions.
	FormatJSONSchema = "json-schema"

	// FormatSHACL identifies SHACL shape definitions.
	FormatSHACL = "shacl"
)

// ErrInvalidArgument is returned when validation is requested for an
// explicit format with no registered validator.
var ErrInvalidArgument = errors.New("invalid argument")

// Document is a parsed schema or instance document.
type Document = map[string]interface{}

// Validator validates a document against a schema definition of one format.
type Validator interface {
	// Format returns the schema format the validator handles.
	Format() string

	// Validate checks the document against the schema definition.
	Validate(doc, schemaDoc Document) error
}

// Registry is a mutable format-keyed validator collection. Construct one per
// verifier; the registry is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]Validator
}

// NewRegistry returns a registry pre-populated with the given validators.
func NewRegistry(validators ...Validator) *Registry {
	r := &Registry{validators: make(map[string]Validator)}

	for _, v := range validators {
		r.Register(v)
	}

	return r
}

// Register adds the validator under its format, replacing any previous one.
func (r *Registry) Register(v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.validators[v.Format()] = v
}

// Unregister removes the validator for the format, if any.
func (r *Registry) Unregister(format string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.validators, format)
}

// Get returns the validator registered for the format.
func (r *Registry) Get(format string) (Validator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.validators[format]

	return v, ok
}

// HasValidator reports whether a validator is registered for the format.
func (r *Registry) HasValidator(format string) bool {
	_, ok := r.Get(format)

	return ok
}

// RegisteredFormats returns the formats with a registered validator.
func (r *Registry) RegisteredFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Keys(r.validators)
}

// Clear removes every registered validator.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.validators = make(map[string]Validator)
}

// Validate checks doc against schemaDoc. An empty format auto-detects the
// schema format; an explicit format with no registered validator fails with
// ErrInvalidArgument.
func (r *Registry) Validate(doc, schemaDoc Document, format string) error {
	explicit := format != ""

	if !explicit {
		format = DetectFormat(schemaDoc)
	}

	v, ok := r.Get(format)
	if !ok {
		if explicit {
			return errors.Wrapf(ErrInvalidArgument, "no schema validator registered for format %q", format)
		}

		return errors.Errorf("no schema validator registered for detected format %q", format)
	}

	return v.Validate(doc, schemaDoc)
}

// ValidateSubject narrows validation to a credential subject document.
func (r *Registry) ValidateSubject(subjectDoc, schemaDoc Document, format string) error {
	return r.Validate(subjectDoc, schemaDoc, format)
}

// shaclNS is the expanded SHACL vocabulary namespace.
const shaclNS = "http://www.w3.org/ns/shacl#"

var shaclMarkers = []string{"targetClass", "property", "node"}

// DetectFormat inspects a schema definition and returns its format. SHACL
// markers win over JSON Schema markers; an unmarked document defaults to
// JSON Schema. Markers are recognized in both the "sh:" prefixed form and
// the expanded IRI form.
func DetectFormat(schemaDoc Document) string {
	for key := range schemaDoc {
		if isSHACLMarker(key) {
			return FormatSHACL
		}
	}

	return FormatJSONSchema
}

func isSHACLMarker(key string) bool {
	var local string

	switch {
	case strings.HasPrefix(key, "sh:"):
		local = strings.TrimPrefix(key, "sh:")
	case strings.HasPrefix(key, shaclNS):
		local = strings.TrimPrefix(key, shaclNS)
	default:
		return false
	}

	for _, marker := range shaclMarkers {
		if local == marker {
			return true
		}
	}

	return false
}
