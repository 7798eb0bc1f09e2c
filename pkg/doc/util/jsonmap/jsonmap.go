/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jsonmap converts between typed wire structs and JSON object maps
// while preserving fields the structs do not model.
package jsonmap

import (
	"encoding/json"
	"fmt"
)

// ToMap converts a struct, JSON string or JSON bytes to a JSON object map.
func ToMap(v interface{}) (map[string]interface{}, error) {
	var (
		b   []byte
		err error
	)

	switch cv := v.(type) {
	case []byte:
		b = cv
	case string:
		b = []byte(cv)
	default:
		b, err = json.Marshal(v)
		if err != nil {
			return nil, err
		}
	}

	var m map[string]interface{}

	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("convert to map: %w", err)
	}

	return m, nil
}

// MarshalWithExtra marshals v merged with the extra fields map. Fields modeled
// by v win on conflict.
func MarshalWithExtra(v interface{}, extra map[string]interface{}) ([]byte, error) {
	vm, err := ToMap(v)
	if err != nil {
		return nil, err
	}

	for k, ev := range extra {
		if _, exists := vm[k]; !exists {
			vm[k] = ev
		}
	}

	return json.Marshal(vm)
}

// UnmarshalWithExtra unmarshals data into v and collects every JSON field not
// modeled by v into extra.
func UnmarshalWithExtra(data []byte, v interface{}, extra map[string]interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}

	modeled, err := ToMap(v)
	if err != nil {
		return err
	}

	var all map[string]interface{}

	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	for k, av := range all {
		if _, ok := modeled[k]; !ok {
			extra[k] = av
		}
	}

	return nil
}
