/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

//nolint:gochecknoglobals
var cborDecMode = newCBORDecMode()

func newCBORDecMode() cbor.DecMode {
	// Decode maps with string keys so the credential document shape survives
	// the binary round trip unchanged.
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}

	return dm
}

// MarshalCBOR serializes the credential into its binary wire form. The binary
// form carries the same document as MarshalJSON and round-trips losslessly
// against it for every claim value kind.
func (vc *Credential) MarshalCBOR() ([]byte, error) {
	raw, err := vc.raw()
	if err != nil {
		return nil, err
	}

	doc, err := raw.toMap()
	if err != nil {
		return nil, err
	}

	encoded, err := cbor.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal credential to CBOR: %w", err)
	}

	return encoded, nil
}

// ParseCBOR parses the binary wire form into a credential.
func ParseCBOR(data []byte) (*Credential, error) {
	var doc map[string]interface{}

	if err := cborDecMode.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid encoding: %w", err)
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credential document: %w", err)
	}

	return ParseJSON(jsonBytes)
}
