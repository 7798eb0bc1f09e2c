/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proof

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"

	"github.com/trustbloc/vc-engine/pkg/api"
)

// ResolveKey resolves a verification-method reference ("did:ex:123#key-1" or
// a bare identifier) to public key bytes through the resolver capability.
// A panicking resolver is contained here: the engine records the failure in
// its result instead of crashing the verification.
func ResolveKey(ctx context.Context, resolver api.Resolver, vmRef string) (keyBytes []byte, err error) {
	if resolver == nil {
		return nil, errors.New("no identifier resolver available")
	}

	defer func() {
		if r := recover(); r != nil {
			keyBytes, err = nil, fmt.Errorf("identifier resolution panicked: %v", r)
		}
	}()

	id := vmRef
	if idx := strings.Index(vmRef, "#"); idx > 0 {
		id = vmRef[:idx]
	}

	doc, err := resolver.Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", id, err)
	}

	vm, ok := doc.VerificationMethodByID(vmRef)
	if !ok {
		if idx := strings.Index(vmRef, "#"); idx > 0 {
			// Fall back to fragment-only matching before giving up.
			for i := range doc.VerificationMethods {
				if strings.HasSuffix(doc.VerificationMethods[i].ID, vmRef[idx:]) {
					vm = &doc.VerificationMethods[i]
					ok = true

					break
				}
			}
		} else {
			// A bare identifier names no particular method: take the first.
			vm, ok = doc.VerificationMethodByID("")
		}

		if !ok {
			return nil, fmt.Errorf("verification method %q not found in document %q", vmRef, id)
		}
	}

	return keyBytesOf(vm)
}

func keyBytesOf(vm *api.VerificationMethod) ([]byte, error) {
	if len(vm.PublicKeyBytes) > 0 {
		return vm.PublicKeyBytes, nil
	}

	if vm.PublicKeyMultibase != "" {
		_, decoded, err := multibase.Decode(vm.PublicKeyMultibase)
		if err != nil {
			return nil, fmt.Errorf("decode public key multibase: %w", err)
		}

		return decoded, nil
	}

	return nil, errors.New("verification method carries no public key")
}
