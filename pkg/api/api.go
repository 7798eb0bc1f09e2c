/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package api defines the collaborator interfaces the credential engine calls
// out to. Implementations are supplied by the host application: key management,
// identifier resolution, status list storage and anchor lookup all live outside
// this module.
package api

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Resolver when the identifier has no document.
var ErrNotFound = errors.New("identifier not found")

// Signer produces a signature over payload using the key referenced by keyRef.
// Implementations may be network-bound (KMS, HSM) and must honor ctx.
type Signer interface {
	Sign(ctx context.Context, payload []byte, keyRef string) ([]byte, error)
}

// VerificationMethod is a public key bound to an identifier document.
type VerificationMethod struct {
	ID                 string
	Type               string
	PublicKeyMultibase string
	PublicKeyBytes     []byte
}

// IdentifierDocument is the resolved form of a decentralized identifier.
type IdentifierDocument struct {
	ID                  string
	VerificationMethods []VerificationMethod
}

// VerificationMethodByID returns the verification method with the given id,
// or the first one when id is empty.
func (d *IdentifierDocument) VerificationMethodByID(id string) (*VerificationMethod, bool) {
	if len(d.VerificationMethods) == 0 {
		return nil, false
	}

	if id == "" {
		return &d.VerificationMethods[0], true
	}

	for i := range d.VerificationMethods {
		if d.VerificationMethods[i].ID == id {
			return &d.VerificationMethods[i], true
		}
	}

	return nil, false
}

// Resolver resolves an identifier to its document. A missing identifier is
// reported with ErrNotFound; any other error is a resolution failure.
type Resolver interface {
	Resolve(ctx context.Context, id string) (*IdentifierDocument, error)
}

// StatusRef points into a status list: the list identifier plus the entry
// index assigned to one credential.
type StatusRef struct {
	ID    string
	Type  string
	Index int
}

// StatusList answers revocation queries. Optional: a verifier without one
// degrades revocation checking to a warning.
type StatusList interface {
	IsRevoked(ctx context.Context, ref *StatusRef) (bool, error)
}

// AnchorEvidence is the blockchain anchoring record carried in credential
// evidence: which chain, which transaction, and the anchored digest.
type AnchorEvidence struct {
	Type       string
	ChainID    string
	TxRef      string
	AnchorHash string
}

// AnchorVerifier checks an anchoring record against the chain it references.
// Optional, like StatusList.
type AnchorVerifier interface {
	VerifyAnchor(ctx context.Context, ev *AnchorEvidence) (bool, error)
}
