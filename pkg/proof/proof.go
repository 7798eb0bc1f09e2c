/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package proof defines the pluggable proof format abstraction: every proof
// format is a peer implementation of the Engine capability set, selected
// through a format-id-keyed registry.
package proof

import (
	"context"
	"errors"
	"time"

	"github.com/trustbloc/vc-engine/pkg/doc/credential"
)

// Engine errors.
var (
	// ErrFormatMismatch is returned by Issue when the request names a
	// different format than the engine implements.
	ErrFormatMismatch = errors.New("issuance request format does not match engine format")

	// ErrNoSigner is returned by Issue when no signer capability is wired.
	ErrNoSigner = errors.New("no signer available")

	// ErrInvalidArgument is returned on structurally invalid input, e.g. a
	// presentation request with no credentials.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Capabilities are the feature flags a proof format advertises.
type Capabilities struct {
	SelectiveDisclosure bool
	ZeroKnowledge       bool
	Revocation          bool
	Presentation        bool
	Predicates          bool
}

// IssuanceRequest is the input to credential issuance.
type IssuanceRequest struct {
	// Format selects the proof engine.
	Format string

	// Issuer is the credential issuer identifier (DID or IRI).
	Issuer string

	// KeyRef names the issuer signing key at the signer capability.
	KeyRef string

	Subject credential.Subject
	Types   []string

	// Issued defaults to the current time when zero.
	Issued time.Time

	// Expires is the optional end of the validity window.
	Expires *time.Time

	// ID is the optional credential id; generated when empty.
	ID string

	// Status is the optional revocation status reference.
	Status *credential.Status

	// Schema is the optional schema reference.
	Schema *credential.TypedID

	// Evidence entries to embed, e.g. a blockchain anchoring record.
	Evidence []credential.Evidence
}

// VerifyResult is the proof-check portion of a verification outcome. The
// verifier composes it with the independent expiration, revocation, schema
// and anchor checks.
type VerifyResult struct {
	ProofValid  bool
	IssuerValid bool
	Errors      []string
}

// Invalid returns a failed proof check with the given error recorded. The
// issuer signal stays up: a structurally broken proof says nothing about the
// issuer itself.
func Invalid(msg string) *VerifyResult {
	return &VerifyResult{IssuerValid: true, Errors: []string{msg}}
}

// Unresolvable returns a failed proof check where the issuer's verification
// method could not be resolved, which takes the issuer signal down with it.
func Unresolvable(msg string) *VerifyResult {
	return &VerifyResult{Errors: []string{msg}}
}

// SignatureVerifier checks a raw signature against a resolved public key.
// Implementations carry the actual cryptographic primitives, which stay
// outside this module.
type SignatureVerifier interface {
	Verify(pubKey, message, signature []byte) error
}

// Engine is the capability set every proof format implements. Engines are
// stateless; collaborators are injected at construction and all operations
// are safe for concurrent use.
type Engine interface {
	// Format returns the format id the engine is registered under.
	Format() string

	// Name returns the human-readable format name.
	Name() string

	// Version returns the format version.
	Version() string

	// Capabilities returns the format's feature flags.
	Capabilities() Capabilities

	// Issue canonicalizes the unsigned credential, obtains a signature from
	// the signer capability and returns the attached proof.
	Issue(ctx context.Context, unsigned *credential.Credential, req *IssuanceRequest) (*credential.Proof, error)

	// Verify checks the credential's proof. Expected failure modes are
	// reported inside the result, never as a returned error.
	Verify(ctx context.Context, vc *credential.Credential) *VerifyResult

	// CreatePresentation bundles credentials for presentation, filtering
	// disclosed claims when the format supports selective disclosure.
	CreatePresentation(ctx context.Context, creds []*credential.Credential,
		req *credential.PresentationRequest) (*credential.Presentation, error)
}
