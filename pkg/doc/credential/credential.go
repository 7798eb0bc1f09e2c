/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package credential defines the verifiable credential data model: an
// immutable signed claim-set with optional status, schema and evidence
// references, carried either as a JSON document with an embedded proof or as
// a compact selective-disclosure token.
package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/trustbloc/vc-engine/pkg/doc/canonical"
)

const (
	// BaseContext is the context every credential document carries.
	BaseContext = "https://www.w3.org/2018/credentials/v1"

	// BaseType is the marker type every credential type list must include.
	BaseType = "VerifiableCredential"
)

// Proof type markers.
const (
	// SelectiveDisclosureProofType marks a proof carried as a compact
	// selective-disclosure token.
	SelectiveDisclosureProofType = "SelectiveDisclosureToken"
)

// TypedID is an id/type reference used for the credential schema.
type TypedID struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type,omitempty"`
}

// Status references the credential's entry in a revocation status list.
type Status struct {
	ID              string `json:"id,omitempty"`
	Type            string `json:"type,omitempty"`
	StatusListIndex int    `json:"statusListIndex,omitempty"`
}

// Subject holds the claims a credential asserts about one subject.
type Subject struct {
	ID     string
	Claims map[string]interface{}
}

// DecodeClaims decodes the claim map into a typed struct.
func (s *Subject) DecodeClaims(out interface{}) error {
	return mapstructure.Decode(s.Claims, out)
}

// LinkedDataProof is an embedded linked-data signature.
type LinkedDataProof struct {
	Type               string     `json:"type,omitempty"`
	Created            *time.Time `json:"created,omitempty"`
	VerificationMethod string     `json:"verificationMethod,omitempty"`
	ProofPurpose       string     `json:"proofPurpose,omitempty"`
	ProofValue         string     `json:"proofValue,omitempty"`
}

// SelectiveDisclosureToken is a compact signed token with optional per-claim
// disclosure segments.
type SelectiveDisclosureToken struct {
	Token       string   `json:"token,omitempty"`
	Disclosures []string `json:"disclosures,omitempty"`
}

// Proof is the tagged proof variant attached to a credential: exactly one of
// the members is set.
type Proof struct {
	LinkedData *LinkedDataProof
	SDToken    *SelectiveDisclosureToken
}

// Type returns the proof suite type for a linked-data proof, or the
// selective-disclosure marker type.
func (p *Proof) Type() string {
	switch {
	case p == nil:
		return ""
	case p.LinkedData != nil:
		return p.LinkedData.Type
	case p.SDToken != nil:
		return SelectiveDisclosureProofType
	default:
		return ""
	}
}

// Evidence is a supporting evidence entry attached to a credential.
type Evidence map[string]interface{}

// Credential is the verifiable credential model. A credential with a proof
// attached is treated as immutable: mutating operations return a new value.
type Credential struct {
	Context []string
	ID      string
	Types   []string
	Issuer  string
	Issued  *time.Time
	Expired *time.Time

	// RawExpired preserves a wire expiration value that failed to parse, so
	// the verifier can report it instead of silently dropping it.
	RawExpired string

	Subject  Subject
	Status   *Status
	Schema   *TypedID
	Evidence []Evidence
	Proof    *Proof

	// CustomFields keeps wire fields outside the model so encode/decode
	// round-trips losslessly.
	CustomFields map[string]interface{}
}

// WithProof returns a copy of the credential with the proof attached. The
// receiver is left untouched.
func (vc *Credential) WithProof(p *Proof) *Credential {
	clone := *vc
	clone.Proof = p

	return &clone
}

// Document returns the credential as a JSON object map with the proof and
// other volatile fields excluded. This is the form that gets canonicalized,
// digested and signed.
func (vc *Credential) Document() (map[string]interface{}, error) {
	raw, err := vc.raw()
	if err != nil {
		return nil, err
	}

	raw.Proof = nil

	return raw.toMap()
}

// Digest fingerprints the credential document: the digest is a pure function
// of the canonical form and is unchanged by proof attachment.
func (vc *Credential) Digest() (string, error) {
	doc, err := vc.Document()
	if err != nil {
		return "", err
	}

	return canonical.Digest(doc)
}

// Validate checks the structural invariants of the credential model.
func (vc *Credential) Validate() error {
	if len(vc.Types) == 0 {
		return errors.New("credential type list is empty")
	}

	if !containsType(vc.Types, BaseType) {
		return fmt.Errorf("credential type list does not include %q", BaseType)
	}

	if vc.Issuer == "" {
		return errors.New("credential issuer is empty")
	}

	if vc.Issued == nil {
		return errors.New("credential issuance date is not set")
	}

	return nil
}

func containsType(types []string, t string) bool {
	for _, ct := range types {
		if ct == t {
			return true
		}
	}

	return false
}
