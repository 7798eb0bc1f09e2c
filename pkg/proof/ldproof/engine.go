/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ldproof implements the linked-data signature proof format:
// canonicalize the credential document, sign the canonical bytes, embed the
// signature value in the credential's proof object.
package ldproof

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vc-engine/internal/logfields"
	"github.com/trustbloc/vc-engine/pkg/api"
	"github.com/trustbloc/vc-engine/pkg/doc/canonical"
	"github.com/trustbloc/vc-engine/pkg/doc/credential"
	"github.com/trustbloc/vc-engine/pkg/proof"
)

// Format is the proof format id of this engine.
const Format = "ldp"

const (
	engineName    = "Linked Data Signature"
	engineVersion = "1.0"

	defaultSuiteType = "Ed25519Signature2018"
	proofPurpose     = "assertionMethod"
)

var logger = log.New("vc-engine/ldproof")

// Engine is the linked-data signature proof engine.
type Engine struct {
	suiteType   string
	signer      api.Signer
	resolver    api.Resolver
	sigVerifier proof.SignatureVerifier
	canon       *canonical.Canonicalizer
	rdf         *canonical.RDFProcessor
	now         func() time.Time
}

// Opt is an Engine option.
type Opt func(e *Engine)

// WithSigner wires the signer capability used at issuance.
func WithSigner(s api.Signer) Opt {
	return func(e *Engine) {
		e.signer = s
	}
}

// WithResolver wires the identifier resolver used to fetch verification keys.
func WithResolver(r api.Resolver) Opt {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithSignatureVerifier wires the cryptographic signature check.
func WithSignatureVerifier(v proof.SignatureVerifier) Opt {
	return func(e *Engine) {
		e.sigVerifier = v
	}
}

// WithSuiteType overrides the proof suite type embedded in issued proofs.
func WithSuiteType(suiteType string) Opt {
	return func(e *Engine) {
		e.suiteType = suiteType
	}
}

// WithCanonicalizer overrides the canonicalizer, e.g. to change size limits.
func WithCanonicalizer(c *canonical.Canonicalizer) Opt {
	return func(e *Engine) {
		e.canon = c
	}
}

// WithRDFNormalization signs over the URDNA2015 RDF dataset of the document
// instead of its canonical JSON form. Requires documents with resolvable or
// inline JSON-LD contexts.
func WithRDFNormalization(p *canonical.RDFProcessor) Opt {
	return func(e *Engine) {
		e.rdf = p
	}
}

// New returns a linked-data signature engine.
func New(opts ...Opt) *Engine {
	e := &Engine{
		suiteType: defaultSuiteType,
		canon:     canonical.New(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Format returns the engine's format id.
func (e *Engine) Format() string { return Format }

// Name returns the format name.
func (e *Engine) Name() string { return engineName }

// Version returns the format version.
func (e *Engine) Version() string { return engineVersion }

// Capabilities returns the format's feature flags.
func (e *Engine) Capabilities() proof.Capabilities {
	return proof.Capabilities{
		Presentation: true,
		Revocation:   true,
	}
}

// Issue signs the canonical form of the unsigned credential and returns the
// embedded proof.
func (e *Engine) Issue(ctx context.Context, unsigned *credential.Credential,
	req *proof.IssuanceRequest) (*credential.Proof, error) {
	if req.Format != Format {
		return nil, fmt.Errorf("%w: got %q, engine implements %q", proof.ErrFormatMismatch, req.Format, Format)
	}

	if e.signer == nil {
		return nil, proof.ErrNoSigner
	}

	signingInput, err := e.signingInput(unsigned)
	if err != nil {
		return nil, err
	}

	signature, err := e.signer.Sign(ctx, signingInput, req.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("sign credential: %w", err)
	}

	created := e.now().UTC()

	logger.Debug("issued linked data proof", logfields.WithCredentialID(unsigned.ID),
		logfields.WithProofFormat(Format))

	return &credential.Proof{
		LinkedData: &credential.LinkedDataProof{
			Type:               e.suiteType,
			Created:            &created,
			VerificationMethod: req.KeyRef,
			ProofPurpose:       proofPurpose,
			ProofValue:         base64.RawURLEncoding.EncodeToString(signature),
		},
	}, nil
}

// Verify checks the embedded linked-data proof. Every expected failure mode
// lands in the result; Verify never returns an error for them.
func (e *Engine) Verify(ctx context.Context, vc *credential.Credential) *proof.VerifyResult {
	if vc.Proof == nil {
		return proof.Invalid("no proof")
	}

	ldp := vc.Proof.LinkedData
	if ldp == nil {
		return proof.Invalid("credential proof is not a linked data proof")
	}

	if ldp.Type == "" {
		return proof.Invalid("proof type is blank")
	}

	if ldp.VerificationMethod == "" {
		return proof.Invalid("proof verification method is blank")
	}

	if ldp.ProofValue == "" {
		return proof.Invalid("proof is missing signature value")
	}

	signingInput, err := e.signingInput(vc)
	if err != nil {
		return proof.Invalid(fmt.Sprintf("canonicalize credential: %s", err))
	}

	signature, err := base64.RawURLEncoding.DecodeString(ldp.ProofValue)
	if err != nil {
		return proof.Invalid(fmt.Sprintf("decode signature value: %s", err))
	}

	pubKey, err := proof.ResolveKey(ctx, e.resolver, ldp.VerificationMethod)
	if err != nil {
		// Resolution failure is an expected condition: recorded, not thrown.
		return proof.Unresolvable(fmt.Sprintf("resolve verification method: %s", err))
	}

	if e.sigVerifier == nil {
		return &proof.VerifyResult{
			IssuerValid: true,
			Errors:      []string{"no signature verifier available"},
		}
	}

	if err := e.sigVerifier.Verify(pubKey, signingInput, signature); err != nil {
		return &proof.VerifyResult{
			IssuerValid: true,
			Errors:      []string{fmt.Sprintf("signature verification failed: %s", err)},
		}
	}

	return &proof.VerifyResult{ProofValid: true, IssuerValid: true}
}

// CreatePresentation bundles the credentials. The linked-data format has no
// selective disclosure, so every claim is revealed.
func (e *Engine) CreatePresentation(_ context.Context, creds []*credential.Credential,
	req *credential.PresentationRequest) (*credential.Presentation, error) {
	if len(creds) == 0 {
		return nil, fmt.Errorf("%w: presentation requires at least one credential", proof.ErrInvalidArgument)
	}

	holder := ""
	if req != nil {
		holder = req.Holder
	}

	return &credential.Presentation{
		Context:     []string{credential.BaseContext},
		Types:       []string{credential.PresentationType},
		Holder:      holder,
		Credentials: creds,
	}, nil
}

// signingInput is the byte form the proof signs: the canonical JSON of the
// proof-less document, or its RDF dataset when RDF normalization is on.
func (e *Engine) signingInput(vc *credential.Credential) ([]byte, error) {
	doc, err := vc.Document()
	if err != nil {
		return nil, err
	}

	if e.rdf != nil {
		return e.rdf.Normalize(doc)
	}

	return e.canon.Canonicalize(doc)
}
