/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sdtoken implements the selective-disclosure token proof format:
// per-claim disclosure segments are salted and hashed, their digests are
// committed in a compact signed token, and a presentation can reveal any
// subset of the disclosures while the token signature stays valid.
package sdtoken

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/trustbloc/logutil-go/pkg/log"
	"golang.org/x/exp/maps"

	"github.com/trustbloc/vc-engine/internal/logfields"
	"github.com/trustbloc/vc-engine/pkg/api"
	"github.com/trustbloc/vc-engine/pkg/doc/credential"
	"github.com/trustbloc/vc-engine/pkg/doc/util/jsonmap"
	"github.com/trustbloc/vc-engine/pkg/proof"
)

// Format is the proof format id of this engine.
const Format = "sd-token"

const (
	engineName    = "Selective Disclosure Token"
	engineVersion = "1.0"

	defaultAlgorithm = "EdDSA"
	tokenType        = "vc+sd-token"

	compactParts = 3
)

var logger = log.New("vc-engine/sdtoken")

type tokenHeader struct {
	Algorithm string `json:"alg,omitempty"`
	Type      string `json:"typ,omitempty"`
	KeyID     string `json:"kid,omitempty"`
}

// Engine is the selective-disclosure token proof engine.
type Engine struct {
	algorithm   string
	signer      api.Signer
	resolver    api.Resolver
	sigVerifier proof.SignatureVerifier
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

// WithAlgorithm overrides the token header algorithm.
func WithAlgorithm(alg string) Opt {
	return func(e *Engine) {
		e.algorithm = alg
	}
}

// New returns a selective-disclosure token engine.
func New(opts ...Opt) *Engine {
	e := &Engine{
		algorithm: defaultAlgorithm,
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
		SelectiveDisclosure: true,
		Presentation:        true,
	}
}

// Issue builds the disclosure segments and the compact signed token over
// their digests.
func (e *Engine) Issue(ctx context.Context, unsigned *credential.Credential,
	req *proof.IssuanceRequest) (*credential.Proof, error) {
	if req.Format != Format {
		return nil, fmt.Errorf("%w: got %q, engine implements %q", proof.ErrFormatMismatch, req.Format, Format)
	}

	if e.signer == nil {
		return nil, proof.ErrNoSigner
	}

	disclosures, digests, err := buildDisclosures(unsigned.Subject.Claims)
	if err != nil {
		return nil, err
	}

	payload, err := e.buildPayload(unsigned, digests)
	if err != nil {
		return nil, err
	}

	headerBytes, err := json.Marshal(&tokenHeader{
		Algorithm: e.algorithm,
		Type:      tokenType,
		KeyID:     req.KeyRef,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal token header: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerBytes) +
		"." + base64.RawURLEncoding.EncodeToString(payload)

	signature, err := e.signer.Sign(ctx, []byte(signingInput), req.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	token := signingInput + "." + base64.RawURLEncoding.EncodeToString(signature)

	logger.Debug("issued selective disclosure token", logfields.WithCredentialID(unsigned.ID),
		logfields.WithProofFormat(Format))

	return &credential.Proof{
		SDToken: &credential.SelectiveDisclosureToken{
			Token:       token,
			Disclosures: disclosures,
		},
	}, nil
}

// Verify checks the compact token signature and the disclosure digests
// against the payload commitments.
func (e *Engine) Verify(ctx context.Context, vc *credential.Credential) *proof.VerifyResult {
	if vc.Proof == nil {
		return proof.Invalid("no proof")
	}

	tok := vc.Proof.SDToken
	if tok == nil {
		return proof.Invalid("credential proof is not a selective disclosure token")
	}

	if tok.Token == "" {
		return proof.Invalid("proof is missing token")
	}

	parts := strings.Split(tok.Token, ".")
	if len(parts) != compactParts {
		return proof.Invalid(fmt.Sprintf("token must have %d segments, got %d", compactParts, len(parts)))
	}

	header, err := parseHeader(parts[0])
	if err != nil {
		return proof.Invalid(err.Error())
	}

	if header.Algorithm == "" {
		return proof.Invalid("token algorithm is blank")
	}

	if header.KeyID == "" {
		return proof.Invalid("token key id is blank")
	}

	payload, err := parsePayload(parts[1])
	if err != nil {
		return proof.Invalid(err.Error())
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return proof.Invalid(fmt.Sprintf("decode token signature: %s", err))
	}

	pubKey, err := proof.ResolveKey(ctx, e.resolver, header.KeyID)
	if err != nil {
		return proof.Unresolvable(fmt.Sprintf("resolve verification method: %s", err))
	}

	if e.sigVerifier == nil {
		return &proof.VerifyResult{
			IssuerValid: true,
			Errors:      []string{"no signature verifier available"},
		}
	}

	signingInput := parts[0] + "." + parts[1]

	if err := e.sigVerifier.Verify(pubKey, []byte(signingInput), signature); err != nil {
		return &proof.VerifyResult{
			IssuerValid: true,
			Errors:      []string{fmt.Sprintf("signature verification failed: %s", err)},
		}
	}

	if err := verifyDisclosures(tok.Disclosures, payload); err != nil {
		return &proof.VerifyResult{
			IssuerValid: true,
			Errors:      []string{err.Error()},
		}
	}

	if err := verifyClaimBinding(vc.Subject.Claims, tok.Disclosures); err != nil {
		return &proof.VerifyResult{
			IssuerValid: true,
			Errors:      []string{err.Error()},
		}
	}

	return &proof.VerifyResult{ProofValid: true, IssuerValid: true}
}

// CreatePresentation bundles the credentials, filtering each credential's
// disclosure segments and claims down to the requested names.
func (e *Engine) CreatePresentation(_ context.Context, creds []*credential.Credential,
	req *credential.PresentationRequest) (*credential.Presentation, error) {
	if len(creds) == 0 {
		return nil, fmt.Errorf("%w: presentation requires at least one credential", proof.ErrInvalidArgument)
	}

	holder := ""

	var disclosed []string

	if req != nil {
		holder = req.Holder
		disclosed = req.DisclosedClaims
	}

	presented := make([]*credential.Credential, len(creds))

	for i, vc := range creds {
		filtered, err := filterDisclosed(vc, disclosed)
		if err != nil {
			return nil, err
		}

		presented[i] = filtered
	}

	return &credential.Presentation{
		Context:     []string{credential.BaseContext},
		Types:       []string{credential.PresentationType},
		Holder:      holder,
		Credentials: presented,
	}, nil
}

func (e *Engine) buildPayload(unsigned *credential.Credential, digests []string) ([]byte, error) {
	claims := jwt.Claims{
		Issuer: unsigned.Issuer,
		ID:     unsigned.ID,
	}

	if unsigned.Subject.ID != "" {
		claims.Subject = unsigned.Subject.ID
	}

	if unsigned.Issued != nil {
		claims.IssuedAt = jwt.NewNumericDate(*unsigned.Issued)
	}

	if unsigned.Expired != nil {
		claims.Expiry = jwt.NewNumericDate(*unsigned.Expired)
	}

	payload, err := jsonmap.ToMap(claims)
	if err != nil {
		return nil, fmt.Errorf("marshal token claims: %w", err)
	}

	payload[sdKey] = digests
	payload[sdAlgKey] = sdAlg
	payload["type"] = unsigned.Types

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal token payload: %w", err)
	}

	return b, nil
}

// buildDisclosures creates one disclosure per claim in stable name order and
// returns the segments together with their payload digests.
func buildDisclosures(claims map[string]interface{}) ([]string, []string, error) {
	names := maps.Keys(claims)
	sort.Strings(names)

	disclosures := make([]string, 0, len(names))
	digests := make([]string, 0, len(names))

	for _, name := range names {
		disclosure, err := newDisclosure(name, claims[name])
		if err != nil {
			return nil, nil, err
		}

		disclosures = append(disclosures, disclosure)
		digests = append(digests, disclosureDigest(disclosure))
	}

	return disclosures, digests, nil
}

// verifyClaimBinding checks that every claim the credential carries is backed
// by a disclosure segment with the same name and value. The disclosures are
// already digest-committed, so a claim map rewritten after issuance fails
// here even though the token signature still verifies.
func verifyClaimBinding(claims map[string]interface{}, disclosures []string) error {
	disclosed := make(map[string]interface{}, len(disclosures))

	for _, disclosure := range disclosures {
		claim, err := parseDisclosure(disclosure)
		if err != nil {
			return err
		}

		disclosed[claim.Name] = claim.Value
	}

	for name, value := range claims {
		disclosedValue, ok := disclosed[name]
		if !ok {
			return fmt.Errorf("claim %q is not backed by a disclosure", name)
		}

		if !claimValuesEqual(value, disclosedValue) {
			return fmt.Errorf("claim %q does not match its disclosure", name)
		}
	}

	return nil
}

// claimValuesEqual compares claim values through their JSON form, so values
// that differ only in Go type after a decode round trip still match.
func claimValuesEqual(a, b interface{}) bool {
	aBytes, err := json.Marshal(a)
	if err != nil {
		return false
	}

	bBytes, err := json.Marshal(b)
	if err != nil {
		return false
	}

	return bytes.Equal(aBytes, bBytes)
}

func verifyDisclosures(disclosures []string, payload map[string]interface{}) error {
	committed := make(map[string]struct{})

	if raw, ok := payload[sdKey].([]interface{}); ok {
		for _, d := range raw {
			if s, sok := d.(string); sok {
				committed[s] = struct{}{}
			}
		}
	}

	for _, disclosure := range disclosures {
		if _, err := parseDisclosure(disclosure); err != nil {
			return err
		}

		if _, ok := committed[disclosureDigest(disclosure)]; !ok {
			return fmt.Errorf("disclosure digest not committed in token payload")
		}
	}

	return nil
}

func filterDisclosed(vc *credential.Credential, disclosed []string) (*credential.Credential, error) {
	if vc.Proof == nil || vc.Proof.SDToken == nil || len(disclosed) == 0 {
		return vc, nil
	}

	keep := make(map[string]struct{}, len(disclosed))
	for _, name := range disclosed {
		keep[name] = struct{}{}
	}

	var kept []string

	keptClaims := make(map[string]interface{})

	for _, disclosure := range vc.Proof.SDToken.Disclosures {
		claim, err := parseDisclosure(disclosure)
		if err != nil {
			return nil, err
		}

		if _, ok := keep[claim.Name]; ok {
			kept = append(kept, disclosure)
			keptClaims[claim.Name] = claim.Value
		}
	}

	filtered := vc.WithProof(&credential.Proof{
		SDToken: &credential.SelectiveDisclosureToken{
			Token:       vc.Proof.SDToken.Token,
			Disclosures: kept,
		},
	})

	filtered.Subject = credential.Subject{ID: vc.Subject.ID, Claims: keptClaims}

	return filtered, nil
}

func parseHeader(segment string) (*tokenHeader, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, fmt.Errorf("decode token header: %s", err)
	}

	var header tokenHeader

	if err := json.Unmarshal(decoded, &header); err != nil {
		return nil, fmt.Errorf("unmarshal token header: %s", err)
	}

	return &header, nil
}

func parsePayload(segment string) (map[string]interface{}, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, fmt.Errorf("decode token payload: %s", err)
	}

	var payload map[string]interface{}

	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal token payload: %s", err)
	}

	return payload, nil
}
